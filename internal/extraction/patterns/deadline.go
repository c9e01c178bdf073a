// internal/extraction/patterns/deadline.go
package patterns

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tender-analyzer/internal/models"
)

// contextWindow is how far around a match the type and strictness keywords
// are searched.
const contextWindow = 100

var frenchMonths = map[string]int{
	"janvier": 1, "février": 2, "mars": 3, "avril": 4,
	"mai": 5, "juin": 6, "juillet": 7, "août": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12,
}

var (
	numericDatePattern = regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})`)
	writtenDatePattern = regexp.MustCompile(`(?i)(\d{1,2})(?:er)?\s+(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+(\d{4})`)
	relativePattern    = regexp.MustCompile(`(?i)(?:sous|dans)\s+(?:un\s+)?(?:délai\s+(?:maximum\s+)?de\s+)?(\d+)\s*(jours?|semaines?|mois)`)

	deliveryKeywords  = []string{"livraison", "livrer", "exécution", "prestation", "mise en service"}
	milestoneKeywords = []string{"jalon", "phase", "étape", "réunion", "comité"}

	strictKeywords   = []string{"impérati", "au plus tard", "obligatoirement", "date limite", "délai de rigueur", "avant le"}
	flexibleKeywords = []string{"indicati", "souhaité", "prévisionnel", "estimé", "environ"}
)

// DeadlineExtractor detects absolute dates and relative durations in tender
// text. Stateless and deterministic.
type DeadlineExtractor struct{}

func NewDeadlineExtractor() *DeadlineExtractor {
	return &DeadlineExtractor{}
}

func (e *DeadlineExtractor) Extract(text string) []models.Deadline {
	var deadlines []models.Deadline
	seen := map[string]bool{}

	add := func(d models.Deadline) {
		key := d.Date + "|" + strings.ToLower(d.Description)
		if seen[key] {
			return
		}
		seen[key] = true
		deadlines = append(deadlines, d)
	}

	for _, loc := range numericDatePattern.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[loc[2]:loc[3]])
		month, _ := strconv.Atoi(text[loc[4]:loc[5]])
		year, _ := strconv.Atoi(text[loc[6]:loc[7]])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		ctx := contextAround(text, loc[0], loc[1])
		add(models.Deadline{
			Date:        fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			Description: strings.TrimSpace(ctx),
			Type:        detectDeadlineType(ctx),
			IsStrict:    isStrict(ctx),
		})
	}

	for _, loc := range writtenDatePattern.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[loc[2]:loc[3]])
		month := frenchMonths[strings.ToLower(text[loc[4]:loc[5]])]
		year, _ := strconv.Atoi(text[loc[6]:loc[7]])
		if month == 0 || day < 1 || day > 31 {
			continue
		}
		ctx := contextAround(text, loc[0], loc[1])
		add(models.Deadline{
			Date:        fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			Description: strings.TrimSpace(ctx),
			Type:        detectDeadlineType(ctx),
			IsStrict:    isStrict(ctx),
		})
	}

	for _, loc := range relativePattern.FindAllStringIndex(text, -1) {
		ctx := contextAround(text, loc[0], loc[1])
		add(models.Deadline{
			Description: strings.TrimSpace(text[loc[0]:loc[1]]),
			Type:        detectDeadlineType(ctx),
			IsStrict:    isStrict(ctx),
		})
	}

	return deadlines
}

func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

// detectDeadlineType classifies by nearby keywords, defaulting to
// submission since tender dates overwhelmingly concern offer submission.
func detectDeadlineType(ctx string) models.DeadlineType {
	lower := strings.ToLower(ctx)
	for _, w := range deliveryKeywords {
		if strings.Contains(lower, w) {
			return models.DeadlineDelivery
		}
	}
	for _, w := range milestoneKeywords {
		if strings.Contains(lower, w) {
			return models.DeadlineMilestone
		}
	}
	return models.DeadlineSubmission
}

// isStrict defaults to true; a deadline only reads as flexible when
// flexibility wording appears without any strict wording.
func isStrict(ctx string) bool {
	lower := strings.ToLower(ctx)
	for _, w := range strictKeywords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	for _, w := range flexibleKeywords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
