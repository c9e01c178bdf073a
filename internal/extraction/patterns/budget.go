// internal/extraction/patterns/budget.go
package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"tender-analyzer/internal/models"
)

// amountRule pairs an amount pattern with its multiplier.
type amountRule struct {
	Pattern    *regexp.Regexp
	Multiplier float64
}

// Ordered from largest multiplier down so "1,5 millions d'euros" is consumed
// before the plain-euro pattern can see its digits.
var amountRules = []amountRule{
	{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:millions?|M€|MEUR)`), 1_000_000},
	{regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:K€|k€|milliers)`), 1_000},
	{regexp.MustCompile(`(\d{1,3}(?:[ \x{00a0}.]\d{3})*(?:,\d{2})?)\s*(?:€|euros?|EUR)`), 1},
}

var (
	rangePattern   = regexp.MustCompile(`(?i)entre`)
	minimumPattern = regexp.MustCompile(`(?i)(minimum|minimale?|au moins|plancher)`)
	maximumPattern = regexp.MustCompile(`(?i)(maximum|maximale?|au plus|plafond|n'excédera pas|ne pourra excéder)`)

	vatExcludedPattern = regexp.MustCompile(`(?i)(\bHT\b|hors taxes?)`)
	vatIncludedPattern = regexp.MustCompile(`(?i)(\bTTC\b|toutes taxes comprises)`)

	paymentTermsPattern = regexp.MustCompile(`(?i)(paiement[^.]{0,60}?\d+\s*jours[^.]{0,20}|\d+\s*jours fin de mois|acompte[^.]{0,40}|avance de\s*\d+\s*%)`)
)

// budgetTypeMarkers classify the budget figure. Maximum markers are checked
// first since "fixé à un montant maximum" is a ceiling, not a firm price.
var budgetTypeMarkers = []struct {
	Pattern *regexp.Regexp
	Type    models.BudgetType
}{
	{regexp.MustCompile(`(?i)(maximum|plafond)`), models.BudgetMaximum},
	{regexp.MustCompile(`(?i)(estimé|estimatif|prévisionnel)`), models.BudgetEstimated},
	{regexp.MustCompile(`(?i)(forfaitaire|prix global|fixe\b|fixé)`), models.BudgetFixed},
}

// BudgetExtractor detects the monetary envelope in a chunk of text.
// Stateless and deterministic.
type BudgetExtractor struct{}

func NewBudgetExtractor() *BudgetExtractor {
	return &BudgetExtractor{}
}

// Extract returns the budget found in the text, or nil when the text
// carries no monetary signal.
func (e *BudgetExtractor) Extract(text string) *models.Budget {
	amounts := findAmounts(text)
	paymentTerms := strings.TrimSpace(paymentTermsPattern.FindString(text))

	if len(amounts) == 0 && paymentTerms == "" {
		return nil
	}

	budget := &models.Budget{
		Currency:     "EUR",
		PaymentTerms: paymentTerms,
	}

	if vatExcludedPattern.MatchString(text) {
		v := false
		budget.VATIncluded = &v
	} else if vatIncludedPattern.MatchString(text) {
		v := true
		budget.VATIncluded = &v
	}

	for _, marker := range budgetTypeMarkers {
		if marker.Pattern.MatchString(text) {
			budget.BudgetType = marker.Type
			break
		}
	}

	switch {
	case len(amounts) == 0:
	case rangePattern.MatchString(text) && len(amounts) >= 2:
		lo, hi := amounts[0], amounts[0]
		for _, a := range amounts[1:] {
			if a < lo {
				lo = a
			}
			if a > hi {
				hi = a
			}
		}
		budget.MinAmount = &lo
		budget.MaxAmount = &hi
	case minimumPattern.MatchString(text) && !maximumPattern.MatchString(text):
		budget.MinAmount = &amounts[0]
	default:
		// A lone amount is read as the ceiling.
		budget.MaxAmount = &amounts[0]
	}

	return budget
}

// findAmounts collects amounts in document order, applying multiplier
// suffixes and skipping digit spans already consumed by a larger rule.
func findAmounts(text string) []float64 {
	type hit struct {
		start, end int
		value      float64
	}
	var hits []hit

	consumed := make([]bool, len(text))
	for _, rule := range amountRules {
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			if loc[2] < 0 || consumed[loc[2]] {
				continue
			}
			value, ok := parseAmount(text[loc[2]:loc[3]])
			if !ok {
				continue
			}
			hits = append(hits, hit{start: loc[2], end: loc[3], value: value * rule.Multiplier})
			for i := loc[0]; i < loc[1]; i++ {
				consumed[i] = true
			}
		}
	}

	// Restore document order across rules.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].start < hits[j-1].start; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	amounts := make([]float64, 0, len(hits))
	for _, h := range hits {
		amounts = append(amounts, h.value)
	}
	return amounts
}

var thousandsDotted = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d+)?$`)

// parseAmount normalizes French number formatting: spaces and dots as
// thousands separators, comma as the decimal mark. A dot only counts as a
// thousands separator when it groups digits by three ("150.000"); otherwise
// it is a decimal mark ("1.5 millions").
func parseAmount(raw string) (float64, bool) {
	s := strings.NewReplacer(" ", "", " ", "").Replace(raw)
	if thousandsDotted.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
