// internal/consolidation/overlap.go
package consolidation

import (
	"regexp"
	"strings"

	"tender-analyzer/internal/models"
)

const (
	relatedThreshold   = 0.7
	duplicateThreshold = 0.9
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// FindOverlaps reports requirement pairs from different documents whose
// descriptions overlap. Overlap across documents is a signal (the same
// obligation stated in two places can carry different priorities), so
// pairs are reported as findings and left unmerged.
func FindOverlaps(reqs []models.Requirement) []models.OverlapFinding {
	tokens := make([]map[string]bool, len(reqs))
	for i, r := range reqs {
		tokens[i] = tokenize(r.Description)
	}

	var findings []models.OverlapFinding
	for i := 0; i < len(reqs); i++ {
		for j := i + 1; j < len(reqs); j++ {
			if reqs[i].SourceDocument == reqs[j].SourceDocument {
				continue
			}

			similarity := jaccard(tokens[i], tokens[j])
			if similarity < relatedThreshold {
				continue
			}

			kind := models.OverlapRelated
			if similarity >= duplicateThreshold {
				kind = models.OverlapDuplicate
			}
			findings = append(findings, models.OverlapFinding{
				FirstID:    reqs[i].ID,
				SecondID:   reqs[j].ID,
				Similarity: similarity,
				Kind:       kind,
			})
		}
	}
	return findings
}

func tokenize(s string) map[string]bool {
	set := map[string]bool{}
	for _, token := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		set[token] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
