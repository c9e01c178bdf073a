// internal/extraction/patterns/criteria.go
package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"tender-analyzer/internal/models"
)

var (
	percentCriterionPattern     = regexp.MustCompile(`(?i)([a-zà-ÿ][a-zà-ÿ'’ -]{2,40}?)\s*:\s*(\d{1,3})\s*%`)
	coefficientCriterionPattern = regexp.MustCompile(`(?i)([a-zà-ÿ][a-zà-ÿ'’ -]{2,40}?)\s*:?\s*coefficient\s+(\d+)`)
)

// ExtractCriteria finds announced evaluation criteria ("Prix : 40 %",
// "Valeur technique coefficient 3").
func ExtractCriteria(text string) []models.EvaluationCriterion {
	var criteria []models.EvaluationCriterion
	seen := map[string]bool{}

	add := func(name string, weight float64) {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		criteria = append(criteria, models.EvaluationCriterion{Name: name, Weight: weight})
	}

	for _, m := range percentCriterionPattern.FindAllStringSubmatch(text, -1) {
		weight, err := strconv.ParseFloat(m[2], 64)
		if err != nil || weight > 100 {
			continue
		}
		add(m[1], weight)
	}
	for _, m := range coefficientCriterionPattern.FindAllStringSubmatch(text, -1) {
		weight, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		add(m[1], weight)
	}

	return criteria
}
