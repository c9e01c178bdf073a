// internal/analysis/recommendations.go
package analysis

import (
	"fmt"
	"time"

	"tender-analyzer/internal/models"
)

const (
	bidThreshold      = 0.8
	evaluateThreshold = 0.6

	maxActionItems = 5

	urgentDeadlineDays   = 7
	mandatoryVolumeLimit = 20
	largeBudgetEuros     = 1_000_000.0
)

// Recommend turns the match summary into go/no-go advice.
func Recommend(summary models.MatchSummary) models.BidRecommendation {
	switch {
	case summary.OverallScore >= bidThreshold:
		return models.RecommendBid
	case summary.OverallScore >= evaluateThreshold:
		return models.RecommendEvaluate
	default:
		return models.RecommendNoBid
	}
}

// riskFactors flags conditions that raise bid risk independently of the
// capability match: an imminent submission deadline, an unusually heavy
// mandatory requirement load, and a large budget envelope.
func riskFactors(consolidated models.ConsolidatedRequirements, budget *models.Budget, deadlines []models.Deadline, now time.Time) []models.RiskFactor {
	var factors []models.RiskFactor

	for _, deadline := range deadlines {
		if deadline.Date == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", deadline.Date)
		if err != nil {
			continue
		}
		days := int(date.Sub(now).Hours() / 24)
		if days >= 0 && days < urgentDeadlineDays {
			factors = append(factors, models.RiskFactor{
				Kind:        "deadline",
				Description: fmt.Sprintf("Échéance dans %d jour(s): %s", days, deadline.Description),
				Severity:    "high",
			})
		}
	}

	if mandatory := len(consolidated.MandatoryRequirements); mandatory > mandatoryVolumeLimit {
		factors = append(factors, models.RiskFactor{
			Kind:        "requirements_volume",
			Description: fmt.Sprintf("%d exigences obligatoires à couvrir", mandatory),
			Severity:    "medium",
		})
	}

	if budget != nil {
		amount := 0.0
		if budget.MaxAmount != nil {
			amount = *budget.MaxAmount
		} else if budget.MinAmount != nil {
			amount = *budget.MinAmount
		}
		if amount > largeBudgetEuros {
			factors = append(factors, models.RiskFactor{
				Kind:        "budget",
				Description: fmt.Sprintf("Budget supérieur à %.0f €", largeBudgetEuros),
				Severity:    "medium",
			})
		}
	}

	return factors
}
