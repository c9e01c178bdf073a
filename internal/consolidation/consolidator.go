// internal/consolidation/consolidator.go
package consolidation

import (
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/models"
)

// Consolidator merges per-document extractions into one tender-wide
// requirement set. Consolidation is a pure aggregation: requirements are
// grouped and counted, never rewritten, so running it twice over the same
// extractions yields the same snapshot.
type Consolidator struct {
	log logger.Logger
}

func New(log logger.Logger) *Consolidator {
	return &Consolidator{log: log}
}

// Consolidate builds the tender-wide snapshot from the successful document
// extractions. failedDocuments only feeds the coverage counters.
func (c *Consolidator) Consolidate(extractions []models.DocumentExtraction, failedDocuments int) models.ConsolidatedRequirements {
	consolidated := models.ConsolidatedRequirements{
		Categories:            map[models.Category][]models.Requirement{},
		ByPriority:            map[models.Priority][]models.Requirement{},
		MandatoryRequirements: []models.Requirement{},
		OptionalRequirements:  []models.Requirement{},
	}
	coverage := models.Coverage{
		ByDocumentType:       map[models.DocumentType]int{},
		CategoryDistribution: map[models.Category]int{},
		DocumentsAnalyzed:    len(extractions),
		DocumentsFailed:      failedDocuments,
	}

	var all []models.Requirement
	for _, extraction := range extractions {
		coverage.ByDocumentType[extraction.DocumentType] += len(extraction.Requirements)
		all = append(all, extraction.Requirements...)
	}

	mandatoryCount := 0
	for _, req := range all {
		consolidated.Categories[req.Category] = append(consolidated.Categories[req.Category], req)
		consolidated.ByPriority[req.Priority] = append(consolidated.ByPriority[req.Priority], req)
		coverage.CategoryDistribution[req.Category]++

		if req.IsMandatory {
			mandatoryCount++
			consolidated.MandatoryRequirements = append(consolidated.MandatoryRequirements, req)
		} else {
			consolidated.OptionalRequirements = append(consolidated.OptionalRequirements, req)
		}
	}

	consolidated.TotalCount = len(all)
	if len(all) > 0 {
		coverage.MandatoryPercentage = float64(mandatoryCount) / float64(len(all)) * 100
	}
	consolidated.Coverage = coverage
	consolidated.Overlaps = FindOverlaps(all)

	c.log.Info("requirements consolidated", map[string]interface{}{
		"total":     consolidated.TotalCount,
		"mandatory": mandatoryCount,
		"overlaps":  len(consolidated.Overlaps),
		"documents": len(extractions),
		"failed":    failedDocuments,
	})

	return consolidated
}

// AllRequirements flattens the snapshot back into one slice, mandatory
// first, for consumers that iterate the full set.
func AllRequirements(consolidated models.ConsolidatedRequirements) []models.Requirement {
	out := make([]models.Requirement, 0, consolidated.TotalCount)
	out = append(out, consolidated.MandatoryRequirements...)
	out = append(out, consolidated.OptionalRequirements...)
	return out
}
