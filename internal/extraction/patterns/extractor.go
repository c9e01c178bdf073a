// internal/extraction/patterns/extractor.go
package patterns

import (
	"context"

	"tender-analyzer/internal/models"
)

// Comprehensive runs every rule-based extractor over a document's chunks
// and aggregates the results. It is the pattern-only extraction path and
// the fallback tier behind the LLM path.
type Comprehensive struct {
	requirements *RequirementExtractor
	budget       *BudgetExtractor
	deadlines    *DeadlineExtractor
	entities     *EntityExtractor
}

// NewComprehensive wires the rule-based extractors; ner may be nil.
func NewComprehensive(ner NERModel) *Comprehensive {
	return &Comprehensive{
		requirements: NewRequirementExtractor(),
		budget:       NewBudgetExtractor(),
		deadlines:    NewDeadlineExtractor(),
		entities:     NewEntityExtractor(ner),
	}
}

// ExtractFromChunks aggregates typed results across all chunks of one
// document. The best budget wins (min+max beats single-sided); deadlines
// and entities are deduplicated on their natural keys.
func (c *Comprehensive) ExtractFromChunks(ctx context.Context, chunks []models.DocumentChunk) models.DocumentExtraction {
	var result models.DocumentExtraction
	result.Requirements = []models.Requirement{}

	seenDeadlines := map[string]bool{}
	seenEntities := map[string]bool{}
	seenCriteria := map[string]bool{}

	for _, chunk := range chunks {
		result.Requirements = append(result.Requirements, c.requirements.Extract(chunk)...)

		if budget := c.budget.Extract(chunk.Text); budget != nil {
			if result.Budget == nil || budget.Completeness() > result.Budget.Completeness() {
				result.Budget = budget
			}
		}

		for _, d := range c.deadlines.Extract(chunk.Text) {
			key := d.Date + "|" + d.Description
			if seenDeadlines[key] {
				continue
			}
			seenDeadlines[key] = true
			result.Deadlines = append(result.Deadlines, d)
		}

		for _, entity := range c.entities.Extract(ctx, chunk.Text) {
			if seenEntities[entity.Name] {
				continue
			}
			seenEntities[entity.Name] = true
			result.Entities = append(result.Entities, entity)
		}

		for _, criterion := range ExtractCriteria(chunk.Text) {
			if seenCriteria[criterion.Name] {
				continue
			}
			seenCriteria[criterion.Name] = true
			result.Criteria = append(result.Criteria, criterion)
		}
	}

	result.Method = models.MethodPattern
	return result
}
