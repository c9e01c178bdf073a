// internal/extraction/patterns/requirements.go
package patterns

import (
	"strings"

	"github.com/google/uuid"

	"tender-analyzer/internal/models"
)

// minSentenceLength filters out fragments too short to carry a requirement.
const minSentenceLength = 20

// maxKeywords caps the keywords surfaced per requirement.
const maxKeywords = 10

// RequirementExtractor finds requirement sentences in a chunk using the
// obligation lexicons. Stateless; a pure function of (chunk text, context).
type RequirementExtractor struct{}

func NewRequirementExtractor() *RequirementExtractor {
	return &RequirementExtractor{}
}

// Extract returns the requirements found in one chunk. The chunk's section
// title serves as category context.
func (e *RequirementExtractor) Extract(chunk models.DocumentChunk) []models.Requirement {
	var out []models.Requirement
	seen := map[string]int{}

	for _, sentence := range splitSentences(chunk.Text) {
		if len(sentence) < minSentenceLength {
			continue
		}
		if !obligationPattern.MatchString(sentence) {
			continue
		}

		priority, matchedObligation := detectPriority(sentence)
		category, specific := detectCategory(sentence, chunk.SectionTitle)

		req := models.Requirement{
			ID:            uuid.NewString(),
			Category:      category,
			Description:   sentence,
			Priority:      priority,
			IsMandatory:   priority == models.PriorityMandatory || priority == models.PriorityEliminatory,
			Confidence:    requirementConfidence(sentence, priority, matchedObligation, specific),
			SourceSection: chunk.SectionTitle,
			OriginalText:  sentence,
			Keywords:      extractKeywords(sentence),
		}

		// Same sentence seen twice in a chunk: keep the higher confidence.
		key := normalizeDescription(sentence)
		if idx, ok := seen[key]; ok {
			if req.Confidence > out[idx].Confidence {
				out[idx] = req
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, req)
	}

	return out
}

// detectPriority walks the priority rules in order. Ties resolve toward
// mandatory when a strong obligation verb is present.
func detectPriority(sentence string) (models.Priority, bool) {
	for _, rule := range priorityRules {
		if rule.Pattern.MatchString(sentence) {
			if rule.Priority == models.PriorityOptional && strongObligationPattern.MatchString(sentence) {
				return models.PriorityMandatory, true
			}
			return rule.Priority, rule.Priority == models.PriorityMandatory || rule.Priority == models.PriorityEliminatory
		}
	}
	return models.PriorityDesirable, false
}

// detectCategory scores the sentence against each category lexicon, falls
// back to the section title, and defaults to administrative. The second
// return reports whether a specific category was actually detected.
func detectCategory(sentence, sectionTitle string) (models.Category, bool) {
	lower := strings.ToLower(sentence)

	best := models.CategoryAdministrative
	bestScore := 0
	for category, words := range categoryKeywords {
		score := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && category < best) {
			best = category
			bestScore = score
		}
	}
	if bestScore > 0 {
		return best, true
	}

	lowerTitle := strings.ToLower(sectionTitle)
	for word, category := range sectionCategories {
		if strings.Contains(lowerTitle, word) {
			return category, true
		}
	}

	return models.CategoryAdministrative, false
}

// requirementConfidence starts at 0.5 and rewards the signals that make a
// candidate trustworthy, capped at 1.0.
func requirementConfidence(sentence string, priority models.Priority, matchedObligation, specificCategory bool) float64 {
	confidence := 0.5
	if matchedObligation {
		confidence += 0.2
	}
	if specificCategory {
		confidence += 0.1
	}
	if priority == models.PriorityMandatory || priority == models.PriorityEliminatory {
		confidence += 0.1
	}
	if strongObligationPattern.MatchString(sentence) {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func extractKeywords(sentence string) []string {
	var keywords []string
	seen := map[string]bool{}
	for _, pattern := range keywordPatterns {
		for _, m := range pattern.FindAllString(sentence, -1) {
			key := strings.ToLower(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			keywords = append(keywords, m)
			if len(keywords) >= maxKeywords {
				return keywords
			}
		}
	}
	return keywords
}

// splitSentences cuts text on sentence terminators followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '.' && ch != '!' && ch != '?' && ch != ';' && ch != '\n' {
			continue
		}
		if ch != '\n' && i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' && text[i+1] != '\t' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func normalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
