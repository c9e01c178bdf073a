// internal/extraction/patterns/entity.go
package patterns

import (
	"context"
	"regexp"
	"strings"

	"tender-analyzer/internal/models"
)

// NERSpan is one entity returned by the external named-entity model.
type NERSpan struct {
	Text  string
	Type  string
	Start int
	End   int
}

// NERModel is the optional external named-entity capability.
type NERModel interface {
	ExtractEntities(ctx context.Context, text string) ([]NERSpan, error)
}

// Name tails are kept conservative (short runs of capitalized or long
// lowercase words) so a match stops before the sentence's verb.
var orgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-ZÀ-Ÿ][\w&'à-ÿ-]*(?:\s+[A-ZÀ-Ÿ&'][\w&'à-ÿ-]*){0,4})\s+(SAS|SARL|SA|SCI|EURL|GIE|SNC)\b`),
	regexp.MustCompile(`Ministère\s+(?:de\s+la\s+|de\s+l'|du\s+|des\s+|de\s+)[A-ZÀ-Ÿ][a-zà-ÿ'’-]*(?:\s+[a-zà-ÿ'’-]{3,}){0,2}`),
	regexp.MustCompile(`Direction\s+(?:générale\s+|régionale\s+|départementale\s+)?(?:de\s+la\s+|de\s+l'|du\s+|des\s+|de\s+)?[A-Za-zÀ-Ÿà-ÿ][a-zà-ÿ'’-]*(?:\s+[a-zà-ÿ'’-]{3,}){0,2}`),
	regexp.MustCompile(`(?:Commune|Ville|Communauté|Région|Département)\s+(?:de\s+|d'|du\s+|des\s+)[A-ZÀ-Ÿ][a-zà-ÿ'-]+(?:[ -][A-ZÀ-Ÿ][a-zà-ÿ'-]+)*`),
}

var buyerRolePattern = regexp.MustCompile(`(?i)(acheteur|pouvoir adjudicateur|maître d'ouvrage|personne publique)`)

// EntityExtractor detects named entities, preferring the injected model and
// falling back to organizational-suffix patterns.
type EntityExtractor struct {
	ner NERModel
}

// NewEntityExtractor builds an extractor; ner may be nil.
func NewEntityExtractor(ner NERModel) *EntityExtractor {
	return &EntityExtractor{ner: ner}
}

// Extract returns named entities found in the text. A model failure falls
// back to the pattern path rather than surfacing an error.
func (e *EntityExtractor) Extract(ctx context.Context, text string) []models.Entity {
	if e.ner != nil {
		spans, err := e.ner.ExtractEntities(ctx, text)
		if err == nil && len(spans) > 0 {
			return e.fromSpans(text, spans)
		}
	}
	return e.fromPatterns(text)
}

func (e *EntityExtractor) fromSpans(text string, spans []NERSpan) []models.Entity {
	var entities []models.Entity
	seen := map[string]bool{}
	for _, span := range spans {
		name := strings.TrimSpace(span.Text)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		entities = append(entities, models.Entity{
			Name: name,
			Type: mapEntityType(span.Type),
			Role: detectRole(text, span.Start, span.End),
		})
	}
	return entities
}

func (e *EntityExtractor) fromPatterns(text string) []models.Entity {
	var entities []models.Entity
	seen := map[string]bool{}
	for _, pattern := range orgPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			name := strings.TrimSpace(text[loc[0]:loc[1]])
			if seen[strings.ToLower(name)] {
				continue
			}
			seen[strings.ToLower(name)] = true
			entities = append(entities, models.Entity{
				Name: name,
				Type: models.EntityOrganization,
				Role: detectRole(text, loc[0], loc[1]),
			})
		}
	}
	return entities
}

func mapEntityType(t string) models.EntityType {
	switch strings.ToUpper(t) {
	case "PER", "PERSON":
		return models.EntityPerson
	case "LOC", "LOCATION", "GPE":
		return models.EntityLocation
	case "PROD", "PRODUCT":
		return models.EntityProduct
	default:
		return models.EntityOrganization
	}
}

// detectRole marks an entity as the buyer when procurement-buyer wording
// sits close to the mention.
func detectRole(text string, start, end int) models.EntityRole {
	if buyerRolePattern.MatchString(contextAround(text, start, end)) {
		return models.RoleBuyer
	}
	return ""
}
