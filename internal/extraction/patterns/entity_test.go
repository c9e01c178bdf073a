// internal/extraction/patterns/entity_test.go
package patterns

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-analyzer/internal/models"
)

type stubNER struct {
	spans []NERSpan
	err   error
}

func (s *stubNER) ExtractEntities(_ context.Context, _ string) ([]NERSpan, error) {
	return s.spans, s.err
}

func TestEntityExtractorWithModel(t *testing.T) {
	ner := &stubNER{spans: []NERSpan{
		{Text: "Commune de Rennes", Type: "ORG", Start: 0, End: 17},
		{Text: "Jean Martin", Type: "PER", Start: 40, End: 51},
		{Text: "Commune de Rennes", Type: "ORG", Start: 60, End: 77},
	}}
	extractor := NewEntityExtractor(ner)

	entities := extractor.Extract(t.Context(), "Commune de Rennes, représentée par Jean Martin.")

	// Duplicate mention collapsed, types mapped.
	require.Len(t, entities, 2)
	assert.Equal(t, models.EntityOrganization, entities[0].Type)
	assert.Equal(t, models.EntityPerson, entities[1].Type)
}

func TestEntityExtractorModelFailureFallsBack(t *testing.T) {
	extractor := NewEntityExtractor(&stubNER{err: errors.New("model unavailable")})

	entities := extractor.Extract(t.Context(), "Le marché est passé par la Commune de Bordeaux pour ses services.")

	require.Len(t, entities, 1)
	assert.Equal(t, "Commune de Bordeaux", entities[0].Name)
}
