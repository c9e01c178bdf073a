// internal/extraction/patterns/deadline_test.go
package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-analyzer/internal/models"
)

func TestDeadlineExtractor(t *testing.T) {
	extractor := NewDeadlineExtractor()

	tests := []struct {
		name           string
		text           string
		wantCount      int
		validateOutput func(t *testing.T, deadlines []models.Deadline)
	}{
		{
			name:      "numeric submission deadline",
			text:      "La date limite de remise des offres est fixée au 15/03/2026 à 12h00.",
			wantCount: 1,
			validateOutput: func(t *testing.T, deadlines []models.Deadline) {
				assert.Equal(t, "2026-03-15", deadlines[0].Date)
				assert.Equal(t, models.DeadlineSubmission, deadlines[0].Type)
				assert.True(t, deadlines[0].IsStrict)
			},
		},
		{
			name:      "written month date",
			text:      "Les offres devront parvenir au plus tard le 1er avril 2026.",
			wantCount: 1,
			validateOutput: func(t *testing.T, deadlines []models.Deadline) {
				assert.Equal(t, "2026-04-01", deadlines[0].Date)
				assert.True(t, deadlines[0].IsStrict)
			},
		},
		{
			name:      "relative delivery deadline",
			text:      "La livraison interviendra dans un délai de 60 jours après notification.",
			wantCount: 1,
			validateOutput: func(t *testing.T, deadlines []models.Deadline) {
				assert.Empty(t, deadlines[0].Date)
				assert.Equal(t, models.DeadlineDelivery, deadlines[0].Type)
			},
		},
		{
			name:      "flexible milestone date",
			text:      "La réunion de lancement de la phase est prévue à titre indicatif le 10 juin 2026.",
			wantCount: 1,
			validateOutput: func(t *testing.T, deadlines []models.Deadline) {
				assert.Equal(t, "2026-06-10", deadlines[0].Date)
				assert.Equal(t, models.DeadlineMilestone, deadlines[0].Type)
				assert.False(t, deadlines[0].IsStrict)
			},
		},
		{
			name:      "invalid numeric date ignored",
			text:      "Voir la référence 99/99/2026 au catalogue.",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deadlines := extractor.Extract(tt.text)
			require.Len(t, deadlines, tt.wantCount)
			if tt.validateOutput != nil {
				tt.validateOutput(t, deadlines)
			}
		})
	}
}

func TestDeadlineStrictDefault(t *testing.T) {
	extractor := NewDeadlineExtractor()

	// No strictness wording at all: strict by default.
	deadlines := extractor.Extract("Un rendu est attendu pour le 20/05/2026.")
	require.Len(t, deadlines, 1)
	assert.True(t, deadlines[0].IsStrict)
}

func TestEntityExtractorPatterns(t *testing.T) {
	extractor := NewEntityExtractor(nil)

	text := "Le pouvoir adjudicateur est le Ministère de l'Éducation nationale. " +
		"Cette consultation est ouverte à compter de la publication du présent avis au journal officiel. " +
		"La société Dupont Ingénierie SAS a réalisé l'étude préalable."

	entities := extractor.Extract(t.Context(), text)
	require.Len(t, entities, 2)

	byName := map[string]models.Entity{}
	for _, e := range entities {
		assert.Equal(t, models.EntityOrganization, e.Type)
		byName[e.Name] = e
	}

	require.Contains(t, byName, "Dupont Ingénierie SAS")
	ministry, found := byName["Ministère de l'Éducation nationale"]
	require.True(t, found, "ministry not extracted: %v", byName)

	// Buyer wording near the ministry mention marks it as the buyer.
	assert.Equal(t, models.RoleBuyer, ministry.Role)
	assert.Empty(t, byName["Dupont Ingénierie SAS"].Role)
}

func TestExtractCriteria(t *testing.T) {
	text := "Les offres seront jugées selon les critères suivants : prix : 40 %, valeur technique : 60 %."

	criteria := ExtractCriteria(text)
	require.Len(t, criteria, 2)
	assert.Equal(t, 40.0, criteria[0].Weight)
	assert.Equal(t, 60.0, criteria[1].Weight)
}
