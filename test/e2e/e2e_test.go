// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-analyzer/internal/analysis"
	"tender-analyzer/internal/chunking"
	"tender-analyzer/internal/common/config"
	"tender-analyzer/internal/common/database"
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/consolidation"
	"tender-analyzer/internal/extraction/cache"
	"tender-analyzer/internal/extraction/hybrid"
	"tender-analyzer/internal/extraction/llm"
	"tender-analyzer/internal/extraction/patterns"
	"tender-analyzer/internal/matching"
	"tender-analyzer/internal/models"
)

// completionServer fakes the completion API with a canned extraction
// payload so the whole pipeline, HTTP client included, runs in-process.
func completionServer(t *testing.T) *httptest.Server {
	t.Helper()
	payload := map[string]interface{}{
		"requirements": []map[string]interface{}{
			{
				"category":    "technical",
				"description": "Héberger la solution sur une infrastructure située en France",
				"priority":    "mandatory",
				"confidence":  0.92,
				"keywords":    []string{"hébergement", "France"},
			},
			{
				"category":    "qualification",
				"description": "Présenter trois références de projets comparables",
				"priority":    "mandatory",
				"confidence":  0.88,
			},
			{
				"category":    "security",
				"description": "Fournir un plan d'assurance sécurité conforme à ISO 27001",
				"priority":    "desirable",
				"confidence":  0.8,
				"keywords":    []string{"ISO 27001"},
			},
		},
	}
	text, err := json.Marshal(payload)
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ai/generate", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"text": string(text)})
	}))
}

func newPipeline(t *testing.T, baseURL string, redisAddr string) *analysis.Service {
	t.Helper()
	log := logger.NewTestLogger(t)

	llmCfg := config.LLMConfig{
		BaseURL:     baseURL,
		Timeout:     5000,
		MaxTokens:   4000,
		Temperature: 0.3,
		MaxRetries:  1,
	}
	analysisCfg := config.AnalysisConfig{
		MaxConcurrentDocuments: 4,
		WindowSize:             8000,
		WindowOverlap:          500,
		CacheTTLHours:          1,
	}
	chunkCfg := config.ChunkingConfig{
		FixedSize:       2000,
		FixedOverlap:    200,
		SemanticMaxSize: 3000,
		StructuralMax:   4000,
	}

	var extractionCache *cache.ExtractionCache
	if redisAddr != "" {
		client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: redisAddr})}
		extractionCache = cache.New(client, analysisCfg.CacheTTL(), log)
	}

	var completer llm.Completer
	if baseURL != "" {
		completer = llm.NewHTTPClient(llmCfg)
	}

	orchestrator := hybrid.NewOrchestrator(
		completer, patterns.NewComprehensive(nil), extractionCache,
		analysisCfg, llmCfg, hybrid.NoOpSink{}, log)
	return analysis.NewService(
		chunking.NewSplitter(chunkCfg), orchestrator, consolidation.New(log),
		matching.NewMatcher(nil, log), extractionCache, nil, nil, analysisCfg, log)
}

func tenderFixture() []models.TenderDocument {
	return []models.TenderDocument{
		{
			ID:   "doc-rc",
			Name: "RC.pdf",
			Type: models.DocTypeConsultationRules,
			Text: "Article 1. Objet de la consultation\n" +
				"Le présent marché porte sur l'hébergement et la maintenance d'une plateforme numérique.\n" +
				"Article 2. Conditions de candidature\n" +
				"Le soumissionnaire doit fournir au minimum 3 références clients.\n" +
				"La date limite de remise des offres est fixée au 15/03/2026 à 12h00.\n",
		},
		{
			ID:   "doc-ccap",
			Name: "CCAP.pdf",
			Type: models.DocTypeAdministrativeClause,
			Text: "Le montant maximum du marché est fixé à 150 000 € HT.\n" +
				"Le titulaire doit souscrire une assurance responsabilité civile professionnelle.\n" +
				"Le paiement sera effectué à 30 jours par virement administratif.\n",
		},
		{
			ID:   "doc-cctp",
			Name: "CCTP.pdf",
			Type: models.DocTypeTechnicalClause,
			Text: "Les données doivent être hébergées sur le territoire français, sous peine de rejet de l'offre.\n" +
				"Le prestataire devra garantir une disponibilité de 99,5% du service.\n",
		},
	}
}

func strongProfile() models.CapabilityProfile {
	return models.CapabilityProfile{
		Capabilities: []models.Capability{
			{
				Domain:          "hébergement",
				Technologies:    []string{"France", "datacenter souverain"},
				Description:     "Hébergement d'infrastructures en France",
				ExperienceYears: 12,
			},
			{
				Domain:          "maintenance applicative",
				Technologies:    []string{"Go", "PostgreSQL"},
				ExperienceYears: 8,
			},
		},
		Certifications: []models.Certification{{Name: "ISO 27001"}, {Name: "ISO 9001"}},
		References: []models.Reference{
			{Client: "Région Bretagne", Description: "Plateforme de services numériques", Year: 2024},
		},
	}
}

func TestFullPipelineWithLLMAndCache(t *testing.T) {
	server := completionServer(t)
	defer server.Close()
	mr := miniredis.RunT(t)

	service := newPipeline(t, server.URL, mr.Addr())

	report, err := service.AnalyzeTender(context.Background(), "tender-e2e", tenderFixture(), strongProfile(), false)
	require.NoError(t, err)

	assert.Equal(t, "tender-e2e", report.TenderID)
	assert.Greater(t, report.Requirements.TotalCount, 0)
	assert.Len(t, report.DocumentStatus, 3)
	for _, status := range report.DocumentStatus {
		assert.True(t, status.Succeeded, status.DocumentID)
	}

	// Budget and deadline flow in from the pattern channels even though
	// requirements came from the model.
	require.NotNil(t, report.Budget)
	require.NotNil(t, report.Budget.MaxAmount)
	assert.InDelta(t, 150000, *report.Budget.MaxAmount, 1e-9)
	assert.NotEmpty(t, report.Deadlines)

	assert.Len(t, report.Matches, report.Requirements.TotalCount)
	assert.Contains(t, []models.BidRecommendation{
		models.RecommendBid, models.RecommendEvaluate, models.RecommendNoBid,
	}, report.Recommendation)

	generatedAt, err := time.Parse(time.RFC3339, report.GeneratedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), generatedAt, time.Minute)

	// Second run comes from the cache: every extraction is a hit.
	second, err := service.AnalyzeTender(context.Background(), "tender-e2e", tenderFixture(), strongProfile(), false)
	require.NoError(t, err)
	assert.Equal(t, report.Requirements.TotalCount, second.Requirements.TotalCount)
}

func TestFullPipelinePatternOnly(t *testing.T) {
	service := newPipeline(t, "", "")

	report, err := service.AnalyzeTender(context.Background(), "tender-patterns", tenderFixture(), strongProfile(), false)
	require.NoError(t, err)

	assert.Greater(t, report.Requirements.TotalCount, 0)

	// The eliminatory wording in the technical clauses must surface.
	var eliminatory bool
	for _, req := range report.Requirements.MandatoryRequirements {
		if req.Priority == models.PriorityEliminatory {
			eliminatory = true
		}
	}
	assert.True(t, eliminatory, "eliminatory requirement should be detected")
}

func TestFullPipelineSurvivesLLMOutage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := newPipeline(t, server.URL, "")

	report, err := service.AnalyzeTender(context.Background(), "tender-outage", tenderFixture(), strongProfile(), false)
	require.NoError(t, err)

	// Every document degraded to the pattern tier and still produced
	// requirements.
	assert.Greater(t, report.Requirements.TotalCount, 0)
	for _, status := range report.DocumentStatus {
		assert.True(t, status.Succeeded)
	}
}
