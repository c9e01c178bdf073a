// internal/analysis/service_test.go
package analysis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-analyzer/internal/chunking"
	"tender-analyzer/internal/common/config"
	"tender-analyzer/internal/common/database"
	stderrors "tender-analyzer/internal/common/errors"
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/consolidation"
	"tender-analyzer/internal/extraction/cache"
	"tender-analyzer/internal/extraction/hybrid"
	"tender-analyzer/internal/extraction/llm"
	"tender-analyzer/internal/extraction/patterns"
	"tender-analyzer/internal/matching"
	"tender-analyzer/internal/models"
)

type countingCompleter struct {
	mu       sync.Mutex
	calls    int
	response string
}

func (c *countingCompleter) Complete(_ context.Context, _, _ string, _ int, _ float64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.response, nil
}

func (c *countingCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestService(t *testing.T, completer llm.Completer, extractionCache *cache.ExtractionCache) *Service {
	t.Helper()
	log := logger.NewTestLogger(t)
	analysisCfg := config.AnalysisConfig{
		MaxConcurrentDocuments: 2,
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
	llmCfg := config.LLMConfig{MaxTokens: 1000, Temperature: 0.2, MaxRetries: 1}

	orchestrator := hybrid.NewOrchestrator(
		completer, patterns.NewComprehensive(nil), extractionCache,
		analysisCfg, llmCfg, hybrid.NoOpSink{}, log)
	return NewService(
		chunking.NewSplitter(chunkCfg), orchestrator, consolidation.New(log),
		matching.NewMatcher(nil, log), extractionCache, nil, nil, analysisCfg, log)
}

func bidderProfile() models.CapabilityProfile {
	return models.CapabilityProfile{
		Capabilities: []models.Capability{
			{
				Domain:          "développement logiciel",
				Technologies:    []string{"Go", "PostgreSQL"},
				Description:     "Conception et maintenance d'applications métier",
				ExperienceYears: 10,
			},
		},
		Certifications: []models.Certification{{Name: "ISO 9001"}},
	}
}

func tenderDocuments() []models.TenderDocument {
	return []models.TenderDocument{
		{
			ID:   "doc-rc",
			Name: "RC.pdf",
			Type: models.DocTypeConsultationRules,
			Text: "Le soumissionnaire doit fournir au minimum 3 références clients. " +
				"La date limite de remise des offres est fixée au 15/03/2026.",
		},
		{
			ID:   "doc-ccap",
			Name: "CCAP.pdf",
			Type: models.DocTypeAdministrativeClause,
			Text: "Le montant maximum du marché est fixé à 150 000 € HT. " +
				"Le titulaire doit souscrire une assurance responsabilité civile professionnelle.",
		},
	}
}

func TestAnalyzeTender(t *testing.T) {
	service := newTestService(t, nil, nil)

	report, err := service.AnalyzeTender(t.Context(), "tender-1", tenderDocuments(), bidderProfile(), false)

	require.NoError(t, err)
	assert.Equal(t, "tender-1", report.TenderID)
	assert.Greater(t, report.Requirements.TotalCount, 0)
	assert.Len(t, report.Matches, report.Requirements.TotalCount)

	require.Len(t, report.DocumentStatus, 2)
	for _, status := range report.DocumentStatus {
		assert.True(t, status.Succeeded)
	}

	require.NotNil(t, report.Budget)
	require.NotNil(t, report.Budget.MaxAmount)
	assert.InDelta(t, 150000, *report.Budget.MaxAmount, 1e-9)

	var foundDeadline bool
	for _, deadline := range report.Deadlines {
		if deadline.Date == "2026-03-15" {
			foundDeadline = true
		}
	}
	assert.True(t, foundDeadline, "submission deadline should be extracted")

	assert.Contains(t, []models.BidRecommendation{
		models.RecommendBid, models.RecommendEvaluate, models.RecommendNoBid,
	}, report.Recommendation)

	_, err = time.Parse(time.RFC3339, report.GeneratedAt)
	assert.NoError(t, err)
}

func TestAnalyzeTenderEmptyDocumentSet(t *testing.T) {
	service := newTestService(t, nil, nil)

	_, err := service.AnalyzeTender(t.Context(), "tender-2", nil, bidderProfile(), false)

	stdErr := stderrors.AsStandard("", err)
	require.NotNil(t, stdErr)
	assert.Equal(t, stderrors.ErrCodeEmptyDocumentSet, stdErr.Code)
}

func TestAnalyzeTenderInvalidProfile(t *testing.T) {
	service := newTestService(t, nil, nil)

	// A profile without the capabilities array fails schema validation.
	_, err := service.AnalyzeTender(t.Context(), "tender-3", tenderDocuments(), models.CapabilityProfile{}, false)

	stdErr := stderrors.AsStandard("", err)
	require.NotNil(t, stdErr)
	assert.Equal(t, stderrors.ErrCodeValidationFailed, stdErr.Code)
}

func TestAnalyzeTenderPartialFailure(t *testing.T) {
	service := newTestService(t, nil, nil)
	docs := append(tenderDocuments(), models.TenderDocument{
		ID:   "doc-empty",
		Type: models.DocTypeOther,
		Text: "   ",
	})

	report, err := service.AnalyzeTender(t.Context(), "tender-4", docs, bidderProfile(), false)

	require.NoError(t, err)
	require.Len(t, report.DocumentStatus, 3)
	assert.False(t, report.DocumentStatus[2].Succeeded)
	assert.NotEmpty(t, report.DocumentStatus[2].Error)
	assert.Equal(t, 2, report.Requirements.Coverage.DocumentsAnalyzed)
	assert.Equal(t, 1, report.Requirements.Coverage.DocumentsFailed)
}

func TestAnalyzeTenderAllDocumentsFailed(t *testing.T) {
	service := newTestService(t, nil, nil)
	docs := []models.TenderDocument{
		{ID: "doc-a", Type: models.DocTypeOther, Text: ""},
		{ID: "doc-b", Type: models.DocTypeOther, Text: "  \n "},
	}

	_, err := service.AnalyzeTender(t.Context(), "tender-5", docs, bidderProfile(), false)

	stdErr := stderrors.AsStandard("", err)
	require.NotNil(t, stdErr)
	assert.Equal(t, stderrors.ErrCodePartialFailure, stdErr.Code)
}

func TestAnalyzeTenderCancelled(t *testing.T) {
	service := newTestService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.AnalyzeTender(ctx, "tender-6", tenderDocuments(), bidderProfile(), false)

	stdErr := stderrors.AsStandard("", err)
	require.NotNil(t, stdErr)
	assert.Equal(t, stderrors.ErrCodeAnalysisCancelled, stdErr.Code)
}

func TestAnalyzeTenderForceReanalysisBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	extractionCache := cache.New(redisClient, time.Hour, logger.NewTestLogger(t))

	completer := &countingCompleter{
		response: `{"requirements": [{"category": "technical", "description": "Exigence extraite", "priority": "mandatory", "confidence": 0.9}]}`,
	}
	service := newTestService(t, completer, extractionCache)
	docs := tenderDocuments()[:1]

	_, err := service.AnalyzeTender(t.Context(), "tender-7", docs, bidderProfile(), false)
	require.NoError(t, err)
	callsAfterFirst := completer.callCount()
	assert.Greater(t, callsAfterFirst, 0)

	// Second run hits the cache, no new completions.
	_, err = service.AnalyzeTender(t.Context(), "tender-7", docs, bidderProfile(), false)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, completer.callCount())

	// Forced reanalysis invalidates the entry and calls the model again.
	_, err = service.AnalyzeTender(t.Context(), "tender-7", docs, bidderProfile(), true)
	require.NoError(t, err)
	assert.Greater(t, completer.callCount(), callsAfterFirst)
}

func TestExtractDocument(t *testing.T) {
	service := newTestService(t, nil, nil)
	doc := tenderDocuments()[1]

	extraction := service.ExtractDocument(t.Context(), doc)

	assert.Equal(t, models.MethodPattern, extraction.Method)
	assert.Equal(t, "doc-ccap", extraction.DocumentID)
	assert.NotEmpty(t, extraction.Requirements)
	require.NotNil(t, extraction.Budget)
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, models.RecommendBid, Recommend(models.MatchSummary{OverallScore: 0.85}))
	assert.Equal(t, models.RecommendBid, Recommend(models.MatchSummary{OverallScore: 0.8}))
	assert.Equal(t, models.RecommendEvaluate, Recommend(models.MatchSummary{OverallScore: 0.7}))
	assert.Equal(t, models.RecommendEvaluate, Recommend(models.MatchSummary{OverallScore: 0.6}))
	assert.Equal(t, models.RecommendNoBid, Recommend(models.MatchSummary{OverallScore: 0.59}))
	assert.Equal(t, models.RecommendNoBid, Recommend(models.MatchSummary{}))
}

func TestRiskFactors(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mandatory := make([]models.Requirement, 21)
	consolidated := models.ConsolidatedRequirements{MandatoryRequirements: mandatory}
	amount := 2_000_000.0
	budget := &models.Budget{MaxAmount: &amount, Currency: "EUR"}
	deadlines := []models.Deadline{
		{Date: "2026-03-04", Description: "Remise des offres", Type: models.DeadlineSubmission, IsStrict: true},
		{Date: "2026-06-01", Description: "Livraison finale", Type: models.DeadlineDelivery},
		{Description: "Sous 30 jours", Type: models.DeadlineDelivery},
	}

	factors := riskFactors(consolidated, budget, deadlines, now)

	require.Len(t, factors, 3)
	kinds := map[string]string{}
	for _, factor := range factors {
		kinds[factor.Kind] = factor.Severity
	}
	assert.Equal(t, "high", kinds["deadline"])
	assert.Equal(t, "medium", kinds["requirements_volume"])
	assert.Equal(t, "medium", kinds["budget"])
}

func TestRiskFactorsNone(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	consolidated := models.ConsolidatedRequirements{
		MandatoryRequirements: make([]models.Requirement, 3),
	}

	factors := riskFactors(consolidated, nil, []models.Deadline{{Date: "2026-09-01", Description: "Lointaine"}}, now)

	assert.Empty(t, factors)
}

func TestAnalysisReportRoundTrip(t *testing.T) {
	service := newTestService(t, nil, nil)
	report, err := service.AnalyzeTender(t.Context(), "tender-8", tenderDocuments(), bidderProfile(), false)
	require.NoError(t, err)

	payload, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded models.AnalysisReport
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, report.Requirements.TotalCount, decoded.Requirements.TotalCount)
	assert.InDelta(t, report.Summary.OverallScore, decoded.Summary.OverallScore, 1e-9)
	assert.Equal(t, report.Summary.CriticalGaps, decoded.Summary.CriticalGaps)
	assert.Equal(t, report.Recommendation, decoded.Recommendation)
}
