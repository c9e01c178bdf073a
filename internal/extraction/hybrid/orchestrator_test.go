// internal/extraction/hybrid/orchestrator_test.go
package hybrid

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-analyzer/internal/common/config"
	"tender-analyzer/internal/common/database"
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/extraction/cache"
	"tender-analyzer/internal/extraction/llm"
	"tender-analyzer/internal/extraction/patterns"
	"tender-analyzer/internal/models"
)

type fakeCompleter struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string, _ int, _ float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.responses[(f.calls-1)%len(f.responses)], nil
}

type recordingSink struct {
	records []ExtractionMetrics
}

func (s *recordingSink) Record(m ExtractionMetrics) {
	s.records = append(s.records, m)
}

func testConfigs() (config.AnalysisConfig, config.LLMConfig) {
	return config.AnalysisConfig{
			MaxConcurrentDocuments: 2,
			WindowSize:             200,
			WindowOverlap:          20,
			CacheTTLHours:          1,
		}, config.LLMConfig{
			MaxTokens:   4000,
			Temperature: 0.3,
			MaxRetries:  1,
		}
}

func newOrchestrator(t *testing.T, completer *fakeCompleter, c *cache.ExtractionCache, sink Sink) *Orchestrator {
	t.Helper()
	analysisCfg, llmCfg := testConfigs()
	var cpl llm.Completer
	if completer != nil {
		cpl = completer
	}
	return NewOrchestrator(cpl, patterns.NewComprehensive(nil), c, analysisCfg, llmCfg, sink, logger.NewTestLogger(t))
}

func chunksFor(doc models.TenderDocument) []models.DocumentChunk {
	return []models.DocumentChunk{{
		ID:        "c-0",
		Index:     0,
		Text:      doc.Text,
		EndOffset: len(doc.Text),
	}}
}

func TestOrchestratorLLMPath(t *testing.T) {
	// Text longer than one window so two model calls happen, both
	// returning the same requirement plus one unique each.
	doc := models.TenderDocument{
		ID:   "doc-1",
		Name: "CCTP.pdf",
		Type: models.DocTypeTechnicalClause,
		Text: strings.Repeat("Le titulaire doit assurer la maintenance corrective du système. ", 5),
	}
	completer := &fakeCompleter{responses: []string{
		`{"requirements": [
			{"category": "technical", "description": "Assurer la maintenance corrective", "priority": "mandatory", "confidence": 0.9},
			{"category": "performance", "description": "Garantir une disponibilité de 99,5%", "priority": "mandatory", "confidence": 0.85}
		]}`,
		`{"requirements": [
			{"category": "technical", "description": "Assurer la maintenance corrective", "priority": "mandatory", "confidence": 0.9},
			{"category": "security", "description": "Chiffrer les sauvegardes", "priority": "eliminatory", "confidence": 0.8}
		]}`,
	}}
	sink := &recordingSink{}

	result := newOrchestrator(t, completer, nil, sink).Extract(t.Context(), doc, chunksFor(doc))

	assert.Equal(t, models.MethodLLM, result.Method)
	assert.Equal(t, 2, result.APICalls)
	assert.Equal(t, "doc-1", result.DocumentID)

	// The duplicated requirement collapses to its first occurrence.
	require.Len(t, result.Requirements, 3)
	assert.Equal(t, "Assurer la maintenance corrective", result.Requirements[0].Description)
	for _, r := range result.Requirements {
		assert.Equal(t, "CCTP.pdf", r.SourceDocument)
	}

	require.Len(t, sink.records, 1)
	assert.Equal(t, 3, sink.records[0].RequirementCount)
	assert.Equal(t, 0, sink.records[0].Errors)
}

func TestOrchestratorFallsBackToPatterns(t *testing.T) {
	doc := models.TenderDocument{
		ID:   "doc-2",
		Name: "RC.pdf",
		Type: models.DocTypeConsultationRules,
		Text: "Le soumissionnaire doit fournir au minimum 3 références clients.",
	}
	completer := &fakeCompleter{err: errors.New("service unavailable")}
	sink := &recordingSink{}

	result := newOrchestrator(t, completer, nil, sink).Extract(t.Context(), doc, chunksFor(doc))

	assert.Equal(t, models.MethodPattern, result.Method)
	assert.Equal(t, 1, result.APICalls)
	require.NotEmpty(t, result.Requirements)
	assert.Equal(t, models.PriorityMandatory, result.Requirements[0].Priority)

	require.Len(t, sink.records, 1)
	assert.Equal(t, 1, sink.records[0].Errors)
}

func TestOrchestratorUnparseableResponseFallsBack(t *testing.T) {
	doc := models.TenderDocument{
		ID:   "doc-3",
		Type: models.DocTypeOther,
		Text: "Le prestataire devra respecter les normes en vigueur sur le site.",
	}
	completer := &fakeCompleter{responses: []string{"désolé, je ne peux pas répondre"}}

	result := newOrchestrator(t, completer, nil, NoOpSink{}).Extract(t.Context(), doc, chunksFor(doc))

	assert.Equal(t, models.MethodPattern, result.Method)
	require.NotEmpty(t, result.Requirements)
}

func TestOrchestratorMinimalFallback(t *testing.T) {
	// Obligation wording present but the sentence is below the pattern
	// tier's minimum length, so only the placeholder remains.
	doc := models.TenderDocument{
		ID:   "doc-4",
		Type: models.DocTypeOther,
		Text: "Paiement exigé.",
	}
	completer := &fakeCompleter{err: errors.New("down")}

	result := newOrchestrator(t, completer, nil, NoOpSink{}).Extract(t.Context(), doc, chunksFor(doc))

	assert.Equal(t, models.MethodMinimal, result.Method)
	require.Len(t, result.Requirements, 1)
	assert.InDelta(t, 0.3, result.Requirements[0].Confidence, 1e-9)
	assert.Equal(t, models.CategoryOther, result.Requirements[0].Category)
}

func TestOrchestratorNilCompleterUsesPatterns(t *testing.T) {
	doc := models.TenderDocument{
		ID:   "doc-5",
		Type: models.DocTypeAdministrativeClause,
		Text: "Le titulaire doit transmettre une attestation d'assurance en cours de validité.",
	}

	result := newOrchestrator(t, nil, nil, NoOpSink{}).Extract(t.Context(), doc, chunksFor(doc))

	assert.Equal(t, models.MethodPattern, result.Method)
	assert.Zero(t, result.APICalls)
	require.NotEmpty(t, result.Requirements)
}

func TestOrchestratorEmptyDocument(t *testing.T) {
	doc := models.TenderDocument{ID: "doc-6", Type: models.DocTypeOther, Text: "   "}
	completer := &fakeCompleter{responses: []string{`{"requirements": []}`}}

	result := newOrchestrator(t, completer, nil, NoOpSink{}).Extract(t.Context(), doc, nil)

	assert.Empty(t, result.Requirements)
	assert.Zero(t, result.APICalls)
	assert.Zero(t, completer.calls)
}

func TestOrchestratorCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	extractionCache := cache.New(redisClient, time.Hour, logger.NewTestLogger(t))

	doc := models.TenderDocument{
		ID:   "doc-7",
		Name: "CCAP.pdf",
		Type: models.DocTypeAdministrativeClause,
		Text: "Le titulaire doit souscrire une assurance responsabilité civile professionnelle.",
	}
	completer := &fakeCompleter{responses: []string{
		`{"requirements": [{"category": "administrative", "description": "Souscrire une assurance RC professionnelle", "priority": "mandatory", "confidence": 0.9}]}`,
	}}
	orchestrator := newOrchestrator(t, completer, extractionCache, NoOpSink{})

	first := orchestrator.Extract(t.Context(), doc, chunksFor(doc))
	require.Equal(t, models.MethodLLM, first.Method)
	assert.False(t, first.CacheHit)

	second := orchestrator.Extract(t.Context(), doc, chunksFor(doc))
	assert.Equal(t, models.MethodCached, second.Method)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Requirements[0].Description, second.Requirements[0].Description)
	// No new model call happened for the cached document.
	assert.Equal(t, 1, completer.calls)
}

func TestOrchestratorPatternOnlyBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	extractionCache := cache.New(redisClient, time.Hour, logger.NewTestLogger(t))

	doc := models.TenderDocument{
		ID:   "doc-8",
		Name: "CCAP.pdf",
		Type: models.DocTypeAdministrativeClause,
		Text: "Le titulaire doit souscrire une assurance responsabilité civile professionnelle.",
	}
	completer := &fakeCompleter{responses: []string{
		`{"requirements": [{"category": "administrative", "description": "Souscrire une assurance RC professionnelle", "priority": "mandatory", "confidence": 0.9}]}`,
	}}

	// A model-backed run stores its extraction for this text.
	first := newOrchestrator(t, completer, extractionCache, NoOpSink{}).Extract(t.Context(), doc, chunksFor(doc))
	require.Equal(t, models.MethodLLM, first.Method)

	// A pattern-only orchestrator over the same cache ignores the entry
	// and returns exactly what the rule-based extractors produce.
	result := newOrchestrator(t, nil, extractionCache, NoOpSink{}).Extract(t.Context(), doc, chunksFor(doc))

	assert.Equal(t, models.MethodPattern, result.Method)
	assert.False(t, result.CacheHit)
	require.NotEmpty(t, result.Requirements)
	assert.NotEqual(t, first.Requirements[0].Description, result.Requirements[0].Description)
}

func TestBuildWindows(t *testing.T) {
	text := strings.Repeat("a", 500)

	windows := BuildWindows(text, 200, 20)

	require.Len(t, windows, 3)
	assert.Equal(t, 0, windows[0].Start)
	assert.Equal(t, 180, windows[1].Start)
	assert.Equal(t, 360, windows[2].Start)
	assert.Len(t, windows[2].Text, 140)
	for i, w := range windows {
		assert.Equal(t, i, w.Index)
	}

	single := BuildWindows("court", 200, 20)
	require.Len(t, single, 1)
	assert.Equal(t, "court", single[0].Text)

	assert.Nil(t, BuildWindows("", 200, 20))
}
