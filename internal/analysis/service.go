// internal/analysis/service.go
package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tender-analyzer/internal/chunking"
	"tender-analyzer/internal/common/config"
	"tender-analyzer/internal/common/errors"
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/common/metrics"
	"tender-analyzer/internal/common/observability"
	"tender-analyzer/internal/common/validation"
	"tender-analyzer/internal/consolidation"
	"tender-analyzer/internal/extraction/cache"
	"tender-analyzer/internal/extraction/hybrid"
	"tender-analyzer/internal/matching"
	"tender-analyzer/internal/models"
)

// Service runs the end-to-end tender analysis pipeline: chunking,
// extraction, consolidation, capability matching and report assembly.
type Service struct {
	splitter     *chunking.Splitter
	extractor    *hybrid.Orchestrator
	consolidator *consolidation.Consolidator
	matcher      *matching.Matcher
	cache        *cache.ExtractionCache
	obs          *observability.Observability
	tracing      *observability.Tracing
	cfg          config.AnalysisConfig
	log          logger.Logger

	now func() time.Time
}

// NewService wires the pipeline. extractionCache, obs and tracing may be
// nil.
func NewService(
	splitter *chunking.Splitter,
	extractor *hybrid.Orchestrator,
	consolidator *consolidation.Consolidator,
	matcher *matching.Matcher,
	extractionCache *cache.ExtractionCache,
	obs *observability.Observability,
	tracing *observability.Tracing,
	cfg config.AnalysisConfig,
	log logger.Logger,
) *Service {
	if obs == nil {
		obs = &observability.Observability{}
	}
	if tracing == nil {
		tracing = observability.NewTracing("tender-analyzer", "")
	}
	return &Service{
		splitter:     splitter,
		extractor:    extractor,
		consolidator: consolidator,
		matcher:      matcher,
		cache:        extractionCache,
		obs:          obs,
		tracing:      tracing,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

type documentOutcome struct {
	extraction models.DocumentExtraction
	status     models.DocumentStatus
}

// AnalyzeTender analyzes every document of a tender against the bidder's
// capability profile. A failing document is excluded and reported in the
// document status list; the analysis only errors out when the input is
// unusable, the context is cancelled, or no document succeeds at all.
func (s *Service) AnalyzeTender(
	ctx context.Context,
	tenderID string,
	documents []models.TenderDocument,
	profile models.CapabilityProfile,
	forceReanalysis bool,
) (*models.AnalysisReport, error) {
	ctx, span := s.tracing.StartSpan(ctx, "analyze_tender")
	defer span.End()

	if len(documents) == 0 {
		return nil, errors.NewEmptyDocumentSetError(tenderID)
	}
	if result, err := validation.ValidateStruct(profile); err != nil || !result.Valid {
		details := "capability profile does not match schema"
		if result != nil && len(result.Errors) > 0 {
			details = result.Errors[0].Field + ": " + result.Errors[0].Message
		}
		return nil, errors.NewValidationFailedError(details)
	}

	metrics.AnalysesActive.Inc()
	defer metrics.AnalysesActive.Dec()

	started := s.now()
	s.log.Info("tender analysis started", map[string]interface{}{
		"tender_id": tenderID,
		"documents": len(documents),
		"force":     forceReanalysis,
	})

	if forceReanalysis {
		for _, doc := range documents {
			if err := s.cache.Invalidate(ctx, doc.Text); err != nil {
				s.log.Warn("cache invalidation failed", map[string]interface{}{
					"document_id": doc.ID,
					"error":       err.Error(),
				})
			}
		}
	}

	outcomes := s.extractAll(ctx, documents)
	if ctx.Err() != nil {
		return nil, errors.NewAnalysisCancelledError(tenderID)
	}

	var extractions []models.DocumentExtraction
	statuses := make([]models.DocumentStatus, 0, len(outcomes))
	failed := 0
	for _, outcome := range outcomes {
		statuses = append(statuses, outcome.status)
		if outcome.status.Succeeded {
			extractions = append(extractions, outcome.extraction)
		} else {
			failed++
			metrics.DocumentsFailed.WithLabelValues(string(outcome.status.Type), string(errors.ErrCodeExtractionFailed)).Inc()
		}
	}
	if len(extractions) == 0 {
		return nil, errors.NewPartialFailureError(tenderID, fmt.Errorf("all %d documents failed extraction", failed))
	}

	consolidated := s.consolidator.Consolidate(extractions, failed)
	requirements := consolidation.AllRequirements(consolidated)
	matches, summary := s.matcher.MatchProfile(requirements, profile)

	budget, deadlines, entities, criteria := aggregateChannels(extractions)
	recommendation := Recommend(summary)
	report := &models.AnalysisReport{
		TenderID:       tenderID,
		Requirements:   consolidated,
		Matches:        matches,
		Summary:        summary,
		Recommendation: recommendation,
		ActionItems:    matching.TopRecommendations(matches, maxActionItems),
		RiskFactors:    riskFactors(consolidated, budget, deadlines, s.now()),
		Budget:         budget,
		Deadlines:      deadlines,
		Entities:       entities,
		Criteria:       criteria,
		DocumentStatus: statuses,
		GeneratedAt:    s.now().UTC().Format(time.RFC3339),
	}

	s.log.Info("tender analysis completed", map[string]interface{}{
		"tender_id":      tenderID,
		"requirements":   consolidated.TotalCount,
		"overall_score":  summary.OverallScore,
		"recommendation": string(recommendation),
		"failed":         failed,
		"duration_ms":    time.Since(started).Milliseconds(),
	})
	return report, nil
}

// extractAll runs document extraction under a bounded worker pool. Results
// keep input order regardless of completion order.
func (s *Service) extractAll(ctx context.Context, documents []models.TenderDocument) []documentOutcome {
	concurrency := s.cfg.MaxConcurrentDocuments
	if concurrency <= 0 {
		concurrency = 1
	}

	outcomes := make([]documentOutcome, len(documents))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, doc := range documents {
		wg.Add(1)
		go func(i int, doc models.TenderDocument) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				outcomes[i] = cancelledOutcome(doc)
				return
			}
			if ctx.Err() != nil {
				outcomes[i] = cancelledOutcome(doc)
				return
			}

			outcomes[i] = s.extractOne(ctx, doc)
		}(i, doc)
	}
	wg.Wait()
	return outcomes
}

func (s *Service) extractOne(ctx context.Context, doc models.TenderDocument) (outcome documentOutcome) {
	ctx, span := s.tracing.StartSpan(ctx, "extract_document")
	defer span.End()

	started := s.now()
	outcome.status = models.DocumentStatus{DocumentID: doc.ID, Type: doc.Type}
	defer func() {
		status := "success"
		if !outcome.status.Succeeded {
			status = "failed"
		}
		s.obs.RecordDocumentProcessed(ctx, status)
		s.obs.RecordDocumentDuration(ctx, time.Since(started), status)
	}()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("document extraction panicked", map[string]interface{}{
				"document_id": doc.ID,
				"panic":       r,
			})
			outcome.status.Succeeded = false
			outcome.status.Error = errors.NewExtractionFailedError(doc.ID, fmt.Errorf("panic: %v", r)).Message
		}
	}()

	if strings.TrimSpace(doc.Text) == "" {
		outcome.status.Error = "document has no extractable text"
		return outcome
	}

	outcome.extraction = s.ExtractDocument(ctx, doc)
	outcome.status.Succeeded = true
	return outcome
}

// ExtractDocument chunks and extracts a single document. It is the
// low-level entry point; a missing LLM client just means the pattern tier
// does all the work.
func (s *Service) ExtractDocument(ctx context.Context, doc models.TenderDocument) models.DocumentExtraction {
	chunks := s.splitter.Split(doc.Text, doc.Outline)
	return s.extractor.Extract(ctx, doc, chunks)
}

func cancelledOutcome(doc models.TenderDocument) documentOutcome {
	return documentOutcome{status: models.DocumentStatus{
		DocumentID: doc.ID,
		Type:       doc.Type,
		Error:      "analysis cancelled",
	}}
}

// aggregateChannels merges the non-requirement channels across documents:
// the most complete budget wins, the rest deduplicate on natural keys.
func aggregateChannels(extractions []models.DocumentExtraction) (*models.Budget, []models.Deadline, []models.Entity, []models.EvaluationCriterion) {
	var budget *models.Budget
	var deadlines []models.Deadline
	var entities []models.Entity
	var criteria []models.EvaluationCriterion

	seenDeadlines := map[string]bool{}
	seenEntities := map[string]bool{}
	seenCriteria := map[string]bool{}

	for _, extraction := range extractions {
		if extraction.Budget != nil {
			if budget == nil || extraction.Budget.Completeness() > budget.Completeness() {
				budget = extraction.Budget
			}
		}
		for _, d := range extraction.Deadlines {
			key := d.Date + "|" + d.Description
			if !seenDeadlines[key] {
				seenDeadlines[key] = true
				deadlines = append(deadlines, d)
			}
		}
		for _, entity := range extraction.Entities {
			if !seenEntities[entity.Name] {
				seenEntities[entity.Name] = true
				entities = append(entities, entity)
			}
		}
		for _, criterion := range extraction.Criteria {
			if !seenCriteria[criterion.Name] {
				seenCriteria[criterion.Name] = true
				criteria = append(criteria, criterion)
			}
		}
	}
	return budget, deadlines, entities, criteria
}
