// internal/extraction/hybrid/orchestrator.go
package hybrid

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"tender-analyzer/internal/common/config"
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/extraction/cache"
	"tender-analyzer/internal/extraction/llm"
	"tender-analyzer/internal/extraction/patterns"
	"tender-analyzer/internal/models"
)

// dedupPrefixLen bounds the description prefix used as the dedup key, so
// rephrasings that only differ in a long tail still collapse.
const dedupPrefixLen = 100

// Orchestrator runs the tiered extraction pipeline for one document:
// cache, then LLM over overlapping windows, then rule-based patterns, then
// a minimal placeholder. Exactly one tier downgrade happens per document;
// the result always comes back, whatever tier produced it.
type Orchestrator struct {
	completer llm.Completer
	patterns  *patterns.Comprehensive
	cache     *cache.ExtractionCache
	analysis  config.AnalysisConfig
	llmCfg    config.LLMConfig
	sink      Sink
	log       logger.Logger
}

// NewOrchestrator wires the pipeline. completer and extractionCache may be
// nil; the pipeline then starts at the pattern tier and skips caching.
func NewOrchestrator(
	completer llm.Completer,
	patternExtractor *patterns.Comprehensive,
	extractionCache *cache.ExtractionCache,
	analysisCfg config.AnalysisConfig,
	llmCfg config.LLMConfig,
	sink Sink,
	log logger.Logger,
) *Orchestrator {
	if sink == nil {
		sink = NoOpSink{}
	}
	return &Orchestrator{
		completer: completer,
		patterns:  patternExtractor,
		cache:     extractionCache,
		analysis:  analysisCfg,
		llmCfg:    llmCfg,
		sink:      sink,
		log:       log,
	}
}

// Extract produces the full extraction for one document. It never fails:
// every tier degradation is absorbed and reflected in the Method field.
func (o *Orchestrator) Extract(ctx context.Context, doc models.TenderDocument, chunks []models.DocumentChunk) models.DocumentExtraction {
	start := time.Now()

	if strings.TrimSpace(doc.Text) == "" {
		result := models.DocumentExtraction{
			DocumentID:   doc.ID,
			DocumentType: doc.Type,
			Requirements: []models.Requirement{},
			Method:       models.MethodPattern,
		}
		o.record(result, start, 0)
		return result
	}

	// Without a completer the pipeline goes straight to the pattern tier
	// and the cache stays untouched, so a pattern-only run always matches
	// the rule-based extractors exactly.
	if o.completer != nil {
		if cached, hit := o.cache.Get(ctx, doc.Text); hit {
			cached.DocumentID = doc.ID
			cached.DocumentType = doc.Type
			cached.Method = models.MethodCached
			cached.CacheHit = true
			o.record(*cached, start, 0)
			return *cached
		}
	}

	// The rule-based channels (budget, deadlines, entities, criteria) run
	// unconditionally; the LLM only competes on requirements.
	result := o.patterns.ExtractFromChunks(ctx, chunks)

	apiCalls := 0
	failedWindows := 0
	var llmRequirements []models.Requirement

	if o.completer != nil {
		windows := BuildWindows(doc.Text, o.analysis.WindowSize, o.analysis.WindowOverlap)
		for _, window := range windows {
			if ctx.Err() != nil {
				break
			}

			apiCalls++
			raw, err := o.completer.Complete(ctx, llm.SystemPrompt(),
				llm.BuildExtractionPrompt(window.Text, doc.Type),
				o.llmCfg.MaxTokens, o.llmCfg.Temperature)
			if err != nil {
				failedWindows++
				o.log.Warn("LLM window extraction failed", map[string]interface{}{
					"document_id": doc.ID,
					"window":      window.Index,
					"error":       err.Error(),
				})
				continue
			}

			resp, err := llm.Parse(raw)
			if err != nil {
				failedWindows++
				o.log.Warn("LLM response unparseable, window skipped", map[string]interface{}{
					"document_id": doc.ID,
					"window":      window.Index,
				})
				continue
			}
			llmRequirements = append(llmRequirements, llm.ToRequirements(resp)...)
		}
	}

	if len(llmRequirements) > 0 {
		result.Requirements = llmRequirements
		result.Method = models.MethodLLM
	} else if o.completer != nil {
		// Single downgrade: the pattern tier already computed above takes
		// over the requirements channel.
		o.log.Info("falling back to pattern extraction", map[string]interface{}{
			"document_id":    doc.ID,
			"failed_windows": failedWindows,
		})
	}

	if len(result.Requirements) == 0 && patterns.HasObligation(doc.Text) {
		result.Requirements = []models.Requirement{minimalRequirement()}
		result.Method = models.MethodMinimal
	}

	for i := range result.Requirements {
		if result.Requirements[i].SourceDocument == "" {
			result.Requirements[i].SourceDocument = doc.Name
		}
	}
	result.Requirements = dedupeRequirements(result.Requirements)

	result.DocumentID = doc.ID
	result.DocumentType = doc.Type
	result.APICalls = apiCalls

	if o.completer != nil {
		o.cache.Set(ctx, doc.Text, &result)
	}
	o.record(result, start, failedWindows)
	return result
}

func (o *Orchestrator) record(result models.DocumentExtraction, start time.Time, failedWindows int) {
	o.sink.Record(ExtractionMetrics{
		DocumentID:       result.DocumentID,
		DocumentType:     result.DocumentType,
		Method:           result.Method,
		RequirementCount: len(result.Requirements),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		AvgConfidence:    avgConfidence(result.Requirements),
		APICalls:         result.APICalls,
		CacheHit:         result.CacheHit,
		Errors:           failedWindows,
	})
}

// dedupeRequirements keeps the first occurrence of each description,
// compared case-insensitively on a bounded prefix. Requirements arrive in
// document order, so the earliest mention survives.
func dedupeRequirements(reqs []models.Requirement) []models.Requirement {
	if len(reqs) < 2 {
		return reqs
	}
	seen := make(map[string]bool, len(reqs))
	out := reqs[:0]
	for _, r := range reqs {
		key := strings.ToLower(strings.TrimSpace(r.Description))
		if len(key) > dedupPrefixLen {
			key = key[:dedupPrefixLen]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// minimalRequirement is the last-resort placeholder for documents whose
// obligation wording resisted both extraction tiers.
func minimalRequirement() models.Requirement {
	return models.Requirement{
		ID:          uuid.NewString(),
		Category:    models.CategoryOther,
		Description: "Le document contient des obligations nécessitant une revue manuelle",
		Priority:    models.PriorityDesirable,
		Confidence:  0.3,
	}
}
