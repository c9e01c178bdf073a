// internal/extraction/hybrid/metrics.go
package hybrid

import (
	"tender-analyzer/internal/common/metrics"
	"tender-analyzer/internal/models"
)

// ExtractionMetrics summarizes one document extraction for observability.
type ExtractionMetrics struct {
	DocumentID       string                  `json:"documentId"`
	DocumentType     models.DocumentType     `json:"documentType"`
	Method           models.ExtractionMethod `json:"method"`
	RequirementCount int                     `json:"requirementCount"`
	ProcessingTimeMs int64                   `json:"processingTimeMs"`
	AvgConfidence    float64                 `json:"avgConfidence"`
	APICalls         int                     `json:"apiCalls"`
	CacheHit         bool                    `json:"cacheHit"`
	Errors           int                     `json:"errors"`
}

// Sink receives extraction metrics. Recording must never fail the
// extraction that produced them.
type Sink interface {
	Record(m ExtractionMetrics)
}

// PrometheusSink publishes extraction metrics to the process registry.
type PrometheusSink struct{}

func NewPrometheusSink() *PrometheusSink {
	return &PrometheusSink{}
}

func (s *PrometheusSink) Record(m ExtractionMetrics) {
	docType := string(m.DocumentType)
	method := string(m.Method)

	metrics.DocumentsAnalyzed.WithLabelValues(docType, method).Inc()
	metrics.ExtractionDuration.WithLabelValues(docType, method).Observe(float64(m.ProcessingTimeMs) / 1000.0)
	metrics.RequirementsExtracted.WithLabelValues(docType).Add(float64(m.RequirementCount))

	if m.APICalls > 0 {
		metrics.LLMCalls.WithLabelValues("success").Add(float64(m.APICalls - m.Errors))
		if m.Errors > 0 {
			metrics.LLMCalls.WithLabelValues("error").Add(float64(m.Errors))
		}
	}

	if m.CacheHit {
		metrics.CacheHits.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheHits.WithLabelValues("miss").Inc()
	}
}

// NoOpSink discards metrics; used when observability is disabled.
type NoOpSink struct{}

func (NoOpSink) Record(ExtractionMetrics) {}

func avgConfidence(reqs []models.Requirement) float64 {
	if len(reqs) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range reqs {
		sum += r.Confidence
	}
	return sum / float64(len(reqs))
}
