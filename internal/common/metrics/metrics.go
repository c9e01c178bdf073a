// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_documents_analyzed_total",
			Help: "Total number of tender documents analyzed",
		},
		[]string{"document_type", "method"},
	)

	DocumentsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_documents_failed_total",
			Help: "Total number of documents that failed extraction",
		},
		[]string{"document_type", "error_code"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "analyzer_extraction_duration_seconds",
			Help: "Duration of per-document requirement extraction",
		},
		[]string{"document_type", "method"},
	)

	RequirementsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_requirements_extracted_total",
			Help: "Total number of requirements extracted",
		},
		[]string{"document_type"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_llm_calls_total",
			Help: "Total number of LLM completion calls",
		},
		[]string{"outcome"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_extraction_cache_hits_total",
			Help: "Extraction cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	AnalysesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyzer_tender_analyses_active",
			Help: "Number of tender analyses currently running",
		},
	)
)
