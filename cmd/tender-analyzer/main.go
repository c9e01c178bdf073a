// cmd/tender-analyzer/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tender-analyzer/internal/analysis"
	"tender-analyzer/internal/chunking"
	"tender-analyzer/internal/common/config"
	"tender-analyzer/internal/common/database"
	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/common/observability"
	"tender-analyzer/internal/common/validation"
	"tender-analyzer/internal/consolidation"
	"tender-analyzer/internal/extraction/cache"
	"tender-analyzer/internal/extraction/hybrid"
	"tender-analyzer/internal/extraction/llm"
	"tender-analyzer/internal/extraction/patterns"
	"tender-analyzer/internal/matching"
	"tender-analyzer/internal/models"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	var (
		documentsPath = flag.String("documents", "", "path to a JSON file holding the tender documents")
		profilePath   = flag.String("profile", "", "path to a JSON file holding the capability profile")
		tenderID      = flag.String("tender", "", "tender identifier")
		force         = flag.Bool("force", false, "ignore cached extractions and reanalyze")
		metricsAddr   = flag.String("metrics-addr", "", "serve /metrics and /health on this address while the analysis runs")
	)
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting tender analyzer...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	if *documentsPath == "" || *profilePath == "" || *tenderID == "" {
		flag.Usage()
		zapLog.Fatal("flags -documents, -profile and -tender are required")
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	tracing := observability.NewTracing(cfg.App.Name, os.Getenv("JAEGER_ENDPOINT"))
	defer tracing.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis with retry; the cache is optional ---
	var extractionCache *cache.ExtractionCache
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 3, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Warn("redis unavailable, running without extraction cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		extractionCache = cache.New(redisClient, cfg.Analysis.CacheTTL(), log)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init LLM client; missing credentials mean pattern-only mode ---
	var completer llm.Completer
	if cfg.LLM.BaseURL != "" {
		completer = llm.NewHTTPClient(cfg.LLM)
		zapLog.Info("LLM client initialized", zap.String("base_url", cfg.LLM.BaseURL))
	} else {
		zapLog.Warn("no LLM base URL configured, extraction falls back to patterns")
	}

	// --- Load inputs ---
	documents, err := loadDocuments(*documentsPath)
	if err != nil {
		zapLog.Fatal("loading documents failed", zap.Error(err))
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		zapLog.Fatal("loading capability profile failed", zap.Error(err))
	}

	// --- Optional health & metrics server ---
	if *metricsAddr != "" {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Assemble the pipeline ---
	orchestrator := hybrid.NewOrchestrator(
		completer,
		patterns.NewComprehensive(nil),
		extractionCache,
		cfg.Analysis,
		cfg.LLM,
		hybrid.NewPrometheusSink(),
		log,
	)
	service := analysis.NewService(
		chunking.NewSplitter(cfg.Chunking),
		orchestrator,
		consolidation.New(log),
		matching.NewMatcher(nil, log),
		extractionCache,
		obs,
		tracing,
		cfg.Analysis,
		log,
	)

	report, err := service.AnalyzeTender(ctx, *tenderID, documents, profile, *force)
	if err != nil {
		zapLog.Fatal("tender analysis failed", zap.Error(err))
	}

	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		zapLog.Fatal("report serialization failed", zap.Error(err))
	}
	fmt.Println(string(output))

	zapLog.Info("Tender analysis finished",
		zap.String("tender_id", *tenderID),
		zap.Int("requirements", report.Requirements.TotalCount),
		zap.String("recommendation", string(report.Recommendation)),
	)
}

func loadDocuments(path string) ([]models.TenderDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documents file: %w", err)
	}

	var documents []models.TenderDocument
	if err := json.Unmarshal(raw, &documents); err != nil {
		return nil, fmt.Errorf("parse documents file: %w", err)
	}
	return documents, nil
}

func loadProfile(path string) (models.CapabilityProfile, error) {
	var profile models.CapabilityProfile

	raw, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile file: %w", err)
	}

	result, err := validation.ValidateCapabilityProfile(raw)
	if err != nil {
		return profile, err
	}
	if !result.Valid {
		return profile, fmt.Errorf("profile invalid: %s: %s", result.Errors[0].Field, result.Errors[0].Message)
	}

	if err := json.Unmarshal(raw, &profile); err != nil {
		return profile, fmt.Errorf("parse profile file: %w", err)
	}
	return profile, nil
}
