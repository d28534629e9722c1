package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/config"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/db"
	dbRedis "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/db/redis"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
	logpkg "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/logger"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/metrics"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/repository/corpus"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/repository/embcache"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/repository/history"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/search/keyword"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/search/vector"
	chiTransport "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/transport/chi"
	openaiTransport "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/transport/openai"
	askuc "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/usecase/ask"
	healthuc "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/usecase/health"
	ingestuc "github.com/KAS4453/tds-virtual-ta-22f3000668/internal/usecase/ingest"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting virtual-TA API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	corpusRepo := corpus.New(store)
	historyStore := history.New(store)

	embedder := buildEmbedder(cfg, store, logger)

	var vectorEngine *vector.Engine
	if embedder != nil {
		vectorEngine = vector.NewEngine(embedder, cfg.Embedding.Dimensions, cfg.Index.Dir, logger)
		docs, err := corpusRepo.ListAll(ctx)
		if err != nil {
			logger.Fatal("Failed to load corpus for indexing", zap.Error(err))
		}
		if err := vectorEngine.LoadOrBuild(ctx, docs); err != nil {
			logger.Error("Vector index unavailable, continuing with keyword search", zap.Error(err))
			vectorEngine = nil
		} else {
			logger.Info("Vector index ready", zap.Int("documents", vectorEngine.Size()))
		}
	} else {
		logger.Info("Embedding not configured, retrieval runs on the keyword engine")
	}

	var generator askuc.Generator
	aiEnabled := cfg.Generation.APIKey != ""
	if aiEnabled {
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.Generation.APIKey,
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
			Logger:      logger,
		})
		logger.Info("Generator created", zap.String("model", cfg.Generation.Model))
	} else {
		logger.Info("Generation not configured, answers are composed from retrieved snippets")
	}

	phrases := cfg.Retrieval.PhraseBonuses
	if len(phrases) == 0 {
		phrases = config.DefaultPhraseBonuses()
	}
	keywordEngine := keyword.NewEngine(phrases)

	// Pass nil interface (not typed nil pointer!) if the vector engine is
	// not configured.
	var vectorSearcher askuc.VectorSearcher
	if vectorEngine != nil {
		vectorSearcher = vectorEngine
	}

	selector := askuc.NewSelector(corpusRepo, vectorSearcher, keywordEngine, askuc.SelectorConfig{
		TopK:                cfg.Retrieval.TopK,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		SnippetMaxLen:       cfg.Retrieval.ContextSnippetMax,
	}, logger)
	composer := askuc.NewComposer(generator, askuc.ComposerConfig{
		FallbackSnippetMax: cfg.Retrieval.FallbackSnippetMax,
	}, logger)
	askSvc := askuc.NewService(selector, composer, historyStore, cfg.Retrieval.MaxLinks, logger)

	var ingestIndexer ingestuc.Indexer
	if vectorEngine != nil {
		ingestIndexer = vectorEngine
	}
	ingestSvc := ingestuc.New(corpusRepo, ingestIndexer, logger)

	var indexReadier healthuc.IndexReadier
	if vectorEngine != nil {
		indexReadier = vectorEngine
	}
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder), indexReadier, aiEnabled)

	server := chiTransport.NewServer(askSvc, historyStore, healthSvc, ingestSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedder chain: OpenAI -> Cached.
// Returns nil when embedding is not configured.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	if cfg.Embedding.APIKey == "" {
		return nil
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) healthuc.EmbeddingChecker {
	if embedder == nil {
		return nil
	}
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
