// Command server runs the verdict-generation HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/keyublog/gaepan-core/infrastructure/llm"
	"github.com/keyublog/gaepan-core/infrastructure/search"
	"github.com/keyublog/gaepan-core/infrastructure/store"
	"github.com/keyublog/gaepan-core/internal/config"
	"github.com/keyublog/gaepan-core/internal/ports"
	"github.com/keyublog/gaepan-core/internal/precedent"
	"github.com/keyublog/gaepan-core/internal/server"
	"github.com/keyublog/gaepan-core/internal/verdict"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	// Absent .env files are fine in containerized deployments.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panicLogger("load config", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		panicLogger("build logger", err)
	}
	defer logger.Sync()

	cacheStore, keywordStore, closeStore, err := buildStores(cfg.Store)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer closeStore()

	verdictClient, err := buildLLMClient("verdict", cfg.LLM.Verdict, cfg.LLM.RateLimit)
	if err != nil {
		logger.Fatal("failed to initialize verdict model client", zap.Error(err))
	}
	keywordClient, err := buildLLMClient("keyword", cfg.LLM.Keyword, cfg.LLM.RateLimit)
	if err != nil {
		logger.Fatal("failed to initialize keyword model client", zap.Error(err))
	}

	searcher := search.NewClient(cfg.Search.BaseURL, cfg.Search.APIKey(), cfg.Search.Timeout)

	validate := validator.New()
	cache := precedent.NewCache(cacheStore, keywordStore)
	resolver := precedent.NewResolver(searcher, cache.LearnKeyword, logger.Named("resolver"))
	pipeline := verdict.NewPipeline(
		verdict.NewExtractor(keywordClient, logger.Named("extractor")),
		cache,
		resolver,
		verdict.NewSynthesizer(verdictClient, validate, logger.Named("synthesizer")),
		validate,
		logger.Named("pipeline"),
	)

	router := server.NewRouter(server.NewHandler(pipeline, logger.Named("handler")),
		cfg.Server.CORSOrigins, logger.Named("http"))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("verdict_model", verdictClient.GetModel()),
			zap.String("keyword_model", keywordClient.GetModel()),
			zap.String("store_backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// buildStores returns the cache and keyword stores for the configured
// backend plus a close function.
func buildStores(cfg config.StoreConfig) (ports.CacheStore, ports.KeywordStore, func(), error) {
	switch cfg.Backend {
	case "redis":
		s, err := store.NewRedisStore(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, func() { s.Close() }, nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := store.NewPostgresStore(ctx, cfg.PostgresDSN, cfg.CacheTTL)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s.Close, nil
	default:
		return nil, nil, nil, errors.New("unknown store backend: " + cfg.Backend)
	}
}

// buildLLMClient assembles one model role with its middleware stack:
// metrics and tracing outermost, then the per-call timeout, then the shared
// rate limit.
func buildLLMClient(role string, cfg config.ModelConfig, rateLimit float64) (*llm.Client, error) {
	middleware := []llm.Middleware{
		llm.MetricsMiddleware(role),
		llm.TracingMiddleware("gaepan-core/llm"),
	}
	if cfg.Timeout > 0 {
		middleware = append(middleware, llm.TimeoutMiddleware(cfg.Timeout))
	}
	if rateLimit > 0 {
		middleware = append(middleware, llm.RateLimitMiddleware(rate.Limit(rateLimit), 1))
	}

	return llm.NewClient(cfg.Provider, llm.ClientConfig{
		APIKey:     cfg.APIKey(),
		Model:      cfg.Model,
		Middleware: middleware,
	})
}

func panicLogger(stage string, err error) {
	fallback, _ := zap.NewProduction()
	if fallback != nil {
		fallback.Fatal(stage+" failed", zap.Error(err))
	}
	panic(stage + ": " + err.Error())
}
