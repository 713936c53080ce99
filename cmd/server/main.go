package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinematch/internal/adapters/analytics"
	"cinematch/internal/adapters/cache"
	"cinematch/internal/adapters/llm"
	"cinematch/internal/adapters/tmdb"
	"cinematch/internal/adapters/web"
	"cinematch/internal/config"
	"cinematch/internal/intent"
	"cinematch/internal/usecases"
	"cinematch/pkg/log"
	"cinematch/pkg/log/transporters"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.Info
	}
	logger := log.New(level, transporters.NewStdout())
	log.SetDefault(logger)
	defer logger.Close()

	rules := intent.DefaultRules()
	if cfg.MoodRulesPath != "" {
		rules, err = intent.LoadRulesFile(cfg.MoodRulesPath)
		if err != nil {
			fatal("failed to load mood rules", err, "path", cfg.MoodRulesPath)
		}
	}

	ctx := context.Background()
	var closers []io.Closer

	pageCache, cacheCloser, err := newCache(ctx, cfg.Cache)
	if err != nil {
		fatal("failed to initialize cache", err, "backend", cfg.Cache.Backend)
	}
	if cacheCloser != nil {
		closers = append(closers, cacheCloser)
	}

	var recorder usecases.SearchRecorder
	if cfg.DatabaseURL != "" {
		db, err := analytics.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal("failed to connect analytics database", err)
		}
		pg := analytics.NewPostgresRecorder(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			fatal("failed to prepare analytics schema", err)
		}
		recorder = pg
		closers = append(closers, pg)
	}

	if cfg.TMDB.APIKey == "" {
		log.GlobalWarn("TMDB_API_KEY is not set; catalog requests will fail")
	}
	if cfg.LLM.APIKey == "" {
		log.GlobalWarn("OPENAI_API_KEY is not set; using keyword intent only")
	}

	catalog := tmdb.NewClient(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Timeout:      cfg.TMDB.Timeout,
		Attempts:     cfg.TMDB.Attempts,
		RPS:          cfg.TMDB.RPS,
	})
	extractor := llm.NewOpenAIExtractor(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)

	fetcher := usecases.NewPageFetcher(catalog, pageCache)
	searchUC := usecases.NewSearchMoviesUseCase(rules, extractor, fetcher, recorder, cfg.MinVoteCount)
	providersUC := usecases.NewGetProvidersUseCase(pageCache, catalog)

	handlers := web.NewHandlers(searchUC, providersUC)
	rateLimiter := web.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Close()

	app := web.NewApp()
	web.SetupRoutes(app, handlers, rateLimiter)

	go func() {
		log.GlobalInfo("starting cinematch", "port", cfg.Port, "cache", cfg.Cache.Backend, "analytics", recorder != nil)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.GlobalError("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.GlobalInfo("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.GlobalError("shutdown failed", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.GlobalWarn("close failed", "error", err)
		}
	}
}

// newCache builds the configured cache backend. A nil cache means caching is off.
func newCache(ctx context.Context, cfg config.CacheConfig) (usecases.Cache, io.Closer, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		c := cache.NewMemoryCache(cfg.TTL)
		return c, c, nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, nil, nil
	}
}

// fatal logs synchronously and exits. The async logger may not be set up yet.
func fatal(msg string, err error, keysAndValues ...any) {
	logger := log.New(log.Fatal, transporters.NewStdout())
	logger.Fatal(msg, append(keysAndValues, "error", err)...)
	logger.Close()
	os.Exit(1)
}
