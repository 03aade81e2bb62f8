package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/config"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/gemini"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/glide"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/health"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/metrics"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/server"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/sheets"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/summary"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Int("http_port", cfg.HTTPPort).
		Str("model", cfg.GeminiModel).
		Bool("glide_enabled", cfg.GlideEnabled()).
		Msg("starting wootz-summary")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Row store
	store := sheets.NewStore(sheets.Config{
		SheetID:             cfg.SheetID,
		SheetName:           cfg.SheetName,
		ServiceAccountEmail: cfg.ServiceAccountEmail,
		PrivateKey:          cfg.PrivateKey(),
		HistoryLimit:        cfg.HistoryLimit,
	}, logger)

	// Generator
	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GenerationTimeout,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init Gemini client")
	}

	// Glide propagation (optional)
	var notifier summary.Notifier
	if cfg.GlideEnabled() {
		notifier = glide.NewClient(glide.Config{
			APIToken:      cfg.GlideAPIToken,
			AppID:         cfg.GlideAppID,
			TableName:     cfg.GlideTableName,
			SummaryColumn: cfg.GlideSummaryColumn,
		}, logger)
		logger.Info().Str("table", cfg.GlideTableName).Msg("Glide propagation enabled")
	} else {
		logger.Warn().Msg("Glide not configured — propagation disabled")
	}

	// Health checker
	checker := health.NewChecker(logger)
	checker.Register("sheets", func(ctx context.Context) health.Status {
		if err := store.Ping(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})
	checker.Register("gemini", func(ctx context.Context) health.Status {
		// No cheap ping for the generation API; configuration presence is
		// validated at startup.
		return health.StatusOK
	})

	m := metrics.New()
	pipeline := summary.NewService(store, generator, notifier, m, logger)

	srv := server.New(server.Config{
		Port: cfg.HTTPPort,
		RateLimit: server.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
		GeminiConfigured: true,
		GlideEnabled:     cfg.GlideEnabled(),
	}, pipeline, checker, m, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	cancel()
	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("wootz-summary stopped")
}
