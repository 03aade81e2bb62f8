// Package server exposes the summary pipeline over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/health"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/metrics"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/requestid"
)

// Config holds HTTP server configuration.
type Config struct {
	Port             int
	RateLimit        RateLimitConfig
	GeminiConfigured bool
	GlideEnabled     bool
}

// Server is the public HTTP surface.
type Server struct {
	app    *fiber.App
	config Config
	logger zerolog.Logger
}

// New creates and configures the HTTP server.
func New(cfg Config, pipeline Runner, checker *health.Checker, m *metrics.Metrics, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	s := &Server{
		app:    app,
		config: cfg,
		logger: logger.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware(cfg, logger)

	h := NewHandlers(pipeline, checker, m, cfg.GeminiConfigured, cfg.GlideEnabled, logger)
	s.setupRoutes(h, m)

	return s
}

func (s *Server) setupMiddleware(cfg Config, logger zerolog.Logger) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID middleware
	s.app.Use(func(c *fiber.Ctx) error {
		_, reqID := requestid.New(c.Context())
		c.Set(requestid.Header, reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	if cfg.RateLimit.RPS > 0 {
		s.app.Use(newRateLimitMiddleware(cfg.RateLimit))
	}

	// Audit middleware (log every request)
	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		// Skip noisy probe logging
		if path == "/health" || path == "/metrics" {
			return c.Next()
		}

		logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Str("ip", c.IP()).
			Str("request_id", fmt.Sprintf("%v", c.Locals("request_id"))).
			Msg("http request")

		return c.Next()
	})
}

func (s *Server) setupRoutes(h *Handlers, m *metrics.Metrics) {
	s.app.Get("/", h.Docs)
	s.app.Get("/health", h.Health)
	s.app.Get("/generate-summary", h.GenerateSummary)
	s.app.Post("/generate-summary", h.GenerateSummary)

	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	s.app.Use(h.NotFound)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Info().Str("addr", addr).Msg("HTTP server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("HTTP server shutting down")
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")

		return c.Status(code).JSON(ServerErrorResponse{
			Success: false,
			Error:   "Internal server error",
			Details: err.Error(),
		})
	}
}
