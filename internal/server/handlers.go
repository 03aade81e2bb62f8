package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	serrors "github.com/aniketsandhanwootz-wq/wootz-summary/internal/errors"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/health"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/metrics"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/payload"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/summary"
)

// Version is reported by /health and /.
const Version = "1.0.0"

// Runner executes the summary pipeline for one request.
type Runner interface {
	Run(ctx context.Context, fields payload.Fields) (*summary.Result, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	pipeline  Runner
	checker   *health.Checker
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	startTime time.Time

	geminiConfigured bool
	glideEnabled     bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(pipeline Runner, checker *health.Checker, m *metrics.Metrics, geminiConfigured, glideEnabled bool, logger zerolog.Logger) *Handlers {
	return &Handlers{
		pipeline:         pipeline,
		checker:          checker,
		metrics:          m,
		logger:           logger.With().Str("component", "handlers").Logger(),
		startTime:        time.Now(),
		geminiConfigured: geminiConfigured,
		glideEnabled:     glideEnabled,
	}
}

// GenerateSummary handles GET and POST /generate-summary.
func (h *Handlers) GenerateSummary(c *fiber.Ctx) error {
	start := time.Now()

	fields, err := requestFields(c)
	if err != nil {
		h.recordRequest("client_error")
		return c.Status(fiber.StatusBadRequest).JSON(ClientErrorResponse{
			Success: false,
			Error:   "Invalid request body",
			Hint:    "Send fields as query parameters (GET) or a JSON object (POST)",
		})
	}

	res, err := h.pipeline.Run(c.Context(), fields)
	if err != nil {
		if errors.Is(err, serrors.ErrMissingIdentifier) {
			h.recordRequest("client_error")
			return c.Status(fiber.StatusBadRequest).JSON(ClientErrorResponse{
				Success: false,
				Error:   "Missing project identifier",
				Hint:    "Provide one of: " + strings.Join(payload.IdentifierAliases(), ", "),
			})
		}

		h.recordRequest("server_error")
		h.logger.Error().Err(err).Msg("summary pipeline failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ServerErrorResponse{
			Success: false,
			Error:   "Summary generation failed",
			Details: err.Error(),
			Metadata: &ErrorMetadata{
				ExecutionTimeMs: time.Since(start).Milliseconds(),
				Timestamp:       time.Now().UTC().Format(time.RFC3339),
			},
		})
	}

	meta := Metadata{
		PreviousSummariesCount: res.PreviousCount,
		SavedToSheet:           res.SavedToSheet,
		ExecutionTimeMs:        time.Since(start).Milliseconds(),
		Timestamp:              time.Now().UTC().Format(time.RFC3339),
	}
	if res.GlideAttempted {
		meta.SavedToGlide = &res.SavedToGlide
	}

	h.recordRequest("success")
	return c.JSON(SummaryResponse{
		Success:    true,
		ProjectID:  res.ProjectID,
		Summary:    res.Summary,
		KeyChanges: res.KeyChanges,
		Metadata:   meta,
	})
}

// Health handles GET /health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	results := h.checker.RunAll(c.Context())
	sheetOK := results["sheets"] == health.StatusOK

	status := "ok"
	if !sheetOK {
		status = "degraded"
	}

	return c.JSON(HealthResponse{
		Status:           status,
		SheetConnected:   sheetOK,
		GeminiConfigured: h.geminiConfigured,
		GlideEnabled:     h.glideEnabled,
		Version:          Version,
		Uptime:           time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Docs handles GET /.
func (h *Handlers) Docs(c *fiber.Ctx) error {
	return c.JSON(DocsResponse{
		Service: "wootz-summary",
		Version: Version,
		Endpoints: map[string]string{
			"GET /generate-summary":  "Generate a status summary; fields as query parameters",
			"POST /generate-summary": "Generate a status summary; fields as a JSON body (webhooks)",
			"GET /health":            "Dependency connectivity and version",
			"GET /metrics":           "Prometheus metrics",
		},
		IdentifierAliases: payload.IdentifierAliases(),
	})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(NotFoundResponse{
		Success: false,
		Error:   "Unknown endpoint: " + c.Method() + " " + c.Path(),
		Available: []string{
			"GET /",
			"GET /generate-summary",
			"POST /generate-summary",
			"GET /health",
			"GET /metrics",
		},
	})
}

// requestFields extracts the open payload from either surface.
func requestFields(c *fiber.Ctx) (payload.Fields, error) {
	if c.Method() == fiber.MethodPost {
		return payload.FromJSON(c.Body())
	}
	return payload.Fields(c.Queries()), nil
}

func (h *Handlers) recordRequest(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordRequest(outcome)
	}
}
