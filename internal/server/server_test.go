package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/aniketsandhanwootz-wq/wootz-summary/internal/errors"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/health"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/payload"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/summary"
)

// fakeRunner scripts the pipeline outcome and records inputs.
type fakeRunner struct {
	res    *summary.Result
	err    error
	fields payload.Fields
}

func (f *fakeRunner) Run(ctx context.Context, fields payload.Fields) (*summary.Result, error) {
	f.fields = fields
	if f.err != nil {
		return nil, f.err
	}
	if f.res != nil {
		return f.res, nil
	}
	id, err := fields.Identifier()
	if err != nil {
		return nil, err
	}
	return &summary.Result{ProjectID: id, Summary: "generated", SavedToSheet: true}, nil
}

func testApp(t *testing.T, runner Runner, sheetsUp bool) *fiber.App {
	t.Helper()
	logger := zerolog.Nop()
	checker := health.NewChecker(logger)
	checker.Register("sheets", func(ctx context.Context) health.Status {
		if sheetsUp {
			return health.StatusOK
		}
		return health.StatusDown
	})

	srv := New(Config{Port: 0, GeminiConfigured: true}, runner, checker, nil, logger)
	return srv.App()
}

func TestGenerateSummary_GET(t *testing.T) {
	runner := &fakeRunner{}
	app := testApp(t, runner, true)

	req, _ := http.NewRequest("GET", "/generate-summary?projectId=p1&currentStatus=fine", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body SummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "p1", body.ProjectID)
	assert.Equal(t, "generated", body.Summary)
	assert.True(t, body.Metadata.SavedToSheet)
	assert.Nil(t, body.Metadata.SavedToGlide)

	assert.Equal(t, "fine", runner.fields["currentStatus"])
}

func TestGenerateSummary_POST(t *testing.T) {
	runner := &fakeRunner{}
	app := testApp(t, runner, true)

	body := `{"rowID":"row-7","blockers":"waiting on vendor"}`
	req, _ := http.NewRequest("POST", "/generate-summary", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out SummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "row-7", out.ProjectID)
	assert.Equal(t, "waiting on vendor", runner.fields["blockers"])
}

func TestGenerateSummary_MissingIdentifier(t *testing.T) {
	app := testApp(t, &fakeRunner{err: serrors.ErrMissingIdentifier}, true)

	req, _ := http.NewRequest("GET", "/generate-summary?currentStatus=fine", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ClientErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Hint, "projectId")
}

func TestGenerateSummary_InvalidJSONBody(t *testing.T) {
	app := testApp(t, &fakeRunner{}, true)

	req, _ := http.NewRequest("POST", "/generate-summary", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateSummary_PipelineFailure(t *testing.T) {
	app := testApp(t, &fakeRunner{err: errors.New("generation exceeded 30s: operation timed out")}, true)

	req, _ := http.NewRequest("GET", "/generate-summary?projectId=p1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body ServerErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Details, "timed out")
	require.NotNil(t, body.Metadata)
	assert.NotEmpty(t, body.Metadata.Timestamp)
}

func TestGenerateSummary_GlideFlagPresentWhenAttempted(t *testing.T) {
	runner := &fakeRunner{res: &summary.Result{
		ProjectID:      "p1",
		Summary:        "s",
		SavedToSheet:   true,
		GlideAttempted: true,
		SavedToGlide:   false,
	}}
	app := testApp(t, runner, true)

	req, _ := http.NewRequest("GET", "/generate-summary?projectId=p1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body SummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Metadata.SavedToGlide)
	assert.False(t, *body.Metadata.SavedToGlide)
}

func TestHealth_OK(t *testing.T) {
	app := testApp(t, &fakeRunner{}, true)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.SheetConnected)
	assert.True(t, body.GeminiConfigured)
	assert.Equal(t, Version, body.Version)
}

func TestHealth_Degraded(t *testing.T) {
	app := testApp(t, &fakeRunner{}, false)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.False(t, body.SheetConnected)
}

func TestDocs(t *testing.T) {
	app := testApp(t, &fakeRunner{}, true)

	req, _ := http.NewRequest("GET", "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body DocsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "wootz-summary", body.Service)
	assert.Contains(t, body.Endpoints, "POST /generate-summary")
	assert.NotEmpty(t, body.IdentifierAliases)
}

func TestNotFound(t *testing.T) {
	app := testApp(t, &fakeRunner{}, true)

	req, _ := http.NewRequest("GET", "/nope", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body NotFoundResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Available, "GET /generate-summary")
}

func TestRateLimit_RejectsWhenExhausted(t *testing.T) {
	srv := New(Config{Port: 0, RateLimit: RateLimitConfig{RPS: 1, Burst: 1}},
		&fakeRunner{}, health.NewChecker(zerolog.Nop()), nil, zerolog.Nop())
	app := srv.App()

	req, _ := http.NewRequest("GET", "/generate-summary?projectId=p1", nil)
	first, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
