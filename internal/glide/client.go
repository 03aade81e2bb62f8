// Package glide pushes generated summaries into a Glide big table.
// Propagation is best-effort: failures never block the primary request.
package glide

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	serrors "github.com/aniketsandhanwootz-wq/wootz-summary/internal/errors"
)

const defaultBaseURL = "https://api.glideapp.io"

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds Glide credentials and table coordinates.
type Config struct {
	APIToken      string
	AppID         string
	TableName     string
	SummaryColumn string
}

// Client wraps the Glide mutateTables API.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient HTTPClient
	logger     zerolog.Logger
}

// NewClient creates a new Glide API client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.SummaryColumn == "" {
		cfg.SummaryColumn = "summary"
	}
	return &Client{
		cfg:        cfg,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("component", "glide").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(hc HTTPClient) { c.httpClient = hc }

// SetBaseURL overrides the API base URL (for testing).
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimSuffix(u, "/") }

type mutation struct {
	Kind         string            `json:"kind"`
	TableName    string            `json:"tableName"`
	ColumnValues map[string]string `json:"columnValues"`
	RowID        string            `json:"rowID"`
}

type mutateRequest struct {
	AppID     string     `json:"appID"`
	Mutations []mutation `json:"mutations"`
}

// PushSummary sets the summary column on the row matching rowID. One call,
// no retry.
func (c *Client) PushSummary(ctx context.Context, rowID, summary string) error {
	body, err := json.Marshal(mutateRequest{
		AppID: c.cfg.AppID,
		Mutations: []mutation{{
			Kind:         "set-columns-in-row",
			TableName:    c.cfg.TableName,
			ColumnValues: map[string]string{c.cfg.SummaryColumn: summary},
			RowID:        rowID,
		}},
	})
	if err != nil {
		return fmt.Errorf("marshal mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/function/mutateTables", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return serrors.NewAPIError("glide", resp.StatusCode, string(respBody))
	}

	c.logger.Debug().Str("row_id", rowID).Msg("summary pushed to glide")
	return nil
}
