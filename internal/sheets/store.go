// Package sheets implements the spreadsheet-backed row store for status
// records. Records are append-only; history is the trailing N rows matching
// a project identifier in the sheet's native row order.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/retry"
)

// Record is one row in the sheet. Column order matches the sheet schema:
// Timestamp, ProjectID, Summary, Key_Changes, Previous_Context, Data_Snapshot.
type Record struct {
	Timestamp       string
	ProjectID       string
	Summary         string
	KeyChanges      string
	PreviousContext string
	DataSnapshot    string
}

// HistoryEntry is the compact shape handed to the prompt builder.
type HistoryEntry struct {
	Timestamp  string
	Summary    string
	KeyChanges string
}

// rowAPI abstracts the sheet values surface so tests can fake it.
type rowAPI interface {
	ReadRows(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
}

// Config holds row store configuration.
type Config struct {
	SheetID             string
	SheetName           string
	ServiceAccountEmail string
	PrivateKey          string
	HistoryLimit        int
}

// Store reads and appends status records. The underlying API client is
// dialed lazily and shared across requests behind a mutex.
type Store struct {
	mu  sync.Mutex
	api rowAPI

	cfg        Config
	dial       func(ctx context.Context) (rowAPI, error)
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewStore creates a Store backed by the Google Sheets API.
func NewStore(cfg Config, logger zerolog.Logger) *Store {
	if cfg.SheetName == "" {
		cfg.SheetName = "Summaries"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 5
	}
	s := &Store{
		cfg:        cfg,
		retryDelay: 2 * time.Second,
		logger:     logger.With().Str("component", "sheets").Logger(),
	}
	s.dial = func(ctx context.Context) (rowAPI, error) {
		return dialGoogle(ctx, s.cfg)
	}
	return s
}

// client returns the shared API handle, dialing it on first use.
func (s *Store) client(ctx context.Context) (rowAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.api != nil {
		return s.api, nil
	}
	api, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to sheet: %w", err)
	}
	s.api = api
	return api, nil
}

// invalidate drops the shared handle so the next call re-dials.
func (s *Store) invalidate() {
	s.mu.Lock()
	s.api = nil
	s.mu.Unlock()
}

// History returns up to HistoryLimit prior records for projectID, oldest
// first in sheet order. Matching is trim-normalized string equality.
// History is best-effort context: any failure is logged and an empty list
// returned.
func (s *Store) History(ctx context.Context, projectID string) []HistoryEntry {
	api, err := s.client(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("history lookup skipped: store unreachable")
		return nil
	}

	rows, err := api.ReadRows(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("history lookup failed, proceeding without context")
		return nil
	}

	want := strings.TrimSpace(projectID)
	var matches []HistoryEntry
	for _, row := range rows {
		if strings.TrimSpace(cell(row, 1)) != want {
			continue
		}
		matches = append(matches, HistoryEntry{
			Timestamp:  cell(row, 0),
			Summary:    cell(row, 2),
			KeyChanges: cell(row, 3),
		})
	}

	if len(matches) > s.cfg.HistoryLimit {
		matches = matches[len(matches)-s.cfg.HistoryLimit:]
	}
	return matches
}

// Append writes one record to the sheet. On failure the connection is
// re-established and the write retried exactly once after a fixed delay.
func (s *Store) Append(ctx context.Context, rec Record) error {
	row := []string{
		rec.Timestamp,
		rec.ProjectID,
		rec.Summary,
		rec.KeyChanges,
		rec.PreviousContext,
		rec.DataSnapshot,
	}

	cfg := retry.Config{
		MaxAttempts: 2,
		BaseDelay:   s.retryDelay,
		MaxDelay:    s.retryDelay,
		RetryIf:     func(error) bool { return true },
	}
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		api, err := s.client(ctx)
		if err != nil {
			return err
		}
		if err := api.AppendRow(ctx, row); err != nil {
			s.logger.Warn().Err(err).Str("project_id", rec.ProjectID).Msg("sheet append failed")
			s.invalidate()
			return err
		}
		return nil
	})
}

// Ping verifies the sheet is reachable and readable.
func (s *Store) Ping(ctx context.Context) error {
	api, err := s.client(ctx)
	if err != nil {
		return err
	}
	_, err = api.ReadRows(ctx)
	return err
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
