// Package summary orchestrates the request pipeline: resolve the
// identifier, fetch history, generate a summary, persist it, and propagate
// it to Glide when configured.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/gemini"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/metrics"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/payload"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/prompt"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/sheets"
)

// HistoryStore reads prior records and appends new ones.
type HistoryStore interface {
	History(ctx context.Context, projectID string) []sheets.HistoryEntry
	Append(ctx context.Context, rec sheets.Record) error
}

// Generator produces a summary from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier propagates a summary to the secondary table.
type Notifier interface {
	PushSummary(ctx context.Context, rowID, summary string) error
}

// Service runs the summary pipeline.
type Service struct {
	store    HistoryStore
	gen      Generator
	notifier Notifier // nil when propagation is not configured
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates the pipeline service. notifier and m may be nil.
func NewService(store HistoryStore, gen Generator, notifier Notifier, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		gen:      gen,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "pipeline").Logger(),
		now:      time.Now,
	}
}

// Result is the pipeline outcome for a single request.
type Result struct {
	ProjectID      string
	Summary        string
	KeyChanges     string
	PreviousCount  int
	SavedToSheet   bool
	GlideAttempted bool
	SavedToGlide   bool
}

// Run executes the pipeline. A missing identifier or a failed generation
// call returns an error; persistence and propagation failures degrade into
// Result flags.
func (s *Service) Run(ctx context.Context, fields payload.Fields) (*Result, error) {
	projectID, err := fields.Identifier()
	if err != nil {
		return nil, err
	}

	history := s.store.History(ctx, projectID)
	entries := make([]prompt.HistoryEntry, len(history))
	for i, h := range history {
		entries[i] = prompt.HistoryEntry(h)
	}

	text, err := s.generate(ctx, prompt.Build(prompt.Input{
		ProjectID: projectID,
		Fields:    fields,
		History:   entries,
	}))
	if err != nil {
		return nil, fmt.Errorf("generating summary: %w", err)
	}

	keyChanges := gemini.ExtractKeyChanges(text)
	res := &Result{
		ProjectID:     projectID,
		Summary:       text,
		KeyChanges:    keyChanges,
		PreviousCount: len(history),
	}

	rec := sheets.Record{
		Timestamp:       s.now().UTC().Format(time.RFC3339),
		ProjectID:       projectID,
		Summary:         text,
		KeyChanges:      keyChanges,
		PreviousContext: prompt.RenderContext(entries),
		DataSnapshot:    fields.Snapshot(),
	}
	if err := s.store.Append(ctx, rec); err != nil {
		// Losing a history row is tolerable; losing the caller's answer
		// is not, so the request still succeeds.
		s.logger.Error().Err(err).Str("project_id", projectID).Msg("record not persisted")
		s.recordSheetWrite("error")
	} else {
		res.SavedToSheet = true
		s.recordSheetWrite("ok")
	}

	if s.notifier != nil {
		res.GlideAttempted = true
		if err := s.notifier.PushSummary(ctx, projectID, text); err != nil {
			s.logger.Warn().Err(err).Str("project_id", projectID).Msg("glide propagation failed")
			s.recordGlidePush("error")
		} else {
			res.SavedToGlide = true
			s.recordGlidePush("ok")
		}
	}

	return res, nil
}

func (s *Service) generate(ctx context.Context, p string) (string, error) {
	start := time.Now()
	text, err := s.gen.Generate(ctx, p)
	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(start).Seconds())
	}
	return text, err
}

func (s *Service) recordSheetWrite(result string) {
	if s.metrics != nil {
		s.metrics.RecordSheetWrite(result)
	}
}

func (s *Service) recordGlidePush(result string) {
	if s.metrics != nil {
		s.metrics.RecordGlidePush(result)
	}
}
