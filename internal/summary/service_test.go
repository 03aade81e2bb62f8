package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/aniketsandhanwootz-wq/wootz-summary/internal/errors"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/payload"
	"github.com/aniketsandhanwootz-wq/wootz-summary/internal/sheets"
)

type fakeStore struct {
	history   []sheets.HistoryEntry
	appendErr error
	appended  []sheets.Record
}

func (f *fakeStore) History(ctx context.Context, projectID string) []sheets.HistoryEntry {
	return f.history
}

func (f *fakeStore) Append(ctx context.Context, rec sheets.Record) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rec)
	return nil
}

type fakeGen struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type fakeNotifier struct {
	err   error
	calls int
	rowID string
}

func (f *fakeNotifier) PushSummary(ctx context.Context, rowID, summary string) error {
	f.calls++
	f.rowID = rowID
	return f.err
}

func newTestService(store *fakeStore, gen *fakeGen, notifier Notifier) *Service {
	s := NewService(store, gen, notifier, nil, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestRun_Success(t *testing.T) {
	store := &fakeStore{history: []sheets.HistoryEntry{
		{Timestamp: "t1", Summary: "older"},
		{Timestamp: "t2", Summary: "newer"},
	}}
	gen := &fakeGen{text: "Status Summary: going well.\nKey Changes:\n- Launched beta"}
	svc := newTestService(store, gen, nil)

	res, err := svc.Run(context.Background(), payload.Fields{"projectId": "p1", "currentStatus": "beta live"})
	require.NoError(t, err)

	assert.Equal(t, "p1", res.ProjectID)
	assert.Equal(t, gen.text, res.Summary)
	assert.Equal(t, "Launched beta", res.KeyChanges)
	assert.Equal(t, 2, res.PreviousCount)
	assert.True(t, res.SavedToSheet)
	assert.False(t, res.GlideAttempted)

	require.Len(t, store.appended, 1)
	rec := store.appended[0]
	assert.Equal(t, "2026-08-30T12:00:00Z", rec.Timestamp)
	assert.Equal(t, "p1", rec.ProjectID)
	assert.Contains(t, rec.PreviousContext, "older")
	assert.Contains(t, rec.DataSnapshot, "beta live")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "beta live")
	assert.Contains(t, gen.prompts[0], "older")
}

func TestRun_MissingIdentifier(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeGen{text: "x"}, nil)

	_, err := svc.Run(context.Background(), payload.Fields{"currentStatus": "fine"})
	assert.ErrorIs(t, err, serrors.ErrMissingIdentifier)
	assert.Empty(t, store.appended, "no side effects on client error")
}

func TestRun_GenerationFailureIsHard(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeGen{err: serrors.ErrTimeout}, &fakeNotifier{})

	_, err := svc.Run(context.Background(), payload.Fields{"projectId": "p1"})
	assert.ErrorIs(t, err, serrors.ErrTimeout)
	assert.Empty(t, store.appended, "nothing persisted after a failed generation")
}

func TestRun_PersistFailureIsSoft(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("sheet down")}
	svc := newTestService(store, &fakeGen{text: "summary"}, nil)

	res, err := svc.Run(context.Background(), payload.Fields{"projectId": "p1"})
	require.NoError(t, err, "request still succeeds when the write is lost")
	assert.False(t, res.SavedToSheet)
	assert.Equal(t, "summary", res.Summary)
}

func TestRun_NotifierFailureIsSoft(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("glide down")}
	svc := newTestService(&fakeStore{}, &fakeGen{text: "summary"}, notifier)

	res, err := svc.Run(context.Background(), payload.Fields{"projectId": "p1"})
	require.NoError(t, err)
	assert.True(t, res.GlideAttempted)
	assert.False(t, res.SavedToGlide)
	assert.True(t, res.SavedToSheet)
}

func TestRun_NotifierPushesRowID(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeStore{}, &fakeGen{text: "summary"}, notifier)

	res, err := svc.Run(context.Background(), payload.Fields{"rowID": "row-7"})
	require.NoError(t, err)
	assert.True(t, res.SavedToGlide)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "row-7", notifier.rowID)
}

func TestRun_EmptyHistoryCountsZero(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeGen{text: "summary"}, nil)

	res, err := svc.Run(context.Background(), payload.Fields{"projectId": "p1"})
	require.NoError(t, err)
	assert.Zero(t, res.PreviousCount)
}
