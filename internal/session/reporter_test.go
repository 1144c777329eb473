package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/nova-webgames/arena/internal/api"
	"github.com/nova-webgames/arena/internal/storage/memory"
	"github.com/nova-webgames/arena/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitterFunc func(ctx context.Context, r core.MatchResult, token string) error

func (f submitterFunc) SubmitScore(ctx context.Context, r core.MatchResult, token string) error {
	return f(ctx, r, token)
}

type tokenFunc func(subject string) (string, error)

func (f tokenFunc) AccessToken(subject string) (string, error) { return f(subject) }

type telemetrySpy struct {
	written []core.MatchResult
	err     error
}

func (s *telemetrySpy) WriteMatch(r core.MatchResult) error {
	if s.err != nil {
		return s.err
	}
	s.written = append(s.written, r)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReporter(t *testing.T, deps Dependencies) *Reporter {
	t.Helper()
	if deps.Context == nil {
		deps.Context = NewContext("p-7", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	}
	deps.Logger = quietLogger()
	r, err := NewReporter(deps)
	require.NoError(t, err)
	return r
}

func TestNewReporter_RequiresContext(t *testing.T) {
	_, err := NewReporter(Dependencies{})
	assert.Error(t, err)
}

func TestMatchEnded_StampsIDsWithoutIO(t *testing.T) {
	calls := 0
	r := newReporter(t, Dependencies{
		Submitter: submitterFunc(func(context.Context, core.MatchResult, string) error {
			calls++
			return nil
		}),
	})

	r.MatchEnded(core.MatchResult{Score: 250, SessionID: "ignored"})

	assert.Equal(t, 0, calls, "delivery waits for Flush")
	require.Len(t, r.Results(), 1)
	got := r.Results()[0]
	assert.Equal(t, r.deps.Context.SessionID(), got.SessionID)
	assert.Equal(t, "p-7", got.PlayerID)
	assert.Equal(t, 1, r.Pending())
}

func TestFlush_DeliversEverywhere(t *testing.T) {
	store := memory.New()
	tele := &telemetrySpy{}
	var gotToken string
	r := newReporter(t, Dependencies{
		Store:     store,
		Telemetry: tele,
		Tokens:    tokenFunc(func(sub string) (string, error) { return "tok-" + sub, nil }),
		Submitter: submitterFunc(func(_ context.Context, _ core.MatchResult, token string) error {
			gotToken = token
			return nil
		}),
	})

	r.MatchEnded(core.MatchResult{Score: 250})
	require.NoError(t, r.Flush(context.Background()))

	assert.Equal(t, 0, r.Pending())
	assert.Equal(t, "tok-p-7", gotToken)
	require.Len(t, tele.written, 1)

	saved, err := store.GetMatch(context.Background(), r.deps.Context.SessionID())
	require.NoError(t, err)
	assert.Equal(t, 250, saved.Score)
}

func TestFlush_RetriesTemporaryFailures(t *testing.T) {
	store := memory.New()
	attempts := 0
	r := newReporter(t, Dependencies{
		Store: store,
		Submitter: submitterFunc(func(context.Context, core.MatchResult, string) error {
			attempts++
			if attempts == 1 {
				return &api.StatusError{Op: "score submission", Status: http.StatusServiceUnavailable}
			}
			return nil
		}),
	})

	r.MatchEnded(core.MatchResult{Score: 100})

	err := r.Flush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, r.Pending(), "kept for retry")
	assert.Equal(t, 1, store.Len())

	require.NoError(t, r.Flush(context.Background()))
	assert.Equal(t, 0, r.Pending())
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, store.Len(), "storage is not written twice")
}

func TestFlush_DropsRejectedSubmission(t *testing.T) {
	r := newReporter(t, Dependencies{
		Submitter: submitterFunc(func(context.Context, core.MatchResult, string) error {
			return api.ErrUnauthorized
		}),
	})

	r.MatchEnded(core.MatchResult{Score: 100})
	err := r.Flush(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, 0, r.Pending())
}

func TestFlush_TokenFailureIsNotRetried(t *testing.T) {
	submitted := false
	r := newReporter(t, Dependencies{
		Tokens: tokenFunc(func(string) (string, error) { return "", errors.New("no secret") }),
		Submitter: submitterFunc(func(context.Context, core.MatchResult, string) error {
			submitted = true
			return nil
		}),
	})

	r.MatchEnded(core.MatchResult{})
	assert.Error(t, r.Flush(context.Background()))
	assert.False(t, submitted)
	assert.Equal(t, 0, r.Pending())
}

func TestFlush_TelemetryFailureRetried(t *testing.T) {
	tele := &telemetrySpy{err: errors.New("influx down")}
	r := newReporter(t, Dependencies{Telemetry: tele})

	r.MatchEnded(core.MatchResult{Score: 5})
	assert.Error(t, r.Flush(context.Background()))
	assert.Equal(t, 1, r.Pending())

	tele.err = nil
	require.NoError(t, r.Flush(context.Background()))
	assert.Len(t, tele.written, 1)
}

func TestFlush_CancelledContextKeepsQueue(t *testing.T) {
	r := newReporter(t, Dependencies{Store: memory.New()})
	r.MatchEnded(core.MatchResult{Score: 1})
	r.MatchEnded(core.MatchResult{Score: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Flush(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, r.Pending())
}

func TestOutboxLimit(t *testing.T) {
	r := newReporter(t, Dependencies{OutboxLimit: 2})
	for i := 0; i < 5; i++ {
		r.MatchEnded(core.MatchResult{Score: i})
	}
	assert.Equal(t, 2, r.Pending())
	assert.Equal(t, 3, r.Dropped())
	assert.Len(t, r.Results(), 5)
}
