package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nova-webgames/arena/internal/api"
	"github.com/nova-webgames/arena/internal/queue"
	"github.com/nova-webgames/arena/pkg/core"
)

// DefaultOutboxLimit bounds how many undelivered matches are kept.
const DefaultOutboxLimit = 64

// Store persists match results.
type Store interface {
	SaveMatch(ctx context.Context, result core.MatchResult) error
}

// Submitter sends a result to the leaderboard.
type Submitter interface {
	SubmitScore(ctx context.Context, result core.MatchResult, token string) error
}

// TokenSource mints the bearer token for a player.
type TokenSource interface {
	AccessToken(subject string) (string, error)
}

// Telemetry records the match summary.
type Telemetry interface {
	WriteMatch(result core.MatchResult) error
}

// Dependencies holds the collaborators of a Reporter. Only Context is
// required; a nil sink is skipped.
type Dependencies struct {
	Context     *Context
	Store       Store
	Submitter   Submitter
	Tokens      TokenSource
	Telemetry   Telemetry
	Logger      *slog.Logger
	OutboxLimit int
}

// delivery tracks which sinks still need a result.
type delivery struct {
	result    core.MatchResult
	saved     bool
	recorded  bool
	submitted bool
}

func (d *delivery) done() bool {
	return d.saved && d.recorded && d.submitted
}

// Reporter receives finished matches from the game and delivers them on Flush.
// MatchEnded does no I/O, so it is safe to call from the tick path.
type Reporter struct {
	deps   Dependencies
	log    *slog.Logger
	outbox *queue.Queue[*delivery]

	mu      sync.Mutex
	results []core.MatchResult
}

func NewReporter(deps Dependencies) (*Reporter, error) {
	if deps.Context == nil {
		return nil, errors.New("session: reporter needs a context")
	}
	limit := deps.OutboxLimit
	if limit <= 0 {
		limit = DefaultOutboxLimit
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{
		deps:   deps,
		log:    log,
		outbox: queue.New[*delivery](limit),
	}, nil
}

// MatchEnded stamps result with the session and player ids and queues it.
func (r *Reporter) MatchEnded(result core.MatchResult) {
	result.SessionID = r.deps.Context.SessionID()
	result.PlayerID = r.deps.Context.PlayerID()

	r.mu.Lock()
	r.results = append(r.results, result)
	r.mu.Unlock()

	if n := r.outbox.Push(&delivery{result: result}); n > 0 {
		r.log.Warn("Outbox full, dropped oldest results", "dropped", n)
	}
	r.log.Info("Match ended",
		"score", result.Score,
		"kills", result.Kills,
		"deaths", result.Deaths,
		"duration", result.Duration,
	)
}

// Results returns every match reported so far, oldest first.
func (r *Reporter) Results() []core.MatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.MatchResult(nil), r.results...)
}

// Pending returns the number of matches with undelivered parts.
func (r *Reporter) Pending() int {
	return r.outbox.Len()
}

// Dropped returns how many matches were evicted from a full outbox.
func (r *Reporter) Dropped() int {
	return r.outbox.Dropped()
}

// Flush delivers queued matches. Each sink is tried once per match; matches
// that failed with a retryable error stay queued for the next Flush.
func (r *Reporter) Flush(ctx context.Context) error {
	var (
		errs  []error
		retry []*delivery
	)
	for _, d := range r.outbox.Drain() {
		if err := ctx.Err(); err != nil {
			retry = append(retry, d)
			continue
		}
		if err := r.deliver(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", d.result.SessionID, err))
		}
		if !d.done() {
			retry = append(retry, d)
		}
	}
	if len(retry) > 0 {
		r.outbox.PushFront(retry...)
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *Reporter) deliver(ctx context.Context, d *delivery) error {
	var errs []error

	if !d.saved {
		if r.deps.Store == nil {
			d.saved = true
		} else if err := r.deps.Store.SaveMatch(ctx, d.result); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		} else {
			d.saved = true
		}
	}

	if !d.recorded {
		if r.deps.Telemetry == nil {
			d.recorded = true
		} else if err := r.deps.Telemetry.WriteMatch(d.result); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		} else {
			d.recorded = true
		}
	}

	if !d.submitted {
		if err := r.submit(ctx, d); err != nil {
			errs = append(errs, fmt.Errorf("leaderboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (r *Reporter) submit(ctx context.Context, d *delivery) error {
	if r.deps.Submitter == nil {
		d.submitted = true
		return nil
	}

	var token string
	if r.deps.Tokens != nil {
		t, err := r.deps.Tokens.AccessToken(d.result.PlayerID)
		if err != nil {
			// a token that cannot be minted now will not be minted later either
			d.submitted = true
			return err
		}
		token = t
	}

	err := r.deps.Submitter.SubmitScore(ctx, d.result, token)
	switch {
	case err == nil:
		d.submitted = true
		r.log.Info("Score submitted", "session", d.result.SessionID, "score", d.result.Score)
	case api.IsTemporary(err):
		r.log.Warn("Score submission failed, will retry", "session", d.result.SessionID, "error", err)
	default:
		d.submitted = true
		r.log.Error("Score submission rejected", "session", d.result.SessionID, "error", err)
	}
	return err
}
