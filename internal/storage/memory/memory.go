// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nova-webgames/arena/pkg/core"
)

// Backend keeps match results in memory. Everything is lost on exit.
type Backend struct {
	matches map[string]core.MatchResult // keyed by SessionID
	mu      sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		matches: make(map[string]core.MatchResult),
	}
}

func (b *Backend) Init() error  { return nil }
func (b *Backend) Close() error { return nil }

// SaveMatch stores result, replacing any earlier record for the session.
func (b *Backend) SaveMatch(_ context.Context, result core.MatchResult) error {
	if result.SessionID == "" {
		return fmt.Errorf("saving match: empty session id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches[result.SessionID] = result
	return nil
}

func (b *Backend) GetMatch(_ context.Context, sessionID string) (core.MatchResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.matches[sessionID]
	if !ok {
		return core.MatchResult{}, fmt.Errorf("session %q: %w", sessionID, core.ErrMatchNotFound)
	}
	return m, nil
}

// TopScores returns the best matches, highest score first.
func (b *Backend) TopScores(_ context.Context, limit int) ([]core.MatchResult, error) {
	b.mu.RLock()
	all := make([]core.MatchResult, 0, len(b.matches))
	for _, m := range b.matches {
		all = append(all, m)
	}
	b.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if !all[i].EndedAt.Equal(all[j].EndedAt) {
			return all[i].EndedAt.Before(all[j].EndedAt)
		}
		return all[i].SessionID < all[j].SessionID
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Len returns the number of stored matches.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.matches)
}
