// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/nova-webgames/arena/pkg/core"
)

// ErrNotFound is returned when no match is stored under a session id.
var ErrNotFound = core.ErrMatchNotFound

// Backend is the interface all match stores must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveMatch stores a finished match. Saving the same session id again
	// replaces the earlier record.
	SaveMatch(ctx context.Context, result core.MatchResult) error
	GetMatch(ctx context.Context, sessionID string) (core.MatchResult, error)

	// TopScores returns up to limit matches ordered by score, highest first.
	// Ties go to the match that ended earlier.
	TopScores(ctx context.Context, limit int) ([]core.MatchResult, error)
}
