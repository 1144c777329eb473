// Package session tracks who is playing which match and delivers finished
// matches to storage, telemetry and the leaderboard.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Context holds the identity of the current session
type Context struct {
	mu        sync.RWMutex
	sessionID string
	playerID  string
	startedAt time.Time
	matches   int
	newID     func() string
}

// NewContext creates a Context for playerID and begins its first session.
func NewContext(playerID string, now time.Time) *Context {
	c := &Context{
		playerID: playerID,
		newID:    func() string { return uuid.NewString() },
	}
	c.Begin(now)
	return c
}

// Begin starts a new session with a fresh id.
func (c *Context) Begin(now time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = c.newID()
	c.startedAt = now
	c.matches++
	return c.sessionID
}

// SessionID returns the current session id
func (c *Context) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// PlayerID returns the player the sessions belong to
func (c *Context) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// StartedAt returns when the current session began
func (c *Context) StartedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startedAt
}

// Matches returns how many sessions have been started.
func (c *Context) Matches() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matches
}

// LogAttrs returns the session attributes stamped on every log record. It
// matches logging.ContextProvider.
func (c *Context) LogAttrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	attrs := []slog.Attr{slog.String("session", c.sessionID)}
	if c.playerID != "" {
		attrs = append(attrs, slog.String("player", c.playerID))
	}
	return attrs
}
