// pkg/core/snapshot.go
package core

import (
	"errors"
	"time"
)

// ErrMatchNotFound is returned by match stores when a session id is unknown.
var ErrMatchNotFound = errors.New("match not found")

// PlayerView is the combat-relevant slice of the player at snapshot time.
type PlayerView struct {
	Position Vector3 `json:"position"`
	Facing   Vector3 `json:"facing"`
	Health   int     `json:"health"`
	Armor    int     `json:"armor"`
	MaxArmor int     `json:"maxArmor"`
}

// EnemyView is a copy of one enemy's observable state.
type EnemyView struct {
	ID        string     `json:"id"`
	Position  Vector3    `json:"position"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"maxHealth"`
	State     EnemyState `json:"state"`
}

// Tracer is a shot fired during the tick, for display.
type Tracer struct {
	Origin Vector3 `json:"origin"`
	End    Vector3 `json:"end"`
	HitID  string  `json:"hitId,omitempty"`
}

// Snapshot is the aggregated per-tick state handed to the rendering layer.
type Snapshot struct {
	Tick            uint64      `json:"tick"`
	Clock           float64     `json:"clock"`
	Phase           GamePhase   `json:"phase"`
	Player          PlayerView  `json:"player"`
	Enemies         []EnemyView `json:"enemies"`
	Projectiles     []Tracer    `json:"projectiles,omitempty"`
	Ammo            int         `json:"ammo"`
	MaxAmmo         int         `json:"maxAmmo"`
	Reloading       bool        `json:"reloading"`
	ReloadRemaining float64     `json:"reloadRemaining"`
	Score           int         `json:"score"`
	Kills           int         `json:"kills"`
	Deaths          int         `json:"deaths"`
}

// MatchResult is the end-of-session summary handed to the leaderboard
// and persistence collaborators.
type MatchResult struct {
	SessionID  string    `json:"sessionId"`
	PlayerID   string    `json:"playerId"`
	StartedAt  time.Time `json:"startedAt"`
	EndedAt    time.Time `json:"endedAt"`
	Duration   float64   `json:"duration"`
	Score      int       `json:"score"`
	Kills      int       `json:"kills"`
	Deaths     int       `json:"deaths"`
	ShotsFired int       `json:"shotsFired"`
	ShotsHit   int       `json:"shotsHit"`
}

// Accuracy returns the share of shots that hit something, 0 when nothing was fired.
func (m MatchResult) Accuracy() float64 {
	if m.ShotsFired == 0 {
		return 0
	}
	return float64(m.ShotsHit) / float64(m.ShotsFired)
}
