// pkg/core/types.go
package core

import "math"

// Vector3 is an immutable point or direction in arena space.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec3 is shorthand for building a Vector3.
func Vec3(x, y, z float64) Vector3 { return Vector3{X: x, Y: y, Z: z} }

func (a Vector3) Add(b Vector3) Vector3   { return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vector3) Sub(b Vector3) Vector3   { return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vector3) Scale(s float64) Vector3 { return Vector3{a.X * s, a.Y * s, a.Z * s} }
func (a Vector3) Dot(b Vector3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vector3) Len() float64            { return math.Sqrt(a.Dot(a)) }
func (a Vector3) Dist(b Vector3) float64  { return a.Sub(b).Len() }
func (a Vector3) IsZero() bool            { return a.X == 0 && a.Y == 0 && a.Z == 0 }

// Lerp interpolates between a and b.
func (a Vector3) Lerp(b Vector3, t float64) Vector3 { return a.Add(b.Sub(a).Scale(t)) }

// Norm returns the unit vector in the direction of a, or the zero vector.
func (a Vector3) Norm() Vector3 {
	l := a.Len()
	if l == 0 {
		return Vector3{}
	}
	return Vector3{a.X / l, a.Y / l, a.Z / l}
}

// EnemyState is the behavior state of an enemy.
type EnemyState int

const (
	StateIdle EnemyState = iota
	StatePatrol
	StateChasing
	StateAttacking
	StateDead
)

func (s EnemyState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrol:
		return "patrol"
	case StateChasing:
		return "chasing"
	case StateAttacking:
		return "attacking"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// GamePhase is the lifecycle phase of a match.
type GamePhase int

const (
	PhaseReady GamePhase = iota
	PhasePlaying
	PhasePaused
	PhaseGameOver
)

func (p GamePhase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Input is the per-tick input snapshot supplied by the host.
type Input struct {
	Shoot  bool `json:"shoot,omitempty"`
	Reload bool `json:"reload,omitempty"`
}
