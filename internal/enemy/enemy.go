// Package enemy implements per-enemy behavior (idle, patrol, chase, attack,
// death) and the registry that owns the live enemy set.
package enemy

import "github.com/nova-webgames/arena/pkg/core"

// epsilon absorbs float drift when countdowns are advanced in many small steps.
const epsilon = 1e-9

// Publisher is the slice of the event bus an enemy needs.
type Publisher interface {
	Publish(core.Event)
}

// Target is what an enemy chases and attacks.
type Target interface {
	Position() core.Vector3
	Health() int
	// ReceiveHit applies damage from source and returns the resulting
	// health and armor.
	ReceiveHit(damage int, source string) (health, armor int)
}

// Enemy is one autonomous opponent. Its health and state are only changed by
// its own Update and ApplyDamage.
type Enemy struct {
	id     string
	cfg    Config
	bus    Publisher
	pos    core.Vector3
	health int
	state  core.EnemyState

	cooldown     float64
	clock        float64
	lastAttackAt float64
	attacked     bool
	waypoint     int
}

// New creates an enemy at pos. It starts in Patrol when the config has
// waypoints, otherwise Idle.
func New(id string, pos core.Vector3, cfg Config, bus Publisher) *Enemy {
	cfg = cfg.Normalize()
	e := &Enemy{
		id:     id,
		cfg:    cfg,
		bus:    bus,
		pos:    pos,
		health: cfg.MaxHealth,
	}
	e.state = e.restState()
	return e
}

// ID returns the stable enemy id.
func (e *Enemy) ID() string { return e.id }

// Position returns the current position.
func (e *Enemy) Position() core.Vector3 { return e.pos }

// Health returns the current health, never below zero.
func (e *Enemy) Health() int { return e.health }

// MaxHealth returns the health the enemy spawned with.
func (e *Enemy) MaxHealth() int { return e.cfg.MaxHealth }

// State returns the behavior state.
func (e *Enemy) State() core.EnemyState { return e.state }

// IsDead reports whether the enemy reached zero health.
func (e *Enemy) IsDead() bool { return e.state == core.StateDead }

// HitRadius returns the radius of the sphere shots are tested against.
func (e *Enemy) HitRadius() float64 { return e.cfg.HitRadius }

// ScoreValue returns the points awarded for killing the enemy.
func (e *Enemy) ScoreValue() int { return e.cfg.ScoreValue }

// Config returns the normalized archetype config.
func (e *Enemy) Config() Config { return e.cfg }

// AttackCooldown returns the seconds until the next attack may land.
func (e *Enemy) AttackCooldown() float64 { return e.cooldown }

// LastAttackAt returns the enemy-local time of the most recent attack.
func (e *Enemy) LastAttackAt() (float64, bool) { return e.lastAttackAt, e.attacked }

// View returns a copy of the observable state.
func (e *Enemy) View() core.EnemyView {
	return core.EnemyView{
		ID:        e.id,
		Position:  e.pos,
		Health:    e.health,
		MaxHealth: e.cfg.MaxHealth,
		State:     e.state,
	}
}

func (e *Enemy) restState() core.EnemyState {
	if len(e.cfg.Patrol) > 0 {
		return core.StatePatrol
	}
	return core.StateIdle
}

// Update advances the enemy by dt seconds against target. The result depends
// only on the enemy's state, the target position and dt.
func (e *Enemy) Update(dt float64, target Target) {
	if e.state == core.StateDead || target == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}

	e.clock += dt
	if e.cooldown > 0 {
		e.cooldown -= dt
		if e.cooldown < epsilon {
			e.cooldown = 0
		}
	}

	dist := e.pos.Dist(target.Position())

	switch e.state {
	case core.StateIdle, core.StatePatrol:
		if dist > e.cfg.DetectRadius {
			if e.state == core.StatePatrol {
				e.patrol(dt)
			}
			return
		}
		e.state = core.StateChasing
	}

	if dist > e.cfg.LoseRadius {
		e.state = e.restState()
		return
	}

	if dist <= e.cfg.AttackRadius {
		e.state = core.StateAttacking
	} else {
		e.state = core.StateChasing
	}

	switch e.state {
	case core.StateChasing:
		e.chase(dt, target.Position(), dist)
	case core.StateAttacking:
		if e.cooldown == 0 {
			e.attack(target)
		}
	}
}

// chase moves straight toward the target, stopping at the attack radius.
func (e *Enemy) chase(dt float64, to core.Vector3, dist float64) {
	room := dist - e.cfg.AttackRadius
	if room <= 0 {
		return
	}
	step := e.cfg.Speed * dt
	if step > room {
		step = room
	}
	e.pos = e.pos.Add(to.Sub(e.pos).Norm().Scale(step))
}

// patrol walks the waypoint loop.
func (e *Enemy) patrol(dt float64) {
	if len(e.cfg.Patrol) == 0 {
		return
	}
	step := e.cfg.Speed * dt
	for step > epsilon {
		wp := e.cfg.Patrol[e.waypoint%len(e.cfg.Patrol)]
		d := e.pos.Dist(wp)
		if d > step {
			e.pos = e.pos.Add(wp.Sub(e.pos).Norm().Scale(step))
			return
		}
		e.pos = wp
		step -= d
		e.waypoint = (e.waypoint + 1) % len(e.cfg.Patrol)
		if d == 0 && len(e.cfg.Patrol) == 1 {
			return
		}
	}
}

func (e *Enemy) attack(target Target) {
	if target.Health() <= 0 {
		return
	}
	health, armor := target.ReceiveHit(e.cfg.AttackDamage, e.id)
	e.cooldown = e.cfg.AttackCooldown
	e.lastAttackAt = e.clock
	e.attacked = true
	e.publish(core.PlayerHit{
		EnemyID: e.id,
		Damage:  e.cfg.AttackDamage,
		Health:  health,
		Armor:   armor,
	})
}

// ApplyDamage subtracts amount from health, clamped at zero. The call that
// takes health to zero moves the enemy to Dead and publishes EnemyDied; any
// later call is a no-op. Returns true only for the killing call.
func (e *Enemy) ApplyDamage(amount int) bool {
	if e.state == core.StateDead || amount <= 0 {
		return false
	}
	e.health -= amount
	if e.health > 0 {
		return false
	}
	e.health = 0
	e.state = core.StateDead
	e.publish(core.EnemyDied{
		ID:         e.id,
		Position:   e.pos,
		ScoreValue: e.cfg.ScoreValue,
	})
	return true
}

func (e *Enemy) publish(ev core.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
