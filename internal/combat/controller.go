// Package combat owns the player's weapon state (ammo, fire rate, reload) and
// resolves shots against enemies and scenery.
package combat

import "github.com/nova-webgames/arena/pkg/core"

// Audio cue names.
const (
	CueShoot  = "shoot"
	CueReload = "reload"
	CueEmpty  = "empty"
)

const epsilon = 1e-9

// Publisher is the slice of the event bus the controller needs.
type Publisher interface {
	Publish(core.Event)
}

// AudioSink receives fire-and-forget feedback cues.
type AudioSink interface {
	Play(cue string)
}

// AudioFunc adapts a function to AudioSink.
type AudioFunc func(cue string)

func (f AudioFunc) Play(cue string) { f(cue) }

// Dependencies holds the collaborators of a Controller. Nil members fall back
// to inert defaults.
type Dependencies struct {
	Bus        Publisher
	Targets    TargetSource
	Position   func() core.Vector3
	Facing     func() core.Vector3
	Audio      AudioSink
	Classifier HitClassifier
	Scenery    []Prop
}

// ShotResult describes a HandleShoot call. Observers should rely on the
// published events; this is for callers that drive the controller directly.
type ShotResult struct {
	Fired   bool
	Hit     Hit
	Outcome HitOutcome
	Killed  bool
}

// Stats counts shots over a match.
type Stats struct {
	ShotsFired int
	ShotsHit   int
}

// Controller owns ammo and reload state. It is not safe for concurrent use;
// a match drives it from a single goroutine.
type Controller struct {
	weapon WeaponConfig
	deps   Dependencies

	ammo       int
	reloading  bool
	reloadLeft float64
	lastShotAt float64
	hasShot    bool
	stats      Stats
	tracers    []core.Tracer

	// epoch changes on every ResetCombat. Work started before a reset that
	// is still on the stack publishes nothing further.
	epoch uint64
}

// New creates a controller with a full magazine.
func New(weapon WeaponConfig, deps Dependencies) *Controller {
	weapon = weapon.Normalize()
	if deps.Classifier == nil {
		deps.Classifier = DefaultClassifier{}
	}
	if deps.Audio == nil {
		deps.Audio = AudioFunc(func(string) {})
	}
	return &Controller{
		weapon: weapon,
		deps:   deps,
		ammo:   weapon.MaxAmmo,
	}
}

// Weapon returns the normalized weapon config.
func (c *Controller) Weapon() WeaponConfig { return c.weapon }

// Ammo returns the rounds left in the magazine.
func (c *Controller) Ammo() int { return c.ammo }

// MaxAmmo returns the magazine size.
func (c *Controller) MaxAmmo() int { return c.weapon.MaxAmmo }

// Reloading reports whether a reload is in progress.
func (c *Controller) Reloading() bool { return c.reloading }

// ReloadRemaining returns the seconds left on the reload countdown.
func (c *Controller) ReloadRemaining() float64 { return c.reloadLeft }

// Stats returns the shot counters since the last reset.
func (c *Controller) Stats() Stats { return c.stats }

// Tracers returns a copy of the shots fired since the last TakeTracers.
func (c *Controller) Tracers() []core.Tracer {
	if len(c.tracers) == 0 {
		return nil
	}
	return append([]core.Tracer(nil), c.tracers...)
}

// TakeTracers returns the shots fired since the previous call and clears them.
func (c *Controller) TakeTracers() []core.Tracer {
	out := c.tracers
	c.tracers = nil
	return out
}

// HandleShoot fires one round at time now if the input asks for it and the
// weapon is ready. Rejected requests change nothing and publish nothing; an
// empty magazine only plays the "empty" cue.
//
// An accepted shot decrements ammo, resolves the hit, applies damage through
// the target (which publishes EnemyDied on a kill), then publishes
// WeaponFired and AmmoChanged and plays the "shoot" cue.
func (c *Controller) HandleShoot(in core.Input, now float64) ShotResult {
	if !in.Shoot || c.reloading {
		return ShotResult{}
	}
	if c.ammo <= 0 {
		c.deps.Audio.Play(CueEmpty)
		return ShotResult{}
	}
	// a shot exactly one interval after the previous one is accepted, so
	// summed tick deltas equal to the interval do not drop it
	if c.hasShot && now-c.lastShotAt < c.weapon.FireInterval-epsilon {
		return ShotResult{}
	}

	epoch := c.epoch
	c.ammo--
	c.lastShotAt = now
	c.hasShot = true
	c.stats.ShotsFired++

	origin, dir := c.aim()
	hit := HitTest(origin, dir, c.weapon.Range, c.targets(), c.deps.Scenery)
	hit.WeaponDamage = c.weapon.Damage

	outcome := c.deps.Classifier.Classify(hit)
	if outcome.Damage < 0 {
		outcome.Damage = 0
	}
	if outcome.Bonus < 0 {
		outcome.Bonus = 0
	}

	killed := false
	if hit.Target != nil && outcome.Damage > 0 {
		killed = hit.Target.ApplyDamage(outcome.Damage)
	}
	result := ShotResult{Fired: true, Hit: hit, Outcome: outcome, Killed: killed}
	if c.epoch != epoch {
		return result
	}
	if outcome.Counts {
		c.stats.ShotsHit++
	}

	end := hit.Point
	if hit.Kind == core.HitNone {
		end = origin.Add(dir.Scale(c.weapon.Range))
	}
	c.tracers = append(c.tracers, core.Tracer{Origin: origin, End: end, HitID: hit.ID})

	c.publish(core.WeaponFired{
		Weapon:    c.weapon.Name,
		Time:      now,
		Origin:    origin,
		Direction: dir,
		HitKind:   hit.Kind,
		HitID:     hit.ID,
		Distance:  hit.Distance,
		Damage:    outcome.Damage,
		Bonus:     outcome.Bonus,
		Killed:    killed,
	})
	if c.epoch != epoch {
		return result
	}
	c.publish(core.AmmoChanged{Ammo: c.ammo, MaxAmmo: c.weapon.MaxAmmo, Delta: -1})
	if c.epoch != epoch {
		return result
	}
	c.deps.Audio.Play(CueShoot)

	return result
}

// HandleReload starts a reload if the input asks for it. It is a no-op while
// already reloading or with a full magazine.
func (c *Controller) HandleReload(in core.Input) bool {
	if !in.Reload || c.reloading || c.ammo >= c.weapon.MaxAmmo {
		return false
	}
	c.reloading = true
	c.reloadLeft = c.weapon.ReloadDuration
	epoch := c.epoch
	c.publish(core.ReloadStarted{Ammo: c.ammo, Duration: c.weapon.ReloadDuration})
	if c.epoch == epoch {
		c.deps.Audio.Play(CueReload)
	}
	return true
}

// Advance moves the reload countdown forward by dt. When it reaches zero the
// magazine is refilled and ReloadCompleted then AmmoChanged are published.
func (c *Controller) Advance(dt float64) {
	if !c.reloading {
		return
	}
	if dt > 0 {
		c.reloadLeft -= dt
	}
	if c.reloadLeft > epsilon {
		return
	}

	added := c.weapon.MaxAmmo - c.ammo
	c.ammo = c.weapon.MaxAmmo
	c.reloading = false
	c.reloadLeft = 0
	epoch := c.epoch
	c.publish(core.ReloadCompleted{Ammo: c.ammo, MaxAmmo: c.weapon.MaxAmmo})
	if c.epoch != epoch {
		return
	}
	c.publish(core.AmmoChanged{Ammo: c.ammo, MaxAmmo: c.weapon.MaxAmmo, Delta: added})
}

// ResetCombat restores a full magazine and clears reload, fire timer and
// stats. A pending reload is discarded without completing. Nothing is
// published, and a shot or reload whose dispatch triggered the reset stops
// publishing.
func (c *Controller) ResetCombat() {
	c.epoch++
	c.ammo = c.weapon.MaxAmmo
	c.reloading = false
	c.reloadLeft = 0
	c.lastShotAt = 0
	c.hasShot = false
	c.stats = Stats{}
	c.tracers = nil
}

func (c *Controller) aim() (core.Vector3, core.Vector3) {
	var origin, facing core.Vector3
	if c.deps.Position != nil {
		origin = c.deps.Position()
	}
	if c.deps.Facing != nil {
		facing = c.deps.Facing()
	}
	return origin, facing.Norm()
}

func (c *Controller) targets() []Target {
	if c.deps.Targets == nil {
		return nil
	}
	return c.deps.Targets.Targets()
}

func (c *Controller) publish(e core.Event) {
	if c.deps.Bus != nil {
		c.deps.Bus.Publish(e)
	}
}
