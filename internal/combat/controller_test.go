package combat

import (
	"math/rand"
	"testing"

	"github.com/nova-webgames/arena/internal/enemy"
	"github.com/nova-webgames/arena/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	events []core.Event
}

func (l *eventLog) Publish(e core.Event) { l.events = append(l.events, e) }

// publishFunc adapts a function to Publisher.
type publishFunc func(core.Event)

func (fn publishFunc) Publish(e core.Event) { fn(e) }

func (l *eventLog) kinds() []core.EventKind {
	out := make([]core.EventKind, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Kind())
	}
	return out
}

func (l *eventLog) ofKind(kind core.EventKind) []core.Event {
	var out []core.Event
	for _, e := range l.events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

type cueLog struct {
	cues []string
}

func (a *cueLog) Play(cue string) { a.cues = append(a.cues, cue) }

type fixture struct {
	ctrl    *Controller
	log     *eventLog
	audio   *cueLog
	targets []Target
}

func newFixture(weapon WeaponConfig, opts ...func(*Dependencies)) *fixture {
	f := &fixture{log: &eventLog{}, audio: &cueLog{}}
	deps := Dependencies{
		Bus:      f.log,
		Audio:    f.audio,
		Targets:  TargetsFunc(func() []Target { return f.targets }),
		Position: func() core.Vector3 { return core.Vector3{} },
		Facing:   func() core.Vector3 { return core.Vec3(1, 0, 0) },
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.ctrl = New(weapon, deps)
	return f
}

func (f *fixture) spawn(id string, x float64) *enemy.Enemy {
	e := enemy.New(id, core.Vec3(x, 0, 0), enemy.DefaultConfig(), f.log)
	f.targets = append(f.targets, e)
	return e
}

var (
	shoot  = core.Input{Shoot: true}
	reload = core.Input{Reload: true}
)

func TestHandleShoot_DecrementsAmmoWithOneCue(t *testing.T) {
	f := newFixture(DefaultWeapon())

	res := f.ctrl.HandleShoot(shoot, 0)

	assert.True(t, res.Fired)
	assert.Equal(t, 29, f.ctrl.Ammo())
	assert.Equal(t, []string{CueShoot}, f.audio.cues)
	assert.Equal(t, []core.EventKind{core.KindWeaponFired, core.KindAmmoChanged}, f.log.kinds())

	fired := f.log.events[0].(core.WeaponFired)
	assert.Equal(t, core.HitNone, fired.HitKind)
	assert.Equal(t, "rifle", fired.Weapon)
	assert.Equal(t, core.AmmoChanged{Ammo: 29, MaxAmmo: 30, Delta: -1}, f.log.events[1])
}

func TestHandleShoot_IgnoredWithoutShootInput(t *testing.T) {
	f := newFixture(DefaultWeapon())

	res := f.ctrl.HandleShoot(core.Input{}, 0)

	assert.False(t, res.Fired)
	assert.Equal(t, 30, f.ctrl.Ammo())
	assert.Empty(t, f.log.events)
	assert.Empty(t, f.audio.cues)
}

func TestHandleShoot_EmptyMagazine(t *testing.T) {
	w := DefaultWeapon()
	w.MaxAmmo = 1
	f := newFixture(w)

	require.True(t, f.ctrl.HandleShoot(shoot, 0).Fired)
	require.Equal(t, 0, f.ctrl.Ammo())
	f.log.events = nil
	f.audio.cues = nil

	res := f.ctrl.HandleShoot(shoot, 1)

	assert.False(t, res.Fired)
	assert.Equal(t, 0, f.ctrl.Ammo())
	assert.Empty(t, f.log.ofKind(core.KindWeaponFired))
	assert.Empty(t, f.log.ofKind(core.KindAmmoChanged))
	assert.Equal(t, []string{CueEmpty}, f.audio.cues)
	assert.False(t, f.ctrl.Reloading(), "no automatic reload")
}

func TestHandleShoot_FireInterval(t *testing.T) {
	f := newFixture(DefaultWeapon())

	assert.True(t, f.ctrl.HandleShoot(shoot, 1.0).Fired)
	assert.False(t, f.ctrl.HandleShoot(shoot, 1.05).Fired)
	assert.True(t, f.ctrl.HandleShoot(shoot, 1.1).Fired, "exactly one interval later")
	assert.Equal(t, 28, f.ctrl.Ammo())
	assert.Equal(t, Stats{ShotsFired: 2}, f.ctrl.Stats())

	// from 2.0, three ticks of 1/30s sum to slightly less than 0.1
	require.True(t, f.ctrl.HandleShoot(shoot, 2).Fired)
	now := 2.0
	for i := 0; i < 3; i++ {
		now += 1.0 / 30
	}
	assert.True(t, f.ctrl.HandleShoot(shoot, now).Fired, "summed tick deltas")
}

func TestHandleShoot_ResetDuringDispatch(t *testing.T) {
	var f *fixture
	f = newFixture(DefaultWeapon(), func(d *Dependencies) {
		d.Bus = publishFunc(func(e core.Event) {
			f.log.Publish(e)
			if e.Kind() == core.KindEnemyDied {
				f.ctrl.ResetCombat()
			}
		})
	})
	target := enemy.New("grunt-1", core.Vec3(10, 0, 0), enemy.DefaultConfig(), f.ctrl.deps.Bus)
	f.targets = append(f.targets, target)

	require.True(t, f.ctrl.HandleShoot(shoot, 0).Fired)
	f.log.events = nil
	f.audio.cues = nil

	res := f.ctrl.HandleShoot(shoot, 1)
	assert.True(t, res.Killed)
	assert.Equal(t, []core.EventKind{core.KindEnemyDied}, f.log.kinds(), "nothing after the reset")
	assert.Empty(t, f.audio.cues)
	assert.Equal(t, 30, f.ctrl.Ammo())
	assert.Equal(t, Stats{}, f.ctrl.Stats())
	assert.Empty(t, f.ctrl.TakeTracers())

	f.log.events = nil
	require.True(t, f.ctrl.HandleShoot(shoot, 0).Fired)
	assert.Equal(t, core.AmmoChanged{Ammo: 29, MaxAmmo: 30, Delta: -1}, f.log.events[1])
}

func TestAdvance_ResetDuringDispatch(t *testing.T) {
	var f *fixture
	f = newFixture(DefaultWeapon(), func(d *Dependencies) {
		d.Bus = publishFunc(func(e core.Event) {
			f.log.Publish(e)
			if e.Kind() == core.KindReloadCompleted {
				f.ctrl.ResetCombat()
			}
		})
	})
	f.ctrl.HandleShoot(shoot, 0)
	require.True(t, f.ctrl.HandleReload(reload))
	f.log.events = nil

	f.ctrl.Advance(2)

	assert.Equal(t, []core.EventKind{core.KindReloadCompleted}, f.log.kinds())
	assert.Equal(t, 30, f.ctrl.Ammo())
	assert.False(t, f.ctrl.Reloading())
}

func TestTracers_DoesNotDrain(t *testing.T) {
	f := newFixture(DefaultWeapon())
	f.ctrl.HandleShoot(shoot, 0)

	assert.Len(t, f.ctrl.Tracers(), 1)
	assert.Len(t, f.ctrl.Tracers(), 1)
	assert.Len(t, f.ctrl.TakeTracers(), 1)
	assert.Empty(t, f.ctrl.Tracers())
}

func TestHandleReload(t *testing.T) {
	f := newFixture(DefaultWeapon())

	assert.False(t, f.ctrl.HandleReload(reload), "full magazine")
	assert.Empty(t, f.log.events)

	f.ctrl.HandleShoot(shoot, 0)
	f.log.events = nil
	f.audio.cues = nil

	assert.False(t, f.ctrl.HandleReload(core.Input{}), "no reload input")
	assert.True(t, f.ctrl.HandleReload(reload))
	assert.False(t, f.ctrl.HandleReload(reload), "already reloading")

	assert.True(t, f.ctrl.Reloading())
	assert.Equal(t, 1.5, f.ctrl.ReloadRemaining())
	assert.Equal(t, []core.Event{core.ReloadStarted{Ammo: 29, Duration: 1.5}}, f.log.events)
	assert.Equal(t, []string{CueReload}, f.audio.cues)

	assert.False(t, f.ctrl.HandleShoot(shoot, 5).Fired, "shooting while reloading")
	assert.Equal(t, 29, f.ctrl.Ammo())
}

func TestAdvance_CompletesReloadAfterExactDuration(t *testing.T) {
	tests := []struct {
		name  string
		steps []float64
	}{
		{name: "single step", steps: []float64{1.5}},
		{name: "many small steps", steps: []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}},
		{name: "uneven steps", steps: []float64{0.7, 0.3, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(DefaultWeapon())
			for i := 0; i < 3; i++ {
				f.ctrl.HandleShoot(shoot, float64(i))
			}
			require.True(t, f.ctrl.HandleReload(reload))
			f.log.events = nil

			for i, dt := range tt.steps {
				f.ctrl.Advance(dt)
				if i < len(tt.steps)-1 {
					assert.True(t, f.ctrl.Reloading(), "step %d", i)
				}
			}
			f.ctrl.Advance(1)

			assert.False(t, f.ctrl.Reloading())
			assert.Equal(t, 30, f.ctrl.Ammo())
			assert.Zero(t, f.ctrl.ReloadRemaining())
			assert.Equal(t, []core.Event{
				core.ReloadCompleted{Ammo: 30, MaxAmmo: 30},
				core.AmmoChanged{Ammo: 30, MaxAmmo: 30, Delta: 3},
			}, f.log.events)
		})
	}
}

func TestResetCombat(t *testing.T) {
	f := newFixture(DefaultWeapon())
	f.ctrl.HandleShoot(shoot, 0)
	f.ctrl.HandleShoot(shoot, 1)
	f.ctrl.HandleReload(reload)
	f.ctrl.Advance(0.5)
	f.log.events = nil

	f.ctrl.ResetCombat()
	f.ctrl.Advance(5)

	assert.Equal(t, 30, f.ctrl.Ammo())
	assert.False(t, f.ctrl.Reloading())
	assert.Zero(t, f.ctrl.ReloadRemaining())
	assert.Equal(t, Stats{}, f.ctrl.Stats())
	assert.Empty(t, f.log.events, "discarded reload must not complete")

	assert.True(t, f.ctrl.HandleShoot(shoot, 0).Fired, "fire timer cleared")
}

func TestHandleShoot_TwoShotsKillFiftyHealthEnemy(t *testing.T) {
	f := newFixture(DefaultWeapon())
	target := f.spawn("grunt-1", 10)

	first := f.ctrl.HandleShoot(shoot, 0)
	require.True(t, first.Fired)
	assert.Equal(t, core.HitEnemy, first.Hit.Kind)
	assert.InDelta(t, 9.25, first.Hit.Distance, 1e-9)
	assert.False(t, first.Killed)
	assert.Equal(t, 25, target.Health())

	f.log.events = nil
	second := f.ctrl.HandleShoot(shoot, 1)
	assert.True(t, second.Killed)
	assert.Equal(t, core.StateDead, target.State())
	assert.Equal(t, []core.EventKind{core.KindEnemyDied, core.KindWeaponFired, core.KindAmmoChanged}, f.log.kinds())
	assert.Equal(t, core.EnemyDied{ID: "grunt-1", Position: core.Vec3(10, 0, 0), ScoreValue: 50}, f.log.events[0])
	assert.True(t, f.log.events[1].(core.WeaponFired).Killed)

	third := f.ctrl.HandleShoot(shoot, 2)
	assert.True(t, third.Fired)
	assert.False(t, third.Killed)
	assert.Equal(t, 0, target.Health())
	assert.Len(t, f.log.ofKind(core.KindEnemyDied), 1, "dead enemies never die twice")
	assert.Equal(t, 3, f.ctrl.Stats().ShotsFired)
}

func TestHandleShoot_AmmoInvariant(t *testing.T) {
	w := DefaultWeapon()
	w.MaxAmmo = 5
	w.ReloadDuration = 0.3
	f := newFixture(w)
	rng := rand.New(rand.NewSource(7))

	now := 0.0
	for i := 0; i < 2000; i++ {
		dt := rng.Float64() * 0.2
		now += dt
		in := core.Input{Shoot: rng.Intn(2) == 0, Reload: rng.Intn(5) == 0}
		f.ctrl.HandleReload(in)
		f.ctrl.HandleShoot(in, now)
		f.ctrl.Advance(dt)

		require.GreaterOrEqual(t, f.ctrl.Ammo(), 0)
		require.LessOrEqual(t, f.ctrl.Ammo(), w.MaxAmmo)
	}
}
