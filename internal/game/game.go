// Package game ties the player, enemies, combat and score together into a
// tick-driven match.
package game

import (
	"errors"
	"time"

	"github.com/nova-webgames/arena/internal/combat"
	"github.com/nova-webgames/arena/internal/enemy"
	"github.com/nova-webgames/arena/internal/eventbus"
	"github.com/nova-webgames/arena/pkg/core"
)

// Config is the tuning for one match.
type Config struct {
	KillValue       int     `json:"killValue" mapstructure:"killValue" yaml:"kill_value"`
	PlayerMaxHealth int     `json:"playerMaxHealth" mapstructure:"playerMaxHealth" yaml:"player_max_health"`
	PlayerMaxArmor  int     `json:"playerMaxArmor" mapstructure:"playerMaxArmor" yaml:"player_max_armor"`
	SceneryBonus    int     `json:"sceneryBonus" mapstructure:"sceneryBonus" yaml:"scenery_bonus"`
	SessionTimeout  float64 `json:"sessionTimeout" mapstructure:"sessionTimeout" yaml:"session_timeout"`

	Weapon     combat.WeaponConfig     `json:"weapon" mapstructure:"weapon" yaml:"weapon"`
	Enemy      enemy.Config            `json:"enemy" mapstructure:"enemy" yaml:"enemy"`
	Archetypes map[string]enemy.Config `json:"archetypes,omitempty" mapstructure:"archetypes" yaml:"archetypes"`
	Waves      []Wave                  `json:"waves,omitempty" mapstructure:"waves" yaml:"waves"`
	Scenery    []combat.Prop           `json:"scenery,omitempty" mapstructure:"scenery" yaml:"scenery"`
}

// DefaultConfig returns a match with stock weapon and enemies and no waves.
// The stock enemy has no score value of its own and is worth KillValue.
func DefaultConfig() Config {
	e := enemy.DefaultConfig()
	e.ScoreValue = 0
	return Config{
		KillValue:       50,
		PlayerMaxHealth: 100,
		PlayerMaxArmor:  50,
		SessionTimeout:  300,
		Weapon:          combat.DefaultWeapon(),
		Enemy:           e,
	}
}

// withKillValue gives enemy configs without a score value of their own the
// match kill value.
func withKillValue(cfg Config) Config {
	inherit := func(e enemy.Config) enemy.Config {
		if e.ScoreValue <= 0 {
			e.ScoreValue = cfg.KillValue
		}
		return e
	}
	cfg.Enemy = inherit(cfg.Enemy)
	if len(cfg.Archetypes) > 0 {
		archetypes := make(map[string]enemy.Config, len(cfg.Archetypes))
		for name, a := range cfg.Archetypes {
			archetypes[name] = inherit(a)
		}
		cfg.Archetypes = archetypes
	}
	return cfg
}

// StateConsumer receives the aggregated snapshot after every tick.
type StateConsumer interface {
	Consume(core.Snapshot)
}

// SessionSink is told once when a match ends.
type SessionSink interface {
	MatchEnded(core.MatchResult)
}

// Dependencies holds the collaborators of a Game. Only Bus is required.
type Dependencies struct {
	Bus        *eventbus.Bus
	Logger     eventbus.Logger
	Audio      combat.AudioSink
	State      StateConsumer
	Session    SessionSink
	Classifier combat.HitClassifier
	// Now stamps the wall-clock start and end of a match. Defaults to time.Now.
	Now func() time.Time
}

// Game is one match. It is driven from a single goroutine through Tick.
type Game struct {
	cfg  Config
	deps Dependencies

	player   *Player
	registry *enemy.Registry
	combat   *combat.Controller
	score    *Score
	spawner  *Spawner
	subs     []*eventbus.Subscription

	phase     core.GamePhase
	tick      uint64
	clock     float64
	startedAt time.Time
	reported  bool

	// epoch changes on every Reset so a tick that triggered one stops there.
	epoch uint64
}

// New builds a match in the Ready phase.
func New(cfg Config, deps Dependencies) (*Game, error) {
	if deps.Bus == nil {
		return nil, errors.New("game: event bus is required")
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Classifier == nil {
		deps.Classifier = combat.DefaultClassifier{SceneryBonus: cfg.SceneryBonus}
	}
	cfg = withKillValue(cfg)

	g := &Game{
		cfg:      cfg,
		deps:     deps,
		player:   NewPlayer(cfg.PlayerMaxHealth, cfg.PlayerMaxArmor),
		registry: enemy.NewRegistry(deps.Bus),
		score:    newScore(deps.Bus, cfg.KillValue),
		spawner:  NewSpawner(cfg.Waves, cfg.Archetypes, cfg.Enemy),
	}
	g.combat = combat.New(cfg.Weapon, combat.Dependencies{
		Bus:        deps.Bus,
		Targets:    combat.TargetsFunc(g.liveTargets),
		Position:   g.player.Position,
		Facing:     g.player.Facing,
		Audio:      deps.Audio,
		Classifier: deps.Classifier,
		Scenery:    cfg.Scenery,
	})
	g.subs = g.score.subscribe()

	return g, nil
}

func (g *Game) liveTargets() []combat.Target {
	live := g.registry.Live()
	out := make([]combat.Target, 0, len(live))
	for _, e := range live {
		out = append(out, e)
	}
	return out
}

// Phase returns the current match phase.
func (g *Game) Phase() core.GamePhase { return g.phase }

// Clock returns the seconds of play so far; paused time is not counted.
func (g *Game) Clock() float64 { return g.clock }

// Player returns the player state.
func (g *Game) Player() *Player { return g.player }

// Registry returns the live enemy set.
func (g *Game) Registry() *enemy.Registry { return g.registry }

// Controller returns the weapon controller.
func (g *Game) Controller() *combat.Controller { return g.combat }

// Score returns the score keeper.
func (g *Game) Score() *Score { return g.score }

// Bus returns the event bus the match publishes on.
func (g *Game) Bus() *eventbus.Bus { return g.deps.Bus }

// Start moves Ready to Playing.
func (g *Game) Start() bool {
	if g.phase != core.PhaseReady {
		return false
	}
	g.startedAt = g.deps.Now()
	g.setPhase(core.PhasePlaying)
	return true
}

// Pause moves Playing to Paused.
func (g *Game) Pause() bool {
	if g.phase != core.PhasePlaying {
		return false
	}
	g.setPhase(core.PhasePaused)
	return true
}

// Resume moves Paused back to Playing.
func (g *Game) Resume() bool {
	if g.phase != core.PhasePaused {
		return false
	}
	g.setPhase(core.PhasePlaying)
	return true
}

func (g *Game) setPhase(to core.GamePhase) {
	from := g.phase
	g.phase = to
	g.deps.Logger.Debug("game phase changed", "from", from, "to", to, "tick", g.tick)
	g.deps.Bus.Publish(core.GameStateChanged{
		From:   from,
		To:     to,
		Score:  g.score.Value(),
		Kills:  g.score.Kills(),
		Deaths: g.score.Deaths(),
	})
}

// Tick advances the match by dt seconds with the given input and returns the
// resulting snapshot. Outside Playing only the snapshot is produced.
//
// Within a tick: reload request, shoot request at the advanced clock, reload
// countdown, wave spawns, enemy updates, removal of enemies that died, then
// the end-of-match checks. A handler that resets the match ends the tick at
// the step that published to it.
func (g *Game) Tick(dt float64, in core.Input) core.Snapshot {
	if g.phase != core.PhasePlaying {
		return g.publishSnapshot()
	}
	if dt < 0 {
		dt = 0
	}

	g.tick++
	g.clock += dt

	epoch := g.epoch
	steps := []func(){
		func() { g.combat.HandleReload(in) },
		func() { g.combat.HandleShoot(in, g.clock) },
		func() { g.combat.Advance(dt) },
		g.spawnDue,
		func() { g.registry.Update(dt, g.player) },
	}
	for _, step := range steps {
		step()
		if g.epoch != epoch {
			return g.publishSnapshot()
		}
	}
	g.registry.RemoveDead()

	switch {
	case !g.player.Alive():
		g.score.recordDeath()
		g.end()
	case g.cfg.SessionTimeout > 0 && g.clock >= g.cfg.SessionTimeout:
		g.deps.Logger.Info("session timed out", "clock", g.clock)
		g.end()
	}

	return g.publishSnapshot()
}

// Finish ends a Playing or Paused match early, e.g. when the player quits.
func (g *Game) Finish() bool {
	if g.phase != core.PhasePlaying && g.phase != core.PhasePaused {
		return false
	}
	g.end()
	return true
}

func (g *Game) spawnDue() {
	if _, err := g.spawner.Update(g.clock, g.registry); err != nil {
		g.deps.Logger.Error("failed to spawn wave", "error", err)
	}
}

// end moves to GameOver and reports the match once. The result is taken
// before GameStateChanged goes out, so a handler that resets the match
// cannot change what is reported or suppress the next match's report.
func (g *Game) end() {
	res := g.Result()
	report := !g.reported && g.deps.Session != nil
	g.reported = true

	g.setPhase(core.PhaseGameOver)
	if report {
		g.deps.Session.MatchEnded(res)
	}
}

// Result summarizes the match so far. Session and player ids are left for
// the session layer to fill.
func (g *Game) Result() core.MatchResult {
	stats := g.combat.Stats()
	return core.MatchResult{
		StartedAt:  g.startedAt,
		EndedAt:    g.deps.Now(),
		Duration:   g.clock,
		Score:      g.score.Value(),
		Kills:      g.score.Kills(),
		Deaths:     g.score.Deaths(),
		ShotsFired: stats.ShotsFired,
		ShotsHit:   stats.ShotsHit,
	}
}

// Snapshot returns the current aggregate state without handing it to the
// state consumer. Tracers stay pending until the next tick delivers them.
func (g *Game) Snapshot() core.Snapshot {
	return core.Snapshot{
		Tick:            g.tick,
		Clock:           g.clock,
		Phase:           g.phase,
		Player:          g.player.View(),
		Enemies:         g.registry.Views(),
		Projectiles:     g.combat.Tracers(),
		Ammo:            g.combat.Ammo(),
		MaxAmmo:         g.combat.MaxAmmo(),
		Reloading:       g.combat.Reloading(),
		ReloadRemaining: g.combat.ReloadRemaining(),
		Score:           g.score.Value(),
		Kills:           g.score.Kills(),
		Deaths:          g.score.Deaths(),
	}
}

func (g *Game) publishSnapshot() core.Snapshot {
	snap := g.Snapshot()
	g.combat.TakeTracers()
	if g.deps.State != nil {
		g.deps.State.Consume(snap)
	}
	return snap
}

// Reset returns the match to Ready with fresh combat, enemies, score and
// player. Nothing is published, so no event can refer to the old match.
func (g *Game) Reset() {
	g.epoch++
	g.combat.ResetCombat()
	g.registry.Reset()
	g.score.reset()
	g.player.Reset()
	g.spawner.Reset()

	g.phase = core.PhaseReady
	g.tick = 0
	g.clock = 0
	g.startedAt = time.Time{}
	g.reported = false
}

// Close detaches the match from the bus.
func (g *Game) Close() {
	for _, s := range g.subs {
		s.Unsubscribe()
	}
	g.subs = nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
