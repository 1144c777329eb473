package game

import (
	"github.com/nova-webgames/arena/internal/eventbus"
	"github.com/nova-webgames/arena/pkg/core"
)

// Score accumulates points, kills and deaths for one match. It is fed by
// EnemyDied and WeaponFired events and publishes ScoreChanged on every gain.
type Score struct {
	bus       *eventbus.Bus
	killValue int

	score  int
	kills  int
	deaths int
}

func newScore(bus *eventbus.Bus, killValue int) *Score {
	return &Score{bus: bus, killValue: killValue}
}

// Value returns the running score.
func (s *Score) Value() int { return s.score }

// Kills returns the number of enemies killed.
func (s *Score) Kills() int { return s.kills }

// Deaths returns the number of player deaths.
func (s *Score) Deaths() int { return s.deaths }

// subscribe wires the score into the bus and returns the subscriptions.
func (s *Score) subscribe() []*eventbus.Subscription {
	return []*eventbus.Subscription{
		eventbus.On(s.bus, s.onEnemyDied),
		eventbus.On(s.bus, s.onWeaponFired),
	}
}

// Enemies spawned by the match carry the kill value unless their archetype
// sets its own; a zero value falls back to the kill value.
func (s *Score) onEnemyDied(e core.EnemyDied) error {
	points := e.ScoreValue
	if points <= 0 {
		points = s.killValue
	}
	s.add(points, 1)
	return nil
}

func (s *Score) onWeaponFired(e core.WeaponFired) error {
	if e.Bonus > 0 {
		s.add(e.Bonus, 0)
	}
	return nil
}

func (s *Score) add(delta, kills int) {
	if delta < 0 {
		delta = 0
	}
	s.score += delta
	s.kills += kills
	s.bus.Publish(core.ScoreChanged{Score: s.score, Delta: delta, Kills: s.kills})
}

func (s *Score) recordDeath() {
	s.deaths++
}

func (s *Score) reset() {
	s.score = 0
	s.kills = 0
	s.deaths = 0
}
