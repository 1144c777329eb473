package game

import (
	"fmt"
	"sort"

	"github.com/nova-webgames/arena/internal/enemy"
	"github.com/nova-webgames/arena/pkg/core"
)

// DefaultArchetype is used by waves that do not name one.
const DefaultArchetype = "grunt"

// Wave spawns Count enemies of an archetype once the match clock reaches At.
// Enemies are placed along +X from Origin, Spacing apart.
type Wave struct {
	At        float64      `json:"at" mapstructure:"at" yaml:"at"`
	Archetype string       `json:"archetype" mapstructure:"archetype" yaml:"archetype"`
	Count     int          `json:"count" mapstructure:"count" yaml:"count"`
	Origin    core.Vector3 `json:"origin" mapstructure:"origin" yaml:"origin"`
	Spacing   float64      `json:"spacing" mapstructure:"spacing" yaml:"spacing"`
}

// Spawner releases waves in clock order. Enemy ids are "<archetype>-<n>" with
// n counting per archetype from 1.
type Spawner struct {
	waves      []Wave
	archetypes map[string]enemy.Config
	fallback   enemy.Config

	next     int
	counters map[string]int
	epoch    uint64
}

// NewSpawner orders waves by release time. Waves naming an archetype that is
// not in archetypes use fallback.
func NewSpawner(waves []Wave, archetypes map[string]enemy.Config, fallback enemy.Config) *Spawner {
	sorted := append([]Wave(nil), waves...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Spawner{
		waves:      sorted,
		archetypes: archetypes,
		fallback:   fallback,
		counters:   make(map[string]int),
	}
}

// Pending returns the number of waves not yet released.
func (s *Spawner) Pending() int {
	return len(s.waves) - s.next
}

// Update releases every wave due at clock into r and returns the spawned ids.
// It stops if an EnemySpawned handler resets the spawner.
func (s *Spawner) Update(clock float64, r *enemy.Registry) ([]string, error) {
	var spawned []string
	epoch := s.epoch
	for s.next < len(s.waves) && s.waves[s.next].At <= clock {
		w := s.waves[s.next]
		s.next++

		archetype := w.Archetype
		if archetype == "" {
			archetype = DefaultArchetype
		}
		cfg, ok := s.archetypes[archetype]
		if !ok {
			cfg = s.fallback
		}

		for i := 0; i < w.Count; i++ {
			id := s.nextID(archetype, r)
			pos := w.Origin.Add(core.Vec3(float64(i)*w.Spacing, 0, 0))
			if _, err := r.Spawn(id, pos, cfg); err != nil {
				return spawned, fmt.Errorf("spawning wave at %.2f: %w", w.At, err)
			}
			spawned = append(spawned, id)
			if s.epoch != epoch {
				return spawned, nil
			}
		}
	}
	return spawned, nil
}

func (s *Spawner) nextID(archetype string, r *enemy.Registry) string {
	for {
		s.counters[archetype]++
		id := fmt.Sprintf("%s-%d", archetype, s.counters[archetype])
		if _, taken := r.Get(id); !taken {
			return id
		}
	}
}

// Reset rewinds to the first wave.
func (s *Spawner) Reset() {
	s.epoch++
	s.next = 0
	s.counters = make(map[string]int)
}
