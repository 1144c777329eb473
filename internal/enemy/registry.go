package enemy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/nova-webgames/arena/pkg/core"
)

// ErrDuplicateID is returned by Spawn when the id is already in use.
var ErrDuplicateID = errors.New("enemy id already registered")

// Registry owns the enemy set of one match. Iteration is always in id order
// so that updates and hit tests are reproducible.
type Registry struct {
	bus     Publisher
	enemies map[string]*Enemy
	ids     []string
	epoch   uint64
}

// NewRegistry creates an empty registry publishing to bus.
func NewRegistry(bus Publisher) *Registry {
	return &Registry{
		bus:     bus,
		enemies: make(map[string]*Enemy),
	}
}

// Spawn creates and registers an enemy, then publishes EnemySpawned.
func (r *Registry) Spawn(id string, pos core.Vector3, cfg Config) (*Enemy, error) {
	if id == "" {
		return nil, errors.New("enemy id must not be empty")
	}
	if _, ok := r.enemies[id]; ok {
		return nil, fmt.Errorf("spawn %q: %w", id, ErrDuplicateID)
	}

	e := New(id, pos, cfg, r.bus)
	r.enemies[id] = e
	i, _ := slices.BinarySearch(r.ids, id)
	r.ids = slices.Insert(r.ids, i, id)

	if r.bus != nil {
		r.bus.Publish(core.EnemySpawned{
			ID:        id,
			Position:  pos,
			Health:    e.Health(),
			MaxHealth: e.MaxHealth(),
			State:     e.State(),
		})
	}
	return e, nil
}

// Get looks up an enemy by id, dead or alive.
func (r *Registry) Get(id string) (*Enemy, bool) {
	e, ok := r.enemies[id]
	return e, ok
}

// All returns every registered enemy in id order.
func (r *Registry) All() []*Enemy {
	out := make([]*Enemy, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.enemies[id])
	}
	return out
}

// Live returns the enemies that are not dead, in id order.
func (r *Registry) Live() []*Enemy {
	out := make([]*Enemy, 0, len(r.ids))
	for _, id := range r.ids {
		if e := r.enemies[id]; !e.IsDead() {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of registered enemies including dead ones not yet removed.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Update advances every live enemy by dt in id order. It stops early if an
// event handler resets the registry mid-pass.
func (r *Registry) Update(dt float64, target Target) {
	epoch := r.epoch
	for _, e := range r.Live() {
		if r.epoch != epoch {
			return
		}
		e.Update(dt, target)
	}
}

// RemoveDead drops dead enemies and returns their ids in order.
func (r *Registry) RemoveDead() []string {
	var removed []string
	kept := r.ids[:0]
	for _, id := range r.ids {
		if r.enemies[id].IsDead() {
			removed = append(removed, id)
			delete(r.enemies, id)
			continue
		}
		kept = append(kept, id)
	}
	r.ids = kept
	return removed
}

// Reset removes every enemy without publishing anything.
func (r *Registry) Reset() {
	r.epoch++
	r.enemies = make(map[string]*Enemy)
	r.ids = nil
}

// Views returns a copy of every live enemy's state, in id order.
func (r *Registry) Views() []core.EnemyView {
	live := r.Live()
	out := make([]core.EnemyView, 0, len(live))
	for _, e := range live {
		out = append(out, e.View())
	}
	return out
}
