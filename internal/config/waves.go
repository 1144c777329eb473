package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nova-webgames/arena/internal/combat"
	"github.com/nova-webgames/arena/internal/enemy"
	"github.com/nova-webgames/arena/internal/game"

	"gopkg.in/yaml.v3"
)

// WaveFile is the YAML layout of a wave script:
//
//	archetypes:
//	  brute: {max_health: 120, speed: 2}
//	waves:
//	  - {at: 0, archetype: brute, count: 2, origin: {x: 0, y: 0, z: -15}, spacing: 3}
//	scenery:
//	  - {id: crate-1, position: {x: 2, y: 0, z: -8}, radius: 1}
//
// Archetype entries only list the fields they change; the rest come from the
// match's base enemy config.
type WaveFile struct {
	Archetypes map[string]yaml.Node `yaml:"archetypes"`
	Waves      []game.Wave          `yaml:"waves"`
	Scenery    []combat.Prop        `yaml:"scenery"`
}

// LoadWaves reads and validates a wave script from path.
func LoadWaves(path string) (*WaveFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading waves file: %w", err)
	}
	wf, err := ParseWaves(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// ParseWaves decodes and validates a wave script.
func ParseWaves(data []byte) (*WaveFile, error) {
	var wf WaveFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&wf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding waves: %w", err)
	}
	if err := wf.validate(); err != nil {
		return nil, err
	}
	return &wf, nil
}

func (wf *WaveFile) validate() error {
	var errs []error
	for i, w := range wf.Waves {
		if w.At < 0 {
			errs = append(errs, fmt.Errorf("wave %d: negative start time %.2f", i, w.At))
		}
		if w.Count <= 0 {
			errs = append(errs, fmt.Errorf("wave %d: count must be positive", i))
		}
		if w.Archetype != "" && w.Archetype != game.DefaultArchetype {
			if _, ok := wf.Archetypes[w.Archetype]; !ok {
				errs = append(errs, fmt.Errorf("wave %d: unknown archetype %q", i, w.Archetype))
			}
		}
	}

	seen := make(map[string]bool, len(wf.Scenery))
	for i, p := range wf.Scenery {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Errorf("scenery %d: missing id", i))
		case seen[p.ID]:
			errs = append(errs, fmt.Errorf("scenery %d: duplicate id %q", i, p.ID))
		}
		seen[p.ID] = true
		if p.Radius <= 0 {
			errs = append(errs, fmt.Errorf("scenery %d: radius must be positive", i))
		}
	}
	return errors.Join(errs...)
}

// Apply merges the script into cfg. Archetypes are decoded over cfg.Enemy.
func (wf *WaveFile) Apply(cfg *game.Config) error {
	if len(wf.Archetypes) > 0 && cfg.Archetypes == nil {
		cfg.Archetypes = make(map[string]enemy.Config, len(wf.Archetypes))
	}
	for name, node := range wf.Archetypes {
		arch := cfg.Enemy
		if err := node.Decode(&arch); err != nil {
			return fmt.Errorf("archetype %q: %w", name, err)
		}
		cfg.Archetypes[name] = arch
	}
	cfg.Waves = append(cfg.Waves, wf.Waves...)
	cfg.Scenery = append(cfg.Scenery, wf.Scenery...)
	return nil
}
