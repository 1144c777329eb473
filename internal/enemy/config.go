package enemy

import "github.com/nova-webgames/arena/pkg/core"

// Config holds the tuning for one enemy archetype.
type Config struct {
	MaxHealth      int            `json:"maxHealth" mapstructure:"maxHealth" yaml:"max_health"`
	AttackDamage   int            `json:"attackDamage" mapstructure:"attackDamage" yaml:"attack_damage"`
	ScoreValue     int            `json:"scoreValue" mapstructure:"scoreValue" yaml:"score_value"`
	DetectRadius   float64        `json:"detectRadius" mapstructure:"detectRadius" yaml:"detect_radius"`
	LoseRadius     float64        `json:"loseRadius" mapstructure:"loseRadius" yaml:"lose_radius"`
	AttackRadius   float64        `json:"attackRadius" mapstructure:"attackRadius" yaml:"attack_radius"`
	HitRadius      float64        `json:"hitRadius" mapstructure:"hitRadius" yaml:"hit_radius"`
	Speed          float64        `json:"speed" mapstructure:"speed" yaml:"speed"`
	AttackCooldown float64        `json:"attackCooldown" mapstructure:"attackCooldown" yaml:"attack_cooldown"`
	Patrol         []core.Vector3 `json:"patrol,omitempty" mapstructure:"patrol" yaml:"patrol"`
}

// DefaultConfig returns the stock grunt archetype.
func DefaultConfig() Config {
	return Config{
		MaxHealth:      50,
		AttackDamage:   10,
		ScoreValue:     50,
		DetectRadius:   20,
		LoseRadius:     25,
		AttackRadius:   2,
		HitRadius:      0.75,
		Speed:          3,
		AttackCooldown: 1,
	}
}

// Normalize clamps the config into a usable shape: non-negative values,
// LoseRadius >= DetectRadius and AttackRadius <= DetectRadius.
func (c Config) Normalize() Config {
	if c.MaxHealth <= 0 {
		c.MaxHealth = 1
	}
	if c.AttackDamage < 0 {
		c.AttackDamage = 0
	}
	if c.ScoreValue < 0 {
		c.ScoreValue = 0
	}
	if c.DetectRadius < 0 {
		c.DetectRadius = 0
	}
	if c.AttackRadius < 0 {
		c.AttackRadius = 0
	}
	if c.AttackRadius > c.DetectRadius {
		c.AttackRadius = c.DetectRadius
	}
	if c.LoseRadius < c.DetectRadius {
		c.LoseRadius = c.DetectRadius
	}
	if c.HitRadius < 0 {
		c.HitRadius = 0
	}
	if c.Speed < 0 {
		c.Speed = 0
	}
	if c.AttackCooldown < 0 {
		c.AttackCooldown = 0
	}
	if len(c.Patrol) > 0 {
		c.Patrol = append([]core.Vector3(nil), c.Patrol...)
	}
	return c
}
