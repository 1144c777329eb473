package combat

// WeaponConfig describes the loadout the controller manages.
type WeaponConfig struct {
	Name           string  `json:"name" mapstructure:"name" yaml:"name"`
	Damage         int     `json:"damage" mapstructure:"damage" yaml:"damage"`
	MaxAmmo        int     `json:"maxAmmo" mapstructure:"maxAmmo" yaml:"max_ammo"`
	Range          float64 `json:"range" mapstructure:"range" yaml:"range"`
	FireInterval   float64 `json:"fireInterval" mapstructure:"fireInterval" yaml:"fire_interval"`
	ReloadDuration float64 `json:"reloadDuration" mapstructure:"reloadDuration" yaml:"reload_duration"`
}

// DefaultWeapon returns the stock rifle.
func DefaultWeapon() WeaponConfig {
	return WeaponConfig{
		Name:           "rifle",
		Damage:         25,
		MaxAmmo:        30,
		Range:          100,
		FireInterval:   0.1,
		ReloadDuration: 1.5,
	}
}

// Normalize clamps the config into a usable shape.
func (w WeaponConfig) Normalize() WeaponConfig {
	if w.Name == "" {
		w.Name = "rifle"
	}
	if w.Damage < 0 {
		w.Damage = 0
	}
	if w.MaxAmmo < 1 {
		w.MaxAmmo = 1
	}
	if w.Range < 0 {
		w.Range = 0
	}
	if w.FireInterval < 0 {
		w.FireInterval = 0
	}
	if w.ReloadDuration < 0 {
		w.ReloadDuration = 0
	}
	return w
}
