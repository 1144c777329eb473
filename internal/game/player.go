package game

import "github.com/nova-webgames/arena/pkg/core"

// Player is the combat-relevant slice of the local player. Position and
// facing are set by the host's movement layer.
type Player struct {
	position  core.Vector3
	facing    core.Vector3
	health    int
	armor     int
	maxHealth int
	maxArmor  int
}

// NewPlayer creates a player at the origin looking down -Z with full health
// and armor.
func NewPlayer(maxHealth, maxArmor int) *Player {
	if maxHealth <= 0 {
		maxHealth = 100
	}
	if maxArmor < 0 {
		maxArmor = 0
	}
	p := &Player{maxHealth: maxHealth, maxArmor: maxArmor}
	p.Reset()
	return p
}

// Position returns where shots originate.
func (p *Player) Position() core.Vector3 { return p.position }

// Facing returns the unit aim direction.
func (p *Player) Facing() core.Vector3 { return p.facing }

// Health returns the current health.
func (p *Player) Health() int { return p.health }

// Armor returns the armor left to absorb damage.
func (p *Player) Armor() int { return p.armor }

// Alive reports whether health is above zero.
func (p *Player) Alive() bool { return p.health > 0 }

// SetPosition moves the player; movement itself is driven from outside.
func (p *Player) SetPosition(v core.Vector3) { p.position = v }

// SetFacing ignores the zero vector.
func (p *Player) SetFacing(v core.Vector3) {
	if v.IsZero() {
		return
	}
	p.facing = v.Norm()
}

// ReceiveHit applies damage to armor first and the remainder to health,
// both clamped at zero.
func (p *Player) ReceiveHit(damage int, _ string) (int, int) {
	if damage <= 0 {
		return p.health, p.armor
	}
	absorbed := min(damage, p.armor)
	p.armor -= absorbed
	p.health -= damage - absorbed
	if p.health < 0 {
		p.health = 0
	}
	return p.health, p.armor
}

// Reset restores full health and armor at the origin.
func (p *Player) Reset() {
	p.position = core.Vector3{}
	p.facing = core.Vec3(0, 0, -1)
	p.health = p.maxHealth
	p.armor = p.maxArmor
}

func (p *Player) View() core.PlayerView {
	return core.PlayerView{
		Position: p.position,
		Facing:   p.facing,
		Health:   p.health,
		Armor:    p.armor,
		MaxArmor: p.maxArmor,
	}
}
