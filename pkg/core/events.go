// pkg/core/events.go
package core

// EventKind names an event on the bus.
type EventKind string

const (
	KindEnemySpawned     EventKind = "enemy.spawned"
	KindEnemyDied        EventKind = "enemy.died"
	KindPlayerHit        EventKind = "player.hit"
	KindWeaponFired      EventKind = "weapon.fired"
	KindScoreChanged     EventKind = "score.changed"
	KindAmmoChanged      EventKind = "ammo.changed"
	KindReloadStarted    EventKind = "reload.started"
	KindReloadCompleted  EventKind = "reload.completed"
	KindGameStateChanged EventKind = "game.state_changed"
)

// AllKinds lists every event kind in a stable order.
var AllKinds = []EventKind{
	KindEnemySpawned,
	KindEnemyDied,
	KindPlayerHit,
	KindWeaponFired,
	KindScoreChanged,
	KindAmmoChanged,
	KindReloadStarted,
	KindReloadCompleted,
	KindGameStateChanged,
}

// Event is implemented by every payload type below and nothing else.
// Payloads are value snapshots taken at publish time.
type Event interface {
	Kind() EventKind
	sealed()
}

// HitKind classifies what a shot struck.
type HitKind string

const (
	HitNone    HitKind = "none"
	HitEnemy   HitKind = "enemy"
	HitScenery HitKind = "scenery"
)

// EnemySpawned is published when an enemy enters the registry.
type EnemySpawned struct {
	ID        string     `json:"id"`
	Position  Vector3    `json:"position"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"maxHealth"`
	State     EnemyState `json:"state"`
}

// EnemyDied is published exactly once, when an enemy's health crosses zero.
type EnemyDied struct {
	ID         string  `json:"id"`
	Position   Vector3 `json:"position"`
	ScoreValue int     `json:"scoreValue"`
}

// PlayerHit is published when an attacking enemy lands a hit.
type PlayerHit struct {
	EnemyID string `json:"enemyId"`
	Damage  int    `json:"damage"`
	Health  int    `json:"health"`
	Armor   int    `json:"armor"`
}

// WeaponFired is published for every accepted shot, hit or miss.
type WeaponFired struct {
	Weapon    string  `json:"weapon"`
	Time      float64 `json:"time"`
	Origin    Vector3 `json:"origin"`
	Direction Vector3 `json:"direction"`
	HitKind   HitKind `json:"hitKind"`
	HitID     string  `json:"hitId,omitempty"`
	Distance  float64 `json:"distance,omitempty"`
	Damage    int     `json:"damage,omitempty"`
	Bonus     int     `json:"bonus,omitempty"`
	Killed    bool    `json:"killed,omitempty"`
}

// ScoreChanged carries the running total after a change.
type ScoreChanged struct {
	Score int `json:"score"`
	Delta int `json:"delta"`
	Kills int `json:"kills"`
}

// AmmoChanged carries the magazine count after a change.
type AmmoChanged struct {
	Ammo    int `json:"ammo"`
	MaxAmmo int `json:"maxAmmo"`
	Delta   int `json:"delta"`
}

// ReloadStarted is published when a reload countdown begins.
type ReloadStarted struct {
	Ammo     int     `json:"ammo"`
	Duration float64 `json:"duration"`
}

// ReloadCompleted is published when the reload countdown reaches zero.
type ReloadCompleted struct {
	Ammo    int `json:"ammo"`
	MaxAmmo int `json:"maxAmmo"`
}

// GameStateChanged is published on every phase transition.
type GameStateChanged struct {
	From   GamePhase `json:"from"`
	To     GamePhase `json:"to"`
	Score  int       `json:"score"`
	Kills  int       `json:"kills"`
	Deaths int       `json:"deaths"`
}

func (EnemySpawned) Kind() EventKind     { return KindEnemySpawned }
func (EnemyDied) Kind() EventKind        { return KindEnemyDied }
func (PlayerHit) Kind() EventKind        { return KindPlayerHit }
func (WeaponFired) Kind() EventKind      { return KindWeaponFired }
func (ScoreChanged) Kind() EventKind     { return KindScoreChanged }
func (AmmoChanged) Kind() EventKind      { return KindAmmoChanged }
func (ReloadStarted) Kind() EventKind    { return KindReloadStarted }
func (ReloadCompleted) Kind() EventKind  { return KindReloadCompleted }
func (GameStateChanged) Kind() EventKind { return KindGameStateChanged }

func (EnemySpawned) sealed()     {}
func (EnemyDied) sealed()        {}
func (PlayerHit) sealed()        {}
func (WeaponFired) sealed()      {}
func (ScoreChanged) sealed()     {}
func (AmmoChanged) sealed()      {}
func (ReloadStarted) sealed()    {}
func (ReloadCompleted) sealed()  {}
func (GameStateChanged) sealed() {}
