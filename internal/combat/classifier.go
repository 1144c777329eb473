package combat

import "github.com/nova-webgames/arena/pkg/core"

// HitOutcome is what a hit is worth: damage to the struck target, bonus
// points for the score, and whether it counts toward accuracy.
type HitOutcome struct {
	Damage int
	Bonus  int
	Counts bool
}

// HitClassifier decides the outcome of a hit. It is the scoring policy for
// enemy versus scenery hits.
type HitClassifier interface {
	Classify(h Hit) HitOutcome
}

// ClassifierFunc adapts a function to HitClassifier.
type ClassifierFunc func(Hit) HitOutcome

func (f ClassifierFunc) Classify(h Hit) HitOutcome { return f(h) }

// DefaultClassifier deals weapon damage to enemies and awards SceneryBonus
// points for scenery hits. Misses are worth nothing.
type DefaultClassifier struct {
	SceneryBonus int
}

func (c DefaultClassifier) Classify(h Hit) HitOutcome {
	switch h.Kind {
	case core.HitEnemy:
		return HitOutcome{Damage: h.WeaponDamage, Counts: true}
	case core.HitScenery:
		bonus := c.SceneryBonus
		if bonus < 0 {
			bonus = 0
		}
		return HitOutcome{Bonus: bonus, Counts: true}
	default:
		return HitOutcome{}
	}
}
