package combat

import (
	"math"

	"github.com/nova-webgames/arena/pkg/core"
)

// distanceEpsilon is the tolerance under which two hit distances are equal.
const distanceEpsilon = 1e-9

// Target is a shootable enemy as seen by the controller.
type Target interface {
	ID() string
	Position() core.Vector3
	HitRadius() float64
	// ApplyDamage reports whether the call killed the target.
	ApplyDamage(amount int) bool
}

// TargetSource yields the live targets for one hit test.
type TargetSource interface {
	Targets() []Target
}

// TargetsFunc adapts a function to TargetSource.
type TargetsFunc func() []Target

func (f TargetsFunc) Targets() []Target { return f() }

// Prop is a piece of static scenery a shot can strike.
type Prop struct {
	ID       string       `json:"id" yaml:"id"`
	Position core.Vector3 `json:"position" yaml:"position"`
	Radius   float64      `json:"radius" yaml:"radius"`
}

// Hit is the result of a hit test. Kind is HitNone on a miss.
type Hit struct {
	Kind     core.HitKind
	ID       string
	Distance float64
	Point    core.Vector3
	Target   Target

	// WeaponDamage is the damage the firing weapon would deal.
	WeaponDamage int
}

// raySphere returns the distance along a unit ray to the first intersection
// with the sphere, or false when the ray misses or the sphere is behind.
func raySphere(origin, dir, center core.Vector3, radius float64) (float64, bool) {
	oc := center.Sub(origin)
	along := oc.Dot(dir)
	perp2 := oc.Dot(oc) - along*along
	r2 := radius * radius
	if perp2 > r2 {
		return 0, false
	}
	half := math.Sqrt(r2 - perp2)
	t := along - half
	if t < 0 {
		// origin is inside the sphere
		t = along + half
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// closer reports whether a candidate at (dist, id) beats the current best.
func closer(dist float64, id string, best Hit) bool {
	if best.Kind == core.HitNone {
		return true
	}
	if math.Abs(dist-best.Distance) <= distanceEpsilon {
		return id < best.ID
	}
	return dist < best.Distance
}

// HitTest casts a ray from origin along dir up to maxRange against the
// targets and props. The nearest intersection wins; equal distances resolve
// to the smaller id.
func HitTest(origin, dir core.Vector3, maxRange float64, targets []Target, props []Prop) Hit {
	best := Hit{Kind: core.HitNone}
	dir = dir.Norm()
	if dir.IsZero() {
		return best
	}

	for _, t := range targets {
		dist, ok := raySphere(origin, dir, t.Position(), t.HitRadius())
		if !ok || dist > maxRange || !closer(dist, t.ID(), best) {
			continue
		}
		best = Hit{Kind: core.HitEnemy, ID: t.ID(), Distance: dist, Target: t}
	}
	for _, p := range props {
		dist, ok := raySphere(origin, dir, p.Position, p.Radius)
		if !ok || dist > maxRange || !closer(dist, p.ID, best) {
			continue
		}
		best = Hit{Kind: core.HitScenery, ID: p.ID, Distance: dist}
	}

	if best.Kind != core.HitNone {
		best.Point = origin.Add(dir.Scale(best.Distance))
	}
	return best
}
