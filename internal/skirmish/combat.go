package skirmish

import "math/rand"

// Field bounds in input coordinates. Clicks outside the field never hit.
const (
	FieldWidth  = 640
	FieldHeight = 360

	// HitRadius is how close a click must land to a target to count.
	HitRadius = 14

	fieldMargin = 24
)

// Combat resolves every random outcome of a skirmish. All draws come from one
// generator derived from the session seed, so identical input replays to an
// identical result.
type Combat struct {
	rng *rand.Rand
}

// NewCombat creates a combat resolver drawing from rng.
func NewCombat(rng *rand.Rand) *Combat {
	return &Combat{rng: rng}
}

// Position picks a spawn point inside the field margins.
func (c *Combat) Position() (int16, int16) {
	x := fieldMargin + c.rng.Intn(FieldWidth-2*fieldMargin)
	y := fieldMargin + c.rng.Intn(FieldHeight-2*fieldMargin)
	return int16(x), int16(y)
}

// TroopHits rolls a squad shot. Veterans shoot straighter.
func (c *Combat) TroopHits(rank uint8) bool {
	p := 0.55 + 0.03*float64(rank)
	if p > 0.95 {
		p = 0.95
	}
	return c.rng.Float64() < p
}

// EnemyHits rolls an enemy shot against a troop of the given rank.
func (c *Combat) EnemyHits(aggression int16, rank uint8) bool {
	p := 0.04 + 0.02*float64(aggression) - 0.01*float64(rank)
	switch {
	case p < 0.02:
		p = 0.02
	case p > 0.6:
		p = 0.6
	}
	return c.rng.Float64() < p
}

// Pick returns an index in [0, n).
func (c *Combat) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return c.rng.Intn(n)
}

// spawnInterval is the ticks between enemy arrivals at an aggression level.
func spawnInterval(aggression int16) int {
	return clampInterval(120-8*int(aggression), 30)
}

// fireInterval is the ticks an enemy waits between shots.
func fireInterval(aggression int16) int {
	return clampInterval(150-8*int(aggression), 40)
}

func clampInterval(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

func within(ax, ay, bx, by int16, r int) bool {
	dx := int(ax) - int(bx)
	dy := int(ay) - int(by)
	return dx*dx+dy*dy <= r*r
}
