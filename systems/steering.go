package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

// normalizeVelocity rescales velocity to unit length. A near-zero velocity
// is replaced by a random heading.
func normalizeVelocity(a *components.Agent, rng *rand.Rand) {
	if r2.Norm(a.Vel) > 0.01 {
		a.Vel = r2.Unit(a.Vel)
		return
	}
	a.Vel = randomHeading(rng)
}

// blendToward mixes a unit direction into the velocity and renormalizes.
func blendToward(a *components.Agent, dir r2.Vec, weight float64, rng *rand.Rand) {
	a.Vel = r2.Add(r2.Scale(1-weight, a.Vel), r2.Scale(weight, dir))
	normalizeVelocity(a, rng)
}

// moveTowards turns the heading toward target by turnRate. Targets within
// one unit leave the heading untouched.
func moveTowards(a *components.Agent, target r2.Vec, turnRate float64, rng *rand.Rand) {
	to := r2.Sub(target, a.Pos)
	d := r2.Norm(to)
	if d > 1 {
		blendToward(a, r2.Scale(1/d, to), turnRate, rng)
	}
}

// fleeFrom points the heading directly away from threat with a little noise.
func fleeFrom(a *components.Agent, threat r2.Vec, noise float64, rng *rand.Rand) {
	away := r2.Sub(a.Pos, threat)
	d := r2.Norm(away)
	if d <= 0 {
		return
	}
	a.Vel = r2.Add(r2.Scale(1/d, away), r2.Vec{X: signedUnit(rng, noise), Y: signedUnit(rng, noise)})
	normalizeVelocity(a, rng)
}

// wander perturbs the heading by up to ±turn/2 radians.
func wander(a *components.Agent, turn float64, rng *rand.Rand) {
	a.Vel = fromAngle(heading(a.Vel) + signedUnit(rng, turn))
}

// advance moves the agent along its velocity scaled by gene speed.
func advance(a *components.Agent, speedMul float64) {
	a.Pos = r2.Add(a.Pos, r2.Scale(a.Gene.Speed*speedMul, a.Vel))
}

// consumeEnergy applies the per-tick drain: a base cost, a speed² term and
// a size term.
func consumeEnergy(a *components.Agent, cost config.CostConfig, moveCost float64) {
	a.Energy -= moveCost*cost.Base + a.Gene.Speed*a.Gene.Speed*cost.Speed + a.Gene.Size*cost.Size
}

// BodySize returns the effective body radius for a gene.
func BodySize(sp *config.SpeciesConfig, g components.Gene) float64 {
	div := sp.SizeDivisor
	if div == 0 {
		div = 1
	}
	return sp.BodySize * g.Size / div
}
