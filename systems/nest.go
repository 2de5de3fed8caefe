package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

// NewNest creates an empty colony at pos.
func NewNest(ctx *StepContext, pos r2.Vec) *components.Nest {
	return &components.Nest{ID: ctx.NewID(), Pos: pos}
}

// StoreFood credits delivered food to the nest.
func StoreFood(n *components.Nest, amount int) {
	n.FoodStored += amount
}

// CanSpawn reports whether the nest can afford a new ant given its live
// population.
func CanSpawn(n *components.Nest, owned int, cfg *config.NestConfig) bool {
	return n.FoodStored >= cfg.SpawnCost && owned < cfg.MaxAnts && n.SpawnCooldown == 0
}

// StepNest refreshes the occupant count, ticks the spawn cooldown and
// returns a new ant when the colony can pay for one.
func StepNest(n *components.Nest, ants []*components.Agent, ctx *StepContext) *components.Agent {
	cfg := &ctx.Cfg.Nest

	owned := 0
	n.Occupants = 0
	for _, a := range ants {
		if !a.Alive || !n.Owns(a) {
			continue
		}
		owned++
		if a.Ant.InsideNest {
			n.Occupants++
		}
	}

	if n.SpawnCooldown > 0 {
		n.SpawnCooldown--
	}
	if !CanSpawn(n, owned, cfg) {
		return nil
	}

	n.FoodStored -= cfg.SpawnCost
	n.SpawnCooldown = cfg.SpawnInterval

	dir := randomHeading(ctx.Rng)
	pos := r2.Add(n.Pos, r2.Scale(ctx.Cfg.Ant.ExitRadius, dir))
	ant := NewAnt(ctx, pos, n.Pos, DefaultGene(ctx.Species(components.SpeciesAnt)))
	ant.Vel = dir
	return ant
}

// FindNearestNest returns the closest nest strictly within maxDistance.
func FindNearestNest(nests []*components.Nest, pos r2.Vec, maxDistance float64) (*components.Nest, bool) {
	return Nearest(nests, pos, maxDistance, nil)
}
