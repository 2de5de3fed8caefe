package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
)

// stepAnt runs the forage/return/flee/rest cycle of an ant.
func stepAnt(a *components.Agent, ctx *StepContext) Outcome {
	var out Outcome
	cfg := &ctx.Cfg.Ant
	st := a.Ant

	if st.InsideNest {
		if st.RestTimer > 0 {
			st.RestTimer--
			return out
		}
		leaveNest(a, ctx)
		return out
	}

	low := ctx.lowEnergy()

	threats := ctx.Nearby(a.Pos, a.Gene.Perception, components.SpeciesAnteater, components.SpeciesBird)
	if threat, ok := Nearest(threats, a.Pos, a.Gene.Perception, nil); ok {
		fleeFrom(a, threat.Pos, cfg.FleeNoise, ctx.Rng)
		st.FleeTimer = cfg.FleeTicks
	}

	switch {
	case st.FleeTimer > 0:
		st.FleeTimer--
	case st.HasFood, a.Energy < low:
		moveTowards(a, st.Nest, cfg.TurnRate, ctx.Rng)
	default:
		antForage(a, ctx)
	}

	antSeparate(a, ctx)

	if r2.Norm(a.Vel) < 0.1 {
		a.Vel = randomHeading(ctx.Rng)
	}
	advance(a, 1)

	if st.HasFood && distance(a.Pos, st.Nest) > cfg.DepositMinDistance {
		ctx.deposit(a.Pos, ctx.Cfg.Pheromone.Deposit*cfg.DepositMultiplier)
	}

	consumeEnergy(a, cfg.Cost, ctx.Cfg.Energy.MoveCost)

	if (st.HasFood || a.Energy < low) && distance(a.Pos, st.Nest) < cfg.ArriveRadius {
		if st.HasFood {
			st.HasFood = false
			a.Energy += ctx.Cfg.Food.Energy
			out.Delivered = true
		}
		st.InsideNest = true
		st.RestTimer = cfg.RestTicks
	}

	if !st.HasFood && st.FleeTimer == 0 && ctx.Food != nil {
		if item, ok := ctx.Food.NearestFood(a.Pos, a.BodySize+cfg.PickupPadding); ok && ctx.Food.RemoveFood(item) {
			st.HasFood = true
			out.PickedUp = true
			a.Vel = r2.Scale(-1, a.Vel)
		}
	}

	return out
}

// leaveNest places the ant on the nest perimeter heading outward.
func leaveNest(a *components.Agent, ctx *StepContext) {
	st := a.Ant
	st.InsideNest = false
	dir := randomHeading(ctx.Rng)
	a.Pos = r2.Add(st.Nest, r2.Scale(ctx.Cfg.Ant.ExitRadius, dir))
	a.Vel = dir
}

// antForage steers toward visible food, else follows pheromone. Near the
// nest pheromone is ignored so outbound ants do not loop back on the
// returning trail.
func antForage(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Ant

	if ctx.Food != nil {
		if item, ok := ctx.Food.NearestFood(a.Pos, a.Gene.Perception); ok {
			moveTowards(a, item.Pos, cfg.TurnRate, ctx.Rng)
			return
		}
	}

	if ctx.Field == nil {
		wander(a, cfg.WanderTurn, ctx.Rng)
		return
	}
	r := cfg.PheromoneRadius
	target, ok := ctx.Field.SelectDirectionProbabilistic(ctx.Rng, a.Pos.X, a.Pos.Y, a.Vel.X, a.Vel.Y, r, r)
	if !ok || distance(a.Pos, a.Ant.Nest) < cfg.NestBuffer {
		wander(a, cfg.WanderTurn, ctx.Rng)
		return
	}

	to := r2.Sub(target, a.Pos)
	if d := r2.Norm(to); d > 0 {
		blendToward(a, r2.Scale(1/d, to), cfg.PheromoneBlend, ctx.Rng)
	}
}

// antSeparate pushes the ant away from crowding nestmates. The push falls
// off quadratically to zero at the separation radius; crowds add a random
// jitter that breaks symmetric jams.
func antSeparate(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Ant
	radius := a.BodySize * cfg.SeparationFactor
	if radius <= 0 {
		return
	}

	var sum r2.Vec
	count := 0
	for _, o := range ctx.Nearby(a.Pos, radius, components.SpeciesAnt) {
		if o == a || !o.Active() {
			continue
		}
		d := distance(a.Pos, o.Pos)
		if d >= radius {
			continue
		}
		if d < 1 {
			sum = r2.Add(sum, r2.Scale(cfg.OverlapPush, randomHeading(ctx.Rng)))
		} else {
			f := (radius - d) / radius
			away := r2.Scale(1/d, r2.Sub(a.Pos, o.Pos))
			sum = r2.Add(sum, r2.Scale(f*f*cfg.SeparationStrength, away))
		}
		count++
	}
	if count == 0 {
		return
	}

	a.Vel = r2.Add(a.Vel, r2.Scale(cfg.SeparationWeight/float64(count), sum))
	if count > cfg.JitterMinCrowd {
		jitter := math.Min(cfg.JitterMax, float64(count)*cfg.JitterPerNeighbor)
		a.Vel = r2.Add(a.Vel, r2.Scale(jitter, randomHeading(ctx.Rng)))
	}
	normalizeVelocity(a, ctx.Rng)
}
