package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
)

// stepBird runs one tick of a bird: mode transitions, then either perched
// rest or Boids flight, then feeding.
func stepBird(a *components.Agent, ctx *StepContext) Outcome {
	cfg := &ctx.Cfg.Bird
	st := a.Bird

	updateBirdMode(a, ctx)

	if st.Mode == components.BirdPerching {
		st.Fatigue = math.Max(0, st.Fatigue-cfg.FatigueResting)
		if limit := ctx.Cfg.Energy.Initial * cfg.MaxEnergyFactor; a.Energy < limit {
			a.Energy = math.Min(limit, a.Energy+cfg.PerchEnergyGain)
		}
		if _, ok := birdThreat(a, ctx); ok {
			takeOff(a, ctx)
		}
		return birdEat(a, ctx)
	}

	birdFlight(a, ctx)
	st.Fatigue = math.Min(cfg.FatigueMax, st.Fatigue+cfg.FatigueFlying)
	consumeEnergy(a, cfg.Cost, ctx.Cfg.Energy.MoveCost)
	a.Pos = r2.Add(a.Pos, a.Vel)
	return birdEat(a, ctx)
}

// updateBirdMode advances the flying/perching/taking_off machine. A tired
// bird lands at random unless a predator is visible; a perched bird takes
// off at random when rested or hungry, and always once its timer runs out.
func updateBirdMode(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Bird
	st := a.Bird
	rng := ctx.Rng

	if st.ModeTimer > 0 {
		st.ModeTimer--
	}

	switch st.Mode {
	case components.BirdFlying:
		if st.Fatigue > cfg.LandFatigue && rng.Float64() < st.Fatigue/cfg.LandDivisor {
			if _, ok := birdThreat(a, ctx); !ok {
				land(a, ctx)
			}
		}
	case components.BirdPerching:
		rested := st.Fatigue < cfg.RestedFatigue && rng.Float64() < cfg.RestedChance
		hungry := !rested && a.Energy < cfg.HungerEnergy && rng.Float64() < cfg.HungryChance
		if rested || hungry || st.ModeTimer <= 0 {
			takeOff(a, ctx)
		}
	case components.BirdTakingOff:
		if st.ModeTimer <= 0 {
			st.Mode = components.BirdFlying
		}
	}
}

func land(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Bird
	a.Bird.Mode = components.BirdPerching
	a.Bird.ModeTimer = cfg.PerchMin + int(ctx.Rng.Float64()*float64(cfg.PerchSpread))
	a.Vel = r2.Vec{}
}

func takeOff(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Bird
	a.Bird.Mode = components.BirdTakingOff
	a.Bird.ModeTimer = cfg.TakeOffTicks
	a.Vel = r2.Scale(a.Gene.Speed*cfg.TakeOffSpeedFraction, randomHeading(ctx.Rng))
}

// birdThreat returns the nearest visible snake. An ambushing snake only
// shows up within a fraction of the bird's perception.
func birdThreat(a *components.Agent, ctx *StepContext) (*components.Agent, bool) {
	perception := a.Gene.Perception
	hidden := perception * ctx.Cfg.Bird.AmbushVisibility
	visible := func(s *components.Agent) bool {
		if s.Snake != nil && s.Snake.Mode == components.SnakeAmbush {
			return distance(a.Pos, s.Pos) <= hidden
		}
		return true
	}
	return Nearest(ctx.Nearby(a.Pos, perception, components.SpeciesSnake), a.Pos, perception, visible)
}

// birdFlight accumulates steering forces. A visible predator overrides
// flocking and foraging entirely.
func birdFlight(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Bird
	var acc r2.Vec

	if threat, ok := birdThreat(a, ctx); ok {
		acc = r2.Scale(cfg.FleeWeight, birdFlee(a, threat.Pos, ctx))
	} else {
		acc = r2.Add(flock(a, ctx), r2.Scale(cfg.FoodWeight, seekFood(a, ctx)))
	}

	a.Vel = r2.Add(a.Vel, acc)
	limitBirdSpeed(a, ctx)
}

// limitBirdSpeed clamps speed to [MinSpeedFraction·max, max]. A stalled
// bird gets a random heading at minimum speed.
func limitBirdSpeed(a *components.Agent, ctx *StepContext) {
	maxSpeed := a.Gene.Speed
	minSpeed := maxSpeed * ctx.Cfg.Bird.MinSpeedFraction
	speed := r2.Norm(a.Vel)
	switch {
	case speed > maxSpeed:
		a.Vel = r2.Scale(maxSpeed/speed, a.Vel)
	case speed == 0:
		a.Vel = r2.Scale(minSpeed, randomHeading(ctx.Rng))
	case speed < minSpeed:
		a.Vel = r2.Scale(minSpeed/speed, a.Vel)
	}
}

// birdFlee steers directly away from a threat at full speed.
func birdFlee(a *components.Agent, threat r2.Vec, ctx *StepContext) r2.Vec {
	away := r2.Sub(a.Pos, threat)
	d := r2.Norm(away)
	if d == 0 {
		return r2.Vec{}
	}
	desired := r2.Scale(a.Gene.Speed/d, away)
	return limit(r2.Sub(desired, a.Vel), ctx.Cfg.Bird.MaxForce*ctx.Cfg.Bird.FleeForceFactor)
}

// flock combines separation, alignment and cohesion over birds within
// perception.
func flock(a *components.Agent, ctx *StepContext) r2.Vec {
	cfg := &ctx.Cfg.Bird
	perception := a.Gene.Perception
	neighbors := WithinRadius(nil, ctx.Nearby(a.Pos, perception, components.SpeciesBird), a.Pos, perception,
		func(o *components.Agent) bool { return o != a })
	if len(neighbors) == 0 {
		return r2.Vec{}
	}

	sep := separation(a, neighbors, perception*cfg.SeparationFraction, cfg.MaxForce)
	ali := alignment(a, neighbors, cfg.MaxForce)
	coh := cohesion(a, neighbors, cfg.MaxForce)

	return r2.Add(r2.Scale(cfg.SeparationWeight, sep),
		r2.Add(r2.Scale(cfg.AlignmentWeight, ali), r2.Scale(cfg.CohesionWeight, coh)))
}

// separation averages inverse-square repulsion from neighbors inside
// radius and sets it to maxForce.
func separation(a *components.Agent, neighbors []*components.Agent, radius, maxForce float64) r2.Vec {
	var steer r2.Vec
	count := 0
	for _, o := range neighbors {
		d := distance(a.Pos, o.Pos)
		if d > 0 && d < radius {
			steer = r2.Add(steer, r2.Scale(1/(d*d), r2.Sub(a.Pos, o.Pos)))
			count++
		}
	}
	if count == 0 {
		return r2.Vec{}
	}
	return setMag(r2.Scale(1/float64(count), steer), maxForce)
}

// alignment steers toward the mean neighbor velocity.
func alignment(a *components.Agent, neighbors []*components.Agent, maxForce float64) r2.Vec {
	var avg r2.Vec
	for _, o := range neighbors {
		avg = r2.Add(avg, o.Vel)
	}
	avg = r2.Scale(1/float64(len(neighbors)), avg)
	return limit(r2.Sub(avg, a.Vel), maxForce)
}

// cohesion steers toward the neighbor centroid at full speed.
func cohesion(a *components.Agent, neighbors []*components.Agent, maxForce float64) r2.Vec {
	var center r2.Vec
	for _, o := range neighbors {
		center = r2.Add(center, o.Pos)
	}
	center = r2.Scale(1/float64(len(neighbors)), center)
	to := r2.Sub(center, a.Pos)
	d := r2.Norm(to)
	if d == 0 {
		return r2.Vec{}
	}
	desired := r2.Scale(a.Gene.Speed/d, to)
	return limit(r2.Sub(desired, a.Vel), maxForce)
}

// seekFood steers toward the nearest visible food, or a nearer ant when
// starving. Hunger amplifies the pull.
func seekFood(a *components.Agent, ctx *StepContext) r2.Vec {
	cfg := &ctx.Cfg.Bird
	hunger := 1.0
	if a.Energy < cfg.HungerEnergy {
		hunger = cfg.HungerFactor
	}

	reach := a.Gene.Perception
	var target r2.Vec
	found := false

	if ctx.Food != nil {
		if item, ok := ctx.Food.NearestFood(a.Pos, reach); ok {
			target = item.Pos
			reach = distance(a.Pos, item.Pos)
			found = true
		}
	}
	if a.Energy < ctx.lowEnergy() {
		if ant, ok := Nearest(ctx.Nearby(a.Pos, reach, components.SpeciesAnt), a.Pos, reach, nil); ok {
			target = ant.Pos
			found = true
		}
	}
	if !found {
		return r2.Vec{}
	}

	to := r2.Sub(target, a.Pos)
	d := r2.Norm(to)
	if d == 0 {
		return r2.Vec{}
	}
	desired := r2.Scale(a.Gene.Speed/d, to)
	steer := r2.Scale(hunger, r2.Sub(desired, a.Vel))
	return limit(steer, cfg.MaxForce*cfg.SeekForceFactor)
}

// birdEat consumes food within reach, or an ant when starving.
func birdEat(a *components.Agent, ctx *StepContext) Outcome {
	var out Outcome
	cfg := &ctx.Cfg.Bird
	reach := a.BodySize + cfg.EatPadding

	if ctx.Food != nil {
		if item, ok := ctx.Food.NearestFood(a.Pos, reach); ok && ctx.Food.RemoveFood(item) {
			a.Energy += item.Energy
			out.FoodEaten++
			return out
		}
	}

	if a.Energy < ctx.lowEnergy() {
		if ant, ok := Nearest(ctx.Nearby(a.Pos, reach, components.SpeciesAnt), a.Pos, reach, nil); ok {
			ant.Kill()
			a.Energy += ctx.Cfg.Food.Energy * cfg.AntEnergyFraction
			out.Kills++
		}
	}
	return out
}
