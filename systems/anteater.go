package systems

import "github.com/pthm-cable/ecotope/components"

// stepAnteater hunts the nearest visible ant or wanders, then tries to eat
// an ant in reach.
func stepAnteater(a *components.Agent, ctx *StepContext) Outcome {
	var out Outcome
	cfg := &ctx.Cfg.Anteater
	p := a.Predator

	if p.HuntCooldown > 0 {
		p.HuntCooldown--
	}

	p.Hunting = false
	if p.HuntCooldown == 0 {
		perception := a.Gene.Perception
		if target, ok := Nearest(ctx.Nearby(a.Pos, perception, components.SpeciesAnt), a.Pos, perception, nil); ok {
			p.Hunting = true
			moveTowards(a, target.Pos, cfg.HuntTurnRate, ctx.Rng)
		}
	}
	if !p.Hunting {
		wanderSmooth(a, ctx)
	}

	speed := p.FatigueFactor
	if p.Hunting {
		speed = 1
	}
	advance(a, speed)

	reach := a.BodySize + cfg.CatchPadding
	if checkCatch(a, ctx.Nearby(a.Pos, reach, components.SpeciesAnt), reach, cfg.EnergyGain, ctx) {
		out.Kills++
	}

	updateStamina(p, a.Energy, &ctx.Cfg.Predator)
	consumeEnergy(a, cfg.Cost, ctx.Cfg.Energy.MoveCost)
	return out
}
