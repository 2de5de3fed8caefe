package systems

import (
	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

// updateStamina samples energy every StaminaInterval ticks and adapts the
// cruise speed factor to the recent drain rate. Sustained heavy drain tires
// the predator; a light drain lets it recover.
func updateStamina(p *components.PredatorState, energy float64, cfg *config.PredatorConfig) {
	p.HistoryTimer++
	if p.HistoryTimer < cfg.StaminaInterval {
		return
	}
	p.HistoryTimer = 0

	p.EnergyHistory = append(p.EnergyHistory, energy)
	if len(p.EnergyHistory) > cfg.StaminaHistory {
		p.EnergyHistory = p.EnergyHistory[len(p.EnergyHistory)-cfg.StaminaHistory:]
	}
	if len(p.EnergyHistory) < 2 {
		return
	}

	p.DropRate = (p.EnergyHistory[0] - energy) / float64(len(p.EnergyHistory)-1)
	switch {
	case p.DropRate > cfg.HighDrain:
		p.FatigueFactor = clampFloat(p.FatigueFactor-cfg.FatigueStep, cfg.MinFatigue, 1)
	case p.DropRate < cfg.LowDrain:
		p.FatigueFactor = clampFloat(p.FatigueFactor+cfg.RecoverStep, cfg.MinFatigue, 1)
	}
}

// catchPrey kills prey and credits the predator. A well-fed predator rests
// longer before hunting again.
func catchPrey(a, prey *components.Agent, gain float64, ctx *StepContext) bool {
	if !prey.Alive {
		return false
	}
	prey.Kill()
	a.Energy += ctx.Cfg.Food.Energy * gain

	cfg := &ctx.Cfg.Predator
	if a.Energy > cfg.SatedEnergy {
		a.Predator.HuntCooldown = cfg.SatedCooldown
	} else {
		a.Predator.HuntCooldown = cfg.HungryCooldown
	}
	return true
}

// checkCatch catches the first live prey within radius, in list order.
func checkCatch(a *components.Agent, prey []*components.Agent, radius, gain float64, ctx *StepContext) bool {
	if a.Predator.HuntCooldown > 0 {
		return false
	}
	for _, p := range prey {
		if !p.Active() || p == a {
			continue
		}
		if distance(a.Pos, p.Pos) < radius {
			return catchPrey(a, p, gain, ctx)
		}
	}
	return false
}

// wanderSmooth drifts the heading through a bounded, decaying wander angle
// with rare large jumps.
func wanderSmooth(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Anteater
	p := a.Predator

	p.WanderAngle = clampFloat(p.WanderAngle+signedUnit(ctx.Rng, cfg.WanderDrift), -cfg.WanderLimit, cfg.WanderLimit)
	p.WanderAngle *= cfg.WanderDecay

	angle := heading(a.Vel) + p.WanderAngle*cfg.WanderScale

	if ctx.Rng.Float64() < cfg.JumpChance {
		if ctx.Rng.Float64() > 0.5 {
			p.WanderAngle += cfg.JumpAmount
		} else {
			p.WanderAngle -= cfg.JumpAmount
		}
	}
	a.Vel = fromAngle(angle)
}
