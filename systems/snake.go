package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
)

// stepSnake runs the wander/stopping/ambush/strike/recover cycle. Snakes
// only catch birds while striking.
func stepSnake(a *components.Agent, ctx *StepContext) Outcome {
	var out Outcome
	cfg := &ctx.Cfg.Snake

	if a.Predator.HuntCooldown > 0 {
		a.Predator.HuntCooldown--
	}

	if updateSnakeMode(a, ctx) {
		out.Kills++
	}

	a.Pos = r2.Add(a.Pos, r2.Scale(snakeSpeed(a, ctx), a.Vel))
	updateSegments(a)
	consumeEnergy(a, cfg.Cost, ctx.Cfg.Energy.MoveCost)
	return out
}

// updateSnakeMode advances the ambush state machine and reports a catch.
func updateSnakeMode(a *components.Agent, ctx *StepContext) bool {
	cfg := &ctx.Cfg.Snake
	st := a.Snake
	rng := ctx.Rng

	st.ModeTimer--

	switch st.Mode {
	case components.SnakeWander:
		snakeWander(a, ctx)
		if st.ModeTimer <= 0 {
			setSnakeMode(st, components.SnakeStopping, cfg.StopTicks)
		}

	case components.SnakeStopping:
		if st.ModeTimer <= 0 {
			setSnakeMode(st, components.SnakeAmbush, cfg.AmbushMin+int(rng.Float64()*float64(cfg.AmbushSpread)))
			a.Vel = r2.Vec{}
		}

	case components.SnakeAmbush:
		if a.Predator.HuntCooldown == 0 {
			birds := ctx.Nearby(a.Pos, cfg.StrikeRange, components.SpeciesBird)
			if target, ok := Nearest(birds, a.Pos, cfg.StrikeRange, nil); ok {
				setSnakeMode(st, components.SnakeStrike, cfg.StrikeTicks)
				st.Target = target
				return snakeStrike(a, ctx)
			}
		}
		if st.ModeTimer <= 0 {
			setSnakeMode(st, components.SnakeWander, cfg.WanderMin+int(rng.Float64()*float64(cfg.WanderSpread)))
			a.Vel = randomHeading(rng)
		}

	case components.SnakeStrike:
		if st.Target == nil || !st.Target.Alive {
			setSnakeMode(st, components.SnakeRecover, cfg.LostTargetTicks)
			return false
		}
		if snakeStrike(a, ctx) {
			return true
		}
		if st.ModeTimer <= 0 {
			setSnakeMode(st, components.SnakeRecover, cfg.RecoverTicks)
		}

	case components.SnakeRecover:
		if st.ModeTimer <= 0 {
			setSnakeMode(st, components.SnakeWander, cfg.RestartTicks)
			if r2.Norm(a.Vel) == 0 {
				a.Vel = randomHeading(rng)
			}
		}
	}
	return false
}

func setSnakeMode(st *components.SnakeState, mode components.SnakeMode, ticks int) {
	st.Mode = mode
	st.ModeTimer = ticks
	if mode != components.SnakeStrike {
		st.Target = nil
	}
}

// snakeStrike lunges at the target. Once the target is within one strike
// step (or body contact) the head snaps onto it and the bird is eaten.
func snakeStrike(a *components.Agent, ctx *StepContext) bool {
	cfg := &ctx.Cfg.Snake
	target := a.Snake.Target

	reach := math.Max(a.Gene.Speed*cfg.StrikeSpeed, a.BodySize+cfg.CatchPadding)
	if distance(a.Pos, target.Pos) < reach {
		a.Pos = target.Pos
		if catchPrey(a, target, cfg.EnergyGain, ctx) {
			setSnakeMode(a.Snake, components.SnakeRecover, cfg.RecoverTicks)
			return true
		}
		return false
	}
	moveTowards(a, target.Pos, cfg.StrikeTurnRate, ctx.Rng)
	return false
}

// snakeSpeed returns the head displacement per tick for the current mode.
// Stopping eases out quadratically.
func snakeSpeed(a *components.Agent, ctx *StepContext) float64 {
	cfg := &ctx.Cfg.Snake
	st := a.Snake
	switch st.Mode {
	case components.SnakeAmbush:
		return 0
	case components.SnakeStopping:
		if cfg.StopTicks <= 0 {
			return 0
		}
		progress := math.Max(0, float64(st.ModeTimer)) / float64(cfg.StopTicks)
		return a.Gene.Speed * cfg.WanderSpeed * progress * progress
	case components.SnakeStrike:
		return a.Gene.Speed * cfg.StrikeSpeed
	case components.SnakeRecover:
		return a.Gene.Speed * cfg.RecoverSpeed
	default:
		return a.Gene.Speed * cfg.WanderSpeed
	}
}

// snakeWander drifts the heading and adds a smooth side-to-side undulation
// sampled from a noise track.
func snakeWander(a *components.Agent, ctx *StepContext) {
	cfg := &ctx.Cfg.Snake
	p := a.Predator
	st := a.Snake

	p.WanderAngle = clampFloat(p.WanderAngle+signedUnit(ctx.Rng, cfg.WanderDrift), -1, 1)

	var wave float64
	if ctx.Noise != nil {
		st.NoiseT += cfg.UndulationRate
		wave = ctx.Noise.Eval2(st.NoiseT, st.NoiseRow) * cfg.UndulationAmount
	}

	if r2.Norm(a.Vel) == 0 {
		a.Vel = randomHeading(ctx.Rng)
	}
	a.Vel = fromAngle(heading(a.Vel) + p.WanderAngle*cfg.WanderScale + wave)
}

// updateSegments pulls each body segment to a fixed spacing behind the one
// before it, starting from the head.
func updateSegments(a *components.Agent) {
	st := a.Snake
	if len(st.Segments) == 0 {
		return
	}
	st.Segments[0] = a.Pos
	for i := 1; i < len(st.Segments); i++ {
		prev := st.Segments[i-1]
		d := r2.Sub(st.Segments[i], prev)
		if n := r2.Norm(d); n > 0 {
			st.Segments[i] = r2.Add(prev, r2.Scale(st.Spacing/n, d))
		} else {
			st.Segments[i] = r2.Sub(prev, r2.Scale(st.Spacing, a.Vel))
		}
	}
}
