package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
)

// NewAgent creates a live agent of the given species at pos with a random
// heading. Ants get their own position as home; use NewAnt to attach one to
// a nest.
func NewAgent(ctx *StepContext, s components.Species, pos r2.Vec, gene components.Gene) *components.Agent {
	sp := ctx.Species(s)
	a := &components.Agent{
		ID:       ctx.NewID(),
		Species:  s,
		Pos:      pos,
		Vel:      randomHeading(ctx.Rng),
		Energy:   sp.InitialEnergy,
		Gene:     gene,
		Alive:    true,
		BodySize: BodySize(sp, gene),
	}

	switch s {
	case components.SpeciesAnt:
		a.Ant = &components.AntState{Nest: pos}
	case components.SpeciesBird:
		a.Bird = &components.BirdState{Mode: components.BirdFlying}
		a.Vel = r2.Scale(gene.Speed, a.Vel)
	case components.SpeciesAnteater:
		a.Predator = &components.PredatorState{FatigueFactor: 1}
	case components.SpeciesSnake:
		a.Predator = &components.PredatorState{FatigueFactor: 1}
		a.Snake = newSnakeState(ctx, a)
	}
	return a
}

// NewAnt creates an ant belonging to the nest at nest.
func NewAnt(ctx *StepContext, pos, nest r2.Vec, gene components.Gene) *components.Agent {
	a := NewAgent(ctx, components.SpeciesAnt, pos, gene)
	a.Ant.Nest = nest
	return a
}

func newSnakeState(ctx *StepContext, a *components.Agent) *components.SnakeState {
	cfg := &ctx.Cfg.Snake
	st := &components.SnakeState{
		Mode:     components.SnakeWander,
		Spacing:  a.BodySize * cfg.SegmentSpacing,
		NoiseRow: ctx.Rng.Float64() * 1000,
		Segments: make([]r2.Vec, cfg.Segments),
	}
	for i := range st.Segments {
		st.Segments[i] = r2.Sub(a.Pos, r2.Scale(float64(i)*st.Spacing, a.Vel))
	}
	return st
}

// reproductionCost is the total energy a completed pregnancy costs.
func reproductionCost(ctx *StepContext, s components.Species) float64 {
	return ctx.Cfg.Reproduction.Cost * ctx.Species(s).CostFactor
}

// CanReproduce reports whether an idle agent may start a pregnancy now.
func CanReproduce(a *components.Agent, ctx *StepContext) bool {
	sp := ctx.Species(a.Species)
	if !sp.CanReproduce || !a.Alive || a.Pregnant() || a.ReproCooldown > 0 {
		return false
	}
	if a.Energy < ctx.Cfg.Reproduction.Threshold*sp.ThresholdFactor {
		return false
	}
	return reproductionCost(ctx, a.Species)/2 <= a.Energy
}

// StartPregnancy debits half the reproduction cost and starts the
// pregnancy timer. It is a no-op when the preconditions do not hold.
func StartPregnancy(a *components.Agent, ctx *StepContext) bool {
	if !CanReproduce(a, ctx) {
		return false
	}
	a.Energy -= reproductionCost(ctx, a.Species) / 2
	a.Repro = components.ReproState{
		Phase:          components.ReproPregnant,
		TicksRemaining: ctx.Species(a.Species).Pregnancy,
	}
	return true
}

// StepReproduction advances the reproduction machine by one tick and
// returns the newborn when a pregnancy completes. A pregnancy that ends in
// the same tick cannot also start a new one, so each pregnancy yields at
// most one birth.
func StepReproduction(a *components.Agent, ctx *StepContext) *components.Agent {
	if !a.Pregnant() {
		StartPregnancy(a, ctx)
		return nil
	}

	a.Repro.TicksRemaining--
	if a.Repro.TicksRemaining > 0 {
		return nil
	}
	a.Repro = components.ReproState{Phase: components.ReproIdle}

	half := reproductionCost(ctx, a.Species) / 2
	if half > a.Energy {
		return nil
	}
	a.Energy -= half
	a.ReproCooldown = ctx.Species(a.Species).Cooldown
	return newOffspring(a, ctx)
}

// newOffspring creates a mutated child next to its parent.
func newOffspring(parent *components.Agent, ctx *StepContext) *components.Agent {
	sp := ctx.Species(parent.Species)
	mc := &ctx.Cfg.Mutation
	gene := Mutate(ctx.Rng, parent.Gene, mc.Rate, mc.Amount, mc.Bounds)

	offset := r2.Vec{X: signedUnit(ctx.Rng, sp.SpawnOffset), Y: signedUnit(ctx.Rng, sp.SpawnOffset)}
	pos := r2.Add(parent.Pos, offset)

	var child *components.Agent
	if parent.Ant != nil {
		child = NewAnt(ctx, pos, parent.Ant.Nest, gene)
	} else {
		child = NewAgent(ctx, parent.Species, pos, gene)
	}
	child.Generation = parent.Generation + 1
	child.Energy = reproductionCost(ctx, parent.Species) * ctx.Cfg.Reproduction.OffspringEnergy

	if child.Bird != nil {
		j := ctx.Cfg.Bird.ChildVelocityJitter * 2
		child.Vel = limit(r2.Add(parent.Vel, r2.Vec{X: signedUnit(ctx.Rng, j), Y: signedUnit(ctx.Rng, j)}), gene.Speed)
	}
	return child
}

// Die kills a starved agent and, with the configured probability, seeds
// food around its corpse. It returns the number of food items placed.
func Die(a *components.Agent, ctx *StepContext) int {
	a.Kill()
	fc := &ctx.Cfg.Food
	if ctx.Food == nil || ctx.Rng.Float64() >= fc.CorpseChance {
		return 0
	}

	n := fc.CorpseMin
	if spread := fc.CorpseMax - fc.CorpseMin; spread > 0 {
		n += ctx.Rng.Intn(spread + 1)
	}
	placed := 0
	for i := 0; i < n; i++ {
		off := r2.Vec{X: signedUnit(ctx.Rng, fc.CorpseScatter), Y: signedUnit(ctx.Rng, fc.CorpseScatter)}
		if ctx.Food.SpawnFood(r2.Add(a.Pos, off)) {
			placed++
		}
	}
	return placed
}

// LifecycleReport summarizes one lifecycle pass.
type LifecycleReport struct {
	Births     [components.NumSpecies]int
	Starved    [components.NumSpecies]int
	CorpseFood int
}

// ResolveLifecycle applies death and reproduction to every live agent and
// returns the newborns. The caller appends them after the pass so the slice
// is never grown while it is iterated.
func ResolveLifecycle(agents []*components.Agent, ctx *StepContext) ([]*components.Agent, LifecycleReport) {
	var (
		born   []*components.Agent
		report LifecycleReport
	)
	for _, a := range agents {
		if !a.Alive {
			continue
		}
		if a.Energy <= 0 {
			report.CorpseFood += Die(a, ctx)
			report.Starved[a.Species]++
			continue
		}
		if a.ReproCooldown > 0 {
			a.ReproCooldown--
		}
		if child := StepReproduction(a, ctx); child != nil {
			born = append(born, child)
			report.Births[a.Species]++
		}
	}
	return born, report
}
