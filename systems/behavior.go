package systems

import "github.com/pthm-cable/ecotope/components"

type behaviorFunc func(a *components.Agent, ctx *StepContext) Outcome

// behaviors dispatches on the species tag.
var behaviors = [components.NumSpecies]behaviorFunc{
	components.SpeciesAnt:      stepAnt,
	components.SpeciesBird:     stepBird,
	components.SpeciesAnteater: stepAnteater,
	components.SpeciesSnake:    stepSnake,
}

// StepAgent runs one tick of the agent's species behavior. Dead agents are
// left untouched. The agent mutates only itself, the food source, the
// pheromone deposits and (when it kills) its prey.
func StepAgent(a *components.Agent, ctx *StepContext) Outcome {
	if !a.Alive || a.Species >= components.NumSpecies {
		return Outcome{}
	}
	return behaviors[a.Species](a, ctx)
}
