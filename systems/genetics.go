package systems

import (
	"math/rand"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

// Mutate returns a copy of gene where each field independently, with
// probability rate, is scaled by a factor drawn uniformly from
// [1-amount, 1+amount] and clamped to its bounds. Fields that are not
// selected are still clamped, so the result is always in bounds.
func Mutate(rng *rand.Rand, gene components.Gene, rate, amount float64, bounds config.GeneBounds) components.Gene {
	mutateValue := func(v float64, r config.Range) float64 {
		if rng.Float64() < rate {
			v *= 1 + signedUnit(rng, 2*amount)
		}
		return clampFloat(v, r.Min, r.Max)
	}

	return components.Gene{
		Speed:      mutateValue(gene.Speed, bounds.Speed),
		Perception: mutateValue(gene.Perception, bounds.Perception),
		Size:       mutateValue(gene.Size, bounds.Size),
	}
}

// Crossover picks each field from a or b with equal probability.
func Crossover(rng *rand.Rand, a, b components.Gene) components.Gene {
	pick := func(x, y float64) float64 {
		if rng.Float64() < 0.5 {
			return x
		}
		return y
	}
	return components.Gene{
		Speed:      pick(a.Speed, b.Speed),
		Perception: pick(a.Perception, b.Perception),
		Size:       pick(a.Size, b.Size),
	}
}

// DefaultGene returns the base gene of a species.
func DefaultGene(sp *config.SpeciesConfig) components.Gene {
	return geneFromConfig(sp.BaseGene)
}

// Fitness scores a gene against its species base gene using the species
// weights. The base gene scores the sum of the weights.
func Fitness(gene components.Gene, sp *config.SpeciesConfig) float64 {
	base := sp.BaseGene
	w := sp.FitnessWeights
	var score float64
	if base.Speed > 0 {
		score += gene.Speed / base.Speed * w.Speed
	}
	if base.Perception > 0 {
		score += gene.Perception / base.Perception * w.Perception
	}
	if base.Size > 0 {
		score += gene.Size / base.Size * w.Size
	}
	return score
}

func geneFromConfig(g config.GeneConfig) components.Gene {
	return components.Gene{Speed: g.Speed, Perception: g.Perception, Size: g.Size}
}
