package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
	"github.com/pthm-cable/ecotope/game"
	"github.com/pthm-cable/ecotope/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	population  [components.NumSpecies]int
	statsWindow int

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config, population [components.NumSpecies]int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		population:  population,
		statsWindow: 300,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int // ticks before the colony died out (or maxTicks)
	deliveries    int
	windowStats   []telemetry.WindowStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel; each run owns its simulation.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: computeQuality(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until the ants die out or
// maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Telemetry.StatsWindow = fe.statsWindow

	result := &runResult{survivalTicks: fe.maxTicks}
	sim, err := game.New(cfg, game.Options{
		Seed: seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.survivalTicks = 0
		return result
	}
	if err := sim.Populate(fe.population); err != nil {
		result.survivalTicks = 0
		return result
	}

	for sim.Tick() < fe.maxTicks {
		sim.Step()
		if sim.Population()[components.SpeciesAnt] == 0 {
			result.survivalTicks = sim.Tick()
			break
		}
	}
	result.deliveries = sim.Deliveries()
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(deliveries per 1000 ticks × survival fraction × (1 + 0.2 × quality))
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	if fe.maxTicks <= 0 {
		return 0
	}
	rate := float64(r.deliveries) / float64(fe.maxTicks) * 1000
	survival := float64(r.survivalTicks) / float64(fe.maxTicks)
	return -(rate * survival * (1.0 + 0.2*computeQuality(r.windowStats)))
}

// Quality component weights.
const (
	qualityWeightStability = 0.5
	qualityWeightTrails    = 0.5

	qualityWarmupWindows = 2   // skip first N windows (warmup)
	trailScale           = 200 // Active cells at which the trail score reaches 1-1/e
)

// computeQuality scores colony health in [0, 1]: a steady ant population
// and a standing trail network.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	ants := make([]float64, 0, len(valid))
	cells := make([]float64, 0, len(valid))
	for _, w := range valid {
		ants = append(ants, float64(w.Species[components.SpeciesAnt].Count))
		cells = append(cells, float64(w.PheromoneCells))
	}

	stability := 0.0
	if len(ants) >= 2 {
		c := cv(ants)
		stability = math.Exp(-c * c)
	}
	trails := 1 - math.Exp(-stat.Mean(cells, nil)/trailScale)

	return clamp01(qualityWeightStability*stability + qualityWeightTrails*trails)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return max(0, min(1, x))
}
