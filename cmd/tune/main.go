// Package main searches pheromone parameters that maximize colony food
// throughput over short headless runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	Quality        float64 `csv:"quality"`
	Evaporation    float64 `csv:"evaporation"`
	Deposit        float64 `csv:"deposit"`
	ForwardBias    float64 `csv:"forward_bias"`
	PheromoneBlend float64 `csv:"pheromone_blend"`
}

func newEvalRecord(eval int, fitness, quality float64, clamped []float64) EvalRecord {
	return EvalRecord{
		Eval:           eval,
		Fitness:        fitness,
		Quality:        quality,
		Evaporation:    clamped[0],
		Deposit:        clamped[1],
		ForwardBias:    clamped[2],
		PheromoneBlend: clamped[3],
	}
}

// newMethod picks the optimizer named on the command line.
func newMethod(name string, popSize int) (optimize.Method, error) {
	switch name {
	case "cmaes":
		return &optimize.CmaEsChol{
			InitStepSize: 0.3,
			Population:   popSize,
		}, nil
	case "neldermead":
		return &optimize.NelderMead{}, nil
	default:
		return nil, fmt.Errorf("unknown method %q", name)
	}
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 6000, "Simulation duration per run in ticks")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	methodName := flag.String("method", "cmaes", "Optimizer: cmaes or neldermead")
	outputDir := flag.String("output", "", "Output directory for results")
	ants := flag.Int("ants", 40, "Initial ants per run")
	birds := flag.Int("birds", 6, "Initial birds per run")
	anteaters := flag.Int("anteaters", 1, "Initial anteaters per run")
	snakes := flag.Int("snakes", 1, "Initial snakes per run")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	var counts [components.NumSpecies]int
	counts[components.SpeciesAnt] = *ants
	counts[components.SpeciesBird] = *birds
	counts[components.SpeciesAnteater] = *anteaters
	counts[components.SpeciesSnake] = *snakes

	evaluator := NewFitnessEvaluator(params, *maxTicks, evalSeeds, baseCfg, counts)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method, err := newMethod(*methodName, popSize)
	if err != nil {
		log.Fatal(err)
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds already run in parallel
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			quality := evaluator.LastQuality()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append([]float64(nil), clamped...)
			}

			rows := []EvalRecord{newEvalRecord(evalCount, fitness, quality, clamped)}
			var werr error
			if evalCount == 1 {
				werr = gocsv.Marshal(rows, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(rows, logFile)
			}
			if werr != nil {
				log.Printf("failed to log evaluation %d: %v", evalCount, werr)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			// Fitness = -(deliveries per 1000 ticks × survival × (1 + 0.2×quality))
			rate := -fitness / (1.0 + 0.2*quality)
			fmt.Printf("Eval %d/%d: deliveries/1k=%.2f quality=%.2f (best=%.2f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, rate, quality, -bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting %s with %d parameters, population=%d, max_evals=%d\n",
		*methodName, dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", *seeds, *maxTicks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.3f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
