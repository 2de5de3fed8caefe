package telemetry

import "github.com/pthm-cable/ecotope/components"

// SpeciesSample holds per-agent values of one species, taken at window end.
type SpeciesSample struct {
	Energies    []float64
	Generations []float64
	Speeds      []float64
	Perceptions []float64
	Sizes       []float64
	Fitness     []float64
}

// Add records one live agent.
func (s *SpeciesSample) Add(energy float64, generation int, gene components.Gene, fitness float64) {
	s.Energies = append(s.Energies, energy)
	s.Generations = append(s.Generations, float64(generation))
	s.Speeds = append(s.Speeds, gene.Speed)
	s.Perceptions = append(s.Perceptions, gene.Perception)
	s.Sizes = append(s.Sizes, gene.Size)
	s.Fitness = append(s.Fitness, fitness)
}

// Sample is the population and world state the caller measures at window end.
type Sample struct {
	Species [components.NumSpecies]SpeciesSample

	Nests          int
	NestFood       int
	FoodCount      int
	PheromoneCells int
	PheromoneTotal float64
}

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     int
	windowStartTick int

	// Event counters for current window
	births     [components.NumSpecies]int
	deaths     [components.NumSpecies]int
	kills      [components.NumSpecies]int
	deliveries int
	nestSpawns int
	foodEaten  int
	corpseFood int
}

// NewCollector creates a new stats collector flushing every windowTicks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(s components.Species) {
	c.births[s]++
}

// RecordDeath records a death event.
func (c *Collector) RecordDeath(s components.Species) {
	c.deaths[s]++
}

// RecordKills records kills made by a predator of species s.
func (c *Collector) RecordKills(s components.Species, n int) {
	c.kills[s] += n
}

// RecordDelivery records food unloaded at a nest.
func (c *Collector) RecordDelivery() {
	c.deliveries++
}

// RecordNestSpawn records an ant produced by a nest.
func (c *Collector) RecordNestSpawn() {
	c.nestSpawns++
}

// RecordFoodEaten records food items consumed directly.
func (c *Collector) RecordFoodEaten(n int) {
	c.foodEaten += n
}

// RecordCorpseFood records food items seeded by corpses.
func (c *Collector) RecordCorpseFood(n int) {
	c.corpseFood += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int, sample Sample) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Deliveries: c.deliveries,
		NestSpawns: c.nestSpawns,
		Nests:      sample.Nests,
		NestFood:   sample.NestFood,

		FoodEaten:      c.foodEaten,
		CorpseFood:     c.corpseFood,
		FoodCount:      sample.FoodCount,
		PheromoneCells: sample.PheromoneCells,
		PheromoneTotal: sample.PheromoneTotal,
	}

	for s := range stats.Species {
		ss := &sample.Species[s]
		w := &stats.Species[s]
		w.Count = len(ss.Energies)
		w.Births = c.births[s]
		w.Deaths = c.deaths[s]
		w.Kills = c.kills[s]
		w.EnergyMean, w.EnergyStd, w.EnergyP10, w.EnergyP50, w.EnergyP90 = ComputeEnergyStats(ss.Energies)
		w.MeanGeneration = mean(ss.Generations)
		w.MeanSpeed = mean(ss.Speeds)
		w.MeanPerception = mean(ss.Perceptions)
		w.MeanSize = mean(ss.Sizes)
		w.MeanFitness = mean(ss.Fitness)
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.kills = [components.NumSpecies]int{}
	c.deliveries = 0
	c.nestSpawns = 0
	c.foodEaten = 0
	c.corpseFood = 0

	return stats
}

// Reset discards the current window and starts a new one at tick.
func (c *Collector) Reset(tick int) {
	c.Flush(tick, Sample{})
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
