package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecotope/components"
)

// SpeciesWindow holds one species' slice of a stats window.
type SpeciesWindow struct {
	Count  int
	Births int
	Deaths int
	Kills  int

	// Energy distribution (sampled at window end)
	EnergyMean float64
	EnergyStd  float64
	EnergyP10  float64
	EnergyP50  float64
	EnergyP90  float64

	// Trait drift
	MeanGeneration float64
	MeanSpeed      float64
	MeanPerception float64
	MeanSize       float64
	MeanFitness    float64
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int
	WindowEndTick   int

	Species [components.NumSpecies]SpeciesWindow

	// Colony
	Deliveries int
	NestSpawns int
	Nests      int
	NestFood   int

	// World
	FoodEaten      int
	CorpseFood     int
	FoodCount      int
	PheromoneCells int
	PheromoneTotal float64
}

// Total returns the live population across all species.
func (s WindowStats) Total() int {
	n := 0
	for _, sp := range s.Species {
		n += sp.Count
	}
	return n
}

// DeliveryRate returns food deliveries per tick over the window.
func (s WindowStats) DeliveryRate() float64 {
	ticks := s.WindowEndTick - s.WindowStartTick
	if ticks <= 0 {
		return 0
	}
	return float64(s.Deliveries) / float64(ticks)
}

// ComputeEnergyStats calculates mean, std and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)

	return mean, std, p10, p50, p90
}

// mean returns the arithmetic mean, or 0 for no values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (w SpeciesWindow) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", w.Count),
		slog.Int("births", w.Births),
		slog.Int("deaths", w.Deaths),
		slog.Int("kills", w.Kills),
		slog.Float64("energy_mean", w.EnergyMean),
		slog.Float64("energy_p50", w.EnergyP50),
		slog.Float64("generation", w.MeanGeneration),
		slog.Float64("fitness", w.MeanFitness),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
	}
	for sp := components.Species(0); sp < components.NumSpecies; sp++ {
		attrs = append(attrs, slog.Any(sp.String(), s.Species[sp]))
	}
	attrs = append(attrs,
		slog.Int("deliveries", s.Deliveries),
		slog.Int("nest_spawns", s.NestSpawns),
		slog.Int("nests", s.Nests),
		slog.Int("nest_food", s.NestFood),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("corpse_food", s.CorpseFood),
		slog.Int("food", s.FoodCount),
		slog.Int("pheromone_cells", s.PheromoneCells),
		slog.Float64("pheromone_total", s.PheromoneTotal),
	)
	return slog.GroupValue(attrs...)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"ants", s.Species[components.SpeciesAnt].Count,
		"birds", s.Species[components.SpeciesBird].Count,
		"anteaters", s.Species[components.SpeciesAnteater].Count,
		"snakes", s.Species[components.SpeciesSnake].Count,
		"deliveries", s.Deliveries,
		"nest_spawns", s.NestSpawns,
		"nests", s.Nests,
		"food", s.FoodCount,
		"pheromone_cells", s.PheromoneCells,
		"bird_kills", s.Species[components.SpeciesBird].Kills,
		"anteater_kills", s.Species[components.SpeciesAnteater].Kills,
		"snake_kills", s.Species[components.SpeciesSnake].Kills,
	)
}

// WindowStatsCSV is a flat struct for CSV export of window stats.
type WindowStatsCSV struct {
	WindowEnd int `csv:"window_end"`

	Ants      int `csv:"ants"`
	Birds     int `csv:"birds"`
	Anteaters int `csv:"anteaters"`
	Snakes    int `csv:"snakes"`

	AntBirths      int `csv:"ant_births"`
	BirdBirths     int `csv:"bird_births"`
	AnteaterBirths int `csv:"anteater_births"`
	SnakeBirths    int `csv:"snake_births"`

	AntDeaths      int `csv:"ant_deaths"`
	BirdDeaths     int `csv:"bird_deaths"`
	AnteaterDeaths int `csv:"anteater_deaths"`
	SnakeDeaths    int `csv:"snake_deaths"`

	BirdKills     int `csv:"bird_kills"`
	AnteaterKills int `csv:"anteater_kills"`
	SnakeKills    int `csv:"snake_kills"`

	AntEnergyP50      float64 `csv:"ant_energy_p50"`
	BirdEnergyP50     float64 `csv:"bird_energy_p50"`
	AnteaterEnergyP50 float64 `csv:"anteater_energy_p50"`
	SnakeEnergyP50    float64 `csv:"snake_energy_p50"`

	AntGeneration      float64 `csv:"ant_generation"`
	BirdGeneration     float64 `csv:"bird_generation"`
	AnteaterGeneration float64 `csv:"anteater_generation"`
	SnakeGeneration    float64 `csv:"snake_generation"`

	AntFitness      float64 `csv:"ant_fitness"`
	BirdFitness     float64 `csv:"bird_fitness"`
	AnteaterFitness float64 `csv:"anteater_fitness"`
	SnakeFitness    float64 `csv:"snake_fitness"`

	Deliveries     int     `csv:"deliveries"`
	NestSpawns     int     `csv:"nest_spawns"`
	Nests          int     `csv:"nests"`
	NestFood       int     `csv:"nest_food"`
	FoodEaten      int     `csv:"food_eaten"`
	CorpseFood     int     `csv:"corpse_food"`
	Food           int     `csv:"food"`
	PheromoneCells int     `csv:"pheromone_cells"`
	PheromoneTotal float64 `csv:"pheromone_total"`
}

// ToCSV converts WindowStats to a flat CSV-friendly struct.
func (s WindowStats) ToCSV() WindowStatsCSV {
	ant := s.Species[components.SpeciesAnt]
	bird := s.Species[components.SpeciesBird]
	anteater := s.Species[components.SpeciesAnteater]
	snake := s.Species[components.SpeciesSnake]

	return WindowStatsCSV{
		WindowEnd: s.WindowEndTick,

		Ants:      ant.Count,
		Birds:     bird.Count,
		Anteaters: anteater.Count,
		Snakes:    snake.Count,

		AntBirths:      ant.Births,
		BirdBirths:     bird.Births,
		AnteaterBirths: anteater.Births,
		SnakeBirths:    snake.Births,

		AntDeaths:      ant.Deaths,
		BirdDeaths:     bird.Deaths,
		AnteaterDeaths: anteater.Deaths,
		SnakeDeaths:    snake.Deaths,

		BirdKills:     bird.Kills,
		AnteaterKills: anteater.Kills,
		SnakeKills:    snake.Kills,

		AntEnergyP50:      ant.EnergyP50,
		BirdEnergyP50:     bird.EnergyP50,
		AnteaterEnergyP50: anteater.EnergyP50,
		SnakeEnergyP50:    snake.EnergyP50,

		AntGeneration:      ant.MeanGeneration,
		BirdGeneration:     bird.MeanGeneration,
		AnteaterGeneration: anteater.MeanGeneration,
		SnakeGeneration:    snake.MeanGeneration,

		AntFitness:      ant.MeanFitness,
		BirdFitness:     bird.MeanFitness,
		AnteaterFitness: anteater.MeanFitness,
		SnakeFitness:    snake.MeanFitness,

		Deliveries:     s.Deliveries,
		NestSpawns:     s.NestSpawns,
		Nests:          s.Nests,
		NestFood:       s.NestFood,
		FoodEaten:      s.FoodEaten,
		CorpseFood:     s.CorpseFood,
		Food:           s.FoodCount,
		PheromoneCells: s.PheromoneCells,
		PheromoneTotal: s.PheromoneTotal,
	}
}

// NestRecord is one row of the end-of-run colony table.
type NestRecord struct {
	ID         uint32  `csv:"id"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
	FoodStored int     `csv:"food_stored"`
	Occupants  int     `csv:"occupants"`
	Ants       int     `csv:"ants"`
}
