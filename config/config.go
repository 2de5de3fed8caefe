// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Energy       EnergyConfig       `yaml:"energy"`
	Food         FoodConfig         `yaml:"food"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Pheromone    PheromoneConfig    `yaml:"pheromone"`
	Ant          AntConfig          `yaml:"ant"`
	Bird         BirdConfig         `yaml:"bird"`
	Predator     PredatorConfig     `yaml:"predator"`
	Anteater     AnteaterConfig     `yaml:"anteater"`
	Snake        SnakeConfig        `yaml:"snake"`
	Nest         NestConfig         `yaml:"nest"`
	Species      []SpeciesConfig    `yaml:"species"`
	Spatial      SpatialConfig      `yaml:"spatial"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the nominal world extent. The world is unbounded; this
// box only anchors food placement and initial spawns.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// EnergyConfig holds shared energy economics.
type EnergyConfig struct {
	Initial     float64 `yaml:"initial"`      // Starting energy for ants and birds
	MoveCost    float64 `yaml:"move_cost"`    // Base per-tick drain, scaled per species
	LowFraction float64 `yaml:"low_fraction"` // Fraction of initial energy considered "hungry"
}

// CostConfig holds the three per-tick energy cost multipliers of a species.
// Drain = MoveCost*Base + speed²*Speed + geneSize*Size.
type CostConfig struct {
	Base  float64 `yaml:"base"`
	Speed float64 `yaml:"speed"`
	Size  float64 `yaml:"size"`
}

// FoodConfig holds food item parameters.
type FoodConfig struct {
	Energy          float64 `yaml:"energy"`           // Energy in one food item
	SpawnRate       float64 `yaml:"spawn_rate"`       // Probability per tick of placing one item
	Max             int     `yaml:"max"`              // Cap on live food items
	InitialFraction float64 `yaml:"initial_fraction"` // Fraction of Max placed at reset
	CenterBias      float64 `yaml:"center_bias"`      // Fraction of placements concentrated near the center
	Fertility       float64 `yaml:"fertility"`        // Noise frequency of the placement acceptance field (0 = off)
	CorpseChance    float64 `yaml:"corpse_chance"`    // Probability a corpse seeds food
	CorpseMin       int     `yaml:"corpse_min"`
	CorpseMax       int     `yaml:"corpse_max"`
	CorpseScatter   float64 `yaml:"corpse_scatter"` // Full width of the scatter box around a corpse
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// GeneBounds holds per-field clamping ranges for genes.
type GeneBounds struct {
	Speed      Range `yaml:"speed"`
	Perception Range `yaml:"perception"`
	Size       Range `yaml:"size"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate   float64    `yaml:"rate"`
	Amount float64    `yaml:"amount"`
	Bounds GeneBounds `yaml:"bounds"`
}

// ReproductionConfig holds the shared reproduction economics. Species scale
// these through their threshold and cost factors.
type ReproductionConfig struct {
	Threshold       float64 `yaml:"threshold"`
	Cost            float64 `yaml:"cost"`
	OffspringEnergy float64 `yaml:"offspring_energy"` // Fraction of cost given to the newborn
}

// PheromoneConfig holds pheromone field parameters.
type PheromoneConfig struct {
	CellSize    float64 `yaml:"cell_size"`
	MaxStrength float64 `yaml:"max_strength"`
	Evaporation float64 `yaml:"evaporation"`  // Multiplier applied each tick
	Epsilon     float64 `yaml:"epsilon"`      // Cells below this are dropped
	Deposit     float64 `yaml:"deposit"`      // Base deposit amount
	ForwardBias float64 `yaml:"forward_bias"` // Heading bias in probabilistic selection
}

// AntConfig holds ant behavior parameters.
type AntConfig struct {
	RestTicks          int        `yaml:"rest_ticks"`
	FleeTicks          int        `yaml:"flee_ticks"`
	FleeNoise          float64    `yaml:"flee_noise"`
	ExitRadius         float64    `yaml:"exit_radius"`
	ArriveRadius       float64    `yaml:"arrive_radius"`
	NestBuffer         float64    `yaml:"nest_buffer"`          // Pheromone following suppressed inside this
	DepositMinDistance float64    `yaml:"deposit_min_distance"` // No deposits inside this
	DepositMultiplier  float64    `yaml:"deposit_multiplier"`
	TurnRate           float64    `yaml:"turn_rate"`
	WanderTurn         float64    `yaml:"wander_turn"`
	PheromoneBlend     float64    `yaml:"pheromone_blend"`
	PheromoneRadius    int        `yaml:"pheromone_radius"`
	PickupPadding      float64    `yaml:"pickup_padding"`
	SeparationFactor   float64    `yaml:"separation_factor"` // Radius = body size * factor
	SeparationStrength float64    `yaml:"separation_strength"`
	SeparationWeight   float64    `yaml:"separation_weight"`
	OverlapPush        float64    `yaml:"overlap_push"`
	JitterPerNeighbor  float64    `yaml:"jitter_per_neighbor"`
	JitterMax          float64    `yaml:"jitter_max"`
	JitterMinCrowd     int        `yaml:"jitter_min_crowd"`
	Cost               CostConfig `yaml:"cost"`
}

// BirdConfig holds bird behavior parameters.
type BirdConfig struct {
	MaxForce             float64    `yaml:"max_force"`
	SeparationWeight     float64    `yaml:"separation_weight"`
	AlignmentWeight      float64    `yaml:"alignment_weight"`
	CohesionWeight       float64    `yaml:"cohesion_weight"`
	SeparationFraction   float64    `yaml:"separation_fraction"` // Of perception
	FleeWeight           float64    `yaml:"flee_weight"`
	FleeForceFactor      float64    `yaml:"flee_force_factor"` // Cap multiple of MaxForce
	FoodWeight           float64    `yaml:"food_weight"`
	SeekForceFactor      float64    `yaml:"seek_force_factor"`
	HungerEnergy         float64    `yaml:"hunger_energy"`
	HungerFactor         float64    `yaml:"hunger_factor"`
	MinSpeedFraction     float64    `yaml:"min_speed_fraction"`
	FatigueFlying        float64    `yaml:"fatigue_flying"`
	FatigueResting       float64    `yaml:"fatigue_resting"`
	FatigueMax           float64    `yaml:"fatigue_max"`
	PerchEnergyGain      float64    `yaml:"perch_energy_gain"`
	MaxEnergyFactor      float64    `yaml:"max_energy_factor"` // Perch regen cap, multiple of initial energy
	LandFatigue          float64    `yaml:"land_fatigue"`
	LandDivisor          float64    `yaml:"land_divisor"`
	PerchMin             int        `yaml:"perch_min"`
	PerchSpread          int        `yaml:"perch_spread"`
	RestedFatigue        float64    `yaml:"rested_fatigue"`
	RestedChance         float64    `yaml:"rested_chance"`
	HungryChance         float64    `yaml:"hungry_chance"`
	TakeOffTicks         int        `yaml:"take_off_ticks"`
	TakeOffSpeedFraction float64    `yaml:"take_off_speed_fraction"`
	AmbushVisibility     float64    `yaml:"ambush_visibility"` // Of perception
	EatPadding           float64    `yaml:"eat_padding"`
	AntEnergyFraction    float64    `yaml:"ant_energy_fraction"` // Of food energy
	ChildVelocityJitter  float64    `yaml:"child_velocity_jitter"`
	Cost                 CostConfig `yaml:"cost"`
}

// PredatorConfig holds the stamina and post-catch parameters shared by
// anteaters and snakes.
type PredatorConfig struct {
	StaminaInterval int     `yaml:"stamina_interval"`
	StaminaHistory  int     `yaml:"stamina_history"`
	HighDrain       float64 `yaml:"high_drain"`
	LowDrain        float64 `yaml:"low_drain"`
	FatigueStep     float64 `yaml:"fatigue_step"`
	RecoverStep     float64 `yaml:"recover_step"`
	MinFatigue      float64 `yaml:"min_fatigue"`
	SatedEnergy     float64 `yaml:"sated_energy"`
	SatedCooldown   int     `yaml:"sated_cooldown"`
	HungryCooldown  int     `yaml:"hungry_cooldown"`
}

// AnteaterConfig holds anteater behavior parameters.
type AnteaterConfig struct {
	HuntTurnRate float64    `yaml:"hunt_turn_rate"`
	CatchPadding float64    `yaml:"catch_padding"`
	EnergyGain   float64    `yaml:"energy_gain"` // Of food energy
	WanderDrift  float64    `yaml:"wander_drift"`
	WanderLimit  float64    `yaml:"wander_limit"`
	WanderDecay  float64    `yaml:"wander_decay"`
	WanderScale  float64    `yaml:"wander_scale"`
	JumpChance   float64    `yaml:"jump_chance"`
	JumpAmount   float64    `yaml:"jump_amount"`
	Cost         CostConfig `yaml:"cost"`
}

// SnakeConfig holds snake behavior parameters.
type SnakeConfig struct {
	StopTicks        int        `yaml:"stop_ticks"`
	AmbushMin        int        `yaml:"ambush_min"`
	AmbushSpread     int        `yaml:"ambush_spread"`
	StrikeTicks      int        `yaml:"strike_ticks"`
	StrikeRange      float64    `yaml:"strike_range"`
	StrikeSpeed      float64    `yaml:"strike_speed"` // Multiple of gene speed
	StrikeTurnRate   float64    `yaml:"strike_turn_rate"`
	RecoverTicks     int        `yaml:"recover_ticks"`
	LostTargetTicks  int        `yaml:"lost_target_ticks"`
	RestartTicks     int        `yaml:"restart_ticks"` // Wander length after recovering
	WanderMin        int        `yaml:"wander_min"`
	WanderSpread     int        `yaml:"wander_spread"`
	WanderSpeed      float64    `yaml:"wander_speed"`
	RecoverSpeed     float64    `yaml:"recover_speed"`
	WanderDrift      float64    `yaml:"wander_drift"`
	WanderScale      float64    `yaml:"wander_scale"`
	UndulationRate   float64    `yaml:"undulation_rate"`   // Noise phase advance per tick
	UndulationAmount float64    `yaml:"undulation_amount"` // Heading change at full noise
	CatchPadding     float64    `yaml:"catch_padding"`
	EnergyGain       float64    `yaml:"energy_gain"`
	Segments         int        `yaml:"segments"`
	SegmentSpacing   float64    `yaml:"segment_spacing"` // Multiple of body size
	Cost             CostConfig `yaml:"cost"`
}

// NestConfig holds colony parameters.
type NestConfig struct {
	Size           float64 `yaml:"size"`
	MaxAnts        int     `yaml:"max_ants"`
	SpawnInterval  int     `yaml:"spawn_interval"`
	SpawnCost      int     `yaml:"spawn_cost"`
	JoinRadius     float64 `yaml:"join_radius"`     // Placed ants join a nest within this
	DeliveryRadius float64 `yaml:"delivery_radius"` // Delivery credited to a nest within this of the ant's home
}

// GeneConfig is the YAML form of a gene triple.
type GeneConfig struct {
	Speed      float64 `yaml:"speed"`
	Perception float64 `yaml:"perception"`
	Size       float64 `yaml:"size"`
}

// SpeciesConfig is one row of the per-species constant table.
type SpeciesConfig struct {
	Name            string     `yaml:"name"`
	BodySize        float64    `yaml:"body_size"`
	SizeDivisor     float64    `yaml:"size_divisor"`
	BaseGene        GeneConfig `yaml:"base_gene"`
	InitialEnergy   float64    `yaml:"initial_energy"`
	CanReproduce    bool       `yaml:"can_reproduce"`
	ThresholdFactor float64    `yaml:"threshold_factor"`
	CostFactor      float64    `yaml:"cost_factor"`
	Cooldown        int        `yaml:"cooldown"`
	Pregnancy       int        `yaml:"pregnancy"`
	SpawnOffset     float64    `yaml:"spawn_offset"`
	FitnessWeights  GeneConfig `yaml:"fitness_weights"`
}

// SpatialConfig holds spatial index parameters.
type SpatialConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SpeciesIndex map[string]int // name -> index into Species
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file. A species list in the
		// file replaces the default table wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// computeDerived validates the species table and builds lookup indices.
func (c *Config) computeDerived() error {
	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i, sp := range c.Species {
		if sp.Name == "" {
			return fmt.Errorf("species entry %d has no name", i)
		}
		if _, dup := c.Derived.SpeciesIndex[sp.Name]; dup {
			return fmt.Errorf("duplicate species %q", sp.Name)
		}
		if sp.SizeDivisor == 0 {
			c.Species[i].SizeDivisor = 1
		}
		c.Derived.SpeciesIndex[sp.Name] = i
	}
	return nil
}

// SpeciesByName returns the table row for a species name.
func (c *Config) SpeciesByName(name string) (*SpeciesConfig, bool) {
	i, ok := c.Derived.SpeciesIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Species[i], true
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Species = append([]SpeciesConfig(nil), c.Species...)
	cp.Derived.SpeciesIndex = make(map[string]int, len(c.Derived.SpeciesIndex))
	for k, v := range c.Derived.SpeciesIndex {
		cp.Derived.SpeciesIndex[k] = v
	}
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
