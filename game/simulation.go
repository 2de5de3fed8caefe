// Package game drives the ecosystem: it owns the agents, nests, food store
// and pheromone field and advances them one tick at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
	"github.com/pthm-cable/ecotope/systems"
	"github.com/pthm-cable/ecotope/telemetry"
	"github.com/pthm-cable/ecotope/world"
)

// Options configures a Simulation.
type Options struct {
	Seed      int64
	Unindexed bool // Scan full species lists instead of spatial buckets
	LogStats  bool
	Output    *telemetry.OutputManager

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete ecosystem state. It is not safe for
// concurrent use.
type Simulation struct {
	cfg  *config.Config
	opts Options
	rng  *rand.Rand

	food     *world.FoodStore
	policy   *world.SpawnPolicy
	field    *systems.PheromoneField
	deposits *systems.DepositBuffer
	ctx      *systems.StepContext

	agents    []*components.Agent
	nests     []*components.Nest
	delivered []*components.Agent // Ants that unloaded this tick
	tick      int

	registry *systems.SystemRegistry
	phases   map[string]func()

	// Telemetry
	collector  *telemetry.Collector
	perf       *telemetry.PerfCollector
	bookmarks  *telemetry.BookmarkDetector
	deliveries int // Total since reset
}

// New creates a simulation over cfg. The food store is seeded; no agents
// exist until Spawn or Populate is called.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	food := world.NewFoodStore(cfg.Food)
	field := systems.NewPheromoneField(cfg.Pheromone)

	ctx, err := systems.NewStepContext(cfg, rng, food, field)
	if err != nil {
		return nil, fmt.Errorf("creating step context: %w", err)
	}
	ctx.Noise = opensimplex.New(opts.Seed)

	s := &Simulation{
		cfg:       cfg,
		opts:      opts,
		rng:       rng,
		food:      food,
		policy:    world.NewSpawnPolicy(cfg.Food, cfg.World, opts.Seed),
		field:     field,
		deposits:  systems.NewDepositBuffer(field),
		ctx:       ctx,
		registry:  systems.NewSystemRegistry(),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks: telemetry.NewBookmarkDetector(10),
	}
	ctx.Deposits = s.deposits

	s.phases = map[string]func(){
		telemetry.PhaseFood:      s.stepFood,
		telemetry.PhasePheromone: func() { s.StepPheromoneField(cfg.Pheromone.Evaporation) },
		telemetry.PhaseSpatial:   s.gatherLists,
		telemetry.PhaseBehavior:  s.stepAgents,
		telemetry.PhaseDeposits:  func() { s.deposits.Flush() },
		telemetry.PhaseDelivery:  s.creditDeliveries,
		telemetry.PhaseLifecycle: s.resolveLifecycle,
		telemetry.PhaseCleanup:   s.purge,
		telemetry.PhaseNests:     s.stepNests,
		telemetry.PhaseTelemetry: s.flushTelemetry,
	}
	for _, info := range s.registry.All() {
		if _, ok := s.phases[info.ID]; !ok {
			return nil, fmt.Errorf("phase %q (%s) has no implementation", info.ID, info.Name)
		}
	}

	s.policy.Fill(rng, food)
	return s, nil
}

// Reset clears agents, nests, food and pheromone and reseeds the food store.
func (s *Simulation) Reset() {
	s.agents = nil
	s.nests = nil
	s.delivered = s.delivered[:0]
	s.food.Reset()
	s.field.Reset()
	s.deposits.Flush()
	s.tick = 0
	s.deliveries = 0
	s.ctx.Tick = 0
	s.collector.Reset(0)
	placed := s.policy.Fill(s.rng, s.food)

	slog.Info("simulation_reset", "food", placed)
}

// Step advances the simulation by one tick, running every registered phase
// in order.
func (s *Simulation) Step() {
	s.tick++
	s.ctx.Tick = s.tick

	s.perf.StartTick()
	for _, id := range s.registry.IDs() {
		s.perf.StartPhase(id)
		s.phases[id]()
	}
	s.perf.EndTick()
}

// StepPheromoneField evaporates every cell by decay.
func (s *Simulation) StepPheromoneField(decay float64) {
	s.field.Evaporate(decay)
}

func (s *Simulation) stepFood() {
	s.policy.Tick(s.rng, s.food)
}

func (s *Simulation) gatherLists() {
	s.ctx.SetLists(systems.Gather(s.agents), !s.opts.Unindexed)
}

// stepAgents runs every agent's behavior in place. Later agents observe the
// updates of earlier ones; the agent slice is not grown during the pass.
func (s *Simulation) stepAgents() {
	s.delivered = s.delivered[:0]
	for _, a := range s.agents {
		out := systems.StepAgent(a, s.ctx)
		if out.Delivered {
			s.delivered = append(s.delivered, a)
		}
		if out.Kills > 0 {
			s.collector.RecordKills(a.Species, out.Kills)
		}
		if out.FoodEaten > 0 {
			s.collector.RecordFoodEaten(out.FoodEaten)
		}
	}
}

// creditDeliveries stores each unloaded item in the nest at the ant's home.
func (s *Simulation) creditDeliveries() {
	for _, a := range s.delivered {
		s.deliveries++
		s.collector.RecordDelivery()
		if nest, ok := systems.FindNearestNest(s.nests, a.Ant.Nest, s.cfg.Nest.DeliveryRadius); ok {
			systems.StoreFood(nest, 1)
		}
	}
}

func (s *Simulation) resolveLifecycle() {
	born, report := systems.ResolveLifecycle(s.agents, s.ctx)
	s.agents = append(s.agents, born...)
	for sp, n := range report.Births {
		for i := 0; i < n; i++ {
			s.collector.RecordBirth(components.Species(sp))
		}
	}
	s.collector.RecordCorpseFood(report.CorpseFood)
}

// purge drops dead agents and agents whose position or velocity stopped
// being finite.
func (s *Simulation) purge() {
	live := s.agents[:0]
	for _, a := range s.agents {
		if a.Alive && a.Finite() {
			live = append(live, a)
			continue
		}
		s.collector.RecordDeath(a.Species)
	}
	for i := len(live); i < len(s.agents); i++ {
		s.agents[i] = nil
	}
	s.agents = live
}

func (s *Simulation) stepNests() {
	var ants []*components.Agent
	for _, a := range s.agents {
		if a.Species == components.SpeciesAnt {
			ants = append(ants, a)
		}
	}
	for _, n := range s.nests {
		if ant := systems.StepNest(n, ants, s.ctx); ant != nil {
			s.agents = append(s.agents, ant)
			s.collector.RecordNestSpawn()
			s.collector.RecordBirth(components.SpeciesAnt)
		}
	}
}

// Tick returns the current simulation tick.
func (s *Simulation) Tick() int {
	return s.tick
}

// Config returns the configuration the simulation runs on.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Agents returns the live agents. The slice is owned by the simulation.
func (s *Simulation) Agents() []*components.Agent {
	return s.agents
}

// Nests returns all colonies.
func (s *Simulation) Nests() []*components.Nest {
	return s.nests
}

// Food returns the food store.
func (s *Simulation) Food() *world.FoodStore {
	return s.food
}

// Field returns the pheromone field.
func (s *Simulation) Field() *systems.PheromoneField {
	return s.field
}

// Context returns the step context behaviors run against.
func (s *Simulation) Context() *systems.StepContext {
	return s.ctx
}

// Population returns the number of live agents per species.
func (s *Simulation) Population() [components.NumSpecies]int {
	var counts [components.NumSpecies]int
	for _, a := range s.agents {
		if a.Alive {
			counts[a.Species]++
		}
	}
	return counts
}

// Deliveries returns the food items delivered to nests since the last reset.
func (s *Simulation) Deliveries() int {
	return s.deliveries
}

// PerfStats returns timing statistics over the recent ticks.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}
