package systems

import (
	"fmt"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

// FoodSource is the world collaborator behaviors find and eat food through.
type FoodSource interface {
	NearestFood(pos r2.Vec, maxDist float64) (components.FoodItem, bool)
	RemoveFood(item components.FoodItem) bool
	SpawnFood(pos r2.Vec) bool
}

// SpeciesLists holds the live agents of each species, gathered once per tick.
type SpeciesLists [components.NumSpecies][]*components.Agent

// Gather builds per-species lists of live agents.
func Gather(agents []*components.Agent) SpeciesLists {
	var lists SpeciesLists
	for _, a := range agents {
		if a.Alive {
			lists[a.Species] = append(lists[a.Species], a)
		}
	}
	return lists
}

// Outcome reports what an agent did during its step.
type Outcome struct {
	Delivered bool // Ant unloaded food at its nest
	PickedUp  bool // Ant picked up food
	Kills     int
	FoodEaten int
}

// StepContext carries everything a behavior may read or write during one
// tick. It replaces ambient globals: the simulation owns one and passes it
// explicitly.
type StepContext struct {
	Cfg      *config.Config
	Rng      *rand.Rand
	Food     FoodSource
	Field    *PheromoneField
	Deposits *DepositBuffer // nil deposits straight into Field
	Noise    opensimplex.Noise
	Lists    SpeciesLists
	Tick     int

	species [components.NumSpecies]*config.SpeciesConfig
	grids   [components.NumSpecies]*SpatialGrid[*components.Agent]
	indexed bool
	buf     []*components.Agent
	nextID  uint32
}

// NewStepContext resolves the species table and prepares spatial indices.
func NewStepContext(cfg *config.Config, rng *rand.Rand, food FoodSource, field *PheromoneField) (*StepContext, error) {
	ctx := &StepContext{
		Cfg:   cfg,
		Rng:   rng,
		Food:  food,
		Field: field,
	}
	for s := components.Species(0); s < components.NumSpecies; s++ {
		sp, ok := cfg.SpeciesByName(s.String())
		if !ok {
			return nil, fmt.Errorf("species table: %w: %q", components.ErrUnknownSpecies, s.String())
		}
		ctx.species[s] = sp
		ctx.grids[s] = NewSpatialGrid[*components.Agent](cfg.Spatial.CellSize)
	}
	return ctx, nil
}

// Species returns the constant table row of a species.
func (ctx *StepContext) Species(s components.Species) *config.SpeciesConfig {
	return ctx.species[s]
}

// SetLists installs the per-species lists for this tick. When indexed is
// true the lists are bucketed so Nearby can skip distant agents.
func (ctx *StepContext) SetLists(lists SpeciesLists, indexed bool) {
	ctx.Lists = lists
	ctx.indexed = indexed
	if !indexed {
		return
	}
	for s := range lists {
		ctx.grids[s].Rebuild(lists[s])
	}
}

// Nearby returns candidate agents of the given species around origin. With
// indexing on this is a superset of the agents within radius; without it,
// the full lists. The slice is reused by the next call.
func (ctx *StepContext) Nearby(origin r2.Vec, radius float64, species ...components.Species) []*components.Agent {
	ctx.buf = ctx.buf[:0]
	for _, s := range species {
		if ctx.indexed {
			ctx.buf = ctx.grids[s].CandidatesInto(ctx.buf, origin, radius)
		} else {
			ctx.buf = append(ctx.buf, ctx.Lists[s]...)
		}
	}
	return ctx.buf
}

// deposit queues or applies a pheromone deposit.
func (ctx *StepContext) deposit(pos r2.Vec, amount float64) {
	if ctx.Deposits != nil {
		ctx.Deposits.Add(pos.X, pos.Y, amount)
		return
	}
	if ctx.Field != nil {
		ctx.Field.Deposit(pos.X, pos.Y, amount)
	}
}

// NewID hands out agent and nest identifiers, unique per context.
func (ctx *StepContext) NewID() uint32 {
	ctx.nextID++
	return ctx.nextID
}

// lowEnergy is the hunger line shared by ants and birds.
func (ctx *StepContext) lowEnergy() float64 {
	return ctx.Cfg.Energy.Initial * ctx.Cfg.Energy.LowFraction
}
