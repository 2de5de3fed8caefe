package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

func init() {
	config.MustInit("")
}

// sliceFood is a FoodSource backed by a plain slice.
type sliceFood struct {
	items   []components.FoodItem
	spawned []r2.Vec
}

func (f *sliceFood) NearestFood(pos r2.Vec, maxDist float64) (components.FoodItem, bool) {
	var best components.FoodItem
	found := false
	minDist := maxDist
	for _, it := range f.items {
		if d := distance(it.Pos, pos); d < minDist {
			minDist = d
			best = it
			found = true
		}
	}
	return best, found
}

func (f *sliceFood) RemoveFood(item components.FoodItem) bool {
	for i, it := range f.items {
		if it.Pos == item.Pos {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

func (f *sliceFood) SpawnFood(pos r2.Vec) bool {
	f.spawned = append(f.spawned, pos)
	f.items = append(f.items, components.FoodItem{Pos: pos, Energy: 100})
	return true
}

func (f *sliceFood) add(x, y float64) {
	f.items = append(f.items, components.FoodItem{Pos: r2.Vec{X: x, Y: y}, Energy: 100})
}

// newTestContext builds a context over a private copy of the default
// config, a seeded RNG and an empty slice-backed food source.
func newTestContext(t *testing.T, seed int64) (*StepContext, *sliceFood) {
	t.Helper()
	cfg := config.Cfg().Clone()
	food := &sliceFood{}
	ctx, err := NewStepContext(cfg, rand.New(rand.NewSource(seed)), food, NewPheromoneField(cfg.Pheromone))
	if err != nil {
		t.Fatalf("NewStepContext: %v", err)
	}
	return ctx, food
}

// spawn creates an agent with the species base gene and a fixed velocity.
func spawn(ctx *StepContext, s components.Species, x, y, vx, vy float64) *components.Agent {
	a := NewAgent(ctx, s, r2.Vec{X: x, Y: y}, DefaultGene(ctx.Species(s)))
	a.Vel = r2.Vec{X: vx, Y: vy}
	return a
}

// setAgents installs the per-species lists for the given agents.
func setAgents(ctx *StepContext, agents ...*components.Agent) {
	ctx.SetLists(Gather(agents), false)
}
