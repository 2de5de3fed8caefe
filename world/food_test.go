package world

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

func init() {
	config.MustInit("")
}

func testStore(max int) *FoodStore {
	cfg := config.Cfg().Food
	cfg.Max = max
	return NewFoodStore(cfg)
}

func TestFoodStore_NearestFood(t *testing.T) {
	s := testStore(10)
	s.SpawnFood(r2.Vec{X: 10, Y: 0})
	s.SpawnFood(r2.Vec{X: 0, Y: 5})
	s.SpawnFood(r2.Vec{X: 100, Y: 100})

	tests := []struct {
		name    string
		origin  r2.Vec
		maxDist float64
		want    r2.Vec
		wantOK  bool
	}{
		{"closest of several", r2.Vec{}, 50, r2.Vec{X: 0, Y: 5}, true},
		{"far item", r2.Vec{X: 95, Y: 95}, 50, r2.Vec{X: 100, Y: 100}, true},
		{"nothing in range", r2.Vec{X: 500}, 50, r2.Vec{}, false},
		{"boundary is exclusive", r2.Vec{X: 0, Y: 15}, 10, r2.Vec{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.NearestFood(tt.origin, tt.maxDist)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Pos != tt.want {
				t.Errorf("nearest = %v, want %v", got.Pos, tt.want)
			}
			if ok && got.Energy != config.Cfg().Food.Energy {
				t.Errorf("energy = %f", got.Energy)
			}
		})
	}
}

func TestFoodStore_RemoveOnce(t *testing.T) {
	s := testStore(10)
	s.SpawnFood(r2.Vec{X: 1})
	item, ok := s.NearestFood(r2.Vec{}, 10)
	if !ok {
		t.Fatal("expected food")
	}

	if !s.RemoveFood(item) {
		t.Fatal("first removal failed")
	}
	if s.world.Alive(item.Entity) {
		t.Error("removed item's entity still alive")
	}
	if s.RemoveFood(item) {
		t.Error("second removal of the same item succeeded")
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
	if _, ok := s.NearestFood(r2.Vec{}, 10); ok {
		t.Error("removed food still found")
	}
}

func TestFoodStore_EatCyclesLeaveNoEntities(t *testing.T) {
	s := testStore(1)
	var eaten []components.FoodItem
	for i := 0; i < 1000; i++ {
		if !s.SpawnFood(r2.Vec{X: float64(i % 7)}) {
			t.Fatalf("cycle %d: spawn refused with count %d", i, s.Count())
		}
		item, ok := s.NearestFood(r2.Vec{}, 100)
		if !ok || !s.RemoveFood(item) {
			t.Fatalf("cycle %d: could not eat", i)
		}
		eaten = append(eaten, item)
	}

	for _, it := range eaten {
		if s.world.Alive(it.Entity) {
			t.Fatalf("eaten item %v still alive in the world", it.Entity)
		}
		if s.RemoveFood(it) {
			t.Fatal("stale item removed twice")
		}
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
}

func TestFoodStore_CapAndReset(t *testing.T) {
	s := testStore(3)
	for i := 0; i < 5; i++ {
		s.SpawnFood(r2.Vec{X: float64(i)})
	}
	if s.Count() != 3 {
		t.Fatalf("count = %d, want capped at 3", s.Count())
	}

	var items []components.FoodItem
	s.Each(func(it components.FoodItem) { items = append(items, it) })
	if len(items) != 3 {
		t.Errorf("Each visited %d items", len(items))
	}

	s.Reset()
	if s.Count() != 0 {
		t.Errorf("count after reset = %d", s.Count())
	}
	for _, it := range items {
		if s.world.Alive(it.Entity) {
			t.Errorf("entity %v survived reset", it.Entity)
		}
		if s.RemoveFood(it) {
			t.Error("removed an item that reset already cleared")
		}
	}
	if !s.SpawnFood(r2.Vec{}) {
		t.Error("spawn after reset refused")
	}
}

func TestSpawnPolicy_TickRespectsRateAndCap(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		max  int
		want int
	}{
		{"never", 0, 10, 0},
		{"always until full", 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Cfg().Food
			cfg.SpawnRate = tt.rate
			cfg.Max = tt.max
			s := NewFoodStore(cfg)
			p := NewSpawnPolicy(cfg, config.Cfg().World, 1)
			rng := rand.New(rand.NewSource(1))

			for i := 0; i < 50; i++ {
				p.Tick(rng, s)
			}
			if s.Count() != tt.want {
				t.Errorf("count = %d, want %d", s.Count(), tt.want)
			}
		})
	}
}

func TestSpawnPolicy_PlacementAroundCenter(t *testing.T) {
	w := config.Cfg().World
	cfg := config.Cfg().Food
	cfg.Fertility = 0
	p := NewSpawnPolicy(cfg, w, 2)
	rng := rand.New(rand.NewSource(2))

	center := r2.Vec{X: w.Width / 2, Y: w.Height / 2}
	limit := math.Hypot(w.Width, w.Height) / 2 * spreadFraction
	var sum float64
	const n = 5000
	for i := 0; i < n; i++ {
		d := r2.Norm(r2.Sub(p.Place(rng), center))
		if d > limit+1e-9 {
			t.Fatalf("placement %f beyond radius %f", d, limit)
		}
		sum += d
	}
	// A uniform disc has mean distance 2R/3; the bias pulls it well inside.
	if mean := sum / n; mean >= 2*limit/3 {
		t.Errorf("mean distance %f not center-weighted (uniform %f)", mean, 2*limit/3)
	}
}

func TestSpawnPolicy_Fill(t *testing.T) {
	cfg := config.Cfg().Food
	cfg.Max = 40
	cfg.InitialFraction = 0.5
	s := NewFoodStore(cfg)
	p := NewSpawnPolicy(cfg, config.Cfg().World, 3)

	if placed := p.Fill(rand.New(rand.NewSource(3)), s); placed != 20 || s.Count() != 20 {
		t.Errorf("placed = %d, count = %d, want 20", placed, s.Count())
	}
}

func TestSpawnPolicy_FertilityInUnitRange(t *testing.T) {
	cfg := config.Cfg().Food
	cfg.Fertility = 0.01
	p := NewSpawnPolicy(cfg, config.Cfg().World, 4)
	for x := 0.0; x < 2000; x += 37 {
		for y := 0.0; y < 1500; y += 41 {
			if f := p.Fertility(r2.Vec{X: x, Y: y}); f < 0 || f > 1 {
				t.Fatalf("fertility %f at (%f, %f)", f, x, y)
			}
		}
	}
}
