package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
)

func TestNearest(t *testing.T) {
	ctx, _ := newTestContext(t, 1)
	near := spawn(ctx, components.SpeciesBird, 10, 0, 1, 0)
	far := spawn(ctx, components.SpeciesBird, 30, 0, 1, 0)
	dead := spawn(ctx, components.SpeciesBird, 2, 0, 1, 0)
	dead.Alive = false
	resting := spawn(ctx, components.SpeciesAnt, 1, 0, 1, 0)
	resting.Ant.InsideNest = true

	origin := r2.Vec{}

	tests := []struct {
		name   string
		cands  []*components.Agent
		maxD   float64
		keep   func(*components.Agent) bool
		want   *components.Agent
		wantOK bool
	}{
		{"empty", nil, 100, nil, nil, false},
		{"closest wins", []*components.Agent{far, near}, 100, nil, near, true},
		{"dead skipped", []*components.Agent{dead, far}, 100, nil, far, true},
		{"inside nest skipped", []*components.Agent{resting, far}, 100, nil, far, true},
		{"strict max distance", []*components.Agent{near}, 10, nil, nil, false},
		{"predicate", []*components.Agent{near, far}, 100, func(a *components.Agent) bool { return a != near }, far, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nearest(tt.cands, origin, tt.maxD, tt.keep)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got agent %d, want %d", got.ID, tt.want.ID)
			}
		})
	}
}

func TestNearest_TieFirstEncountered(t *testing.T) {
	ctx, _ := newTestContext(t, 1)
	a := spawn(ctx, components.SpeciesBird, 5, 0, 1, 0)
	b := spawn(ctx, components.SpeciesBird, -5, 0, 1, 0)

	got, ok := Nearest([]*components.Agent{a, b}, r2.Vec{}, 100, nil)
	if !ok || got != a {
		t.Errorf("expected first candidate on exact tie")
	}
}

func TestWithinRadius(t *testing.T) {
	ctx, _ := newTestContext(t, 1)
	var agents []*components.Agent
	for i := 0; i < 10; i++ {
		agents = append(agents, spawn(ctx, components.SpeciesBird, float64(i*10), 0, 1, 0))
	}

	got := WithinRadius(nil, agents, r2.Vec{}, 45, nil)
	if len(got) != 5 {
		t.Fatalf("got %d agents within 45, want 5", len(got))
	}
	for i, a := range got {
		if a != agents[i] {
			t.Errorf("result %d out of candidate order", i)
		}
	}
}

func TestSpatialGrid_CandidatesCoverRadius(t *testing.T) {
	ctx, _ := newTestContext(t, 1)
	rng := rand.New(rand.NewSource(42))

	var agents []*components.Agent
	for i := 0; i < 300; i++ {
		agents = append(agents, spawn(ctx, components.SpeciesAnt, rng.Float64()*2000-1000, rng.Float64()*2000-1000, 1, 0))
	}

	grid := NewSpatialGrid[*components.Agent](100)
	grid.Rebuild(agents)
	if grid.Len() != len(agents) {
		t.Fatalf("grid holds %d, want %d", grid.Len(), len(agents))
	}

	for q := 0; q < 50; q++ {
		origin := r2.Vec{X: rng.Float64()*2000 - 1000, Y: rng.Float64()*2000 - 1000}
		radius := rng.Float64() * 250

		want := WithinRadius(nil, agents, origin, radius, nil)
		got := WithinRadius(nil, grid.CandidatesInto(nil, origin, radius), origin, radius, nil)

		if len(got) != len(want) {
			t.Fatalf("query %d: grid found %d, brute force %d", q, len(got), len(want))
		}
		seen := make(map[*components.Agent]bool, len(got))
		for _, a := range got {
			seen[a] = true
		}
		for _, a := range want {
			if !seen[a] {
				t.Fatalf("query %d: grid missed agent %d", q, a.ID)
			}
		}
	}
}

func TestStepContext_NearbyIndexedMatchesFullScan(t *testing.T) {
	ctx, _ := newTestContext(t, 5)
	rng := rand.New(rand.NewSource(9))

	var agents []*components.Agent
	for i := 0; i < 100; i++ {
		agents = append(agents, spawn(ctx, components.SpeciesBird, rng.Float64()*1000, rng.Float64()*1000, 1, 0))
	}
	origin := r2.Vec{X: 500, Y: 500}

	ctx.SetLists(Gather(agents), false)
	want := len(WithinRadius(nil, ctx.Nearby(origin, 120, components.SpeciesBird), origin, 120, nil))

	ctx.SetLists(Gather(agents), true)
	got := len(WithinRadius(nil, ctx.Nearby(origin, 120, components.SpeciesBird), origin, 120, nil))

	if got != want {
		t.Errorf("indexed Nearby found %d, full scan %d", got, want)
	}
}

func TestStepContext_IndexedSeesAntLeavingNest(t *testing.T) {
	ctx, _ := newTestContext(t, 6)
	ant := spawn(ctx, components.SpeciesAnt, 100, 100, 1, 0)
	ant.Ant.InsideNest = true
	origin := r2.Vec{X: 110, Y: 100}

	for _, indexed := range []bool{false, true} {
		ant.Ant.InsideNest = true
		ctx.SetLists(Gather([]*components.Agent{ant}), indexed)

		if _, ok := Nearest(ctx.Nearby(origin, 50, components.SpeciesAnt), origin, 50, nil); ok {
			t.Fatalf("indexed=%v: resting ant visible", indexed)
		}

		// Leaves the nest after the lists were built.
		ant.Ant.InsideNest = false
		got, ok := Nearest(ctx.Nearby(origin, 50, components.SpeciesAnt), origin, 50, nil)
		if !ok || got != ant {
			t.Errorf("indexed=%v: ant that left the nest not found", indexed)
		}
	}
}
