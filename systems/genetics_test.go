package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

func inRange(v float64, r config.Range) bool {
	return v >= r.Min && v <= r.Max
}

func TestMutate_AlwaysWithinBounds(t *testing.T) {
	bounds := config.Cfg().Mutation.Bounds

	genes := []components.Gene{
		{Speed: 1.8, Perception: 60, Size: 1},
		{Speed: 15, Perception: 200, Size: 10},
		{Speed: 0.5, Perception: 10, Size: 0.3},
		{Speed: 1000, Perception: -5, Size: 0},
		{Speed: -1, Perception: 1e9, Size: 50},
	}

	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, g := range genes {
			for _, rate := range []float64{0, 0.2, 1} {
				got := Mutate(rng, g, rate, 0.9, bounds)
				if !inRange(got.Speed, bounds.Speed) || !inRange(got.Perception, bounds.Perception) || !inRange(got.Size, bounds.Size) {
					t.Fatalf("seed %d rate %.1f: mutate(%v) = %v out of bounds", seed, rate, g, got)
				}
			}
		}
	}
}

func TestMutate_RateZeroKeepsInBoundsGene(t *testing.T) {
	bounds := config.Cfg().Mutation.Bounds
	rng := rand.New(rand.NewSource(1))
	g := components.Gene{Speed: 3, Perception: 80, Size: 5}

	for i := 0; i < 100; i++ {
		if got := Mutate(rng, g, 0, 0.3, bounds); got != g {
			t.Fatalf("rate 0 changed gene: %v -> %v", g, got)
		}
	}
}

func TestMutate_PerturbationIsRelative(t *testing.T) {
	bounds := config.Cfg().Mutation.Bounds
	rng := rand.New(rand.NewSource(7))
	g := components.Gene{Speed: 4, Perception: 100, Size: 2}
	amount := 0.3

	tests := []struct {
		name  string
		base  float64
		field func(components.Gene) float64
	}{
		{"speed", g.Speed, func(x components.Gene) float64 { return x.Speed }},
		{"perception", g.Perception, func(x components.Gene) float64 { return x.Perception }},
		{"size", g.Size, func(x components.Gene) float64 { return x.Size }},
	}

	for i := 0; i < 500; i++ {
		got := Mutate(rng, g, 1, amount, bounds)
		for _, tt := range tests {
			v := tt.field(got)
			lo, hi := tt.base*(1-amount), tt.base*(1+amount)
			if v < lo-1e-9 || v > hi+1e-9 {
				t.Fatalf("%s = %.4f outside [%.4f, %.4f]", tt.name, v, lo, hi)
			}
		}
	}
}

func TestCrossover_PicksParentFields(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := components.Gene{Speed: 1, Perception: 2, Size: 3}
	b := components.Gene{Speed: 10, Perception: 20, Size: 30}

	for i := 0; i < 50; i++ {
		c := Crossover(rng, a, b)
		if c.Speed != a.Speed && c.Speed != b.Speed {
			t.Fatalf("speed %v from neither parent", c.Speed)
		}
		if c.Perception != a.Perception && c.Perception != b.Perception {
			t.Fatalf("perception %v from neither parent", c.Perception)
		}
		if c.Size != a.Size && c.Size != b.Size {
			t.Fatalf("size %v from neither parent", c.Size)
		}
	}
}

func TestFitness_BaseGeneScoresWeightSum(t *testing.T) {
	for _, name := range []string{"ant", "bird", "anteater", "snake"} {
		t.Run(name, func(t *testing.T) {
			sp, ok := config.Cfg().SpeciesByName(name)
			if !ok {
				t.Fatalf("species %q missing", name)
			}
			w := sp.FitnessWeights
			want := w.Speed + w.Perception + w.Size
			if got := Fitness(DefaultGene(sp), sp); got < want-1e-9 || got > want+1e-9 {
				t.Errorf("Fitness(base) = %f, want %f", got, want)
			}
		})
	}
}
