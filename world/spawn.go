package world

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/config"
)

const (
	spreadFraction   = 0.8 // Of the half diagonal
	placementRetries = 8
)

// SpawnPolicy places food: at most one item per tick with a fixed
// probability, concentrated toward the world center. When fertility is on,
// candidate points are accepted against a smooth noise field, so food
// clusters into patches.
type SpawnPolicy struct {
	cfg    config.FoodConfig
	center r2.Vec
	radius float64
	field  opensimplex.Noise
}

// NewSpawnPolicy builds the policy for a world box.
func NewSpawnPolicy(food config.FoodConfig, w config.WorldConfig, seed int64) *SpawnPolicy {
	return &SpawnPolicy{
		cfg:    food,
		center: r2.Vec{X: w.Width / 2, Y: w.Height / 2},
		radius: math.Hypot(w.Width, w.Height) / 2 * spreadFraction,
		field:  opensimplex.NewNormalized(seed),
	}
}

// Place draws one food position.
func (p *SpawnPolicy) Place(rng *rand.Rand) r2.Vec {
	pos := p.draw(rng)
	if p.cfg.Fertility <= 0 {
		return pos
	}
	for i := 0; i < placementRetries; i++ {
		if rng.Float64() < p.Fertility(pos) {
			return pos
		}
		pos = p.draw(rng)
	}
	return pos
}

// Fertility returns the acceptance probability at pos, in [0, 1].
func (p *SpawnPolicy) Fertility(pos r2.Vec) float64 {
	if p.cfg.Fertility <= 0 {
		return 1
	}
	return p.field.Eval2(pos.X*p.cfg.Fertility, pos.Y*p.cfg.Fertility)
}

func (p *SpawnPolicy) draw(rng *rand.Rand) r2.Vec {
	angle := rng.Float64() * 2 * math.Pi
	u := rng.Float64()
	var dist float64
	if rng.Float64() < 1-p.cfg.CenterBias {
		dist = p.radius * math.Sqrt(u)
	} else {
		dist = p.radius * math.Pow(u, 1.5)
	}
	return r2.Add(p.center, r2.Vec{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist})
}

// Tick places one item with probability SpawnRate while below capacity.
func (p *SpawnPolicy) Tick(rng *rand.Rand, store *FoodStore) bool {
	if store.Count() >= store.Max() || rng.Float64() >= p.cfg.SpawnRate {
		return false
	}
	return store.SpawnFood(p.Place(rng))
}

// Fill seeds the store up to its initial fraction and returns how many
// items were placed.
func (p *SpawnPolicy) Fill(rng *rand.Rand, store *FoodStore) int {
	target := int(float64(store.Max()) * p.cfg.InitialFraction)
	placed := 0
	for store.Count() < target {
		if !store.SpawnFood(p.Place(rng)) {
			break
		}
		placed++
	}
	return placed
}
