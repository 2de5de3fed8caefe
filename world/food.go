// Package world holds the food store the behaviors eat from and the policy
// that places new food.
package world

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/config"
)

// FoodStore keeps food items as entities in an ECS world.
// It implements systems.FoodSource.
type FoodStore struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Food]
	filter *ecs.Filter2[components.Position, components.Food]

	energy float64
	max    int
	count  int
}

// NewFoodStore creates an empty store using the food section of the config.
func NewFoodStore(cfg config.FoodConfig) *FoodStore {
	world := ecs.NewWorld()
	return &FoodStore{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Food](world),
		filter: ecs.NewFilter2[components.Position, components.Food](world),
		energy: cfg.Energy,
		max:    cfg.Max,
	}
}

// NearestFood returns the closest item strictly within maxDist of pos.
// The first item found wins exact ties.
func (s *FoodStore) NearestFood(pos r2.Vec, maxDist float64) (components.FoodItem, bool) {
	var best components.FoodItem
	found := false
	bestDist := maxDist

	query := s.filter.Query()
	for query.Next() {
		p, f := query.Get()
		d := r2.Norm(r2.Sub(p.Vec(), pos))
		if d < bestDist {
			bestDist = d
			best = components.FoodItem{Entity: query.Entity(), Pos: p.Vec(), Energy: f.Energy}
			found = true
		}
	}
	return best, found
}

// RemoveFood deletes an item's entity. It returns false when the item was
// already eaten, so two eaters in one tick cannot both consume it.
func (s *FoodStore) RemoveFood(item components.FoodItem) bool {
	if !s.world.Alive(item.Entity) {
		return false
	}
	s.world.RemoveEntity(item.Entity)
	s.count--
	return true
}

// SpawnFood places one item at pos. It refuses once the store is full.
func (s *FoodStore) SpawnFood(pos r2.Vec) bool {
	if s.count >= s.max {
		return false
	}
	s.mapper.NewEntity(&components.Position{X: pos.X, Y: pos.Y}, &components.Food{Energy: s.energy})
	s.count++
	return true
}

// Count returns the number of live food items.
func (s *FoodStore) Count() int {
	return s.count
}

// Max returns the store capacity.
func (s *FoodStore) Max() int {
	return s.max
}

// Each calls fn for every live item.
func (s *FoodStore) Each(fn func(components.FoodItem)) {
	query := s.filter.Query()
	for query.Next() {
		p, f := query.Get()
		fn(components.FoodItem{Entity: query.Entity(), Pos: p.Vec(), Energy: f.Energy})
	}
}

// Reset removes every item.
func (s *FoodStore) Reset() {
	// Collect first; entities cannot be removed while a query is open.
	var entities []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	for _, e := range entities {
		s.world.RemoveEntity(e)
	}
	s.count = 0
}
