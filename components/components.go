// Package components defines the data records shared by the simulation:
// agents, their species payloads, nests, and the ECS components used for
// food storage.
package components

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrUnknownSpecies is returned when a species name does not match any species.
var ErrUnknownSpecies = errors.New("unknown species")

// Species tags the variant payload carried by an Agent.
type Species uint8

const (
	SpeciesAnt Species = iota
	SpeciesBird
	SpeciesAnteater
	SpeciesSnake

	NumSpecies
)

var speciesNames = [NumSpecies]string{"ant", "bird", "anteater", "snake"}

func (s Species) String() string {
	if s < NumSpecies {
		return speciesNames[s]
	}
	return fmt.Sprintf("species(%d)", uint8(s))
}

// ParseSpecies maps a species name to its tag.
func ParseSpecies(name string) (Species, error) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
}

// IsPredator reports whether the species uses the shared predator payload.
func (s Species) IsPredator() bool {
	return s == SpeciesAnteater || s == SpeciesSnake
}

// Gene is the heritable trait triple of an agent.
type Gene struct {
	Speed      float64
	Perception float64
	Size       float64
}

func (g Gene) String() string {
	return fmt.Sprintf("speed=%.2f perception=%.2f size=%.2f", g.Speed, g.Perception, g.Size)
}

// Position is the ECS position component of a food item.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Food is the ECS component marking a consumable item.
type Food struct {
	Energy float64
}

// FoodItem is a resolved reference to a food entity, handed to behaviors by
// the food source.
type FoodItem struct {
	Entity ecs.Entity
	Pos    r2.Vec
	Energy float64
}
