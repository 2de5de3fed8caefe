package game

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/systems"
)

// Spawn places count agents of the named species around pos. Ants are placed
// at pos like everything else and only bound to a nest: the nearest one
// within the join radius, or a new nest founded at pos.
func (s *Simulation) Spawn(name string, pos r2.Vec, count int) error {
	species, err := components.ParseSpecies(name)
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	if count <= 0 {
		return nil
	}

	sp := s.ctx.Species(species)
	gene := systems.DefaultGene(sp)

	var nest *components.Nest
	if species == components.SpeciesAnt {
		nest = s.nestFor(pos)
	}
	for i := 0; i < count; i++ {
		at := pos
		if count > 1 {
			at = r2.Add(pos, s.jitter(sp.SpawnOffset))
		}
		if nest != nil {
			s.agents = append(s.agents, systems.NewAnt(s.ctx, at, nest.Pos, gene))
			continue
		}
		s.agents = append(s.agents, systems.NewAgent(s.ctx, species, at, gene))
	}

	slog.Debug("spawn", "species", name, "count", count, "x", pos.X, "y", pos.Y)
	return nil
}

// Populate seeds an initial population: one colony of ants at the world
// center and every other species scattered across the world box.
func (s *Simulation) Populate(counts [components.NumSpecies]int) error {
	center := r2.Vec{X: s.cfg.World.Width / 2, Y: s.cfg.World.Height / 2}
	for sp := components.Species(0); sp < components.NumSpecies; sp++ {
		if sp == components.SpeciesAnt {
			if err := s.Spawn(sp.String(), center, counts[sp]); err != nil {
				return err
			}
			continue
		}
		for i := 0; i < counts[sp]; i++ {
			pos := r2.Vec{X: s.rng.Float64() * s.cfg.World.Width, Y: s.rng.Float64() * s.cfg.World.Height}
			if err := s.Spawn(sp.String(), pos, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// nestFor returns the nest an ant placed at pos belongs to, founding one
// when none is close enough.
func (s *Simulation) nestFor(pos r2.Vec) *components.Nest {
	if nest, ok := systems.FindNearestNest(s.nests, pos, s.cfg.Nest.JoinRadius); ok {
		return nest
	}
	nest := systems.NewNest(s.ctx, pos)
	s.nests = append(s.nests, nest)
	slog.Info("nest_founded", "nest", nest.ID, "x", pos.X, "y", pos.Y)
	return nest
}

// jitter returns a random offset within ±spread/2 on each axis.
func (s *Simulation) jitter(spread float64) r2.Vec {
	return r2.Vec{
		X: (s.rng.Float64() - 0.5) * spread,
		Y: (s.rng.Float64() - 0.5) * spread,
	}
}
