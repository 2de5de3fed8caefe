// Package systems implements the per-tick behavior of the ecosystem:
// genetics, spatial queries, the pheromone field, species behaviors,
// the reproduction lifecycle and colony spawning.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Locatable is anything spatial queries can consider.
type Locatable interface {
	Position() r2.Vec
	Active() bool
}

// Nearest returns the closest active candidate strictly closer than
// maxDistance that passes keep (nil keeps all). Among exact ties the first
// encountered wins.
func Nearest[T Locatable](candidates []T, origin r2.Vec, maxDistance float64, keep func(T) bool) (T, bool) {
	var best T
	found := false
	minDist := maxDistance

	for _, c := range candidates {
		if !c.Active() {
			continue
		}
		if keep != nil && !keep(c) {
			continue
		}
		d := distance(c.Position(), origin)
		if d < minDist {
			minDist = d
			best = c
			found = true
		}
	}
	return best, found
}

// WithinRadius appends to dst every active candidate strictly closer than
// radius that passes keep, in candidate order.
func WithinRadius[T Locatable](dst []T, candidates []T, origin r2.Vec, radius float64, keep func(T) bool) []T {
	for _, c := range candidates {
		if !c.Active() {
			continue
		}
		if keep != nil && !keep(c) {
			continue
		}
		if distance(c.Position(), origin) < radius {
			dst = append(dst, c)
		}
	}
	return dst
}

type gridKey struct {
	col, row int
}

// SpatialGrid is a sparse bucket index over an unbounded plane. Buckets are
// keyed by cell so storage tracks occupied cells only.
type SpatialGrid[T Locatable] struct {
	cellSize float64
	cells    map[gridKey][]T
	// pad widens every query by this many cells to tolerate entries that
	// moved after they were inserted.
	pad int
}

// NewSpatialGrid creates a grid with the given cell size.
func NewSpatialGrid[T Locatable](cellSize float64) *SpatialGrid[T] {
	if cellSize <= 0 {
		cellSize = 100
	}
	return &SpatialGrid[T]{
		cellSize: cellSize,
		cells:    make(map[gridKey][]T),
		pad:      1,
	}
}

// Clear removes all entries, keeping bucket capacity for reuse.
func (g *SpatialGrid[T]) Clear() {
	for k, b := range g.cells {
		g.cells[k] = b[:0]
	}
}

// Insert adds an entry at its current position. Inactive entries are kept
// too: an ant can leave its nest mid-tick, so activity is checked by the
// query helpers rather than at build time.
func (g *SpatialGrid[T]) Insert(e T) {
	k := g.key(e.Position())
	g.cells[k] = append(g.cells[k], e)
}

// Rebuild clears the grid and inserts every entry.
func (g *SpatialGrid[T]) Rebuild(entries []T) {
	g.Clear()
	for _, e := range entries {
		g.Insert(e)
	}
}

// CandidatesInto appends every entry whose bucket intersects the padded
// query box around origin. Callers filter by exact distance with Nearest or
// WithinRadius.
func (g *SpatialGrid[T]) CandidatesInto(dst []T, origin r2.Vec, radius float64) []T {
	if math.IsInf(radius, 1) || radius/g.cellSize > 1<<16 {
		for _, b := range g.cells {
			dst = append(dst, b...)
		}
		return dst
	}
	c := g.key(origin)
	span := int(math.Ceil(radius/g.cellSize)) + g.pad

	for dc := -span; dc <= span; dc++ {
		for dr := -span; dr <= span; dr++ {
			dst = append(dst, g.cells[gridKey{col: c.col + dc, row: c.row + dr}]...)
		}
	}
	return dst
}

// Len returns the number of indexed entries.
func (g *SpatialGrid[T]) Len() int {
	n := 0
	for _, b := range g.cells {
		n += len(b)
	}
	return n
}

func (g *SpatialGrid[T]) key(p r2.Vec) gridKey {
	return gridKey{
		col: int(math.Floor(p.X / g.cellSize)),
		row: int(math.Floor(p.Y / g.cellSize)),
	}
}
