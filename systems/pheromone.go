package systems

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/config"
)

// Cell addresses one pheromone grid cell. Coordinates may be negative.
type Cell struct {
	Row, Col int
}

// CellStrength is a neighborhood sample.
type CellStrength struct {
	Cell     Cell
	Strength float64
	Center   r2.Vec // World coordinates of the cell center
}

// PheromoneField is a sparse scalar field. Only cells with strength at or
// above the epsilon are stored, so memory follows active trails rather than
// world area.
type PheromoneField struct {
	cellSize    float64
	maxStrength float64
	epsilon     float64
	forwardBias float64
	cells       map[Cell]float64

	// scratch buffers for probabilistic selection
	weights []float64
	cum     []float64
	cand    []CellStrength
}

// NewPheromoneField creates an empty field.
func NewPheromoneField(cfg config.PheromoneConfig) *PheromoneField {
	cellSize := cfg.CellSize
	if cellSize <= 0 {
		cellSize = 10
	}
	return &PheromoneField{
		cellSize:    cellSize,
		maxStrength: cfg.MaxStrength,
		epsilon:     cfg.Epsilon,
		forwardBias: cfg.ForwardBias,
		cells:       make(map[Cell]float64),
	}
}

// CellAt maps world coordinates to a cell.
func (f *PheromoneField) CellAt(x, y float64) Cell {
	return Cell{
		Row: int(math.Floor(y / f.cellSize)),
		Col: int(math.Floor(x / f.cellSize)),
	}
}

// Center returns the world coordinates of a cell center.
func (f *PheromoneField) Center(c Cell) r2.Vec {
	return r2.Vec{
		X: (float64(c.Col) + 0.5) * f.cellSize,
		Y: (float64(c.Row) + 0.5) * f.cellSize,
	}
}

// Deposit adds amount at the cell containing (x, y), clamped to the maximum.
func (f *PheromoneField) Deposit(x, y, amount float64) {
	if amount <= 0 || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	c := f.CellAt(x, y)
	f.cells[c] = math.Min(f.maxStrength, f.cells[c]+amount)
}

// Evaporate multiplies every cell by rate and drops cells that fall below
// the epsilon.
func (f *PheromoneField) Evaporate(rate float64) {
	for c, s := range f.cells {
		s *= rate
		if s < f.epsilon {
			delete(f.cells, c)
			continue
		}
		f.cells[c] = s
	}
}

// Strength returns the strength at (x, y).
func (f *PheromoneField) Strength(x, y float64) float64 {
	return f.cells[f.CellAt(x, y)]
}

// Surrounding returns the (2r+1)² neighborhood of (x, y) minus the center,
// in row-major order (row offset outer, column offset inner). Zero cells are
// included.
func (f *PheromoneField) Surrounding(x, y float64, radius int) []CellStrength {
	return f.surroundingInto(nil, x, y, radius, radius)
}

func (f *PheromoneField) surroundingInto(dst []CellStrength, x, y float64, radiusX, radiusY int) []CellStrength {
	origin := f.CellAt(x, y)
	for dr := -radiusY; dr <= radiusY; dr++ {
		for dc := -radiusX; dc <= radiusX; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			c := Cell{Row: origin.Row + dr, Col: origin.Col + dc}
			dst = append(dst, CellStrength{Cell: c, Strength: f.cells[c], Center: f.Center(c)})
		}
	}
	return dst
}

// StrongestDirection returns the center of the strongest neighboring cell.
// The first maximum in scan order wins; an all-zero neighborhood yields false.
func (f *PheromoneField) StrongestDirection(x, y float64, radius int) (r2.Vec, bool) {
	var best CellStrength
	f.cand = f.surroundingInto(f.cand[:0], x, y, radius, radius)
	for _, cs := range f.cand {
		if cs.Strength > best.Strength {
			best = cs
		}
	}
	if best.Strength <= 0 {
		return r2.Vec{}, false
	}
	return best.Center, true
}

// SelectDirectionProbabilistic picks a neighboring cell center by roulette
// wheel. Each cell with positive strength s is weighted
// s * (1 + forwardBias*max(0, cos θ)), θ being the angle between the
// heading (vx, vy) and the direction to the cell. Returns false when the
// total weight is zero.
func (f *PheromoneField) SelectDirectionProbabilistic(rng *rand.Rand, x, y, vx, vy float64, radiusX, radiusY int) (r2.Vec, bool) {
	f.cand = f.surroundingInto(f.cand[:0], x, y, radiusX, radiusY)
	f.weights = f.weights[:0]

	pos := r2.Vec{X: x, Y: y}
	vel := r2.Vec{X: vx, Y: vy}
	hasHeading := r2.Norm(vel) > 1e-9

	n := 0
	for _, cs := range f.cand {
		if cs.Strength <= 0 {
			continue
		}
		w := cs.Strength
		if hasHeading {
			to := r2.Sub(cs.Center, pos)
			if r2.Norm(to) > 1e-9 {
				w *= 1 + f.forwardBias*math.Max(0, r2.Cos(vel, to))
			}
		}
		f.cand[n] = cs
		f.weights = append(f.weights, w)
		n++
	}
	if n == 0 {
		return r2.Vec{}, false
	}

	if cap(f.cum) < n {
		f.cum = make([]float64, n)
	}
	f.cum = f.cum[:n]
	floats.CumSum(f.cum, f.weights)
	total := f.cum[n-1]
	if total <= 0 {
		return r2.Vec{}, false
	}

	r := rng.Float64() * total
	i := sort.SearchFloat64s(f.cum, r)
	// SearchFloat64s returns the first index with cum >= r; an exact hit
	// belongs to the next slot.
	for i < n-1 && f.cum[i] <= r {
		i++
	}
	if i >= n {
		i = n - 1
	}
	return f.cand[i].Center, true
}

// Len returns the number of stored cells.
func (f *PheromoneField) Len() int {
	return len(f.cells)
}

// Total returns the summed strength of all cells.
func (f *PheromoneField) Total() float64 {
	var sum float64
	for _, s := range f.cells {
		sum += s
	}
	return sum
}

// Stats returns the summed strength and the number of stored cells.
func (f *PheromoneField) Stats() (total float64, cells int) {
	return f.Total(), len(f.cells)
}

// Reset clears the field.
func (f *PheromoneField) Reset() {
	clear(f.cells)
}

// Each calls fn for every stored cell in unspecified order.
func (f *PheromoneField) Each(fn func(c Cell, strength float64)) {
	for c, s := range f.cells {
		fn(c, s)
	}
}

// DepositBuffer collects deposits during the behavior pass so they can be
// merged into the field in one step. Sums are clamped on merge, which makes
// the result independent of agent order.
type DepositBuffer struct {
	field   *PheromoneField
	pending map[Cell]float64
}

// NewDepositBuffer creates a buffer targeting field.
func NewDepositBuffer(field *PheromoneField) *DepositBuffer {
	return &DepositBuffer{field: field, pending: make(map[Cell]float64)}
}

// Add queues a deposit at (x, y).
func (b *DepositBuffer) Add(x, y, amount float64) {
	if amount <= 0 || math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	b.pending[b.field.CellAt(x, y)] += amount
}

// Flush merges queued deposits into the field and empties the buffer.
// It returns the number of cells touched.
func (b *DepositBuffer) Flush() int {
	n := len(b.pending)
	for c, amount := range b.pending {
		b.field.cells[c] = math.Min(b.field.maxStrength, b.field.cells[c]+amount)
	}
	clear(b.pending)
	return n
}

// Pending returns the number of cells with queued deposits.
func (b *DepositBuffer) Pending() int {
	return len(b.pending)
}
