package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ReproPhase is the reproduction state of an agent.
type ReproPhase uint8

const (
	ReproIdle ReproPhase = iota
	ReproPregnant
)

// ReproState tracks an agent's reproduction cycle.
type ReproState struct {
	Phase          ReproPhase
	TicksRemaining int // Valid while Pregnant
}

// Agent is the common record of every creature. Exactly one species payload
// is set, selected by Species (Snake additionally carries Predator).
type Agent struct {
	ID         uint32
	Species    Species
	Pos        r2.Vec
	Vel        r2.Vec
	Energy     float64
	Gene       Gene
	Generation int
	Alive      bool

	ReproCooldown int
	Repro         ReproState

	// BodySize is the effective radius: species base size scaled by gene size.
	BodySize float64

	Ant      *AntState
	Bird     *BirdState
	Predator *PredatorState
	Snake    *SnakeState
}

// Position returns the agent's head position.
func (a *Agent) Position() r2.Vec {
	return a.Pos
}

// Active reports whether the agent takes part in spatial queries.
// Dead agents and ants resting inside a nest are invisible.
func (a *Agent) Active() bool {
	if !a.Alive {
		return false
	}
	return a.Ant == nil || !a.Ant.InsideNest
}

// Kill marks the agent dead and clamps its energy at zero.
func (a *Agent) Kill() {
	a.Alive = false
	if a.Energy < 0 {
		a.Energy = 0
	}
}

// Finite reports whether position and velocity are finite numbers.
func (a *Agent) Finite() bool {
	return isFinite(a.Pos.X) && isFinite(a.Pos.Y) && isFinite(a.Vel.X) && isFinite(a.Vel.Y)
}

// Pregnant reports whether the agent is carrying offspring.
func (a *Agent) Pregnant() bool {
	return a.Repro.Phase == ReproPregnant
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AntState is the ant payload.
type AntState struct {
	Nest       r2.Vec // Home nest coordinates; ants are associated by coordinate match
	HasFood    bool
	FleeTimer  int
	InsideNest bool
	RestTimer  int
}

// BirdMode is the bird flight state.
type BirdMode uint8

const (
	BirdFlying BirdMode = iota
	BirdPerching
	BirdTakingOff
)

func (m BirdMode) String() string {
	switch m {
	case BirdFlying:
		return "flying"
	case BirdPerching:
		return "perching"
	case BirdTakingOff:
		return "taking_off"
	}
	return "unknown"
}

// BirdState is the bird payload.
type BirdState struct {
	Mode      BirdMode
	ModeTimer int
	Fatigue   float64
}

// PredatorState is shared by anteaters and snakes.
type PredatorState struct {
	HuntCooldown  int
	Hunting       bool
	EnergyHistory []float64
	HistoryTimer  int
	DropRate      float64
	FatigueFactor float64 // Cruise speed multiplier in [MinFatigue, 1]
	WanderAngle   float64
}

// SnakeMode is the snake ambush state.
type SnakeMode uint8

const (
	SnakeWander SnakeMode = iota
	SnakeStopping
	SnakeAmbush
	SnakeStrike
	SnakeRecover
)

func (m SnakeMode) String() string {
	switch m {
	case SnakeWander:
		return "wander"
	case SnakeStopping:
		return "stopping"
	case SnakeAmbush:
		return "ambush"
	case SnakeStrike:
		return "strike"
	case SnakeRecover:
		return "recover"
	}
	return "unknown"
}

// SnakeState is the snake payload. Segments are cosmetic; the head (Agent.Pos)
// is authoritative for every distance check.
type SnakeState struct {
	Mode      SnakeMode
	ModeTimer int
	Target    *Agent
	Segments  []r2.Vec
	Spacing   float64
	NoiseT    float64 // Phase along the undulation noise track
	NoiseRow  float64 // Per-snake offset so snakes do not undulate in sync
}

// Nest is an ant colony. Ants belong to a nest when their home coordinates
// equal the nest position.
type Nest struct {
	ID            uint32
	Pos           r2.Vec
	FoodStored    int
	Occupants     int
	SpawnCooldown int
}

// Owns reports whether the ant's home coordinates match this nest.
func (n *Nest) Owns(a *Agent) bool {
	return a.Ant != nil && a.Ant.Nest == n.Pos
}

// Position returns the nest location.
func (n *Nest) Position() r2.Vec {
	return n.Pos
}

// Active is always true; nests are never removed.
func (n *Nest) Active() bool {
	return true
}
