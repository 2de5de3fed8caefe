package systems

import "github.com/pthm-cable/ecotope/telemetry"

// SystemInfo describes one phase of the simulation step.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Category    string // Grouping (e.g., "world", "agents", "colony")
}

// SystemRegistry holds the step phases in execution order. It is the single
// source of phase order: the tick driver runs IDs in sequence and the perf
// collector reports phases in the order they were timed.
type SystemRegistry struct {
	systems []SystemInfo
}

// NewSystemRegistry creates a registry with all step phases.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the step phases in the order they run.
// Update this when adding new phases.
func (r *SystemRegistry) registerDefaults() {
	// World upkeep
	r.Register(SystemInfo{ID: telemetry.PhaseFood, Name: "Food", Description: "Places new food items", Category: "world"})
	r.Register(SystemInfo{ID: telemetry.PhasePheromone, Name: "Pheromone", Description: "Evaporates the pheromone field", Category: "world"})

	// Agents
	r.Register(SystemInfo{ID: telemetry.PhaseSpatial, Name: "Spatial", Description: "Gathers per-species lists and buckets", Category: "agents"})
	r.Register(SystemInfo{ID: telemetry.PhaseBehavior, Name: "Behavior", Description: "Runs every live agent's species behavior", Category: "agents"})
	r.Register(SystemInfo{ID: telemetry.PhaseDeposits, Name: "Deposits", Description: "Merges buffered pheromone deposits", Category: "agents"})

	// Colony and lifecycle
	r.Register(SystemInfo{ID: telemetry.PhaseDelivery, Name: "Delivery", Description: "Credits delivered food to nests", Category: "colony"})
	r.Register(SystemInfo{ID: telemetry.PhaseLifecycle, Name: "Lifecycle", Description: "Resolves starvation and reproduction", Category: "lifecycle"})
	r.Register(SystemInfo{ID: telemetry.PhaseCleanup, Name: "Cleanup", Description: "Removes dead and non-finite agents", Category: "lifecycle"})
	r.Register(SystemInfo{ID: telemetry.PhaseNests, Name: "Nests", Description: "Spawns ants from funded nests", Category: "colony"})

	// Data collection
	r.Register(SystemInfo{ID: telemetry.PhaseTelemetry, Name: "Telemetry", Description: "Flushes stats windows", Category: "internal"})
}

// Register adds a phase to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
}

// All returns all registered phases in execution order.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all phase IDs in execution order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
