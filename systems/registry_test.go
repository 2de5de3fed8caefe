package systems

import "testing"

func TestSystemRegistry_Order(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()

	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			t.Fatalf("duplicate phase %q", id)
		}
		pos[id] = i
	}

	// Each pair must run in this order within a tick.
	before := [][2]string{
		{"pheromone", "behavior"},
		{"spatial", "behavior"},
		{"behavior", "deposits"},
		{"deposits", "delivery"},
		{"delivery", "lifecycle"},
		{"lifecycle", "cleanup"},
		{"cleanup", "nests"},
		{"nests", "telemetry"},
	}
	for _, p := range before {
		a, okA := pos[p[0]]
		b, okB := pos[p[1]]
		if !okA || !okB {
			t.Fatalf("missing phase in %v", p)
		}
		if a >= b {
			t.Errorf("%s runs after %s", p[0], p[1])
		}
	}
}

func TestSystemRegistry_AllMatchesIDs(t *testing.T) {
	reg := NewSystemRegistry()
	ids := reg.IDs()
	all := reg.All()
	if len(all) != len(ids) {
		t.Fatalf("All has %d phases, IDs %d", len(all), len(ids))
	}
	for i, info := range all {
		if info.ID != ids[i] {
			t.Errorf("phase %d: All %q, IDs %q", i, info.ID, ids[i])
		}
		if info.Name == "" || info.Category == "" {
			t.Errorf("phase %q missing name or category", info.ID)
		}
	}
}
