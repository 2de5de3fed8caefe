package game

import (
	"log/slog"

	"github.com/pthm-cable/ecotope/components"
	"github.com/pthm-cable/ecotope/systems"
	"github.com/pthm-cable/ecotope/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sample())
	perfStats := s.perf.Stats()

	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	if s.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	out := s.opts.Output
	if out != nil {
		if err := out.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := out.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.opts.LogStats {
			bm.LogBookmark()
		}
		if out != nil {
			if err := out.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sample measures the population and world at window end.
func (s *Simulation) sample() telemetry.Sample {
	var sample telemetry.Sample
	for _, a := range s.agents {
		if !a.Alive {
			continue
		}
		fitness := systems.Fitness(a.Gene, s.ctx.Species(a.Species))
		sample.Species[a.Species].Add(a.Energy, a.Generation, a.Gene, fitness)
	}

	sample.Nests = len(s.nests)
	for _, n := range s.nests {
		sample.NestFood += n.FoodStored
	}
	sample.FoodCount = s.food.Count()
	sample.PheromoneTotal, sample.PheromoneCells = s.field.Stats()
	return sample
}

// NestRecords summarizes every nest for the end-of-run colony table.
func (s *Simulation) NestRecords() []telemetry.NestRecord {
	records := make([]telemetry.NestRecord, 0, len(s.nests))
	for _, n := range s.nests {
		ants := 0
		for _, a := range s.agents {
			if a.Alive && a.Species == components.SpeciesAnt && n.Owns(a) {
				ants++
			}
		}
		records = append(records, telemetry.NestRecord{
			ID:         n.ID,
			X:          n.Pos.X,
			Y:          n.Pos.Y,
			FoodStored: n.FoodStored,
			Occupants:  n.Occupants,
			Ants:       ants,
		})
	}
	return records
}
