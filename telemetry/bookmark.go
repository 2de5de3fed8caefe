package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ecotope/components"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkForageBreakthrough BookmarkType = "forage_breakthrough"
	BookmarkPredatorRecovery   BookmarkType = "predator_recovery"
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkExtinction         BookmarkType = "extinction"
	BookmarkStableEcosystem    BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Species     string       `csv:"species"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"species", b.Species,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking per species
	recentMin          [components.NumSpecies]int
	recentPeak         [components.NumSpecies]int
	lastCount          [components.NumSpecies]int
	seen               bool
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.seen {
		if b := bd.checkForageBreakthrough(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		for s := components.Species(0); s < components.NumSpecies; s++ {
			if b := bd.checkExtinction(s, stats); b != nil {
				bookmarks = append(bookmarks, *b)
				continue
			}
			if b := bd.checkCrash(s, stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
			if s.IsPredator() {
				if b := bd.checkPredatorRecovery(s, stats); b != nil {
					bookmarks = append(bookmarks, *b)
				}
			}
		}
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	bd.seen = true

	for s, w := range stats.Species {
		if w.Count < bd.recentMin[s] || bd.recentMin[s] == 0 {
			bd.recentMin[s] = w.Count
		}
		if w.Count > bd.recentPeak[s] {
			bd.recentPeak[s] = w.Count
		}
		bd.lastCount[s] = w.Count
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkForageBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DeliveryRate()
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	rate := stats.DeliveryRate()
	if rate > avg*2.0 && stats.Deliveries >= 10 {
		return &Bookmark{
			Type:        BookmarkForageBreakthrough,
			Tick:        stats.WindowEndTick,
			Species:     components.SpeciesAnt.String(),
			Description: fmt.Sprintf("Delivery rate %.3f is %.1fx average (%.3f)", rate, rate/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(s components.Species, stats WindowStats) *Bookmark {
	if bd.lastCount[s] == 0 || stats.Species[s].Count > 0 {
		return nil
	}
	bd.recentPeak[s] = 0
	bd.recentMin[s] = 0
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Species:     s.String(),
		Description: fmt.Sprintf("%s died out (was %d)", s, bd.lastCount[s]),
	}
}

func (bd *BookmarkDetector) checkCrash(s components.Species, stats WindowStats) *Bookmark {
	peak := bd.recentPeak[s]
	if peak == 0 {
		return nil
	}

	count := stats.Species[s].Count
	drop := 1.0 - float64(count)/float64(peak)
	if drop > 0.30 && count < peak-10 {
		// Reset peak after crash
		bd.recentPeak[s] = count
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Species:     s.String(),
			Description: fmt.Sprintf("%s crashed %.0f%% from peak %d to %d", s, drop*100, peak, count),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPredatorRecovery(s components.Species, stats WindowStats) *Bookmark {
	low := bd.recentMin[s]
	if low == 0 || low > 3 {
		return nil
	}

	count := stats.Species[s].Count
	if count >= low*3 && count >= 6 {
		// Reset the minimum after triggering
		bd.recentMin[s] = count
		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Tick:        stats.WindowEndTick,
			Species:     s.String(),
			Description: fmt.Sprintf("%s population recovered from %d to %d", s, low, count),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	ants := stats.Species[components.SpeciesAnt].Count
	birds := stats.Species[components.SpeciesBird].Count
	if ants < 10 || birds < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	if cv2(history, components.SpeciesAnt) < 0.04 && cv2(history, components.SpeciesBird) < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d ants, %d birds over 5+ windows", ants, birds),
		}
	}
	return nil
}

// cv2 returns the squared coefficient of variation of a species' count over
// the last four windows of history.
func cv2(history []WindowStats, s components.Species) float64 {
	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Species[s].Count)
	}
	m := sum / 4
	if m == 0 {
		return 0
	}
	var v float64
	for _, h := range recent {
		d := float64(h.Species[s].Count) - m
		v += d * d
	}
	v /= 4
	return v / (m * m)
}
