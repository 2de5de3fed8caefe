package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/ecotope/components"
)

func TestNewOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("om=%v err=%v, want nil, nil", om, err)
	}
	// Nil manager is a no-op.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_TelemetryHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		s := window(i*600, 10*i, 5, 1, 1)
		if err := om.WriteTelemetry(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkExtinction, Tick: 600, Species: components.SpeciesSnake.String()}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteNests([]NestRecord{{ID: 1, FoodStored: 2}}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,ants,") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	bm, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bm), "extinction,600,snake") {
		t.Errorf("bookmarks.csv = %q", bm)
	}

	nests, err := os.ReadFile(filepath.Join(dir, "nests.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(nests), "id,x,y,food_stored,occupants,ants") {
		t.Errorf("nests.csv = %q", nests)
	}
}
