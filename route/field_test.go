package route

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/routeursea/sea-server/ais"
	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/land"
)

const isleJson = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"name":"Speck Isle"},"geometry":{"type":"Polygon","coordinates":[[[0.18,0.18],[0.32,0.18],[0.32,0.32],[0.18,0.32],[0.18,0.18]]]}}
]}`

const rocksJson = `{"version":0.6,"generator":"Overpass API","elements":[
	{"type":"node","id":7,"lat":0.85,"lon":0.15,"tags":{"name":"Grey Rock","seamark:type":"rock"}}
]}`

// testLand loads a single cell island at {2 2} and a rock at {8 1} on the ten
// by ten test grid.
func testLand(t *testing.T) *land.Land {
	t.Helper()
	dir := t.TempDir()
	isles := filepath.Join(dir, "isles.geojson")
	rocks := filepath.Join(dir, "rocks.json")
	if err := os.WriteFile(isles, []byte(isleJson), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rocks, []byte(rocksJson), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := land.Load("", isles, rocks)
	if err != nil {
		t.Fatalf("land.Load() error: %v", err)
	}
	return l
}

func TestBuildField(t *testing.T) {
	g := testGrid(t, 10)
	l := testLand(t)
	vessels := []ais.Vessel{
		{Lat: 0.55, Lon: 0.85, Name: "MV Kembla"},
		{Lat: 0.85, Lon: 0.15, Name: "MV Aground"}, // sits on the rock cell
	}

	f := BuildField(g, fullWindow(10), l, vessels, DefaultElevated)

	if !f.IsImpassable(2, 2) {
		t.Errorf("island cell {2 2} is passable")
	}
	if !f.IsImpassable(8, 1) {
		t.Errorf("rock cell {8 1} is passable; a vessel must never lower it")
	}
	if got := f.cost[5][8]; got != DefaultElevated {
		t.Errorf("vessel cell cost = %v; want %v", got, DefaultElevated)
	}
	if got := f.cost[0][0]; got != Baseline {
		t.Errorf("open water cost = %v; want %v", got, Baseline)
	}
}

func TestBuildFieldWindowed(t *testing.T) {
	g := testGrid(t, 10)
	l := testLand(t)
	w := grid.Window{RMin: 5, RMax: 9, CMin: 5, CMax: 9}
	vessels := []ais.Vessel{{Lat: 0.55, Lon: 0.85, Name: "MV Kembla"}}

	f := BuildField(g, w, l, vessels, DefaultElevated)

	// The island and the rock both lie outside the window and must not leak
	// into it, the vessel is inside at local {0 3}.
	for r := 0; r < w.Rows(); r++ {
		for c := 0; c < w.Cols(); c++ {
			want := Baseline
			if r == 0 && c == 3 {
				want = DefaultElevated
			}
			if got := f.cost[r][c]; got != want {
				t.Errorf("cost[%d][%d] = %v; want %v", r, c, got, want)
			}
		}
	}
}

func TestFieldClone(t *testing.T) {
	f := newField(fullWindow(5))
	f.block(grid.Cell{R: 1, C: 1})
	f.raise(grid.Cell{R: 2, C: 2}, 7.0)

	c := f.Clone()
	c.raise(grid.Cell{R: 3, C: 3}, 9.0)
	c.raise(grid.Cell{R: 1, C: 1}, 9.0)

	if f.cost[3][3] != Baseline {
		t.Errorf("clone write leaked into the original: cost[3][3] = %v", f.cost[3][3])
	}
	if !c.IsImpassable(1, 1) {
		t.Errorf("raise lowered an impassable cell")
	}
	if c.cost[2][2] != 7.0 {
		t.Errorf("clone cost[2][2] = %v; want 7", c.cost[2][2])
	}
}

func TestRaiseKeepsMaximum(t *testing.T) {
	f := newField(fullWindow(5))
	f.raise(grid.Cell{R: 0, C: 0}, 50)
	f.raise(grid.Cell{R: 0, C: 0}, 3)

	if f.cost[0][0] != 50 {
		t.Errorf("cost = %v; want 50", f.cost[0][0])
	}
}
