package route

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/latlon"
)

func testGrid(t *testing.T, n int) *grid.Grid {
	t.Helper()
	g, err := grid.New(grid.Bounds{LatMin: 0, LatMax: float64(n) * 0.1, LonMin: 0, LonMax: float64(n) * 0.1}, 0.1)
	if err != nil {
		t.Fatalf("grid.New() error: %v", err)
	}
	if g.Rows() != n || g.Cols() != n {
		t.Fatalf("grid is %dx%d; want %dx%d", g.Rows(), g.Cols(), n, n)
	}
	return g
}

func fullWindow(n int) grid.Window {
	return grid.Window{RMin: 0, RMax: n - 1, CMin: 0, CMax: n - 1}
}

func manhattan(a, b grid.Cell) int {
	dr, dc := a.R-b.R, a.C-b.C
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// pathCost recomputes the weighted cost of a returned path against the raw
// field, each segment priced by its destination cell.
func pathCost(g *grid.Grid, f *Field, path []latlon.LatLon) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		cell := g.Cell(path[i])
		total += latlon.DistanceNm(path[i-1], path[i]) * f.cost[cell.R-f.window.RMin][cell.C-f.window.CMin]
	}
	return total
}

// bruteBest enumerates every simple path between the cells and returns the
// cheapest weighted cost.
func bruteBest(g *grid.Grid, f *Field, start, goal grid.Cell) float64 {
	best := math.Inf(1)
	visited := map[grid.Cell]bool{start: true}

	var dfs func(cur grid.Cell, cost float64)
	dfs = func(cur grid.Cell, cost float64) {
		if cost >= best {
			return
		}
		if cur == goal {
			best = cost
			return
		}
		for _, d := range neighbors4 {
			next := grid.Cell{R: cur.R + d[0], C: cur.C + d[1]}
			if !f.window.Contains(next) || visited[next] {
				continue
			}
			r, c := next.R-f.window.RMin, next.C-f.window.CMin
			if f.IsImpassable(r, c) {
				continue
			}
			visited[next] = true
			dfs(next, cost+latlon.DistanceNm(g.Center(cur), g.Center(next))*f.cost[r][c])
			delete(visited, next)
		}
	}
	dfs(start, 0)

	return best
}

func TestSearchOpenGrid(t *testing.T) {
	g := testGrid(t, 10)
	f := newField(fullWindow(10))
	from := g.Center(grid.Cell{R: 0, C: 0})
	to := g.Center(grid.Cell{R: 9, C: 9})

	path, pops, err := search(g, f, from, to)
	if err != nil {
		t.Fatalf("search() error: %v", err)
	}

	if len(path) != 19 {
		t.Errorf("len(path) = %d; want 19", len(path))
	}
	if path[0] != from {
		t.Errorf("path[0] = %v; want %v", path[0], from)
	}
	if path[len(path)-1] != to {
		t.Errorf("path end = %v; want %v", path[len(path)-1], to)
	}
	for i := 1; i < len(path); i++ {
		if manhattan(g.Cell(path[i-1]), g.Cell(path[i])) != 1 {
			t.Errorf("waypoints %d and %d are not grid adjacent", i-1, i)
		}
	}
	if pops == 0 {
		t.Errorf("pops = 0; want > 0")
	}
}

func TestSearchSameCell(t *testing.T) {
	g := testGrid(t, 10)
	f := newField(fullWindow(10))

	path, pops, err := search(g, f, latlon.LatLon{Lat: 0.51, Lon: 0.52}, latlon.LatLon{Lat: 0.53, Lon: 0.54})
	if err != nil {
		t.Fatalf("search() error: %v", err)
	}

	want := []latlon.LatLon{g.Center(grid.Cell{R: 5, C: 5})}
	if diff := cmp.Diff(want, path); diff != "" {
		t.Errorf("unexpected path (-want +got):\n%s", diff)
	}
	if pops != 0 {
		t.Errorf("pops = %d; want 0", pops)
	}
}

func TestSearchWallGap(t *testing.T) {
	g := testGrid(t, 10)
	f := newField(fullWindow(10))
	for r := 0; r < 9; r++ {
		f.block(grid.Cell{R: r, C: 5})
	}

	from := g.Center(grid.Cell{R: 0, C: 0})
	to := g.Center(grid.Cell{R: 9, C: 9})

	path, _, err := search(g, f, from, to)
	if err != nil {
		t.Fatalf("search() error: %v", err)
	}

	throughGap := false
	for i, wp := range path {
		cell := g.Cell(wp)
		if cell.C == 5 {
			if cell.R != 9 {
				t.Errorf("path crosses the wall at %v", cell)
			}
			throughGap = true
		}
		if i > 0 && i < len(path)-1 && f.IsImpassable(cell.R, cell.C) {
			t.Errorf("path uses impassable cell %v", cell)
		}
	}
	if !throughGap {
		t.Errorf("path never crossed the gap at {9 5}")
	}
}

func TestSearchNoPath(t *testing.T) {
	g := testGrid(t, 10)
	f := newField(fullWindow(10))
	for r := 0; r < 10; r++ {
		f.block(grid.Cell{R: r, C: 5})
	}

	path, _, err := search(g, f, g.Center(grid.Cell{R: 0, C: 0}), g.Center(grid.Cell{R: 9, C: 9}))
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("search() error = %v; want ErrNoRoute", err)
	}
	if path != nil {
		t.Errorf("path = %v; want nil", path)
	}
}

func TestSearchOutsideWindow(t *testing.T) {
	g := testGrid(t, 10)
	f := newField(grid.Window{RMin: 0, RMax: 4, CMin: 0, CMax: 4})

	_, pops, err := search(g, f, g.Center(grid.Cell{R: 0, C: 0}), g.Center(grid.Cell{R: 9, C: 9}))
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("search() error = %v; want ErrNoRoute", err)
	}
	if pops != 0 {
		t.Errorf("pops = %d; want 0", pops)
	}
}

func TestSearchEndpointRelaxation(t *testing.T) {
	g := testGrid(t, 10)
	clean := newField(fullWindow(10))
	from := g.Center(grid.Cell{R: 0, C: 0})
	to := g.Center(grid.Cell{R: 9, C: 9})

	cleanPath, _, err := search(g, clean, from, to)
	if err != nil {
		t.Fatalf("search() on clean field error: %v", err)
	}

	blocked := clean.Clone()
	blocked.block(grid.Cell{R: 0, C: 0})
	blocked.block(grid.Cell{R: 9, C: 9})

	path, _, err := search(g, blocked, from, to)
	if err != nil {
		t.Fatalf("search() with blocked endpoints error: %v", err)
	}
	if len(path) != 19 {
		t.Errorf("len(path) = %d; want 19", len(path))
	}
	if path[0] != from || path[len(path)-1] != to {
		t.Errorf("path does not span the blocked endpoints")
	}
	for i, wp := range path {
		cell := g.Cell(wp)
		if i > 0 && i < len(path)-1 && blocked.IsImpassable(cell.R, cell.C) {
			t.Errorf("relaxation leaked to intermediate cell %v", cell)
		}
	}

	got := pathCost(g, clean, path)
	want := pathCost(g, clean, cleanPath)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("relaxed path cost = %f; want %f as if endpoints were baseline", got, want)
	}
}

func TestSearchOptimal(t *testing.T) {
	g := testGrid(t, 5)
	f := newField(fullWindow(5))
	f.raise(grid.Cell{R: 1, C: 1}, 3.0)
	f.raise(grid.Cell{R: 2, C: 3}, 7.0)
	f.raise(grid.Cell{R: 3, C: 1}, 2.5)
	f.block(grid.Cell{R: 2, C: 2})

	start := grid.Cell{R: 0, C: 0}
	goal := grid.Cell{R: 4, C: 4}

	path, _, err := search(g, f, g.Center(start), g.Center(goal))
	if err != nil {
		t.Fatalf("search() error: %v", err)
	}

	got := pathCost(g, f, path)
	want := bruteBest(g, f, start, goal)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("path cost = %f; want optimal %f", got, want)
	}
}

func TestSearchStraitDeterrent(t *testing.T) {
	g := testGrid(t, 10)
	base := newField(fullWindow(10))
	for r := 0; r < 10; r++ {
		if r != 5 {
			base.block(grid.Cell{R: r, C: 5})
		}
	}

	from := g.Center(grid.Cell{R: 5, C: 0})
	to := g.Center(grid.Cell{R: 5, C: 9})

	clear, _, err := search(g, base, from, to)
	if err != nil {
		t.Fatalf("search() error: %v", err)
	}

	want := make([]latlon.LatLon, 0, 10)
	for c := 0; c <= 9; c++ {
		want = append(want, g.Center(grid.Cell{R: 5, C: c}))
	}
	if diff := cmp.Diff(want, clear); diff != "" {
		t.Errorf("unexpected strait route (-want +got):\n%s", diff)
	}

	hazard := base.Clone()
	hazard.raise(grid.Cell{R: 5, C: 5}, DefaultElevated)

	risky, _, err := search(g, hazard, from, to)
	if err != nil {
		t.Fatalf("search() with vessel on the strait error: %v", err)
	}

	throughStrait := false
	for _, wp := range risky {
		if g.Cell(wp) == (grid.Cell{R: 5, C: 5}) {
			throughStrait = true
		}
	}
	if !throughStrait {
		t.Errorf("route no longer crosses the only strait")
	}

	costClear := pathCost(g, base, clear)
	costRisky := pathCost(g, hazard, risky)
	if costRisky <= costClear {
		t.Errorf("cost with vessel on the strait = %f; want above %f", costRisky, costClear)
	}
}
