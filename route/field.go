package route

import (
	"math"

	"github.com/routeursea/sea-server/ais"
	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/land"
)

// Baseline is the cost of open water. Every passable cell costs at least
// this much, which keeps the great circle heuristic admissible.
const Baseline = 1.0

// Default soft deterrent for vessel cells and corridor penalty for the
// alternate search. Tunable on the Planner, Detour must stay above Elevated.
const (
	DefaultElevated = 50.0
	DefaultDetour   = 200.0
)

// impassable marks land and rock cells. The searches test it with
// IsImpassable and never expand such a cell, so it is never summed into a
// path cost.
var impassable = math.Inf(1)

// Field is a per request cost field over a window of the grid. Built fresh
// for every route request and discarded after the search.
type Field struct {
	window grid.Window
	cost   [][]float64
}

func newField(w grid.Window) *Field {
	cost := make([][]float64, w.Rows())
	for r := range cost {
		cost[r] = make([]float64, w.Cols())
		for c := range cost[r] {
			cost[r][c] = Baseline
		}
	}
	return &Field{window: w, cost: cost}
}

// BuildField rasterizes the window. Land and rock cells become impassable,
// vessel cells are raised to at least elevated, never lowered. Only the
// window is visited, never the whole grid.
func BuildField(g *grid.Grid, w grid.Window, l *land.Land, vessels []ais.Vessel, elevated float64) *Field {
	f := newField(w)

	for r := w.RMin; r <= w.RMax; r++ {
		for c := w.CMin; c <= w.CMax; c++ {
			cell := grid.Cell{R: r, C: c}
			center := g.Center(cell)
			if l.IsLand(center.Lat, center.Lon) {
				f.block(cell)
			}
		}
	}

	for _, rock := range l.Rocks() {
		cell := g.Cell(rock.Position())
		if w.Contains(cell) {
			f.block(cell)
		}
	}

	for _, v := range vessels {
		cell := g.Cell(v.Position())
		if w.Contains(cell) {
			f.raise(cell, elevated)
		}
	}

	return f
}

func (f *Field) block(cell grid.Cell) {
	f.cost[cell.R-f.window.RMin][cell.C-f.window.CMin] = impassable
}

func (f *Field) raise(cell grid.Cell, cost float64) {
	r, c := cell.R-f.window.RMin, cell.C-f.window.CMin
	if f.cost[r][c] < cost {
		f.cost[r][c] = cost
	}
}

// IsImpassable reports whether the window local cell can never be used.
func (f *Field) IsImpassable(r, c int) bool {
	return math.IsInf(f.cost[r][c], 1)
}

// Clone returns a deep copy so a caller can penalize cells without touching
// a field shared with another search.
func (f *Field) Clone() *Field {
	cost := make([][]float64, len(f.cost))
	for r := range f.cost {
		cost[r] = make([]float64, len(f.cost[r]))
		copy(cost[r], f.cost[r])
	}
	return &Field{window: f.window, cost: cost}
}

// Window returns the grid window the field covers.
func (f *Field) Window() grid.Window {
	return f.window
}
