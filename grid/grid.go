package grid

import (
	"fmt"
	"math"

	"github.com/routeursea/sea-server/latlon"
)

// Bounds delimits the navigable region. Fixed at startup, never mutated.
type Bounds struct {
	LatMin float64 `json:"latMin"`
	LatMax float64 `json:"latMax"`
	LonMin float64 `json:"lonMin"`
	LonMax float64 `json:"lonMax"`
}

func (b Bounds) Contains(ll latlon.LatLon) bool {
	return ll.Lat >= b.LatMin && ll.Lat <= b.LatMax && ll.Lon >= b.LonMin && ll.Lon <= b.LonMax
}

// Grid discretizes the region into square cells of res degrees.
type Grid struct {
	bounds Bounds
	res    float64
	rows   int
	cols   int
}

func New(b Bounds, res float64) (*Grid, error) {
	if b.LatMin >= b.LatMax || b.LonMin >= b.LonMax {
		return nil, fmt.Errorf("invalid bounds lat [%f, %f] lon [%f, %f]", b.LatMin, b.LatMax, b.LonMin, b.LonMax)
	}
	if res <= 0 {
		return nil, fmt.Errorf("invalid resolution %f", res)
	}
	return &Grid{
		bounds: b,
		res:    res,
		rows:   int((b.LatMax - b.LatMin) / res),
		cols:   int((b.LonMax - b.LonMin) / res),
	}, nil
}

func (g *Grid) Rows() int {
	return g.rows
}

func (g *Grid) Cols() int {
	return g.cols
}

func (g *Grid) Bounds() Bounds {
	return g.bounds
}

func (g *Grid) Resolution() float64 {
	return g.res
}

// Cell is one discrete grid square, row 0 at LatMin and column 0 at LonMin.
type Cell struct {
	R int `json:"r"`
	C int `json:"c"`
}

// Cell maps a position to its enclosing cell. Positions outside the bounds
// clamp to the nearest boundary cell, an out of range index is never produced.
func (g *Grid) Cell(ll latlon.LatLon) Cell {
	r := int(math.Floor((ll.Lat - g.bounds.LatMin) / g.res))
	c := int(math.Floor((ll.Lon - g.bounds.LonMin) / g.res))
	return Cell{R: clamp(r, 0, g.rows-1), C: clamp(c, 0, g.cols-1)}
}

// Center returns the centroid of a cell. Round tripping a position through
// Cell and Center snaps it to the centroid, off by at most res/2 per axis.
func (g *Grid) Center(cell Cell) latlon.LatLon {
	return latlon.LatLon{
		Lat: g.bounds.LatMin + float64(cell.R)*g.res + g.res/2,
		Lon: g.bounds.LonMin + float64(cell.C)*g.res + g.res/2,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Window is the sub rectangle of the grid a single request rasterizes and
// searches, bounds inclusive.
type Window struct {
	RMin int `json:"rMin"`
	RMax int `json:"rMax"`
	CMin int `json:"cMin"`
	CMax int `json:"cMax"`
}

// Window returns the cell rectangle enclosing a and b expanded by pad degrees
// on every side, clamped to the grid.
func (g *Grid) Window(a, b latlon.LatLon, pad float64) Window {
	lo := g.Cell(latlon.LatLon{
		Lat: math.Min(a.Lat, b.Lat) - pad,
		Lon: math.Min(a.Lon, b.Lon) - pad,
	})
	hi := g.Cell(latlon.LatLon{
		Lat: math.Max(a.Lat, b.Lat) + pad,
		Lon: math.Max(a.Lon, b.Lon) + pad,
	})
	return Window{RMin: lo.R, RMax: hi.R, CMin: lo.C, CMax: hi.C}
}

// WindowBounds converts a window back to geographic bounds, outer cell edges
// rather than centroids.
func (g *Grid) WindowBounds(w Window) Bounds {
	return Bounds{
		LatMin: g.bounds.LatMin + float64(w.RMin)*g.res,
		LatMax: g.bounds.LatMin + float64(w.RMax+1)*g.res,
		LonMin: g.bounds.LonMin + float64(w.CMin)*g.res,
		LonMax: g.bounds.LonMin + float64(w.CMax+1)*g.res,
	}
}

func (w Window) Rows() int {
	return w.RMax - w.RMin + 1
}

func (w Window) Cols() int {
	return w.CMax - w.CMin + 1
}

func (w Window) Contains(c Cell) bool {
	return c.R >= w.RMin && c.R <= w.RMax && c.C >= w.CMin && c.C <= w.CMax
}
