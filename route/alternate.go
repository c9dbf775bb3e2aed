package route

import (
	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/latlon"
)

// alternate searches for a materially different route by raising the middle
// third of the primary route's cells to the detour penalty on a private copy
// of the field. Impassable cells are never lowered. Returns ErrNoAlternate
// when no route survives the penalty.
func alternate(g *grid.Grid, f *Field, primary []latlon.LatLon, from, to latlon.LatLon, detour float64) ([]latlon.LatLon, int, error) {
	penalized := f.Clone()

	for _, wp := range primary[len(primary)/3 : 2*len(primary)/3] {
		penalized.raise(g.Cell(wp), detour)
	}

	path, pops, err := search(g, penalized, from, to)
	if err != nil {
		return nil, pops, ErrNoAlternate
	}

	return path, pops, nil
}
