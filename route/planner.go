package route

import (
	log "github.com/sirupsen/logrus"

	"github.com/routeursea/sea-server/ais"
	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/land"
	"github.com/routeursea/sea-server/latlon"
)

// Planner wires the grid and the obstacle model to the searches. Detour must
// stay strictly above Elevated so the alternate search prefers leaving the
// primary corridor over crossing a vessel cell.
type Planner struct {
	Grid     *grid.Grid
	Land     *land.Land
	Padding  float64 // window padding around the endpoints, degrees
	Elevated float64 // soft deterrent for vessel cells
	Detour   float64 // corridor penalty for the alternate search
}

func NewPlanner(g *grid.Grid, l *land.Land) *Planner {
	return &Planner{
		Grid:     g,
		Land:     l,
		Padding:  3.0,
		Elevated: DefaultElevated,
		Detour:   DefaultDetour,
	}
}

// Plan is the outcome of one route request. Alternate is nil when no
// materially different route exists, callers treat that as a degraded
// result, never a failure.
type Plan struct {
	Main      []latlon.LatLon
	Alternate []latlon.LatLon
	Window    grid.Window
	Pops      int
}

// Plan computes the primary and the alternate route between two resolved
// positions, avoiding land, charted rocks and the given vessel snapshot. The
// field is rasterized over the window around the endpoints only, never the
// whole grid. Plan never retries, the search is deterministic for identical
// inputs.
func (p *Planner) Plan(from, to latlon.LatLon, vessels []ais.Vessel) (*Plan, error) {
	w := p.Grid.Window(from, to, p.Padding)
	f := BuildField(p.Grid, w, p.Land, vessels, p.Elevated)

	log.Debugf("Search window %dx%d with %d vessels", w.Rows(), w.Cols(), len(vessels))

	main, pops, err := search(p.Grid, f, from, to)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Main: main, Window: w, Pops: pops}

	alt, altPops, err := alternate(p.Grid, f, main, from, to, p.Detour)
	plan.Pops += altPops
	if err != nil {
		log.Infof("No alternate route between {%.2f %.2f} and {%.2f %.2f}", from.Lat, from.Lon, to.Lat, to.Lon)
		return plan, nil
	}
	plan.Alternate = alt

	return plan, nil
}
