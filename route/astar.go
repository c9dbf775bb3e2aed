package route

import (
	"container/heap"
	"errors"
	"math"

	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/latlon"
	"github.com/routeursea/sea-server/queue"
)

// ErrNoRoute means no feasible route exists between the endpoints inside the
// searched window, or an endpoint maps outside it.
var ErrNoRoute = errors.New("no feasible route")

// ErrNoAlternate means the detour search found no materially different route.
// Callers degrade to the primary route alone.
var ErrNoAlternate = errors.New("no alternate route")

var neighbors4 = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// search runs a weighted A* between from and to over the field. Moves are the
// four cardinal neighbors, entering a cell costs the great circle distance
// between the two centers in nautical miles times the cell's weight. The
// heuristic is the unweighted distance to the goal, admissible while every
// weight stays at least Baseline.
//
// The two endpoint cells are costed as Baseline even when they carry the
// impassable sentinel, grid coarseness must not strand a voyage on its own
// pier. The relaxation never applies to intermediate cells and the field is
// not mutated. Returns the waypoints, the number of frontier pops and
// ErrNoRoute when the frontier drains before the goal.
func search(g *grid.Grid, f *Field, from, to latlon.LatLon) ([]latlon.LatLon, int, error) {
	w := f.window
	start, goal := g.Cell(from), g.Cell(to)
	if !w.Contains(start) || !w.Contains(goal) {
		return nil, 0, ErrNoRoute
	}

	cols := w.Cols()
	startId := (start.R-w.RMin)*cols + start.C - w.CMin
	goalId := (goal.R-w.RMin)*cols + goal.C - w.CMin

	if startId == goalId {
		return []latlon.LatLon{g.Center(start)}, 0, nil
	}

	center := func(id int) latlon.LatLon {
		return g.Center(grid.Cell{R: id/cols + w.RMin, C: id%cols + w.CMin})
	}

	// cost of entering a window local cell, endpoint relaxation applied
	weight := func(id, r, c int) float64 {
		if id == startId || id == goalId {
			return Baseline
		}
		return f.cost[r][c]
	}

	goalCenter := center(goalId)

	items := make([]*queue.Item, w.Rows()*cols)
	dist := make([]float64, len(items))

	items[startId] = queue.NewItem(startId, latlon.DistanceNm(center(startId), goalCenter), -1)
	pq := queue.New(items[startId])

	pops := 0
	for pq.Len() > 0 {
		current := heap.Pop(pq).(*queue.Item)
		pops++
		if current.ItemId == goalId {
			break
		}

		id := current.ItemId
		r, c := id/cols, id%cols
		cur := center(id)

		for _, d := range neighbors4 {
			nr, nc := r+d[0], c+d[1]
			if nr < 0 || nr >= w.Rows() || nc < 0 || nc >= cols {
				continue
			}
			nid := nr*cols + nc
			wgt := weight(nid, nr, nc)
			if math.IsInf(wgt, 1) {
				continue
			}
			nCenter := center(nid)
			alt := dist[id] + latlon.DistanceNm(cur, nCenter)*wgt
			if items[nid] == nil {
				dist[nid] = alt
				items[nid] = queue.NewItem(nid, alt+latlon.DistanceNm(nCenter, goalCenter), id)
				heap.Push(pq, items[nid])
			} else if alt < dist[nid] && items[nid].Index >= 0 {
				// still on the frontier, settled items stay final
				dist[nid] = alt
				pq.Update(items[nid], alt+latlon.DistanceNm(nCenter, goalCenter), id)
			}
		}
	}

	if items[goalId] == nil {
		return nil, pops, ErrNoRoute
	}

	path := make([]latlon.LatLon, 0)
	for id := goalId; id != -1; id = items[id].Predecessor {
		path = append([]latlon.LatLon{center(id)}, path...)
	}

	return path, pops, nil
}
