package ais

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/latlon"
)

// Fixture is a deterministic stand in for a live position feed. It scatters
// vessels over the bounds at startup and drifts them a little on every
// refresh tick.
type Fixture struct {
	lock    sync.RWMutex
	bounds  grid.Bounds
	rnd     *rand.Rand
	vessels []Vessel
}

func NewFixture(b grid.Bounds, n int) *Fixture {
	f := &Fixture{
		bounds: b,
		rnd:    rand.New(rand.NewSource(42)),
	}
	f.vessels = make([]Vessel, 0, n)
	for i := 0; i < n; i++ {
		f.vessels = append(f.vessels, Vessel{
			Lat:  b.LatMin + f.rnd.Float64()*(b.LatMax-b.LatMin),
			Lon:  b.LonMin + f.rnd.Float64()*(b.LonMax-b.LonMin),
			Name: fmt.Sprintf("Vessel-%d", i+1),
		})
	}
	return f
}

// Drift moves every vessel up to two nautical miles on a random heading,
// staying inside the bounds.
func (f *Fixture) Drift() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for i, v := range f.vessels {
		moved := latlon.Destination(v.Position(), f.rnd.Float64()*360.0, f.rnd.Float64()*2.0*latlon.MetersPerNm)
		if !f.bounds.Contains(moved) {
			continue
		}
		f.vessels[i].Lat = moved.Lat
		f.vessels[i].Lon = moved.Lon
	}
}

// Vessels returns the vessels currently inside b.
func (f *Fixture) Vessels(b grid.Bounds) []Vessel {
	f.lock.RLock()
	defer f.lock.RUnlock()

	vessels := make([]Vessel, 0, len(f.vessels))
	for _, v := range f.vessels {
		if b.Contains(v.Position()) {
			vessels = append(vessels, v)
		}
	}
	return vessels
}
