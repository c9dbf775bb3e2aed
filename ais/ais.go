package ais

import (
	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/latlon"
)

// Vessel is a reported position. A snapshot is taken per route request and
// never persisted.
type Vessel struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

func (v Vessel) Position() latlon.LatLon {
	return latlon.LatLon{Lat: v.Lat, Lon: v.Lon}
}

// Provider supplies the vessel snapshot for one request. The route engine is
// agnostic to whether positions come from a live feed or a fixture.
type Provider interface {
	Vessels(b grid.Bounds) []Vessel
}
