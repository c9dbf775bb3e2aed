package model

import (
	"github.com/paulmach/orb/geojson"

	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/port"
)

type RouteRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Waypoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Obstacles is the geometry the chart draws alongside the routes. Islands are
// the polygon features as loaded, rocks and ships are point features.
type Obstacles struct {
	Islands []*geojson.Feature `json:"islands"`
	Rocks   []*geojson.Feature `json:"rocks"`
	Ships   []*geojson.Feature `json:"ships"`
}

type RouteResponse struct {
	From         port.Port   `json:"from"`
	To           port.Port   `json:"to"`
	MainRoute    []Waypoint  `json:"main_route"`
	AltRoute     []Waypoint  `json:"alt_route"`
	AltAvailable bool        `json:"alt_available"`
	Window       grid.Bounds `json:"window"`
	Obstacles    Obstacles   `json:"obstacles"`
}
