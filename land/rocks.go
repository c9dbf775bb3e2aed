package land

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/osm"
	log "github.com/sirupsen/logrus"

	"github.com/routeursea/sea-server/latlon"
)

// Rock is a charted point hazard, permanent once loaded.
type Rock struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

func (r Rock) Position() latlon.LatLon {
	return latlon.LatLon{Lat: r.Lat, Lon: r.Lon}
}

// LoadRocks reads rock hazards from an Overpass OSM JSON file.
func LoadRocks(file string) ([]Rock, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("No rocks file '%s'", file)
			return nil, nil
		}
		return nil, fmt.Errorf("reading rocks file %s: %w", file, err)
	}

	var o osm.OSM
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, fmt.Errorf("parsing rocks file %s: %w", file, err)
	}

	rocks := make([]Rock, 0, len(o.Nodes))
	for _, n := range o.Nodes {
		name := n.Tags.Find("name")
		if name == "" {
			name = fmt.Sprintf("Rock-%d", n.ID)
		}
		rocks = append(rocks, Rock{Lat: n.Lat, Lon: n.Lon, Name: name})
	}

	return rocks, nil
}
