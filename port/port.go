package port

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm"
	log "github.com/sirupsen/logrus"

	"github.com/routeursea/sea-server/latlon"
)

// ErrNotFound reports a lookup that matched no port name.
var ErrNotFound = errors.New("port not found")

// Port is one harbour entry. Loaded once at startup, immutable afterwards.
type Port struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

func (p Port) Position() latlon.LatLon {
	return latlon.LatLon{Lat: p.Lat, Lon: p.Lon}
}

// Table is the port directory. Built once at startup, read only afterwards,
// safe for concurrent lookups.
type Table struct {
	ports []Port
}

// Load reads the ports file, either Overpass OSM-JSON node elements or a
// GeoJSON FeatureCollection of points. A missing file yields an empty table
// with a warning, a malformed one is an error.
func Load(file string) (*Table, error) {
	if file == "" {
		return &Table{ports: []Port{}}, nil
	}

	b, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("No ports file '%s'", file)
			return &Table{ports: []Port{}}, nil
		}
		return nil, fmt.Errorf("reading ports file %s: %w", file, err)
	}

	var probe struct {
		Elements json.RawMessage `json:"elements"`
		Type     string          `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("parsing ports file %s: %w", file, err)
	}

	t := &Table{}
	switch {
	case probe.Elements != nil:
		t.ports, err = fromOverpass(b)
	case probe.Type == "FeatureCollection":
		t.ports, err = fromGeoJSON(b)
	default:
		err = errors.New("neither Overpass elements nor a FeatureCollection")
	}
	if err != nil {
		return nil, fmt.Errorf("parsing ports file %s: %w", file, err)
	}

	log.Infof("Loaded %d ports", len(t.ports))

	return t, nil
}

func fromOverpass(b []byte) ([]Port, error) {
	var o osm.OSM
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}

	ports := make([]Port, 0, len(o.Nodes))
	for _, n := range o.Nodes {
		name := n.Tags.Find("name")
		if name == "" {
			name = fmt.Sprintf("Port-%d", n.ID)
		}
		ports = append(ports, Port{Lat: n.Lat, Lon: n.Lon, Name: name})
	}

	return ports, nil
}

func fromGeoJSON(b []byte) ([]Port, error) {
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, err
	}

	ports := make([]Port, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		name := f.Properties.MustString("name", fmt.Sprintf("Port-%d", i+1))
		ports = append(ports, Port{Lat: pt.Lat(), Lon: pt.Lon(), Name: name})
	}

	return ports, nil
}

// Find returns the first port whose name contains the query, case
// insensitively. Harbour names are typed by users, never exact.
func (t *Table) Find(query string) (Port, error) {
	q := strings.ToLower(query)
	for _, p := range t.ports {
		if strings.Contains(strings.ToLower(p.Name), q) {
			return p, nil
		}
	}
	return Port{}, fmt.Errorf("%w: %s", ErrNotFound, query)
}

// All returns every port in load order.
func (t *Table) All() []Port {
	return t.ports
}
