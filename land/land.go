package land

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	log "github.com/sirupsen/logrus"
)

// Land is the union of every land and island polygon plus the charted rock
// hazards. Built once at startup, read only afterwards, safe for concurrent
// queries.
type Land struct {
	union    orb.MultiPolygon
	features *geojson.FeatureCollection
	rocks    []Rock
}

// Load builds the obstacle set from GeoJSON polygon files and an Overpass
// rocks file. A missing file is skipped with a warning, a malformed one is
// an error and the caller must not serve.
func Load(landFile, islandsFile, rocksFile string) (*Land, error) {
	l := &Land{features: geojson.NewFeatureCollection()}

	for _, file := range []string{landFile, islandsFile} {
		if file == "" {
			continue
		}
		if err := l.loadPolygons(file); err != nil {
			return nil, err
		}
	}

	if rocksFile != "" {
		rocks, err := LoadRocks(rocksFile)
		if err != nil {
			return nil, err
		}
		l.rocks = rocks
	}

	log.Infof("Loaded %d land polygons and %d rocks", len(l.union), len(l.rocks))

	return l, nil
}

func (l *Land) loadPolygons(file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("No geometry file '%s'", file)
			return nil
		}
		return fmt.Errorf("reading geometry file %s: %w", file, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return fmt.Errorf("parsing geometry file %s: %w", file, err)
	}

	for _, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			l.union = append(l.union, geom)
		case orb.MultiPolygon:
			l.union = append(l.union, geom...)
		default:
			return fmt.Errorf("parsing geometry file %s: unsupported geometry %s", file, geom.GeoJSONType())
		}
		l.features.Append(f)
	}

	return nil
}

// IsLand reports whether the position lies on land.
func (l *Land) IsLand(lat float64, lon float64) bool {
	return planar.MultiPolygonContains(l.union, orb.Point{lon, lat})
}

// Rocks returns the charted rock hazards.
func (l *Land) Rocks() []Rock {
	return l.rocks
}

// Features returns the polygon features as loaded, for serialization.
func (l *Land) Features() *geojson.FeatureCollection {
	return l.features
}
