package main

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/peterbourgon/ff"
	"github.com/qedus/osmpbf"
	log "github.com/sirupsen/logrus"
)

// chart-import extracts the chart files the server loads from an OSM pbf
// extract: closed coastline rings to land.geojson, islands to isles.geojson,
// rock and reef nodes to rocks.json, harbour nodes to ports.json.

type point struct {
	lat float64
	lon float64
}

// overpassNode mirrors the Overpass JSON element shape the server loaders
// parse.
type overpassNode struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags,omitempty"`
}

type overpassFile struct {
	Elements []overpassNode `json:"elements"`
}

type importer struct {
	file  string
	nodes map[int64]point

	land  *geojson.FeatureCollection
	isles *geojson.FeatureCollection
	rocks overpassFile
	ports overpassFile
}

func newImporter(file string) *importer {
	return &importer{
		file:  file,
		nodes: make(map[int64]point),
		land:  geojson.NewFeatureCollection(),
		isles: geojson.NewFeatureCollection(),
		rocks: overpassFile{Elements: []overpassNode{}},
		ports: overpassFile{Elements: []overpassNode{}},
	}
}

func (imp *importer) Run() error {
	if err := imp.collectNodes(); err != nil {
		return err
	}
	return imp.collectWays()
}

// collectNodes is the first pass, every way in the second pass resolves its
// geometry against this map.
func (imp *importer) collectNodes() error {
	file, err := os.Open(imp.file)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return err
	}

	for {
		v, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch v := v.(type) {
		case *osmpbf.Node:
			imp.nodes[v.ID] = point{lat: v.Lat, lon: v.Lon}

			if isRock(v.Tags) {
				imp.rocks.Elements = append(imp.rocks.Elements, element(v))
			}
			if isPort(v.Tags) {
				imp.ports.Elements = append(imp.ports.Elements, element(v))
			}
		}
	}

	return nil
}

func (imp *importer) collectWays() error {
	file, err := os.Open(imp.file)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return err
	}

	for {
		v, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch v := v.(type) {
		case *osmpbf.Way:
			if len(v.NodeIDs) < 4 || v.NodeIDs[0] != v.NodeIDs[len(v.NodeIDs)-1] {
				continue
			}
			switch {
			case v.Tags["natural"] == "coastline":
				imp.appendRing(imp.land, v)
			case v.Tags["place"] == "island" || v.Tags["place"] == "islet":
				imp.appendRing(imp.isles, v)
			}
		}
	}

	return nil
}

func (imp *importer) appendRing(fc *geojson.FeatureCollection, w *osmpbf.Way) {
	ring := make(orb.Ring, 0, len(w.NodeIDs))
	for _, id := range w.NodeIDs {
		p, ok := imp.nodes[id]
		if !ok {
			log.Debugf("Way %d misses node %d, skipped", w.ID, id)
			return
		}
		ring = append(ring, orb.Point{p.lon, p.lat})
	}

	f := geojson.NewFeature(orb.Polygon{ring})
	if name, ok := w.Tags["name"]; ok {
		f.Properties["name"] = name
	}
	fc.Append(f)
}

func (imp *importer) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for file, v := range map[string]interface{}{
		"land.geojson":  imp.land,
		"isles.geojson": imp.isles,
		"rocks.json":    &imp.rocks,
		"ports.json":    &imp.ports,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, file), b, 0o644); err != nil {
			return err
		}
	}

	log.Infof("Imported %d land polygons, %d isles, %d rocks and %d ports", len(imp.land.Features), len(imp.isles.Features), len(imp.rocks.Elements), len(imp.ports.Elements))

	return nil
}

func isRock(tags map[string]string) bool {
	switch tags["seamark:type"] {
	case "rock", "reef":
		return true
	}
	switch tags["natural"] {
	case "rock", "reef", "bare_rock":
		return true
	}
	return false
}

func isPort(tags map[string]string) bool {
	return tags["harbour"] == "yes" || tags["seamark:type"] == "harbour"
}

func element(n *osmpbf.Node) overpassNode {
	return overpassNode{Type: "node", ID: n.ID, Lat: n.Lat, Lon: n.Lon, Tags: n.Tags}
}

func main() {
	fs := flag.NewFlagSet("chart-import", flag.ExitOnError)
	var (
		pbfFile = fs.String("pbf", "chart.osm.pbf", "OSM extract to import")
		outDir  = fs.String("out", "data", "output directory for the chart files")
	)
	ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix())

	imp := newImporter(*pbfFile)
	if err := imp.Run(); err != nil {
		log.WithError(err).Fatal("Import failed")
	}
	if err := imp.Write(*outDir); err != nil {
		log.WithError(err).Fatal("Writing chart files")
	}
}
