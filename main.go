package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/handlers"
	"github.com/jasonlvhit/gocron"
	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/routeursea/sea-server/ais"
	"github.com/routeursea/sea-server/api"
	"github.com/routeursea/sea-server/grid"
	"github.com/routeursea/sea-server/land"
	"github.com/routeursea/sea-server/notify"
	"github.com/routeursea/sea-server/port"
	"github.com/routeursea/sea-server/route"
	"github.com/routeursea/sea-server/weather"
	"github.com/routeursea/sea-server/wind"

	_ "net/http/pprof"
)

func main() {

	fs := flag.NewFlagSet("sea-server", flag.ExitOnError)
	var (
		addr         = fs.String("addr", ":8888", "listen address")
		dataDir      = fs.String("data-dir", "data", "directory with land.geojson, isles.geojson, rocks.json and ports.json")
		staticDir    = fs.String("static-dir", "static", "chart assets directory, empty to disable")
		gribDir      = fs.String("grib-dir", "grib-data", "directory watched for grib2 forecasts")
		latMin       = fs.Float64("lat-min", -15, "grid south boundary")
		latMax       = fs.Float64("lat-max", 25, "grid north boundary")
		lonMin       = fs.Float64("lon-min", 90, "grid west boundary")
		lonMax       = fs.Float64("lon-max", 140, "grid east boundary")
		resolution   = fs.Float64("resolution", 0.2, "grid cell size in degrees")
		padding      = fs.Float64("padding", 3.0, "search window padding in degrees")
		elevated     = fs.Float64("elevated-cost", route.DefaultElevated, "cell cost under a reported vessel")
		detour       = fs.Float64("detour-cost", route.DefaultDetour, "corridor penalty for the alternate search")
		natsURL      = fs.String("nats-url", "", "NATS server, empty for the seeded fixture fleet")
		natsSubject  = fs.String("nats-subject", "ais.positions", "NATS subject with vessel positions")
		fleetSize    = fs.Int("fleet-size", 100, "fixture fleet size when no NATS server is set")
		xmppHost     = fs.String("xmpp-host", "", "")
		xmppJid      = fs.String("xmpp-jid", "", "")
		xmppPassword = fs.String("xmpp-password", "", "")
		xmppTo       = fs.String("xmpp-to", "", "")
		cpuprofile   = fs.Bool("cpuprofile", false, "profile route computations")
		debug        = fs.Bool("debug", false, "debug logs")
	)
	ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix())

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	g, err := grid.New(grid.Bounds{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax}, *resolution)
	if err != nil {
		log.WithError(err).Fatal("Invalid grid")
	}

	l, err := land.Load(
		filepath.Join(*dataDir, "land.geojson"),
		filepath.Join(*dataDir, "isles.geojson"),
		filepath.Join(*dataDir, "rocks.json"),
	)
	if err != nil {
		log.WithError(err).Fatal("Loading obstacles")
	}

	ports, err := port.Load(filepath.Join(*dataDir, "ports.json"))
	if err != nil {
		log.WithError(err).Fatal("Loading ports")
	}

	planner := route.NewPlanner(g, l)
	planner.Padding = *padding
	planner.Elevated = *elevated
	planner.Detour = *detour

	var provider ais.Provider
	if *natsURL != "" {
		tracker, err := ais.NewTracker(*natsURL, *natsSubject)
		if err != nil {
			log.WithError(err).Fatal("Connecting to NATS")
		}
		provider = tracker
	} else {
		fixture := ais.NewFixture(g.Bounds(), *fleetSize)
		s := gocron.NewScheduler()
		jobxx := s.Every(30).Seconds()
		jobxx.Do(fixture.Drift)
		go s.Start()
		provider = fixture
	}

	winds := wind.InitWinds(*gribDir)

	notifier := notify.New(notify.Config{Host: *xmppHost, Jid: *xmppJid, Password: *xmppPassword, To: *xmppTo})

	router := api.InitServer(*cpuprofile, *staticDir, ports, provider, winds, weather.NewClient(), planner, notifier)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	log.Infof("Start server on %s", *addr)

	log.Fatal(http.ListenAndServe(*addr, cors(handlers.CombinedLoggingHandler(os.Stdout, router))))
}
