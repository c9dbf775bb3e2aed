package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/routeursea/sea-server/ais"
	"github.com/routeursea/sea-server/api/model"
	"github.com/routeursea/sea-server/fuel"
	"github.com/routeursea/sea-server/land"
	"github.com/routeursea/sea-server/latlon"
	"github.com/routeursea/sea-server/notify"
	"github.com/routeursea/sea-server/port"
	"github.com/routeursea/sea-server/route"
	"github.com/routeursea/sea-server/weather"
	"github.com/routeursea/sea-server/wind"
)

type server struct {
	cpuprofile bool
	table      *port.Table
	provider   ais.Provider
	winds      *wind.Winds
	weather    *weather.Client
	planner    *route.Planner
	notifier   *notify.Notifier
}

func InitServer(cpuprofile bool, staticDir string, ports *port.Table, provider ais.Provider, winds *wind.Winds, wx *weather.Client, planner *route.Planner, notifier *notify.Notifier) *mux.Router {

	router := mux.NewRouter().StrictSlash(true)
	router.Use(metricsMiddleware)

	s := server{cpuprofile: cpuprofile,
		table:    ports,
		provider: provider,
		winds:    winds,
		weather:  wx,
		planner:  planner,
		notifier: notifier,
	}

	api := router.PathPrefix("/").Subrouter()

	api.HandleFunc("/-/healthz", s.healthz).Methods(http.MethodGet)
	api.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/ports", s.getPorts).Methods("GET")
	apiV1.HandleFunc("/route", s.route).Methods("POST")
	apiV1.HandleFunc("/vessels", s.getVessels).Methods("GET")
	apiV1.HandleFunc("/weather", s.getWeather).Methods("GET")
	apiV1.HandleFunc("/wind/{lat}/{lon}", s.wind).Methods("GET")
	apiV1.HandleFunc("/forecasts", s.getForecasts).Methods("GET")
	apiV1.HandleFunc("/calculate", s.calculate).Methods("POST")

	if staticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return router
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	json.NewEncoder(w).Encode(health{Status: "Ok"})
}

func (s *server) getPorts(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.table.All())
}

func (s *server) route(w http.ResponseWriter, req *http.Request) {
	if s.cpuprofile {
		defer profile.Start().Stop()
	}

	fields := log.Fields{
		"action": "route",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	requestLogger := log.WithFields(fields)

	var r model.RouteRequest
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	from, err := s.table.Find(r.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := s.table.Find(r.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vessels := s.provider.Vessels(s.planner.Grid.Bounds())
	vesselsTracked.Set(float64(len(vessels)))

	requestLogger.Infof("Route from '%s' to '%s' with %d vessels", from.Name, to.Name, len(vessels))

	start := time.Now()

	plan, err := s.planner.Plan(from.Position(), to.Position(), vessels)
	if err != nil {
		if errors.Is(err, route.ErrNoRoute) {
			routesNotFound.Inc()
			requestLogger.Infof("No route from '%s' to '%s'", from.Name, to.Name)
			writeError(w, http.StatusNotFound, "no feasible route found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	delta := time.Now().Sub(start)
	requestLogger.Infof("Route took %s (%d)", delta.String(), plan.Pops)

	routesComputed.Inc()
	searchPops.Observe(float64(plan.Pops))
	if plan.Alternate == nil {
		routesWithoutAlternate.Inc()
	}

	res := model.RouteResponse{
		From:         from,
		To:           to,
		MainRoute:    toWaypoints(plan.Main),
		AltRoute:     toWaypoints(plan.Alternate),
		AltAvailable: plan.Alternate != nil,
		Window:       s.planner.Grid.WindowBounds(plan.Window),
		Obstacles: model.Obstacles{
			Islands: s.planner.Land.Features().Features,
			Rocks:   rockFeatures(s.planner.Land.Rocks()),
			Ships:   shipFeatures(vessels),
		},
	}

	if s.notifier.Enabled() {
		msg := fmt.Sprintf("Route '%s' -> '%s' : %d waypoints in %s (%d)", from.Name, to.Name, len(plan.Main), delta.Round(time.Millisecond), plan.Pops)
		go func() {
			if err := s.notifier.Send(msg); err != nil {
				log.WithError(err).Warn("Route notification failed")
			}
		}()
	}

	json.NewEncoder(w).Encode(res)
}

func (s *server) getVessels(w http.ResponseWriter, r *http.Request) {
	vessels := s.provider.Vessels(s.planner.Grid.Bounds())
	vesselsTracked.Set(float64(len(vessels)))

	json.NewEncoder(w).Encode(vessels)
}

func (s *server) getWeather(w http.ResponseWriter, req *http.Request) {
	lat, err := strconv.ParseFloat(req.URL.Query().Get("lat"), 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(req.URL.Query().Get("lon"), 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	report, err := s.weather.Fetch(req.Context(), lat, lon)
	if err != nil {
		weatherUpstreamErrors.Inc()
		log.WithError(err).Errorf("Weather (%f,%f) failed", lat, lon)
		writeError(w, http.StatusBadGateway, "weather upstream unavailable")
		return
	}

	json.NewEncoder(w).Encode(report)
}

func (s *server) wind(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(mux.Vars(r)["lat"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(mux.Vars(r)["lon"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	type windResult struct {
		Wind  float64 `json:"wind"`
		Speed float64 `json:"speed"`
	}

	deg, ms, ok := s.winds.WindAt(lat, lon, time.Now().UTC())
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var res windResult
	res.Wind = deg
	res.Speed = ms * 1.9438444924406

	log.Infof("Wind (%f,%f) : %.1f° %.1f kt", lat, lon, res.Wind, res.Speed)

	json.NewEncoder(w).Encode(res)
}

func (s *server) getForecasts(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.winds.Stamps())
}

func (s *server) calculate(w http.ResponseWriter, req *http.Request) {
	fields := log.Fields{
		"action": "calculate",
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	requestLogger := log.WithFields(fields)

	var r fuel.Request
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	res := fuel.Calculate(r)

	requestLogger.Infof("Calculate %s %.0f nm at %.1f kt : %s", res.VesselType, res.DistanceNm, res.RequestedSpeed, res.EcoRatingBadge)

	json.NewEncoder(w).Encode(res)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func toWaypoints(path []latlon.LatLon) []model.Waypoint {
	wps := make([]model.Waypoint, 0, len(path))
	for _, p := range path {
		wps = append(wps, model.Waypoint{Lat: round6(p.Lat), Lon: round6(p.Lon)})
	}
	return wps
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func rockFeatures(rocks []land.Rock) []*geojson.Feature {
	features := make([]*geojson.Feature, 0, len(rocks))
	for _, r := range rocks {
		f := geojson.NewFeature(orb.Point{r.Lon, r.Lat})
		f.Properties["name"] = r.Name
		features = append(features, f)
	}
	return features
}

func shipFeatures(vessels []ais.Vessel) []*geojson.Feature {
	features := make([]*geojson.Feature, 0, len(vessels))
	for _, v := range vessels {
		f := geojson.NewFeature(orb.Point{v.Lon, v.Lat})
		f.Properties["name"] = v.Name
		features = append(features, f)
	}
	return features
}

func getIp(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("No valid ip found")
}
