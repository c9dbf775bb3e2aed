package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultMarineURL   = "https://marine-api.open-meteo.com/v1/marine"
)

const forecastHourly = "temperature_2m,windspeed_10m,weathercode,visibility,precipitation,cloudcover"
const marineHourly = "wave_height,wave_direction,wave_period"

// Location echoes the queried position back to the caller.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Hour is one merged forecast hour, atmosphere and sea state together.
type Hour struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WeatherCode   int     `json:"weathercode"`
	Visibility    float64 `json:"visibility"`
	Precipitation float64 `json:"precipitation"`
	CloudCover    float64 `json:"cloudcover"`
	WaveHeight    float64 `json:"wave_height"`
	WaveDirection float64 `json:"wave_direction"`
	WavePeriod    float64 `json:"wave_period"`
}

// Report is the merged hourly forecast for one position.
type Report struct {
	Location Location `json:"location"`
	Hourly   []Hour   `json:"hourly"`
}

type forecastResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		WindSpeed     []float64 `json:"windspeed_10m"`
		WeatherCode   []int     `json:"weathercode"`
		Visibility    []float64 `json:"visibility"`
		Precipitation []float64 `json:"precipitation"`
		CloudCover    []float64 `json:"cloudcover"`
	} `json:"hourly"`
}

type marineResponse struct {
	Hourly struct {
		WaveHeight    []float64 `json:"wave_height"`
		WaveDirection []float64 `json:"wave_direction"`
		WavePeriod    []float64 `json:"wave_period"`
	} `json:"hourly"`
}

// Client proxies open-meteo. Both upstream calls share one circuit breaker so
// a flapping upstream stops costing request latency.
type Client struct {
	ForecastURL string
	MarineURL   string

	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Report]
}

func NewClient() *Client {
	c := &Client{
		ForecastURL: DefaultForecastURL,
		MarineURL:   DefaultMarineURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Report](gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("Breaker '%s' changed from %s to %s", name, from, to)
		},
	})
	return c
}

// Fetch merges the forecast and the marine hourly series for the position.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Report, error) {
	return c.breaker.Execute(func() (*Report, error) {
		return c.fetch(ctx, lat, lon)
	})
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (*Report, error) {
	var forecast forecastResponse
	if err := c.get(ctx, c.ForecastURL, lat, lon, forecastHourly, &forecast); err != nil {
		return nil, err
	}

	var marine marineResponse
	if err := c.get(ctx, c.MarineURL, lat, lon, marineHourly, &marine); err != nil {
		return nil, err
	}

	report := &Report{Location: Location{Lat: lat, Lon: lon}, Hourly: []Hour{}}
	for i, ts := range forecast.Hourly.Time {
		report.Hourly = append(report.Hourly, Hour{
			Time:          ts,
			Temperature:   at(forecast.Hourly.Temperature, i),
			WindSpeed:     at(forecast.Hourly.WindSpeed, i),
			WeatherCode:   atInt(forecast.Hourly.WeatherCode, i),
			Visibility:    at(forecast.Hourly.Visibility, i),
			Precipitation: at(forecast.Hourly.Precipitation, i),
			CloudCover:    at(forecast.Hourly.CloudCover, i),
			WaveHeight:    at(marine.Hourly.WaveHeight, i),
			WaveDirection: at(marine.Hourly.WaveDirection, i),
			WavePeriod:    at(marine.Hourly.WavePeriod, i),
		})
	}

	return report, nil
}

func (c *Client) get(ctx context.Context, base string, lat, lon float64, hourly string, out interface{}) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("hourly", hourly)
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s replied %s", u.Host, res.Status)
	}

	return json.NewDecoder(res.Body).Decode(out)
}

// The upstream series are indexed by the forecast timeline. A shorter series
// reads as zero instead of truncating the report.
func at(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func atInt(s []int, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}
