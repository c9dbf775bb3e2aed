package wind

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jasonlvhit/gocron"
	log "github.com/sirupsen/logrus"
)

type ForecastWinds []*Wind

func (w ForecastWinds) String() string {
	res := ""
	res += w[0].Date.Format("2006010215") + "(" + w[0].File
	if len(w) > 1 {
		res += "," + w[1].File
	}
	res += ")"
	return res
}

// Winds is the registry of decoded forecasts found in dir, keyed by their
// valid hour stamp. Grib files appear in dir out of band, the registry picks
// them up on the next merge.
type Winds struct {
	dir   string
	winds map[string](ForecastWinds)
	lock  sync.RWMutex
}

func InitWinds(dir string) *Winds {
	w := &Winds{
		dir:   dir,
		winds: LoadAll(dir),
		lock:  sync.RWMutex{},
	}

	s := gocron.NewScheduler()
	jobxx := s.Every(15).Seconds()
	jobxx.Do(w.Merge)

	go s.Start()

	return w
}

// Stamps returns the loaded forecast hours in order, for the forecasts
// listing endpoint.
func (w *Winds) Stamps() []string {
	w.lock.RLock()
	defer w.lock.RUnlock()

	keys := make([]string, 0, len(w.winds))
	for k := range w.winds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WindAt interpolates direction and speed at the position for the moment m.
// ok is false while no forecast has been loaded.
func (w *Winds) WindAt(lat float64, lon float64, m time.Time) (float64, float64, bool) {
	w1, w2, h := w.FindWinds(m)
	if w1 == nil {
		return 0, 0, false
	}
	deg, ms := Interpolate(w1, w2, lat, lon, h)
	return deg, ms, true
}

// FindWinds returns the forecasts bracketing m and the progress between
// them. The second forecast is nil at the edges of the loaded range.
func (w *Winds) FindWinds(m time.Time) (ForecastWinds, ForecastWinds, float64) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if len(w.winds) == 0 {
		return nil, nil, 0
	}

	stamp := m.Format("2006010215")

	keys := make([]string, 0, len(w.winds))
	for k := range w.winds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if keys[0] > stamp {
		return w.winds[keys[0]], nil, 0
	}
	for i := range keys {
		if keys[i] > stamp {
			h := m.Sub(w.winds[keys[i-1]][0].Date).Minutes()
			delta := w.winds[keys[i]][0].Date.Sub(w.winds[keys[i-1]][0].Date).Minutes()
			return w.winds[keys[i-1]], w.winds[keys[i]], h / delta
		}
	}
	return w.winds[keys[len(keys)-1]], nil, 0
}

// Merge drops forecasts whose file went away and decodes new files. Runs on
// the scheduler, safe against concurrent reads.
func (w *Winds) Merge() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	var toRemove []string
	for k, ws := range w.winds {
		if _, err := os.Stat(filepath.Join(w.dir, ws[0].File)); os.IsNotExist(err) {
			toRemove = append(toRemove, k)
		}
	}
	for _, k := range toRemove {
		log.Println("Remove from winds", k)
		delete(w.winds, k)
	}

	files, err := gribFiles(w.dir)
	if err != nil {
		log.WithError(err).Error("Error walking grib files")
		return nil
	}

	forecasts := bucketByForecastHour(files)

	var keys []int
	for k := range forecasts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		for _, file := range forecasts[k] {
			date, ok := validHour(file)
			if !ok {
				continue
			}
			sdate := date.Format("2006010215")

			ws, found := w.winds[sdate]
			if found {
				if len(ws) == 2 || ws[0].File == file {
					continue
				}
			}

			wind, err := Init(w.dir, date, file)
			if err != nil {
				log.WithError(err).Errorf("Error loading grib file '%s'", file)
			} else {
				w.winds[sdate] = append(w.winds[sdate], &wind)
				log.Debugf("Init %s %s", sdate, w.winds[sdate])
			}
		}
	}

	return nil
}

// LoadAll decodes every usable grib file in dir, keyed by valid hour.
func LoadAll(dir string) map[string](ForecastWinds) {
	winds := make(map[string](ForecastWinds))

	files, err := gribFiles(dir)
	if err != nil {
		log.WithError(err).Error("Error walking grib files")
		return winds
	}

	forecasts := bucketByForecastHour(files)

	var keys []int
	for k := range forecasts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		for _, file := range forecasts[k] {
			date, ok := validHour(file)
			if !ok {
				continue
			}
			sdate := date.Format("2006010215")
			wind, err := Init(dir, date, file)
			if err != nil {
				log.WithError(err).Errorf("Error loading grib file '%s'", file)
			} else {
				log.Debugf("Init %s %s", sdate, wind.File)
				winds[sdate] = append(winds[sdate], &wind)
			}
		}
	}
	return winds
}

// Files are named <run stamp>.f<offset hours>, 2026082100.f003 being the
// three hour forecast of the 2026-08-21 00Z run.
func validHour(file string) (time.Time, bool) {
	parts := strings.Split(file, ".")
	if len(parts) < 2 || len(parts[1]) < 2 {
		return time.Time{}, false
	}
	h, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		log.WithError(err).Errorf("Error getting hour from file '%s'", file)
		return time.Time{}, false
	}
	t, err := time.Parse("2006010215", parts[0])
	if err != nil {
		log.WithError(err).Errorf("Error parsing date '%s'", parts[0])
		return time.Time{}, false
	}
	return t.Add(time.Hour * time.Duration(h)), true
}

func gribFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.WithError(err).Errorf("Error walking file '%s'", path)
		} else if info.Mode().IsRegular() && !strings.HasSuffix(info.Name(), ".tmp") {
			files = append(files, info.Name())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Past forecasts are kept three hours back, the freshest file wins for hours
// still ahead.
func bucketByForecastHour(files []string) map[int][]string {
	forecasts := make(map[int][]string)

	for cpt, f := range files {
		t, ok := validHour(f)
		if !ok {
			continue
		}

		forecastHour := int(math.Round(time.Until(t).Hours()))

		if forecastHour < -3 && cpt < len(files)-1 {
			continue
		}

		_, found := forecasts[forecastHour]

		if !found || forecastHour >= 0 {
			forecasts[forecastHour] = append(forecasts[forecastHour], f)
		}
	}

	return forecasts
}
