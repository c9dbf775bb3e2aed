package latlon

import "math"

const π = math.Pi

// R is the mean earth radius in meters.
const R = 6371e3

// MetersPerNm is one nautical mile in meters.
const MetersPerNm = 1852.0

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

func wrap180(l float64) float64 {
	if -180.0 <= l && l < 180.0 {
		return l
	}
	l1 := l + 540.0
	l2 := l1 - float64(int(l1/360.0)*360)
	return l2 - 180.0
}
