package latlon

import "math"

// Distance returns the great circle distance between from and to in meters.
func Distance(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δφ := φ2 - φ1

	Δλ := toRadians(to.Lon - from.Lon)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	δ := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * δ
}

// DistanceNm returns the great circle distance between from and to in nautical miles.
func DistanceNm(from, to LatLon) float64 {
	return Distance(from, to) / MetersPerNm
}

// Destination returns the position reached by travelling distance meters from
// from on the given initial bearing.
func Destination(from LatLon, bearing float64, distance float64) LatLon {
	φ1 := toRadians(from.Lat)
	λ1 := toRadians(from.Lon)
	θ := toRadians(bearing)
	δ := distance / R

	φ2 := math.Asin(math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ1 + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2))

	return LatLon{Lat: toDegrees(φ2), Lon: wrap180(toDegrees(λ2))}
}
