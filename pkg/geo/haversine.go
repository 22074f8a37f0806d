package geo

import "math"

const (
	// earthRadiusKM is the mean Earth radius used for great-circle distances.
	earthRadiusKM = 6371.0

	kRad = math.Pi / 180.0
)

// HaversineDistance returns the great-circle distance in kilometers between
// two points given as latitude/longitude in decimal degrees.
func HaversineDistance(latOne, lonOne, latTwo, lonTwo float64) float64 {
	latOneRad := latOne * kRad
	latTwoRad := latTwo * kRad
	dLat := (latTwo - latOne) * kRad
	dLon := (lonTwo - lonOne) * kRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latOneRad)*math.Cos(latTwoRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}
