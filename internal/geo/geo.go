package geo

import (
	"math"

	"github.com/example/commit-swipe/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between a and b in kilometers.
func HaversineKm(a, b models.Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// DistanceKm rounds the haversine distance to the nearest kilometer.
// The boolean is false when either coordinate is unknown.
func DistanceKm(a, b *models.Coordinate) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return int(math.Round(HaversineKm(*a, *b))), true
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
