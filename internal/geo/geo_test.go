package geo

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/example/commit-swipe/internal/models"
)

func TestHaversineZero(t *testing.T) {
	d := HaversineKm(models.Coordinate{}, models.Coordinate{})
	if d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceKmUnknownWhenMissing(t *testing.T) {
	a := &models.Coordinate{Lat: 1, Lng: 1}
	if _, ok := DistanceKm(a, nil); ok {
		t.Fatal("expected unknown distance")
	}
	if _, ok := DistanceKm(nil, a); ok {
		t.Fatal("expected unknown distance")
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	nyc := &models.Coordinate{Lat: 40.7128, Lng: -74.0060}
	london := &models.Coordinate{Lat: 51.5074, Lng: -0.1278}
	d, ok := DistanceKm(nyc, london)
	if !ok {
		t.Fatal("expected a distance")
	}
	if d < 5560 || d > 5580 {
		t.Fatalf("nyc-london expected ~5570km, got %d", d)
	}
}

func TestDistanceKmOffsetProfile(t *testing.T) {
	user := models.Coordinate{Lat: 40.7128, Lng: -74.0060}
	profile := user.Add(models.Coordinate{Lat: 0.01, Lng: 0.01})
	d, ok := DistanceKm(&user, &profile)
	if !ok || d != 1 {
		t.Fatalf("expected 1km, got %d ok=%v", d, ok)
	}
}

func coord(lat, lng float64) models.Coordinate {
	// fold arbitrary floats into valid degrees
	return models.Coordinate{Lat: math.Mod(lat, 90), Lng: math.Mod(lng, 180)}
}

func TestDistanceKmSymmetric(t *testing.T) {
	f := func(lat1, lng1, lat2, lng2 float64) bool {
		a, b := coord(lat1, lng1), coord(lat2, lng2)
		ab, _ := DistanceKm(&a, &b)
		ba, _ := DistanceKm(&b, &a)
		return ab == ba
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestDistanceKmIdentity(t *testing.T) {
	f := func(lat, lng float64) bool {
		a := coord(lat, lng)
		d, ok := DistanceKm(&a, &a)
		return ok && d == 0
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}
