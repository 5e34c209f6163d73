package domain_test

import (
	"math"
	"testing"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

func TestGeoBounds_Contains(t *testing.T) {
	normal := domain.GeoBounds{North: 10, South: -10, East: 20, West: 0}
	wrapped := domain.GeoBounds{North: 10, South: -10, East: -170, West: 170}

	tests := []struct {
		name   string
		bounds domain.GeoBounds
		point  domain.GeoPoint
		want   bool
	}{
		{"inside", normal, domain.GeoPoint{Lat: 5, Lon: 5}, true},
		{"north edge", normal, domain.GeoPoint{Lat: 10, Lon: 5}, true},
		{"south edge", normal, domain.GeoPoint{Lat: -10, Lon: 5}, true},
		{"west edge", normal, domain.GeoPoint{Lat: 0, Lon: 0}, true},
		{"east edge", normal, domain.GeoPoint{Lat: 0, Lon: 20}, true},
		{"too far north", normal, domain.GeoPoint{Lat: 10.0001, Lon: 5}, false},
		{"too far east", normal, domain.GeoPoint{Lat: 0, Lon: 20.5}, false},
		{"wrapped west side", wrapped, domain.GeoPoint{Lat: 0, Lon: 179}, true},
		{"wrapped east side", wrapped, domain.GeoPoint{Lat: 0, Lon: -175}, true},
		{"wrapped on 180", wrapped, domain.GeoPoint{Lat: 0, Lon: 180}, true},
		{"wrapped on -180", wrapped, domain.GeoPoint{Lat: 0, Lon: -180}, true},
		{"wrapped edges", wrapped, domain.GeoPoint{Lat: 0, Lon: 170}, true},
		{"wrapped outside", wrapped, domain.GeoPoint{Lat: 0, Lon: 0}, false},
		{"wrapped bad latitude", wrapped, domain.GeoPoint{Lat: 20, Lon: 179}, false},
		{"nan latitude", normal, domain.GeoPoint{Lat: math.NaN(), Lon: 5}, false},
		{"nan longitude", wrapped, domain.GeoPoint{Lat: 0, Lon: math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bounds.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestGeoBounds_Wraps(t *testing.T) {
	if (domain.GeoBounds{East: 10, West: -10}).Wraps() {
		t.Error("normal box reported as wrapping")
	}
	if !(domain.GeoBounds{East: -170, West: 170}).Wraps() {
		t.Error("antimeridian box not reported as wrapping")
	}
}
