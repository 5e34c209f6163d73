package domain_test

import (
	"math"
	"testing"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestPlace_Point(t *testing.T) {
	tests := []struct {
		name  string
		place domain.Place
		ok    bool
	}{
		{"both present", domain.Place{Lat: fp(1), Lon: fp(2)}, true},
		{"missing lat", domain.Place{Lon: fp(2)}, false},
		{"missing lon", domain.Place{Lat: fp(1)}, false},
		{"nan lat", domain.Place{Lat: fp(math.NaN()), Lon: fp(2)}, false},
		{"zero is valid", domain.Place{Lat: fp(0), Lon: fp(0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.place.Point(); ok != tt.ok {
				t.Errorf("expected ok=%v", tt.ok)
			}
			if tt.place.Locatable() != tt.ok {
				t.Errorf("Locatable disagrees with Point")
			}
		})
	}
}

func TestFormatScale(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{fp(7), "7/10"},
		{fp(0), "0/10"},
		{fp(6.5), "6.5/10"},
		{fp(6.24), "6.2/10"},
	}
	for _, tt := range tests {
		if got := domain.FormatScale(tt.in); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestFormatFloors(t *testing.T) {
	if got := domain.FormatFloors(nil); got != "N/A" {
		t.Errorf("nil: got %q", got)
	}
	if got := domain.FormatFloors(ip(0)); got != "N/A" {
		t.Errorf("zero: got %q", got)
	}
	if got := domain.FormatFloors(ip(9)); got != "9" {
		t.Errorf("nine: got %q", got)
	}
}

func TestPlace_MapsURL(t *testing.T) {
	tests := []struct {
		name  string
		place domain.Place
		want  string
	}{
		{"coordinates with title", domain.Place{Title: "Old Mill", Lat: fp(55.75), Lon: fp(37.6)},
			"https://maps.google.com/?q=55.75,37.6(Old%20Mill)"},
		{"whole coordinates keep a fraction", domain.Place{Lat: fp(1), Lon: fp(2)},
			"https://maps.google.com/?q=1.0,2.0(Location)"},
		{"negative coordinates", domain.Place{Title: "Dock", Lat: fp(-43), Lon: fp(-2.93)},
			"https://maps.google.com/?q=-43.0,-2.93(Dock)"},
		{"blank title", domain.Place{Title: "  ", Lat: fp(0), Lon: fp(0)},
			"https://maps.google.com/?q=0.0,0.0(Location)"},
		{"address spaces are percent encoded", domain.Place{Address: "Lenina 5"},
			"https://maps.google.com/?q=Lenina%205"},
		{"coordinates win over address", domain.Place{Address: "Lenina 5", Lat: fp(1.5), Lon: fp(2)},
			"https://maps.google.com/?q=1.5,2.0(Location)"},
		{"nothing usable", domain.Place{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.place.MapsURL(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
