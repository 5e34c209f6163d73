// Package placefilter turns a loaded dataset, a filter state and a map
// viewport into the result list and the bounded marker set. Every function
// is pure and safe for concurrent use.
package placefilter

import (
	"strings"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/geospatial"
)

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(a, b domain.GeoPoint) float64 {
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// ApplyFilters returns the places matching every axis of f, in input order.
func ApplyFilters(places []domain.Place, f domain.FilterState) []domain.Place {
	if len(places) == 0 {
		return []domain.Place{}
	}
	query := normalizeQuery(f.Query)

	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if Matches(p, f, query) {
			out = append(out, p)
		}
	}
	return out
}

// Matches evaluates one place against f. query must already be normalized.
func Matches(p domain.Place, f domain.FilterState, query string) bool {
	return p.Locatable() &&
		matchesQuery(p, query) &&
		matchesFloors(p.Floors, f.Floors) &&
		matchesScale(p.Security, f.Security) &&
		matchesScale(p.Interior, f.Interior) &&
		matchesAge(p.Age, f.Age) &&
		matchesRating(p.Rating, f.Rating)
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func matchesQuery(p domain.Place, query string) bool {
	if query == "" {
		return true
	}
	for _, field := range [...]string{p.Title, p.Description, p.Address, p.URL} {
		if strings.TrimSpace(field) == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func matchesFloors(v *int, f domain.FloorsFilter) bool {
	switch f {
	case domain.FloorsAny:
		return true
	case domain.FloorsUnknown:
		return v == nil
	case domain.FloorsLow:
		return v != nil && *v >= 1 && *v <= 5
	case domain.FloorsMid:
		return v != nil && *v >= 6 && *v <= 7
	case domain.FloorsHigh:
		return v != nil && *v >= 8 && *v <= 12
	case domain.FloorsTower:
		return v != nil && *v >= 13
	default:
		return false
	}
}

func matchesScale(v *float64, f domain.ScaleFilter) bool {
	switch f {
	case domain.ScaleAny:
		return true
	case domain.ScaleUnknown:
		return v == nil
	case domain.ScaleLow:
		return v != nil && *v <= 3
	case domain.ScaleMedium:
		return v != nil && *v > 3 && *v <= 6
	case domain.ScaleHigh:
		return v != nil && *v > 6
	default:
		return false
	}
}

func matchesAge(v *float64, f domain.AgeFilter) bool {
	switch f {
	case domain.AgeAny:
		return true
	case domain.AgeUnknown:
		return v == nil
	case domain.AgeNew:
		return v != nil && *v <= 2
	case domain.AgeRecent:
		return v != nil && *v > 2 && *v <= 4
	case domain.AgeClassic:
		return v != nil && *v > 4 && *v <= 7
	case domain.AgeHeritage:
		return v != nil && *v > 7
	default:
		return false
	}
}

func matchesRating(v *float64, f domain.RatingFilter) bool {
	switch f {
	case domain.RatingAny:
		return true
	case domain.RatingUnknown:
		return v == nil
	}
	threshold, ok := f.MinValue()
	return ok && v != nil && *v >= threshold
}
