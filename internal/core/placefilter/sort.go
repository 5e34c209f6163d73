package placefilter

import (
	"math"
	"sort"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// SortPlaces orders places by f.Sort. Relevance keeps the input order, and
// distance does too when viewport is nil. The input slice is never modified.
func SortPlaces(places []domain.Place, f domain.FilterState, viewport *domain.MapViewport) []domain.Place {
	switch f.Sort {
	case domain.SortDistance:
		if viewport == nil {
			return places
		}
		return byDistance(places, viewport.Center)
	case domain.SortRating:
		return byScoreDesc(places, func(p domain.Place) *float64 { return p.Rating })
	case domain.SortSecurity:
		return byScoreDesc(places, func(p domain.Place) *float64 { return p.Security })
	default:
		return places
	}
}

func byDistance(places []domain.Place, center domain.GeoPoint) []domain.Place {
	keys := make([]float64, len(places))
	for i, p := range places {
		keys[i] = math.MaxFloat64
		if pt, ok := p.Point(); ok {
			keys[i] = DistanceMeters(center, pt)
		}
	}
	return stableOrder(places, func(a, b int) bool { return keys[a] < keys[b] })
}

// byScoreDesc sorts descending with absent scores last and ties by ascending id.
func byScoreDesc(places []domain.Place, score func(domain.Place) *float64) []domain.Place {
	keys := make([]float64, len(places))
	for i, p := range places {
		keys[i] = math.Inf(-1)
		if v := score(p); v != nil {
			keys[i] = *v
		}
	}
	return stableOrder(places, func(a, b int) bool {
		if keys[a] != keys[b] {
			return keys[a] > keys[b]
		}
		return places[a].ID < places[b].ID
	})
}

// stableOrder sorts a permutation of indices so keys stay aligned with the
// original positions, then materialises a new slice.
func stableOrder(places []domain.Place, less func(a, b int) bool) []domain.Place {
	idx := make([]int, len(places))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(idx[i], idx[j]) })

	out := make([]domain.Place, len(places))
	for i, j := range idx {
		out[i] = places[j]
	}
	return out
}
