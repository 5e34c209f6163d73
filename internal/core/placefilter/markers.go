package placefilter

import (
	"sort"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

type candidate struct {
	place    domain.Place
	distance float64
}

// ComputeVisibleMarkers picks at most maxMarkers places to render, preferring
// places inside the viewport and filling the remainder with the nearest
// outside ones. The active place is always appended when it is part of
// filtered, even if that exceeds maxMarkers by one.
func ComputeVisibleMarkers(filtered []domain.Place, viewport *domain.MapViewport, activeID *int, maxMarkers int) []domain.Place {
	if viewport == nil {
		return take(filtered, maxMarkers)
	}
	if len(filtered) == 0 {
		return []domain.Place{}
	}

	var inside []domain.Place
	var outside []candidate
	for _, p := range filtered {
		pt, ok := p.Point()
		if !ok {
			continue
		}
		if viewport.Bounds.Contains(pt) {
			inside = append(inside, p)
		} else if len(inside) < maxMarkers {
			// Outside places are never selected once inside holds maxMarkers.
			outside = append(outside, candidate{place: p, distance: DistanceMeters(viewport.Center, pt)})
		}
	}

	selected := inside
	switch {
	case len(selected) > maxMarkers:
		selected = decimate(selected, maxMarkers)
	case len(selected) < maxMarkers && len(outside) > 0:
		sort.SliceStable(outside, func(i, j int) bool { return outside[i].distance < outside[j].distance })
		for _, c := range outside {
			if len(selected) >= maxMarkers {
				break
			}
			selected = append(selected, c.place)
		}
	}

	if activeID != nil && !containsID(selected, *activeID) {
		for _, p := range filtered {
			if p.ID == *activeID {
				selected = append(selected, p)
				break
			}
		}
	}

	return distinctByID(selected)
}

// decimate keeps every step-th element, step = floor(len/limit) but at least 1,
// truncated to limit. limit <= 0 keeps nothing.
func decimate(places []domain.Place, limit int) []domain.Place {
	if limit <= 0 {
		return []domain.Place{}
	}
	step := len(places) / limit
	if step < 1 {
		step = 1
	}
	out := make([]domain.Place, 0, limit)
	for i := 0; i < len(places) && len(out) < limit; i += step {
		out = append(out, places[i])
	}
	return out
}

func take(places []domain.Place, n int) []domain.Place {
	if n <= 0 {
		return []domain.Place{}
	}
	if n > len(places) {
		n = len(places)
	}
	out := make([]domain.Place, n)
	copy(out, places[:n])
	return out
}

func containsID(places []domain.Place, id int) bool {
	for _, p := range places {
		if p.ID == id {
			return true
		}
	}
	return false
}

func distinctByID(places []domain.Place) []domain.Place {
	seen := make(map[int]struct{}, len(places))
	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
