package placefilter

import "github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"

// Neighbor returns the result offset positions away from the active place,
// wrapping at both ends. Without an active place (or when it is not in
// results) counting starts just before the first result.
func Neighbor(results []domain.Place, activeID *int, offset int) (domain.Place, bool) {
	if len(results) == 0 {
		return domain.Place{}, false
	}
	current := -1
	if activeID != nil {
		for i, p := range results {
			if p.ID == *activeID {
				current = i
				break
			}
		}
	}

	target := current + offset
	switch {
	case target < 0:
		target = len(results) - 1
	case target > len(results)-1:
		target = 0
	}
	return results[target], true
}
