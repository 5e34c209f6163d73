package placefilter_test

import "github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func at(id int, lat, lon float64) domain.Place {
	return domain.Place{ID: id, Title: "Place", Lat: f64(lat), Lon: f64(lon)}
}

func ids(places []domain.Place) []int {
	out := make([]int, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
