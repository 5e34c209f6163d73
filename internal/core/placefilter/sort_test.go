package placefilter_test

import (
	"testing"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/placefilter"
)

func withSort(s domain.SortOption) domain.FilterState {
	f := domain.DefaultFilterState()
	f.Sort = s
	return f
}

func TestSortPlaces_RelevanceIsIdentity(t *testing.T) {
	places := []domain.Place{at(3, 0, 0), at(1, 5, 5), at(2, 1, 1)}
	got := placefilter.SortPlaces(places, withSort(domain.SortRelevance), nil)
	if !equalIDs(ids(got), []int{3, 1, 2}) {
		t.Fatalf("expected input order, got %v", ids(got))
	}
}

func TestSortPlaces_DistanceWithoutViewportIsIdentity(t *testing.T) {
	places := []domain.Place{at(3, 50, 50), at(1, 0, 0), at(2, 10, 10)}
	got := placefilter.SortPlaces(places, withSort(domain.SortDistance), nil)
	if !equalIDs(ids(got), []int{3, 1, 2}) {
		t.Fatalf("expected input order, got %v", ids(got))
	}
}

func TestSortPlaces_Distance(t *testing.T) {
	places := []domain.Place{
		at(1, 0, 20),
		at(2, 0, 1),
		at(3, 0, -179), // 2 degrees away across the antimeridian
		at(4, 0, 1),    // tie with 2, keeps input order
		at(5, 0, 5),
	}
	vp := &domain.MapViewport{
		Center: domain.GeoPoint{Lat: 0, Lon: 179},
		Bounds: domain.GeoBounds{North: 1, South: -1, East: -178, West: 178},
	}

	got := placefilter.SortPlaces(places, withSort(domain.SortDistance), vp)
	want := []int{3, 1, 5, 2, 4}
	if !equalIDs(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestSortPlaces_RatingUnratedLastTiesByID(t *testing.T) {
	mk := func(id int, rating *float64) domain.Place {
		p := at(id, 0, 0)
		p.Rating = rating
		return p
	}
	places := []domain.Place{
		mk(9, nil), mk(4, f64(7)), mk(2, f64(9)), mk(7, f64(7)), mk(1, nil), mk(3, f64(7)), mk(8, f64(0)),
	}

	got := placefilter.SortPlaces(places, withSort(domain.SortRating), nil)
	want := []int{2, 3, 4, 7, 8, 1, 9}
	if !equalIDs(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}

	if !equalIDs(ids(places), []int{9, 4, 2, 7, 1, 3, 8}) {
		t.Error("input slice was reordered")
	}
}

func TestSortPlaces_Security(t *testing.T) {
	mk := func(id int, security *float64) domain.Place {
		p := at(id, 0, 0)
		p.Security = security
		p.Rating = f64(float64(10 - id))
		return p
	}
	places := []domain.Place{mk(5, f64(2)), mk(6, nil), mk(3, f64(8)), mk(1, f64(2))}

	got := placefilter.SortPlaces(places, withSort(domain.SortSecurity), nil)
	want := []int{3, 1, 5, 6}
	if !equalIDs(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestSortPlaces_Idempotent(t *testing.T) {
	var places []domain.Place
	for i := 0; i < 40; i++ {
		p := at(40-i, float64(i%9), float64(i%13))
		if i%2 == 0 {
			p.Rating = f64(float64(i % 5))
		}
		places = append(places, p)
	}
	vp := &domain.MapViewport{Center: domain.GeoPoint{Lat: 3, Lon: 3}}

	for _, s := range domain.SortValues {
		a := placefilter.SortPlaces(places, withSort(s), vp)
		b := placefilter.SortPlaces(places, withSort(s), vp)
		if !equalIDs(ids(a), ids(b)) {
			t.Errorf("sort %s is not deterministic", s)
		}
	}
}
