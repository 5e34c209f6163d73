package placefilter_test

import (
	"testing"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/placefilter"
)

func TestNeighbor(t *testing.T) {
	results := []domain.Place{at(10, 0, 0), at(20, 0, 0), at(30, 0, 0)}
	id := func(v int) *int { return &v }

	tests := []struct {
		name   string
		active *int
		offset int
		want   int
	}{
		{"next", id(10), 1, 20},
		{"previous", id(20), -1, 10},
		{"wrap forward", id(30), 1, 10},
		{"wrap backward", id(10), -1, 30},
		{"no active next", nil, 1, 10},
		{"no active previous", nil, -1, 30},
		{"unknown active", id(99), 1, 10},
		{"big jump clamps to first", id(20), 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := placefilter.Neighbor(results, tt.active, tt.offset)
			if !ok {
				t.Fatal("expected a neighbor")
			}
			if got.ID != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got.ID)
			}
		})
	}

	if _, ok := placefilter.Neighbor(nil, id(1), 1); ok {
		t.Error("expected no neighbor for empty results")
	}
}
