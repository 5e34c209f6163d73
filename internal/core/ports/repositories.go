package ports

import (
	"context"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// PlaceRepository persists the place dataset.
type PlaceRepository interface {
	UpsertBatch(ctx context.Context, places []domain.Place) error
	// List returns every stored place in the order of the last UpsertBatch.
	List(ctx context.Context) ([]domain.Place, error)
	GetByID(ctx context.Context, id int) (*domain.Place, error)
	Count(ctx context.Context) (int, error)
	// DeleteMissing removes every place whose id is not in keep and reports how many rows went away.
	DeleteMissing(ctx context.Context, keep []int) (int, error)
}

// DatasetSource produces the raw place list from wherever the dataset lives.
type DatasetSource interface {
	Load(ctx context.Context) ([]domain.Place, error)
	Name() string
}
