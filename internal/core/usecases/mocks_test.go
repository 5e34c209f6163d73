package usecases_test

import (
	"context"
	"sync"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
)

// --- Mock PlaceRepository ---

type mockPlaceRepo struct {
	listFn          func(ctx context.Context) ([]domain.Place, error)
	upsertBatchFn   func(ctx context.Context, places []domain.Place) error
	deleteMissingFn func(ctx context.Context, keep []int) (int, error)
}

func (m *mockPlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, places)
	}
	return nil
}

func (m *mockPlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPlaceRepo) GetByID(ctx context.Context, id int) (*domain.Place, error) {
	return nil, domain.ErrPlaceNotFound
}

func (m *mockPlaceRepo) Count(ctx context.Context) (int, error) { return 0, nil }

func (m *mockPlaceRepo) DeleteMissing(ctx context.Context, keep []int) (int, error) {
	if m.deleteMissingFn != nil {
		return m.deleteMissingFn(ctx, keep)
	}
	return 0, nil
}

// --- Mock DatasetSource ---

type mockSource struct {
	name   string
	loadFn func(ctx context.Context) ([]domain.Place, error)
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Load(ctx context.Context) ([]domain.Place, error) {
	return m.loadFn(ctx)
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []domain.DatasetLoaded
	err    error
}

func (m *mockPublisher) PublishDatasetLoaded(ctx context.Context, event domain.DatasetLoaded) error {
	m.events = append(m.events, event)
	return m.err
}

// --- In-memory CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	c.hits++
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- helpers ---

func f64(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func at(id int, lat, lon float64) domain.Place {
	return domain.Place{ID: id, Title: "place", Lat: f64(lat), Lon: f64(lon)}
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
