package http_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/dataset"
	handler "github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/http"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/memcache"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/sqlite"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
)

const datasetJSON = `[
  {"id": 1, "title": "Harbour Crane", "lat": 43.26, "lon": -2.93, "floors": 9, "security": 2, "rating": 8.5},
  {"id": 2, "title": "Textile Mill", "lat": 43.30, "lon": -2.99, "floors": 3, "security": 7, "rating": 6},
  {"id": 3, "title": "Unmapped Depot", "floors": 1},
  {"id": 2, "title": "Textile Mill (dup)", "lat": 1, "lon": 1}
]`

// Import a dataset into in-memory sqlite and serve it end to end.
func TestPlacesAPI_SQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := sqlite.NewPlaceRepo(db)

	source := dataset.NewFSSource(fstest.MapFS{"places.json": {Data: []byte(datasetJSON)}}, "test")
	event, err := usecases.NewDatasetService(source, repo, nil).Import(ctx)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if event.Count != 2 || event.Dropped != 2 {
		t.Fatalf("unexpected import event %+v", event)
	}

	places := usecases.NewPlaceService(repo, memcache.New(0, 0), usecases.Limits{CacheTTL: 30})
	if err := places.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	app := setupApp(&handler.Dependencies{Places: places, DB: db, Cache: memcache.New(0, 0)})

	for i := 0; i < 2; i++ { // second pass is served from the cache
		status, body, _ := get(t, app, "/v1/places?floors=high&sort=rating")
		if status != 200 {
			t.Fatalf("expected 200, got %d: %s", status, body)
		}
		var res listResponse
		decode(t, body, &res)
		if len(res.Data) != 1 || res.Data[0].Title != "Harbour Crane" {
			t.Fatalf("pass %d: unexpected result %+v", i, res.Data)
		}
	}

	status, body, _ := get(t, app, "/v1/places/2")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var detail handler.PlaceDetail
	decode(t, body, &detail)
	if detail.Title != "Textile Mill" || detail.Metrics.Security != "7/10" {
		t.Errorf("first occurrence should win, got %+v", detail)
	}

	if status, _, _ := get(t, app, "/v1/places/3"); status != 404 {
		t.Errorf("unlocatable place must not be served, got %d", status)
	}
	if status, body, _ := get(t, app, "/v1/ready"); status != 200 {
		t.Errorf("expected ready, got %d: %s", status, body)
	}
}

// Relevance order is the dataset order, not the primary key order.
func TestPlacesAPI_SQLiteKeepsDatasetOrder(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := sqlite.NewPlaceRepo(db)

	const data = `[
  {"id": 30, "title": "Gasometer", "lat": 43.25, "lon": -2.91},
  {"id": 10, "title": "Foundry", "lat": 43.27, "lon": -2.95},
  {"id": 20, "title": "Silo", "lat": 43.29, "lon": -2.97}
]`
	source := dataset.NewFSSource(fstest.MapFS{"places.json": {Data: []byte(data)}}, "test")
	if _, err := usecases.NewDatasetService(source, repo, nil).Import(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	places := usecases.NewPlaceService(repo, memcache.New(0, 0), usecases.Limits{CacheTTL: 30})
	if err := places.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	app := setupApp(&handler.Dependencies{Places: places, DB: db, Cache: memcache.New(0, 0)})

	status, body, _ := get(t, app, "/v1/places")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res listResponse
	decode(t, body, &res)
	want := []int{30, 10, 20}
	if len(res.Data) != len(want) {
		t.Fatalf("expected %d places, got %+v", len(want), res.Data)
	}
	for i, id := range want {
		if res.Data[i].ID != id {
			t.Fatalf("expected ids %v, got %+v", want, res.Data)
		}
	}

	status, body, _ = get(t, app, "/v1/places/markers?max=1")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var markers handler.MarkersResponse
	decode(t, body, &markers)
	if markers.Count != 1 || markers.Markers[0].ID != 30 {
		t.Errorf("expected the first dataset place as marker, got %+v", markers.Markers)
	}
}
