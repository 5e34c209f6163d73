package sqlite_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/sqlite"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(db.Close)
	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func fp(v float64) *float64 { return &v }

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	applied, err := db.Migrate(context.Background())
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected nothing to apply, got %v", applied)
	}
}

func TestPlaceRepo_RoundTrip(t *testing.T) {
	repo := sqlite.NewPlaceRepo(openTestDB(t))
	ctx := context.Background()

	floors := 12
	places := []domain.Place{
		{ID: 2, Title: "Depot", Address: "Dock 4", Lat: fp(43.26), Lon: fp(-2.93), Rating: fp(8.5), Floors: &floors,
			Images: []domain.PlaceImage{{Mime: "image/png", Data: "iVBORw0KGgo="}}},
		{ID: 1, Title: "Mill", Lat: fp(43.27), Lon: fp(-2.94)},
	}
	if err := repo.UpsertBatch(ctx, places); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("expected ids [2 1], got %+v", got)
	}
	if got[1].Rating != nil || got[1].Floors != nil {
		t.Errorf("expected NULL columns to stay nil, got %+v", got[1])
	}
	depot := got[0]
	if *depot.Rating != 8.5 || *depot.Floors != 12 || depot.Address != "Dock 4" {
		t.Errorf("unexpected depot %+v", depot)
	}
	if len(depot.Images) != 1 || depot.Images[0].Data != "iVBORw0KGgo=" {
		t.Errorf("unexpected images %+v", depot.Images)
	}
}

func TestPlaceRepo_ListKeepsDatasetOrder(t *testing.T) {
	repo := sqlite.NewPlaceRepo(openTestDB(t))
	ctx := context.Background()

	batch := func(ids ...int) []domain.Place {
		places := make([]domain.Place, len(ids))
		for i, id := range ids {
			places[i] = domain.Place{ID: id, Lat: fp(0), Lon: fp(0)}
		}
		return places
	}
	listIDs := func() []int {
		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		ids := make([]int, len(got))
		for i, p := range got {
			ids[i] = p.ID
		}
		return ids
	}

	tests := []struct {
		name  string
		batch []int
		want  []int
	}{
		{"first import", []int{30, 10, 20}, []int{30, 10, 20}},
		{"reimport reorders", []int{20, 30, 10}, []int{20, 30, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.UpsertBatch(ctx, batch(tt.batch...)); err != nil {
				t.Fatalf("upsert: %v", err)
			}
			got := listIDs()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestPlaceRepo_UpsertUpdates(t *testing.T) {
	repo := sqlite.NewPlaceRepo(openTestDB(t))
	ctx := context.Background()

	if err := repo.UpsertBatch(ctx, []domain.Place{{ID: 1, Title: "Old", Lat: fp(1), Lon: fp(1)}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertBatch(ctx, []domain.Place{{ID: 1, Title: "New", Lat: fp(2), Lon: fp(2)}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Title != "New" || *p.Lat != 2 {
		t.Errorf("expected updated row, got %+v", p)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestPlaceRepo_DeleteMissing(t *testing.T) {
	repo := sqlite.NewPlaceRepo(openTestDB(t))
	ctx := context.Background()

	var places []domain.Place
	for i := 1; i <= 5; i++ {
		places = append(places, domain.Place{ID: i, Lat: fp(0), Lon: fp(0)})
	}
	if err := repo.UpsertBatch(ctx, places); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	removed, err := repo.DeleteMissing(ctx, []int{2, 4})
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("expected 2 left, got %d", n)
	}

	// a second run with a different keep set must not see stale ids
	removed, _ = repo.DeleteMissing(ctx, []int{4})
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
}

func TestPlaceRepo_GetByID_NotFound(t *testing.T) {
	repo := sqlite.NewPlaceRepo(openTestDB(t))
	_, err := repo.GetByID(context.Background(), 404)
	if !errors.Is(err, domain.ErrPlaceNotFound) {
		t.Fatalf("expected ErrPlaceNotFound, got %v", err)
	}
}

func TestHooks_ReportsSlowQueries(t *testing.T) {
	var buf bytes.Buffer
	h := &sqlite.Hooks{Threshold: time.Millisecond, Out: &buf}

	ctx, _ := h.Before(context.Background(), "SELECT 1")
	time.Sleep(2 * time.Millisecond)
	if _, err := h.After(ctx, "SELECT 1"); err != nil {
		t.Fatalf("after: %v", err)
	}
	if !strings.Contains(buf.String(), "slow sql: SELECT 1") {
		t.Errorf("expected slow query report, got %q", buf.String())
	}

	buf.Reset()
	h.Threshold = 0
	ctx, _ = h.Before(context.Background(), "SELECT 2")
	_, _ = h.After(ctx, "SELECT 2")
	if buf.Len() != 0 {
		t.Errorf("expected fast query to stay quiet, got %q", buf.String())
	}
}
