package natsadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

func TestDispatch(t *testing.T) {
	var got domain.DatasetLoaded
	handler := func(ctx context.Context, event domain.DatasetLoaded) error {
		got = event
		return nil
	}

	data := []byte(`{"id":"e1","source":"file:./data","count":42,"dropped":3,"loaded_at":"2026-03-01T12:00:00Z"}`)
	if err := dispatch(context.Background(), data, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "e1" || got.Count != 42 || got.Dropped != 3 {
		t.Errorf("unexpected event %+v", got)
	}
	if !got.LoadedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected loaded_at %v", got.LoadedAt)
	}
}

func TestDispatch_Errors(t *testing.T) {
	called := false
	handler := func(ctx context.Context, event domain.DatasetLoaded) error {
		called = true
		return errors.New("refresh failed")
	}

	if err := dispatch(context.Background(), []byte("{bad"), handler); err == nil {
		t.Error("expected decode error")
	}
	if called {
		t.Error("handler must not run for undecodable messages")
	}

	if err := dispatch(context.Background(), []byte(`{"id":"e2"}`), handler); err == nil {
		t.Error("expected handler error to propagate")
	}
}
