package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/metrics"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/retry"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/telemetry"
)

// ErrEmptyDataset is returned when a dataset holds no locatable place.
// The repository is left untouched in that case.
var ErrEmptyDataset = errors.New("dataset has no locatable places")

const loadAttempts = 3

// DatasetService imports the place dataset into the repository.
type DatasetService struct {
	source    ports.DatasetSource
	repo      ports.PlaceRepository
	publisher ports.EventPublisher

	retryUnit time.Duration
	now       func() time.Time
}

// DatasetOption customises a DatasetService.
type DatasetOption func(*DatasetService)

// WithRetryUnit sets the base of the quadratic backoff between load attempts.
func WithRetryUnit(d time.Duration) DatasetOption {
	return func(s *DatasetService) { s.retryUnit = d }
}

// WithClock overrides the time source used for DatasetLoaded.LoadedAt.
func WithClock(now func() time.Time) DatasetOption {
	return func(s *DatasetService) { s.now = now }
}

// NewDatasetService creates a new DatasetService. publisher may be nil.
func NewDatasetService(source ports.DatasetSource, repo ports.PlaceRepository, publisher ports.EventPublisher, opts ...DatasetOption) *DatasetService {
	s := &DatasetService{
		source:    source,
		repo:      repo,
		publisher: publisher,
		retryUnit: time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import loads the dataset, keeps the first locatable place per id, writes it
// to the repository, removes rows that disappeared and announces the result.
func (s *DatasetService) Import(ctx context.Context) (event domain.DatasetLoaded, err error) {
	source := s.source.Name()
	ctx, span := telemetry.StartSpan(ctx, "dataset.import", attribute.String("source", source))
	defer func() {
		if err != nil {
			metrics.DatasetImportErrors.WithLabelValues(source).Inc()
		}
		telemetry.EndSpan(span, err)
	}()
	start := time.Now()

	var raw []domain.Place
	err = retry.WithBackoff(ctx, loadAttempts, s.retryUnit, func(ctx context.Context) error {
		var loadErr error
		raw, loadErr = s.source.Load(ctx)
		return loadErr
	})
	if err != nil {
		return domain.DatasetLoaded{}, fmt.Errorf("load dataset from %s: %w", source, err)
	}

	places, unlocatable, duplicates := prepare(raw)
	if unlocatable > 0 {
		slog.WarnContext(ctx, "dropped places without coordinates", "source", source, "count", unlocatable)
		metrics.DatasetPlacesDropped.WithLabelValues(source, "unlocatable").Add(float64(unlocatable))
	}
	if duplicates > 0 {
		slog.WarnContext(ctx, "dropped duplicate place ids", "source", source, "count", duplicates)
		metrics.DatasetPlacesDropped.WithLabelValues(source, "duplicate").Add(float64(duplicates))
	}
	if len(places) == 0 {
		return domain.DatasetLoaded{}, fmt.Errorf("%s: %w", source, ErrEmptyDataset)
	}

	if err = s.repo.UpsertBatch(ctx, places); err != nil {
		return domain.DatasetLoaded{}, fmt.Errorf("upsert places: %w", err)
	}

	keep := make([]int, len(places))
	for i, p := range places {
		keep[i] = p.ID
	}
	removed, err := s.repo.DeleteMissing(ctx, keep)
	if err != nil {
		return domain.DatasetLoaded{}, fmt.Errorf("delete stale places: %w", err)
	}

	event = domain.DatasetLoaded{
		ID:       uuid.New().String(),
		Source:   source,
		Count:    len(places),
		Dropped:  unlocatable + duplicates,
		LoadedAt: s.now().UTC(),
	}

	metrics.DatasetPlacesLoaded.WithLabelValues(source).Set(float64(len(places)))
	metrics.DatasetImportDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	slog.InfoContext(ctx, "dataset imported",
		"source", source,
		"count", event.Count,
		"dropped", event.Dropped,
		"removed", removed,
		"event_id", event.ID,
	)

	// Best-effort; the data is already stored.
	if s.publisher != nil {
		if pubErr := s.publisher.PublishDatasetLoaded(ctx, event); pubErr != nil {
			slog.WarnContext(ctx, "publish dataset loaded", "error", pubErr)
		}
	}

	return event, nil
}

func prepare(raw []domain.Place) (places []domain.Place, unlocatable, duplicates int) {
	places = make([]domain.Place, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	for _, p := range raw {
		if !p.Locatable() {
			unlocatable++
			continue
		}
		if _, ok := seen[p.ID]; ok {
			duplicates++
			continue
		}
		seen[p.ID] = struct{}{}
		places = append(places, p)
	}
	return places, unlocatable, duplicates
}
