package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/placefilter"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/metrics"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/telemetry"
)

const (
	// DefaultMaxResults caps the sorted result list before pagination.
	DefaultMaxResults = 200
	// DefaultMaxMarkers is the usual marker budget for one map frame.
	DefaultMaxMarkers = 200
	defaultPageSize   = 20
	defaultCacheTTL   = 60
)

// Limits bounds what PlaceService returns.
type Limits struct {
	MaxResults int

	// CacheTTL is in seconds; zero disables result caching.
	CacheTTL int
}

// SearchQuery is one list request.
type SearchQuery struct {
	Filter   domain.FilterState  `json:"filter"`
	Viewport *domain.MapViewport `json:"viewport,omitempty"`
	Offset   int                 `json:"offset"`
	Limit    int                 `json:"limit"`
}

// SearchResult is one page of the capped, sorted result list.
// Total counts the capped list; Matched counts every place that passed the filters.
type SearchResult struct {
	Places  []domain.Place `json:"places"`
	Total   int            `json:"total"`
	Matched int            `json:"matched"`
}

// MarkerQuery is one map frame request.
type MarkerQuery struct {
	Filter     domain.FilterState  `json:"filter"`
	Viewport   *domain.MapViewport `json:"viewport,omitempty"`
	ActiveID   *int                `json:"active_id,omitempty"`
	MaxMarkers int                 `json:"max_markers"`
}

// NeighborQuery asks for the result offset steps away from ActiveID.
type NeighborQuery struct {
	Filter   domain.FilterState  `json:"filter"`
	Viewport *domain.MapViewport `json:"viewport,omitempty"`
	ActiveID *int                `json:"active_id,omitempty"`
	Offset   int                 `json:"offset"`
}

// DatasetStatus describes the snapshot currently served.
type DatasetStatus struct {
	Version  string    `json:"version"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at"`
}

type snapshot struct {
	places   []domain.Place
	byID     map[int]int
	version  string
	loadedAt time.Time
}

// PlaceService serves filtered, sorted and viewport-selected places from an
// in-memory snapshot of the repository. Readers never block each other and a
// Refresh swaps the snapshot in one step.
type PlaceService struct {
	repo   ports.PlaceRepository
	cache  ports.CacheService
	limits Limits

	mu   sync.RWMutex
	snap *snapshot
}

// NewPlaceService creates a new PlaceService. cache may be nil.
func NewPlaceService(repo ports.PlaceRepository, cache ports.CacheService, limits Limits) *PlaceService {
	if limits.MaxResults <= 0 {
		limits.MaxResults = DefaultMaxResults
	}
	if limits.CacheTTL < 0 {
		limits.CacheTTL = defaultCacheTTL
	}
	return &PlaceService{
		repo:   repo,
		cache:  cache,
		limits: limits,
		snap:   &snapshot{byID: map[int]int{}},
	}
}

// Refresh reloads the snapshot from the repository. Places without usable
// coordinates are skipped. Cached results are keyed by snapshot version, so
// entries for the previous dataset are never read again.
func (s *PlaceService) Refresh(ctx context.Context) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "places.refresh")
	defer func() { telemetry.EndSpan(span, err) }()

	all, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}

	places := make([]domain.Place, 0, len(all))
	byID := make(map[int]int, len(all))
	for _, p := range all {
		if !p.Locatable() {
			continue
		}
		if _, dup := byID[p.ID]; dup {
			continue
		}
		byID[p.ID] = len(places)
		places = append(places, p)
	}
	if skipped := len(all) - len(places); skipped > 0 {
		slog.WarnContext(ctx, "skipped unusable places", "count", skipped)
	}

	version, err := datasetVersion(places)
	if err != nil {
		return err
	}

	next := &snapshot{places: places, byID: byID, version: version, loadedAt: time.Now().UTC()}
	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	metrics.SnapshotPlaces.Set(float64(len(places)))
	slog.InfoContext(ctx, "place snapshot refreshed", "count", len(places), "version", version)
	return nil
}

func datasetVersion(places []domain.Place) (string, error) {
	h := xxhash.New()
	if err := json.NewEncoder(h).Encode(places); err != nil {
		return "", fmt.Errorf("hash dataset: %w", err)
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

func (s *PlaceService) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Status reports the version and size of the snapshot being served.
func (s *PlaceService) Status() DatasetStatus {
	snap := s.current()
	return DatasetStatus{Version: snap.version, Count: len(snap.places), LoadedAt: snap.loadedAt}
}

// MaxResults is the cap applied to every sorted result list.
func (s *PlaceService) MaxResults() int { return s.limits.MaxResults }

// Search filters and sorts the snapshot and returns one page of the result.
func (s *PlaceService) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	f, err := normalizeFilter(q.Filter)
	if err != nil {
		return SearchResult{}, err
	}
	q.Filter = f
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > s.limits.MaxResults {
		q.Limit = s.limits.MaxResults
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	snap := s.current()
	var res SearchResult
	if s.cached(ctx, "search", snap, q, &res) {
		return res, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "places.search",
		attribute.String("sort", string(f.Sort)),
		attribute.Int("offset", q.Offset),
		attribute.Int("limit", q.Limit),
	)
	defer span.End()

	start := time.Now()
	sorted := s.results(snap, f, q.Viewport)
	res.Matched = len(sorted)
	if len(sorted) > s.limits.MaxResults {
		sorted = sorted[:s.limits.MaxResults]
	}
	res.Total = len(sorted)
	res.Places = page(sorted, q.Offset, q.Limit)
	metrics.ObserveEngine("search", start, len(res.Places))

	s.store(ctx, "search", snap, q, res)
	return res, nil
}

// Markers returns the bounded marker set for one map frame. An ActiveID that
// is not part of the snapshot is ignored.
func (s *PlaceService) Markers(ctx context.Context, q MarkerQuery) ([]domain.Place, error) {
	f, err := normalizeFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	q.Filter = f

	snap := s.current()
	if q.ActiveID != nil {
		if _, ok := snap.byID[*q.ActiveID]; !ok {
			q.ActiveID = nil
		}
	}

	var out []domain.Place
	if s.cached(ctx, "markers", snap, q, &out) {
		return out, nil
	}

	_, span := telemetry.StartSpan(ctx, "places.markers", attribute.Int("max_markers", q.MaxMarkers))
	defer span.End()

	start := time.Now()
	sorted := placefilter.SortPlaces(placefilter.ApplyFilters(snap.places, f), f, q.Viewport)
	out = placefilter.ComputeVisibleMarkers(sorted, q.Viewport, q.ActiveID, q.MaxMarkers)
	metrics.ObserveEngine("markers", start, len(out))

	s.store(ctx, "markers", snap, q, out)
	return out, nil
}

// GetByID returns a single place from the snapshot.
func (s *PlaceService) GetByID(_ context.Context, id int) (*domain.Place, error) {
	snap := s.current()
	i, ok := snap.byID[id]
	if !ok {
		return nil, fmt.Errorf("place %d: %w", id, domain.ErrPlaceNotFound)
	}
	p := snap.places[i]
	return &p, nil
}

// Neighbor steps through the capped result list relative to ActiveID, wrapping
// at both ends.
func (s *PlaceService) Neighbor(ctx context.Context, q NeighborQuery) (*domain.Place, error) {
	f, err := normalizeFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snap := s.current()
	sorted := s.results(snap, f, q.Viewport)
	if len(sorted) > s.limits.MaxResults {
		sorted = sorted[:s.limits.MaxResults]
	}
	p, ok := placefilter.Neighbor(sorted, q.ActiveID, q.Offset)
	metrics.ObserveEngine("neighbor", start, len(sorted))
	if !ok {
		return nil, fmt.Errorf("no results to navigate: %w", domain.ErrPlaceNotFound)
	}
	return &p, nil
}

func (s *PlaceService) results(snap *snapshot, f domain.FilterState, viewport *domain.MapViewport) []domain.Place {
	return placefilter.SortPlaces(placefilter.ApplyFilters(snap.places, f), f, viewport)
}

func normalizeFilter(f domain.FilterState) (domain.FilterState, error) {
	f = f.Normalize().WithQuery(f.Query)
	if err := f.Validate(); err != nil {
		return domain.FilterState{}, err
	}
	return f, nil
}

func page(places []domain.Place, offset, limit int) []domain.Place {
	if offset >= len(places) {
		return []domain.Place{}
	}
	end := offset + limit
	if end > len(places) {
		end = len(places)
	}
	out := make([]domain.Place, end-offset)
	copy(out, places[offset:end])
	return out
}

func cacheKey(op string, snap *snapshot, q any) (string, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return "places:" + op + ":" + snap.version + ":" + strconv.FormatUint(xxhash.Sum64(raw), 16), nil
}

func (s *PlaceService) cached(ctx context.Context, op string, snap *snapshot, q, dst any) bool {
	if s.cache == nil || s.limits.CacheTTL == 0 || snap.version == "" {
		return false
	}
	key, err := cacheKey(op, snap, q)
	if err != nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			slog.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		}
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return true
}

func (s *PlaceService) store(ctx context.Context, op string, snap *snapshot, q, v any) {
	if s.cache == nil || s.limits.CacheTTL == 0 || snap.version == "" {
		return
	}
	key, err := cacheKey(op, snap, q)
	if err != nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, s.limits.CacheTTL)
	}
}
