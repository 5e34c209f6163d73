package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilter is returned when a filter id is not part of its enumeration.
var ErrInvalidFilter = errors.New("invalid filter")

// MaxQueryLength is the longest free-text query kept by WithQuery, in runes.
const MaxQueryLength = 120

// FloorsFilter buckets the floor count.
type FloorsFilter string

const (
	FloorsAny     FloorsFilter = "any"
	FloorsLow     FloorsFilter = "low"   // 1-5
	FloorsMid     FloorsFilter = "mid"   // 6-7
	FloorsHigh    FloorsFilter = "high"  // 8-12
	FloorsTower   FloorsFilter = "tower" // 13+
	FloorsUnknown FloorsFilter = "unknown"
)

// FloorsValues lists every floors bucket in picker order.
var FloorsValues = []FloorsFilter{FloorsAny, FloorsLow, FloorsMid, FloorsHigh, FloorsTower, FloorsUnknown}

// ScaleFilter buckets a 0-10 scale. It is used for both security and interior.
type ScaleFilter string

const (
	ScaleAny     ScaleFilter = "any"
	ScaleLow     ScaleFilter = "low"    // <= 3
	ScaleMedium  ScaleFilter = "medium" // (3, 6]
	ScaleHigh    ScaleFilter = "high"   // > 6
	ScaleUnknown ScaleFilter = "unknown"
)

var ScaleValues = []ScaleFilter{ScaleAny, ScaleLow, ScaleMedium, ScaleHigh, ScaleUnknown}

// AgeFilter buckets the building age scale.
type AgeFilter string

const (
	AgeAny      AgeFilter = "any"
	AgeNew      AgeFilter = "new"      // <= 2
	AgeRecent   AgeFilter = "recent"   // (2, 4]
	AgeClassic  AgeFilter = "classic"  // (4, 7]
	AgeHeritage AgeFilter = "heritage" // > 7
	AgeUnknown  AgeFilter = "unknown"
)

var AgeValues = []AgeFilter{AgeAny, AgeNew, AgeRecent, AgeClassic, AgeHeritage, AgeUnknown}

// RatingFilter is a minimum rating threshold.
type RatingFilter string

const (
	RatingAny       RatingFilter = "any"
	RatingFourPlus  RatingFilter = "4"
	RatingSixPlus   RatingFilter = "6"
	RatingEightPlus RatingFilter = "8"
	RatingNinePlus  RatingFilter = "9"
	RatingUnknown   RatingFilter = "unknown"
)

var RatingValues = []RatingFilter{RatingAny, RatingFourPlus, RatingSixPlus, RatingEightPlus, RatingNinePlus, RatingUnknown}

// MinValue returns the inclusive threshold of a numeric bucket.
// ok is false for RatingAny and RatingUnknown.
func (r RatingFilter) MinValue() (float64, bool) {
	switch r {
	case RatingFourPlus:
		return 4, true
	case RatingSixPlus:
		return 6, true
	case RatingEightPlus:
		return 8, true
	case RatingNinePlus:
		return 9, true
	default:
		return 0, false
	}
}

// SortOption selects the result ordering.
type SortOption string

const (
	SortRelevance SortOption = "relevance"
	SortDistance  SortOption = "distance"
	SortRating    SortOption = "rating"
	SortSecurity  SortOption = "security"
)

var SortValues = []SortOption{SortRelevance, SortDistance, SortRating, SortSecurity}

// FilterState is the complete search configuration. The zero value is not
// valid; start from DefaultFilterState.
type FilterState struct {
	Query    string       `json:"query"`
	Floors   FloorsFilter `json:"floors"`
	Security ScaleFilter  `json:"security"`
	Interior ScaleFilter  `json:"interior"`
	Age      AgeFilter    `json:"age"`
	Rating   RatingFilter `json:"rating"`
	Sort     SortOption   `json:"sort"`
}

// DefaultFilterState constrains nothing and keeps the input order.
func DefaultFilterState() FilterState {
	return FilterState{
		Floors:   FloorsAny,
		Security: ScaleAny,
		Interior: ScaleAny,
		Age:      AgeAny,
		Rating:   RatingAny,
		Sort:     SortRelevance,
	}
}

// HasActiveFilters reports whether any bucket constrains the result.
// The query and sort mode are not considered filters.
func (f FilterState) HasActiveFilters() bool {
	return f.Floors != FloorsAny ||
		f.Security != ScaleAny ||
		f.Interior != ScaleAny ||
		f.Age != AgeAny ||
		f.Rating != RatingAny
}

// Cleared resets every bucket and the sort mode but keeps the query.
func (f FilterState) Cleared() FilterState {
	out := DefaultFilterState()
	out.Query = f.Query
	return out
}

// WithQuery returns a copy with the query truncated to MaxQueryLength runes.
func (f FilterState) WithQuery(q string) FilterState {
	if r := []rune(q); len(r) > MaxQueryLength {
		q = string(r[:MaxQueryLength])
	}
	f.Query = q
	return f
}

// Normalize fills empty fields with their "any" member so partially decoded
// states behave like DefaultFilterState.
func (f FilterState) Normalize() FilterState {
	if f.Floors == "" {
		f.Floors = FloorsAny
	}
	if f.Security == "" {
		f.Security = ScaleAny
	}
	if f.Interior == "" {
		f.Interior = ScaleAny
	}
	if f.Age == "" {
		f.Age = AgeAny
	}
	if f.Rating == "" {
		f.Rating = RatingAny
	}
	if f.Sort == "" {
		f.Sort = SortRelevance
	}
	return f
}

// Validate checks every enum field against its closed set.
func (f FilterState) Validate() error {
	if _, err := ParseFloors(string(f.Floors)); err != nil {
		return err
	}
	if _, err := ParseScale(string(f.Security)); err != nil {
		return fmt.Errorf("security: %w", err)
	}
	if _, err := ParseScale(string(f.Interior)); err != nil {
		return fmt.Errorf("interior: %w", err)
	}
	if _, err := ParseAge(string(f.Age)); err != nil {
		return err
	}
	if _, err := ParseRating(string(f.Rating)); err != nil {
		return err
	}
	if _, err := ParseSort(string(f.Sort)); err != nil {
		return err
	}
	return nil
}

func parseEnum[T ~string](kind, raw string, values []T) (T, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	for _, v := range values {
		if string(v) == id {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalidFilter, kind, raw)
}

// ParseFloors resolves a floors bucket id. An empty id means FloorsAny.
func ParseFloors(raw string) (FloorsFilter, error) {
	if raw == "" {
		return FloorsAny, nil
	}
	return parseEnum("floors", raw, FloorsValues)
}

// ParseScale resolves a scale bucket id. An empty id means ScaleAny.
func ParseScale(raw string) (ScaleFilter, error) {
	if raw == "" {
		return ScaleAny, nil
	}
	return parseEnum("scale", raw, ScaleValues)
}

// ParseAge resolves an age bucket id. An empty id means AgeAny.
func ParseAge(raw string) (AgeFilter, error) {
	if raw == "" {
		return AgeAny, nil
	}
	return parseEnum("age", raw, AgeValues)
}

// ParseRating resolves a rating bucket id. An empty id means RatingAny.
func ParseRating(raw string) (RatingFilter, error) {
	if raw == "" {
		return RatingAny, nil
	}
	return parseEnum("rating", raw, RatingValues)
}

// ParseSort resolves a sort id. An empty id means SortRelevance.
func ParseSort(raw string) (SortOption, error) {
	if raw == "" {
		return SortRelevance, nil
	}
	return parseEnum("sort", raw, SortValues)
}
