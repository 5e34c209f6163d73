package domain

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrPlaceNotFound is returned when a place id is not part of the loaded dataset.
var ErrPlaceNotFound = errors.New("place not found")

// PlaceImage is an image embedded in the dataset (base64 payload).
type PlaceImage struct {
	Mime string `json:"mime"`
	Data string `json:"data"`
}

// Place is a point of interest with hazard-style metadata.
// The scale fields (security, interior, age, rating) range 0-10 and are nil when unknown.
type Place struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Address     string       `json:"address"`
	Lat         *float64     `json:"lat,omitempty"`
	Lon         *float64     `json:"lon,omitempty"`
	URL         string       `json:"url"`
	Date        string       `json:"date"`
	Security    *float64     `json:"security,omitempty"`
	Interior    *float64     `json:"interior,omitempty"`
	Age         *float64     `json:"age,omitempty"`
	Rating      *float64     `json:"rating,omitempty"`
	Floors      *int         `json:"floors,omitempty"`
	Images      []PlaceImage `json:"images,omitempty"`
}

// Point returns the place location. ok is false when either coordinate is
// missing or NaN.
func (p Place) Point() (GeoPoint, bool) {
	if p.Lat == nil || p.Lon == nil {
		return GeoPoint{}, false
	}
	pt := GeoPoint{Lat: *p.Lat, Lon: *p.Lon}
	if !pt.Valid() {
		return GeoPoint{}, false
	}
	return pt, true
}

// Locatable reports whether the place can be shown on a map.
func (p Place) Locatable() bool {
	_, ok := p.Point()
	return ok
}

// MapsURL builds an external maps link for the place, preferring coordinates
// over the address. It returns "" when neither is usable.
func (p Place) MapsURL() string {
	if p.Lat != nil && p.Lon != nil {
		label := p.Title
		if strings.TrimSpace(label) == "" {
			label = "Location"
		}
		return fmt.Sprintf("https://maps.google.com/?q=%s,%s(%s)",
			formatCoord(*p.Lat), formatCoord(*p.Lon), url.PathEscape(label))
	}
	if strings.TrimSpace(p.Address) != "" {
		return "https://maps.google.com/?q=" + url.PathEscape(p.Address)
	}
	return ""
}

// formatCoord prints the shortest decimal form, always with a fraction.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

const noData = "N/A"

// FormatScale renders a 0-10 value as "7/10" or "6.5/10".
func FormatScale(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return noData
	}
	if math.Mod(*v, 1) == 0 {
		return strconv.Itoa(int(*v)) + "/10"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + "/10"
}

// FormatFloors renders the floor count; zero or negative counts are shown as N/A.
func FormatFloors(v *int) string {
	if v == nil || *v <= 0 {
		return noData
	}
	return strconv.Itoa(*v)
}

// PlaceMetrics is the formatted metric block shown next to a place.
type PlaceMetrics struct {
	Floors   string `json:"floors"`
	Security string `json:"security"`
	Interior string `json:"interior"`
	Age      string `json:"age"`
	Rating   string `json:"rating"`
}

// Metrics returns the display strings for every metric.
func (p Place) Metrics() PlaceMetrics {
	return PlaceMetrics{
		Floors:   FormatFloors(p.Floors),
		Security: FormatScale(p.Security),
		Interior: FormatScale(p.Interior),
		Age:      FormatScale(p.Age),
		Rating:   FormatScale(p.Rating),
	}
}

// DatasetLoaded is emitted after a dataset import completes.
type DatasetLoaded struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Count    int       `json:"count"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loaded_at"`
}
