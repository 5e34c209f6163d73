package http

import (
	"fmt"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// PlaceSummary is a list entry. Image payloads are left out; fetch them
// through /v1/places/{id}/image.
type PlaceSummary struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Address    string   `json:"address"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Security   *float64 `json:"security,omitempty"`
	Interior   *float64 `json:"interior,omitempty"`
	Age        *float64 `json:"age,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Floors     *int     `json:"floors,omitempty"`
	ImageCount int      `json:"image_count"`
}

// PlaceDetail is the full place with its display strings.
type PlaceDetail struct {
	PlaceSummary
	Description string              `json:"description"`
	URL         string              `json:"url"`
	Date        string              `json:"date"`
	Metrics     domain.PlaceMetrics `json:"metrics"`
	MapsURL     string              `json:"maps_url,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
}

// Marker is one map pin.
type Marker struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Active bool    `json:"active,omitempty"`
}

// MarkersResponse is the marker set for one map frame. ActiveID is set only
// when the active place is among the markers.
type MarkersResponse struct {
	Markers  []Marker `json:"markers"`
	Count    int      `json:"count"`
	ActiveID *int     `json:"active_id,omitempty"`
}

func toSummary(p domain.Place) PlaceSummary {
	return PlaceSummary{
		ID:         p.ID,
		Title:      p.Title,
		Address:    p.Address,
		Lat:        p.Lat,
		Lon:        p.Lon,
		Security:   p.Security,
		Interior:   p.Interior,
		Age:        p.Age,
		Rating:     p.Rating,
		Floors:     p.Floors,
		ImageCount: len(p.Images),
	}
}

func toSummaries(places []domain.Place) []PlaceSummary {
	out := make([]PlaceSummary, len(places))
	for i, p := range places {
		out[i] = toSummary(p)
	}
	return out
}

func toDetail(p domain.Place) PlaceDetail {
	d := PlaceDetail{
		PlaceSummary: toSummary(p),
		Description:  p.Description,
		URL:          p.URL,
		Date:         p.Date,
		Metrics:      p.Metrics(),
		MapsURL:      p.MapsURL(),
	}
	if len(p.Images) > 0 {
		d.ImageURL = fmt.Sprintf("/v1/places/%d/image", p.ID)
	}
	return d
}

func toMarkers(places []domain.Place, activeID *int) MarkersResponse {
	markers := make([]Marker, 0, len(places))
	var active *int
	for _, p := range places {
		pt, ok := p.Point()
		if !ok {
			continue
		}
		m := Marker{ID: p.ID, Title: p.Title, Lat: pt.Lat, Lon: pt.Lon}
		if activeID != nil && p.ID == *activeID {
			m.Active = true
			active = activeID
		}
		markers = append(markers, m)
	}
	return MarkersResponse{Markers: markers, Count: len(markers), ActiveID: active}
}
