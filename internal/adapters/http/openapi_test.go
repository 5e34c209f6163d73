package http_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	apispec "github.com/GuyFromTheInternet/hazardousenvironments-sub000/api"
)

func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(apispec.OpenAPI)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return doc
}

func TestOpenAPIDocument(t *testing.T) {
	doc := loadOpenAPI(t)

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/places",
		"/v1/places/markers",
		"/v1/places/{id}",
		"/v1/places/{id}/neighbor",
		"/v1/places/{id}/image",
		"/v1/filters",
		"/v1/dataset/status",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := doc.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found", path)
		}
	}

	expectedSchemas := []string{
		"PlaceSummary",
		"PlaceDetail",
		"PlaceMetrics",
		"Marker",
		"MarkersResponse",
		"FilterOptions",
		"DatasetStatus",
		"APIError",
		"Pagination",
	}
	for _, schema := range expectedSchemas {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI document valid: %d paths, %d schemas", len(doc.Paths.Map()), len(doc.Components.Schemas))
}

// The documented enums must match what the handlers accept.
func TestOpenAPIEnumsMatchDomain(t *testing.T) {
	doc := loadOpenAPI(t)

	cases := map[string][]string{
		"FloorsFilter": {"any", "low", "mid", "high", "tower", "unknown"},
		"ScaleFilter":  {"any", "low", "medium", "high", "unknown"},
		"AgeFilter":    {"any", "new", "recent", "classic", "heritage", "unknown"},
		"RatingFilter": {"any", "4", "6", "8", "9", "unknown"},
		"SortOption":   {"relevance", "distance", "rating", "security"},
	}
	for name, want := range cases {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			t.Errorf("schema %s missing", name)
			continue
		}
		got := ref.Value.Enum
		if len(got) != len(want) {
			t.Errorf("%s: expected %d values, got %d", name, len(want), len(got))
			continue
		}
		for i, v := range got {
			if v != want[i] {
				t.Errorf("%s[%d]: expected %q, got %v", name, i, want[i], v)
			}
		}
	}
}

func TestOpenAPIInfo(t *testing.T) {
	doc := loadOpenAPI(t)

	if doc.Info.Title != "HazardGrid Places API" {
		t.Errorf("expected title 'HazardGrid Places API', got %q", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}
	if doc.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(doc.Servers) == 0 {
		t.Fatal("expected at least one server")
	}
}
