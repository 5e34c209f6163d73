package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/geospatial"
)

var (
	queryText            string
	floorsFlag, sortFlag string
	securityFlag         string
	interiorFlag         string
	ageFlag, ratingFlag  string
	nearLat, nearLon     float64
	nearRadius           float64
	queryLimit           int
	markersMode          bool
	markerBudget         int
)

// queryCmd runs the filter and sort engine against stored places.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter and sort stored places",
	Example: `  hazardctl query --floors high --sort rating --limit 5
  hazardctl query --lat 43.26 --lon -2.93 --radius 5000 --sort distance
  hazardctl query --markers --max 50 --lat 43.26 --lon -2.93`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := buildFilter()
		if err != nil {
			return err
		}
		var viewport *domain.MapViewport
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			viewport = circleViewport(nearLat, nearLon, nearRadius)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := usecases.NewPlaceService(store.Places, nil, usecases.Limits{MaxResults: cfg.Limits.MaxResults})
		if err := svc.Refresh(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if markersMode {
			places, err := svc.Markers(ctx, usecases.MarkerQuery{Filter: filter, Viewport: viewport, MaxMarkers: markerBudget})
			if err != nil {
				return err
			}
			printMarkers(out, places)
			return nil
		}

		res, err := svc.Search(ctx, usecases.SearchQuery{Filter: filter, Viewport: viewport, Limit: queryLimit})
		if err != nil {
			return err
		}
		printPlaces(out, res)
		return nil
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringVarP(&queryText, "query", "q", "", "free-text match on title, description and address")
	f.StringVar(&floorsFlag, "floors", "any", "floors filter")
	f.StringVar(&securityFlag, "security", "any", "security filter")
	f.StringVar(&interiorFlag, "interior", "any", "interior filter")
	f.StringVar(&ageFlag, "age", "any", "age filter")
	f.StringVar(&ratingFlag, "rating", "any", "rating filter")
	f.StringVar(&sortFlag, "sort", "relevance", "sort option")
	f.Float64Var(&nearLat, "lat", 0, "viewport center latitude")
	f.Float64Var(&nearLon, "lon", 0, "viewport center longitude")
	f.Float64Var(&nearRadius, "radius", 1000, "viewport radius in meters")
	f.IntVar(&queryLimit, "limit", 20, "results to print")
	f.BoolVar(&markersMode, "markers", false, "print the map marker set instead of the result list")
	f.IntVar(&markerBudget, "max", usecases.DefaultMaxMarkers, "marker budget")
	rootCmd.AddCommand(queryCmd)
}

func buildFilter() (domain.FilterState, error) {
	f := domain.DefaultFilterState().WithQuery(queryText)
	var err error
	if f.Floors, err = domain.ParseFloors(floorsFlag); err != nil {
		return f, err
	}
	if f.Security, err = domain.ParseScale(securityFlag); err != nil {
		return f, fmt.Errorf("security: %w", err)
	}
	if f.Interior, err = domain.ParseScale(interiorFlag); err != nil {
		return f, fmt.Errorf("interior: %w", err)
	}
	if f.Age, err = domain.ParseAge(ageFlag); err != nil {
		return f, err
	}
	if f.Rating, err = domain.ParseRating(ratingFlag); err != nil {
		return f, err
	}
	if f.Sort, err = domain.ParseSort(sortFlag); err != nil {
		return f, err
	}
	return f, nil
}

func circleViewport(lat, lon, radius float64) *domain.MapViewport {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radius)
	return &domain.MapViewport{
		Center: domain.GeoPoint{Lat: lat, Lon: lon},
		Bounds: domain.GeoBounds{North: maxLat, South: minLat, East: maxLon, West: minLon},
	}
}

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	labelColor = color.New(color.Faint)
	countColor = color.New(color.FgGreen)
)

func printPlaces(w io.Writer, res usecases.SearchResult) {
	countColor.Fprintf(w, "%d of %d matching places\n", len(res.Places), res.Matched)
	for _, p := range res.Places {
		m := p.Metrics()
		titleColor.Fprintf(w, "#%d %s\n", p.ID, p.Title)
		if p.Address != "" {
			fmt.Fprintf(w, "   %s\n", p.Address)
		}
		labelColor.Fprint(w, "   floors ")
		fmt.Fprint(w, m.Floors)
		labelColor.Fprint(w, "  security ")
		fmt.Fprint(w, m.Security)
		labelColor.Fprint(w, "  interior ")
		fmt.Fprint(w, m.Interior)
		labelColor.Fprint(w, "  age ")
		fmt.Fprint(w, m.Age)
		labelColor.Fprint(w, "  rating ")
		fmt.Fprintln(w, m.Rating)
	}
}

func printMarkers(w io.Writer, places []domain.Place) {
	countColor.Fprintf(w, "%d markers\n", len(places))
	for _, p := range places {
		pt, _ := p.Point()
		fmt.Fprintf(w, "%6d  %10.5f %11.5f  %s\n", p.ID, pt.Lat, pt.Lon, p.Title)
	}
}
