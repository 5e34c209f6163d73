package http

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/geospatial"
)

const (
	defaultRadius = 1000.0
	maxRadius     = 1_000_000.0
)

var errInvalidViewport = errors.New("invalid viewport")

// parseFilter reads q, floors, security, interior, age, rating and sort.
// Missing parameters fall back to the unconstrained default.
func parseFilter(c *fiber.Ctx) (domain.FilterState, error) {
	f := domain.DefaultFilterState().WithQuery(c.Query("q"))

	var err error
	if f.Floors, err = domain.ParseFloors(c.Query("floors")); err != nil {
		return f, err
	}
	if f.Security, err = domain.ParseScale(c.Query("security")); err != nil {
		return f, fmt.Errorf("security: %w", err)
	}
	if f.Interior, err = domain.ParseScale(c.Query("interior")); err != nil {
		return f, fmt.Errorf("interior: %w", err)
	}
	if f.Age, err = domain.ParseAge(c.Query("age")); err != nil {
		return f, err
	}
	if f.Rating, err = domain.ParseRating(c.Query("rating")); err != nil {
		return f, err
	}
	if f.Sort, err = domain.ParseSort(c.Query("sort")); err != nil {
		return f, err
	}
	return f, nil
}

// parseViewport accepts either north/south/east/west (with an optional
// center_lat/center_lon) or lat/lon/radius. No parameters means no viewport.
func parseViewport(c *fiber.Ctx) (*domain.MapViewport, error) {
	args := c.Context().QueryArgs()
	hasBounds := args.Has("north") || args.Has("south") || args.Has("east") || args.Has("west")
	hasCircle := args.Has("lat") || args.Has("lon")

	switch {
	case hasBounds && hasCircle:
		return nil, fmt.Errorf("%w: use either bounds or lat/lon/radius", errInvalidViewport)

	case hasBounds:
		var b domain.GeoBounds
		var err error
		if b.North, err = queryFloat(c, "north"); err != nil {
			return nil, err
		}
		if b.South, err = queryFloat(c, "south"); err != nil {
			return nil, err
		}
		if b.East, err = queryFloat(c, "east"); err != nil {
			return nil, err
		}
		if b.West, err = queryFloat(c, "west"); err != nil {
			return nil, err
		}

		center := boundsCenter(b)
		if args.Has("center_lat") || args.Has("center_lon") {
			if center.Lat, err = queryFloat(c, "center_lat"); err != nil {
				return nil, err
			}
			if center.Lon, err = queryFloat(c, "center_lon"); err != nil {
				return nil, err
			}
		}
		vp := &domain.MapViewport{Center: center, Bounds: b}
		return vp, validateViewport(vp)

	case hasCircle:
		lat, err := queryFloat(c, "lat")
		if err != nil {
			return nil, err
		}
		lon, err := queryFloat(c, "lon")
		if err != nil {
			return nil, err
		}
		radius := defaultRadius
		if args.Has("radius") {
			if radius, err = queryFloat(c, "radius"); err != nil {
				return nil, err
			}
		}
		if radius <= 0 || radius > maxRadius {
			return nil, fmt.Errorf("%w: radius must be between 1 and %.0f meters", errInvalidViewport, maxRadius)
		}
		center := domain.GeoPoint{Lat: lat, Lon: lon}
		if err := validatePoint("center", center); err != nil {
			return nil, err
		}
		minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radius)
		return &domain.MapViewport{
			Center: center,
			Bounds: domain.GeoBounds{North: maxLat, South: minLat, East: maxLon, West: minLon},
		}, nil
	}
	return nil, nil
}

func queryFloat(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errInvalidViewport, key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", errInvalidViewport, key)
	}
	return v, nil
}

// boundsCenter is the midpoint of b, taking the short way across ±180 when
// the box wraps.
func boundsCenter(b domain.GeoBounds) domain.GeoPoint {
	lat := (b.North + b.South) / 2
	if !b.Wraps() {
		return domain.GeoPoint{Lat: lat, Lon: (b.East + b.West) / 2}
	}
	span := b.East + 360 - b.West
	return domain.GeoPoint{Lat: lat, Lon: geospatial.WrapLongitude(b.West + span/2)}
}

func validatePoint(name string, p domain.GeoPoint) error {
	if !p.Valid() || p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: %s out of range", errInvalidViewport, name)
	}
	return nil
}

func validateViewport(vp *domain.MapViewport) error {
	if vp == nil {
		return nil
	}
	b := vp.Bounds
	if err := validatePoint("bounds", domain.GeoPoint{Lat: b.North, Lon: b.East}); err != nil {
		return err
	}
	if err := validatePoint("bounds", domain.GeoPoint{Lat: b.South, Lon: b.West}); err != nil {
		return err
	}
	if b.North < b.South {
		return fmt.Errorf("%w: north must not be below south", errInvalidViewport)
	}
	return validatePoint("center", vp.Center)
}

// parseOptionalInt returns nil when key is absent.
func parseOptionalInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

// parseInt reads an integer query parameter, returning def when it is absent.
func parseInt(c *fiber.Ctx, key string, def int) (int, error) {
	v, err := parseOptionalInt(c, key)
	if err != nil || v == nil {
		return def, err
	}
	return *v, nil
}
