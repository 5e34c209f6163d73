package http

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
)

const defaultPageSize = 20

// ListPlacesHandler returns one page of the filtered, sorted result list.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		viewport, err := parseViewport(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		offset, err := parseInt(c, "offset", 0)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		limit, err := parseInt(c, "limit", defaultPageSize)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 {
			limit = defaultPageSize
		}
		if maxResults := deps.Places.MaxResults(); limit > maxResults {
			limit = maxResults
		}

		res, err := deps.Places.Search(c.UserContext(), usecases.SearchQuery{
			Filter:   filter,
			Viewport: viewport,
			Offset:   offset,
			Limit:    limit,
		})
		if err != nil {
			return serviceError(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: res.Total}
		SetLinkHeaders(c, pg)
		c.Set("X-Matched-Count", strconv.Itoa(res.Matched))
		return c.JSON(PaginatedResponse{Data: toSummaries(res.Places), Pagination: pg})
	}
}

// MarkersHandler returns the bounded marker set for the requested viewport.
func MarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := parseFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		viewport, err := parseViewport(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		active, err := parseOptionalInt(c, "active")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		budget, err := parseInt(c, "max", deps.defaultMarkers())
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if budget < 0 {
			return errBadRequest(c, "max must not be negative")
		}
		if budget > MarkerCeiling {
			budget = MarkerCeiling
		}

		places, err := deps.Places.Markers(c.UserContext(), usecases.MarkerQuery{
			Filter:     filter,
			Viewport:   viewport,
			ActiveID:   active,
			MaxMarkers: budget,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(toMarkers(places, active))
	}
}

// GetPlaceHandler returns a single place with formatted metrics.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "place id must be an integer")
		}
		place, err := deps.Places.GetByID(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(toDetail(*place))
	}
}

// NeighborHandler steps offset results away from the place in the URL
// within the current filter and viewport.
func NeighborHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "place id must be an integer")
		}
		filter, err := parseFilter(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		viewport, err := parseViewport(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		offset, err := strconv.Atoi(c.Query("offset", "1"))
		if err != nil {
			return errBadRequest(c, "offset must be an integer")
		}

		place, err := deps.Places.Neighbor(c.UserContext(), usecases.NeighborQuery{
			Filter:   filter,
			Viewport: viewport,
			ActiveID: &id,
			Offset:   offset,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(toDetail(*place))
	}
}

// PlaceImageHandler serves an embedded image. Payloads are either bare
// base64 or a data URL.
func PlaceImageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "place id must be an integer")
		}
		index, err := parseInt(c, "index", 0)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		place, err := deps.Places.GetByID(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		if index < 0 || index >= len(place.Images) {
			return errNotFound(c, "image not found")
		}

		mime, data, err := decodeImage(place.Images[index])
		if err != nil {
			return errInternal(c, "image payload is corrupt")
		}
		c.Set(fiber.HeaderContentType, mime)
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.Send(data)
	}
}

func decodeImage(img domain.PlaceImage) (string, []byte, error) {
	mime, payload := img.Mime, img.Data
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		meta, b64, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return "", nil, errors.New("unsupported data url")
		}
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
		payload = b64
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return "", nil, err
		}
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return strings.ToLower(mime), data, nil
}

// FilterOptions lists the ids accepted by each filter parameter.
type FilterOptions struct {
	Floors   []domain.FloorsFilter `json:"floors"`
	Security []domain.ScaleFilter  `json:"security"`
	Interior []domain.ScaleFilter  `json:"interior"`
	Age      []domain.AgeFilter    `json:"age"`
	Rating   []domain.RatingFilter `json:"rating"`
	Sort     []domain.SortOption   `json:"sort"`
	Default  domain.FilterState    `json:"default"`
}

func filterOptions() FilterOptions {
	return FilterOptions{
		Floors:   domain.FloorsValues,
		Security: domain.ScaleValues,
		Interior: domain.ScaleValues,
		Age:      domain.AgeValues,
		Rating:   domain.RatingValues,
		Sort:     domain.SortValues,
		Default:  domain.DefaultFilterState(),
	}
}

// FiltersHandler returns the filter enumerations for client pickers.
func FiltersHandler() fiber.Handler {
	opts := filterOptions()
	return func(c *fiber.Ctx) error {
		return c.JSON(opts)
	}
}

// DatasetStatusHandler reports the snapshot being served.
func DatasetStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := deps.Places.Status()
		if status.Version == "" {
			return errUnavailable(c, "dataset not loaded")
		}
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(status)
	}
}
