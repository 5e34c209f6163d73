package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the place service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	metricsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlaceMetrics",
		Fields: graphql.Fields{
			"floors":   &graphql.Field{Type: graphql.String},
			"security": &graphql.Field{Type: graphql.String},
			"interior": &graphql.Field{Type: graphql.String},
			"age":      &graphql.Field{Type: graphql.String},
			"rating":   &graphql.Field{Type: graphql.String},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.Int},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"address":     &graphql.Field{Type: graphql.String},
			"lat":         &graphql.Field{Type: graphql.Float},
			"lon":         &graphql.Field{Type: graphql.Float},
			"url":         &graphql.Field{Type: graphql.String},
			"date":        &graphql.Field{Type: graphql.String},
			"security":    &graphql.Field{Type: graphql.Float},
			"interior":    &graphql.Field{Type: graphql.Float},
			"age":         &graphql.Field{Type: graphql.Float},
			"rating":      &graphql.Field{Type: graphql.Float},
			"floors":      &graphql.Field{Type: graphql.Int},
			"image_count": &graphql.Field{Type: graphql.Int},
			"maps_url":    &graphql.Field{Type: graphql.String},
			"metrics":     &graphql.Field{Type: metricsType},
		},
	})

	placePageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlacePage",
		Fields: graphql.Fields{
			"places":  &graphql.Field{Type: graphql.NewList(placeType)},
			"total":   &graphql.Field{Type: graphql.Int},
			"matched": &graphql.Field{Type: graphql.Int},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.Int},
			"title":  &graphql.Field{Type: graphql.String},
			"lat":    &graphql.Field{Type: graphql.Float},
			"lon":    &graphql.Field{Type: graphql.Float},
			"active": &graphql.Field{Type: graphql.Boolean},
		},
	})

	filtersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FilterOptions",
		Fields: graphql.Fields{
			"floors":   &graphql.Field{Type: graphql.NewList(graphql.String)},
			"security": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"interior": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"age":      &graphql.Field{Type: graphql.NewList(graphql.String)},
			"rating":   &graphql.Field{Type: graphql.NewList(graphql.String)},
			"sort":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	filterInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "FilterInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"query":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"floors":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"security": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"interior": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"age":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"rating":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"sort":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	viewportInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ViewportInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"north":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"south":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"east":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"west":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"center_lat": &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"center_lon": &graphql.InputObjectFieldConfig{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        placePageType,
				Description: "Filtered and sorted places, one page at a time",
				Args: graphql.FieldConfigArgument{
					"filter":   &graphql.ArgumentConfig{Type: filterInput},
					"viewport": &graphql.ArgumentConfig{Type: viewportInput},
					"offset":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageSize},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter, viewport, err := gqlFilterAndViewport(p.Args)
					if err != nil {
						return nil, err
					}
					res, err := deps.Places.Search(p.Context, usecases.SearchQuery{
						Filter:   filter,
						Viewport: viewport,
						Offset:   p.Args["offset"].(int),
						Limit:    p.Args["limit"].(int),
					})
					if err != nil {
						return nil, err
					}
					places := make([]map[string]interface{}, len(res.Places))
					for i, pl := range res.Places {
						places[i] = placeFields(pl)
					}
					return map[string]interface{}{
						"places":  places,
						"total":   res.Total,
						"matched": res.Matched,
					}, nil
				},
			},
			"markers": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "Bounded marker set for a map frame",
				Args: graphql.FieldConfigArgument{
					"filter":    &graphql.ArgumentConfig{Type: filterInput},
					"viewport":  &graphql.ArgumentConfig{Type: viewportInput},
					"active_id": &graphql.ArgumentConfig{Type: graphql.Int},
					"max":       &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter, viewport, err := gqlFilterAndViewport(p.Args)
					if err != nil {
						return nil, err
					}
					var active *int
					if v, ok := p.Args["active_id"].(int); ok {
						active = &v
					}
					budget := deps.defaultMarkers()
					if v, ok := p.Args["max"].(int); ok && v >= 0 {
						budget = v
					}
					if budget > MarkerCeiling {
						budget = MarkerCeiling
					}
					places, err := deps.Places.Markers(p.Context, usecases.MarkerQuery{
						Filter:     filter,
						Viewport:   viewport,
						ActiveID:   active,
						MaxMarkers: budget,
					})
					if err != nil {
						return nil, err
					}
					return toMarkers(places, active).Markers, nil
				},
			},
			"place": &graphql.Field{
				Type:        placeType,
				Description: "Get a place by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					place, err := deps.Places.GetByID(p.Context, p.Args["id"].(int))
					if err != nil {
						return nil, err
					}
					return placeFields(*place), nil
				},
			},
			"filters": &graphql.Field{
				Type:        filtersType,
				Description: "Accepted filter ids",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					opts := filterOptions()
					return map[string]interface{}{
						"floors":   opts.Floors,
						"security": opts.Security,
						"interior": opts.Interior,
						"age":      opts.Age,
						"rating":   opts.Rating,
						"sort":     opts.Sort,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func placeFields(p domain.Place) map[string]interface{} {
	m := p.Metrics()
	return map[string]interface{}{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"address":     p.Address,
		"lat":         optFloat(p.Lat),
		"lon":         optFloat(p.Lon),
		"url":         p.URL,
		"date":        p.Date,
		"security":    optFloat(p.Security),
		"interior":    optFloat(p.Interior),
		"age":         optFloat(p.Age),
		"rating":      optFloat(p.Rating),
		"floors":      optInt(p.Floors),
		"image_count": len(p.Images),
		"maps_url":    p.MapsURL(),
		"metrics": map[string]interface{}{
			"floors":   m.Floors,
			"security": m.Security,
			"interior": m.Interior,
			"age":      m.Age,
			"rating":   m.Rating,
		},
	}
}

func optFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func gqlFilterAndViewport(args map[string]interface{}) (domain.FilterState, *domain.MapViewport, error) {
	filter := domain.DefaultFilterState()
	if in, ok := args["filter"].(map[string]interface{}); ok {
		str := func(k string) string { s, _ := in[k].(string); return s }
		filter = filter.WithQuery(str("query"))
		filter.Floors = domain.FloorsFilter(str("floors"))
		filter.Security = domain.ScaleFilter(str("security"))
		filter.Interior = domain.ScaleFilter(str("interior"))
		filter.Age = domain.AgeFilter(str("age"))
		filter.Rating = domain.RatingFilter(str("rating"))
		filter.Sort = domain.SortOption(str("sort"))
	}

	in, ok := args["viewport"].(map[string]interface{})
	if !ok {
		return filter, nil, nil
	}
	num := func(k string) (float64, bool) { f, ok := in[k].(float64); return f, ok }
	var b domain.GeoBounds
	b.North, _ = num("north")
	b.South, _ = num("south")
	b.East, _ = num("east")
	b.West, _ = num("west")
	vp := &domain.MapViewport{Center: boundsCenter(b), Bounds: b}
	if lat, ok := num("center_lat"); ok {
		vp.Center.Lat = lat
	}
	if lon, ok := num("center_lon"); ok {
		vp.Center.Lon = lon
	}
	if err := validateViewport(vp); err != nil {
		return filter, nil, err
	}
	return filter, vp, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
