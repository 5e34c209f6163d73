package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
)

const (
	defaultRateLimit      = 120
	defaultRequestTimeout = 15 * time.Second

	// MarkerCeiling is the largest marker budget a client may ask for.
	MarkerCeiling = 1000
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Places *usecases.PlaceService
	NATS   *nats.Conn
	DB     Pinger
	Cache  Pinger

	// DefaultMarkers is used when a marker request has no max parameter.
	DefaultMarkers int
	// RateLimit is requests per minute per IP.
	RateLimit      int
	RequestTimeout time.Duration
}

func (d *Dependencies) defaultMarkers() int {
	if d.DefaultMarkers <= 0 {
		return usecases.DefaultMaxMarkers
	}
	if d.DefaultMarkers > MarkerCeiling {
		return MarkerCeiling
	}
	return d.DefaultMarkers
}

func (d *Dependencies) rateLimit() int {
	if d.RateLimit <= 0 {
		return defaultRateLimit
	}
	return d.RateLimit
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return d.RequestTimeout
}
