package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// readiness collects named check results; a failed required check marks
// the instance not ready.
type readiness struct {
	checks map[string]string
	ok     bool
}

func (r *readiness) probe(ctx context.Context, name string, p Pinger, required bool) {
	if p == nil {
		r.checks[name] = "not configured"
		if required {
			r.ok = false
		}
		return
	}
	if err := p.Ping(ctx); err != nil {
		r.checks[name] = "error: " + err.Error()
		r.ok = false
		return
	}
	r.checks[name] = "ok"
}

// ReadyHandler checks the dataset snapshot, storage, NATS and cache.
// Storage and a loaded snapshot are required; NATS and cache are optional.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		r := &readiness{checks: make(map[string]string), ok: true}

		if deps.Places != nil && deps.Places.Status().Version != "" {
			r.checks["dataset"] = "ok"
		} else {
			r.checks["dataset"] = "not loaded"
			r.ok = false
		}
		r.probe(ctx, "database", deps.DB, true)
		r.probe(ctx, "cache", deps.Cache, false)

		switch {
		case deps.NATS == nil:
			r.checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			r.checks["nats"] = "ok"
		default:
			r.checks["nats"] = "disconnected"
			r.ok = false
		}

		if !r.ok {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": r.checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": r.checks})
	}
}
