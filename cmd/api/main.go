package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/dataset"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/http"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/memcache"
	natsadapter "github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/nats"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/storage"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/valkey"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/config"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/logging"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/telemetry"
)

type pingCache interface {
	ports.CacheService
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load("hazardgrid-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		slog.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		slog.Warn("maxprocs", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Storage
	store, err := storage.Open(ctx, *cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()
	if applied, err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	} else if len(applied) > 0 {
		slog.Info("migrations applied", "files", applied)
	}
	go store.ReportStats(ctx, 15*time.Second)

	// Cache: valkey when reachable, in-process otherwise
	var cache pingCache
	if vc, err := valkey.New(cfg.Valkey.Addr, "hazardgrid:"); err != nil {
		slog.Warn("valkey unavailable, using in-process cache", "error", err)
		cache = memcache.New(time.Duration(cfg.Limits.CacheTTL)*time.Second, 5*time.Minute)
	} else {
		defer vc.Close()
		cache = vc
	}

	places := usecases.NewPlaceService(store.Places, cache, usecases.Limits{
		MaxResults: cfg.Limits.MaxResults,
		CacheTTL:   cfg.Limits.CacheTTL,
	})

	if cfg.Dataset.ImportOnEmpty {
		if err := importIfEmpty(ctx, cfg, store); err != nil {
			slog.Error("initial import failed", "error", err)
		}
	}
	if err := places.Refresh(ctx); err != nil {
		log.Fatalf("load places: %v", err)
	}

	// NATS: reload the snapshot whenever a refresh lands
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeDatasetLoaded(ctx, func(ctx context.Context, event domain.DatasetLoaded) error {
			slog.InfoContext(ctx, "dataset loaded event", "id", event.ID, "count", event.Count)
			return places.Refresh(ctx)
		})
		if err != nil {
			slog.Warn("dataset subscription failed", "error", err)
		}
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	deps := &http.Dependencies{
		Places:         places,
		NATS:           natsConn,
		DB:             store,
		Cache:          cache,
		DefaultMarkers: cfg.Limits.MaxMarkers,
		RateLimit:      cfg.Server.RateLimit,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "HazardGrid API",
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "Link, X-Matched-Count, X-Request-ID, ETag",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", store.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// importIfEmpty loads the dataset into storage on a fresh install.
func importIfEmpty(ctx context.Context, cfg *config.Config, store *storage.Store) error {
	n, err := store.Places.Count(ctx)
	if err != nil {
		return fmt.Errorf("count places: %w", err)
	}
	if n > 0 {
		return nil
	}
	src, err := dataset.FromConfig(ctx, cfg.Dataset)
	if err != nil {
		return err
	}
	event, err := usecases.NewDatasetService(src, store.Places, nil).Import(ctx)
	if errors.Is(err, dataset.ErrNoDataset) || errors.Is(err, usecases.ErrEmptyDataset) {
		slog.Warn("no dataset found, serving an empty snapshot", "source", src.Name())
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("initial import done", "count", event.Count, "dropped", event.Dropped)
	return nil
}
