package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/dataset"
	natsadapter "github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/nats"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/storage"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/config"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/logging"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/workflows"
)

// scheduleID is the workflow id of the cron-driven refresh.
const scheduleID = "dataset-refresh-cron"

func main() {
	cfg, err := config.Load("hazardgrid-refresher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		slog.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		slog.Warn("maxprocs", "error", err)
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, *cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()
	if _, err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	src, err := dataset.FromConfig(ctx, cfg.Dataset)
	if err != nil {
		log.Fatalf("dataset source: %v", err)
	}

	activities := &workflows.RefreshActivities{
		// publishing is left to NotifyRefreshed
		Datasets: usecases.NewDatasetService(src, store.Places, nil),
	}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, refreshes will not be announced", "error", err)
	} else {
		defer pub.Close()
		activities.Publisher = pub
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.DatasetRefreshWorkflow)
	w.RegisterActivity(activities)

	if cfg.Temporal.RefreshCron != "" {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:           scheduleID,
			TaskQueue:    cfg.Temporal.TaskQueue,
			CronSchedule: cfg.Temporal.RefreshCron,
		}, workflows.DatasetRefreshWorkflow, workflows.RefreshInput{Reason: "cron"})
		if err != nil {
			// an earlier worker usually started it already
			slog.Warn("refresh schedule not started", "cron", cfg.Temporal.RefreshCron, "error", err)
		} else {
			slog.Info("refresh scheduled", "cron", cfg.Temporal.RefreshCron, "run_id", run.GetRunID())
		}
	}

	slog.Info("refresher worker started", "task_queue", cfg.Temporal.TaskQueue, "source", src.Name())
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
