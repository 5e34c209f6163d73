package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/workflows"
)

var waitForRefresh bool

// refreshCmd starts DatasetRefreshWorkflow on the refresher task queue.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Trigger a dataset refresh through Temporal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			return fmt.Errorf("temporal client: %w", err)
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "dataset-refresh-" + uuid.NewString(),
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.DatasetRefreshWorkflow, workflows.RefreshInput{Reason: "manual"})
		if err != nil {
			return fmt.Errorf("start refresh: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "started %s (run %s)\n", run.GetID(), run.GetRunID())
		if !waitForRefresh {
			return nil
		}

		var event domain.DatasetLoaded
		if err := run.Get(ctx, &event); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		fmt.Fprintf(out, "refreshed %d places from %s (%d dropped)\n", event.Count, event.Source, event.Dropped)
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&waitForRefresh, "wait", false, "block until the workflow finishes")
	rootCmd.AddCommand(refreshCmd)
}
