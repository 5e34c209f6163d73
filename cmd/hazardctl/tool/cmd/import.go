package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/dataset"
	natsadapter "github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/nats"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
)

var (
	importDir string
	noPublish bool
)

// importCmd loads the dataset into storage and announces it on NATS.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the place dataset into storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if importDir != "" {
			cfg.Dataset.Dir = importDir
			cfg.Dataset.S3Bucket = ""
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		src, err := dataset.FromConfig(ctx, cfg.Dataset)
		if err != nil {
			return err
		}

		var publisher ports.EventPublisher
		if !noPublish {
			pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
			if err != nil {
				slog.Warn("nats unavailable, import will not be announced", "error", err)
			} else {
				defer pub.Close()
				publisher = pub
			}
		}

		event, err := usecases.NewDatasetService(src, store.Places, publisher).Import(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d places from %s (%d dropped)\n", event.Count, event.Source, event.Dropped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", "", "read the dataset from this directory instead of the configured source")
	importCmd.Flags().BoolVar(&noPublish, "no-publish", false, "do not announce the import on NATS")
	rootCmd.AddCommand(importCmd)
}
