package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/storage"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/config"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/logging"
)

var (
	logLevel string
	driver   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hazardctl",
	Short: "HazardGrid operations tool",
	Long:  `hazardctl migrates storage, imports the place dataset, runs ad-hoc queries and triggers refreshes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel, "text")
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&driver, "storage", "", "override storage.driver (postgres or sqlite)")
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load("hazardctl")
	if err != nil {
		return nil, err
	}
	if driver != "" {
		cfg.Storage.Driver = driver
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openStore opens and migrates the configured storage.
func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(ctx, *cfg)
	if err != nil {
		return nil, err
	}
	if _, err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}
