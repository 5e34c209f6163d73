package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/storage"
)

// migrateCmd applies the embedded schema migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		store, err := storage.Open(ctx, *cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		applied, err := store.Migrate(ctx)
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "OK  %s\n", name)
		}
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
