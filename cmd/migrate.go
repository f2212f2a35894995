package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the settings table for the configured backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.Stop()

		logrus.Infof("[MIGRATION] Initializing %s schema...", rt.cfg.Storage.Backend)
		if err := rt.repo.InitSchema(ctx); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
		logrus.Info("[MIGRATION] Schema is up to date.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
