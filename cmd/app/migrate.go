package main

import (
	"orderflow/cmd"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the orders schema and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		app, err := cmd.NewCompositionRoot(config, logger)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if err := app.Migrate(); err != nil {
			return err
		}
		logger.Info("orders schema is up to date", "driver", config.DBDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
