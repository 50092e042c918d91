package main

import (
	"log/slog"
	"os"

	"orderflow/cmd"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	envFile string
	config  cmd.Config
	logger  *slog.Logger
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "orderflow",
	Short: "Order lifecycle service",
	Long:  `orderflow drives orders through SUBMITTED, PAID, FULFILLED and CANCELLED with PAY, FULFILL and CANCEL events.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := cmd.LoadConfig(v, envFile)
		if err != nil {
			return err
		}
		config = cfg
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		slog.SetDefault(logger)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("db-driver", "", "order store: postgres or sqlite (DB_DRIVER)")
	rootCmd.PersistentFlags().String("sqlite-path", "", "sqlite database file (SQLITE_PATH)")
	_ = v.BindPFlag("DB_DRIVER", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = v.BindPFlag("SQLITE_PATH", rootCmd.PersistentFlags().Lookup("sqlite-path"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("orderflow: %v", err)
	}
}

// newCompositionRoot opens the store for a subcommand and applies migrations.
func newCompositionRoot() (*cmd.CompositionRoot, error) {
	app, err := cmd.NewCompositionRoot(config, logger)
	if err != nil {
		return nil, err
	}
	if err := app.Migrate(); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}
