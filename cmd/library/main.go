package main

import (
	stdLog "log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/library-circulation/library/app"
	"github.com/Astemirdum/library-circulation/library/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}

	var (
		logLevel string
		storage  string
		port     string
	)
	newConfig := func() *config.Config {
		opts := []config.Option{
			config.WithWriteTimeout(time.Minute),
			config.WithStorage(storage),
			config.WithPort(port),
		}
		if logLevel != "" {
			level, err := zapcore.ParseLevel(logLevel)
			if err != nil {
				stdLog.Fatal("log level ", err)
			}
			opts = append(opts, config.WithLogLevel(level))
		}
		return config.NewConfig(opts...)
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the circulation HTTP API and the catalog import consumer",
		Run: func(cmd *cobra.Command, args []string) {
			app.Run(newConfig())
		},
	}
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(newConfig())
		},
	}

	root := &cobra.Command{
		Use:   "library",
		Short: "Library lending, reservations and purchase requests",
		Run:   serve.Run,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	root.PersistentFlags().StringVar(&storage, "storage", "", "storage backend: postgres or memory")
	root.PersistentFlags().StringVar(&port, "port", "", "http port")
	root.AddCommand(serve, migrate)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
