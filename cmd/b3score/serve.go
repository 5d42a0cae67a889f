package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ftorres/b3score/internal/app"
	"github.com/ftorres/b3score/internal/config"
	"github.com/ftorres/b3score/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadConfig resolves the effective configuration for a command run,
// falling back to defaults when no config file was given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	log.Warn("no config file specified, using defaults")
	return config.Defaults(), nil
}

func newLogger(level string, json bool) *zap.Logger {
	if debug {
		level = "debug"
	}
	return logger.Must(level, json)
}

func runServe(cmd *cobra.Command, args []string) error {
	bootLog := logger.Must("info", false)
	cfg, err := loadConfig(bootLog)
	if err != nil {
		return err
	}

	log := newLogger(cfg.Logging.Level, cfg.Logging.JSON)
	defer log.Sync()

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	log.Info("starting b3score server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Serve(ctx)
}
