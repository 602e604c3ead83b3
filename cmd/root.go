package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/muhirwa45/E-moto/app"
	"github.com/muhirwa45/E-moto/config"
	"github.com/muhirwa45/E-moto/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "emoto",
	Short: "E-moto battery delivery service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(cmd.ErrOrStderr(), "load .env: %v\n", err)
		}
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file. Without an explicit --config a
// missing default file falls back to the built-in offline configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := logger.Configure(cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	return serve(cmd, nil)
}

// serve runs the service until SIGINT or SIGTERM. override, when set, adjusts
// the loaded configuration.
func serve(cmd *cobra.Command, override func(*config.Config)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if override != nil {
		override(cfg)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
