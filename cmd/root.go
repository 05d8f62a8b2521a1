package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/config"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
)

// app carries what the root command prepared for its subcommands.
type app struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "meetscore",
		Short:         "Swim and dive meet scoring and simulation engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is $"+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"log level override: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newScoreCmd(a))
	cmd.AddCommand(newLoadgenCmd())
	return cmd
}

// setup loads configuration (defaults -> file -> env -> flags) and
// initializes logging on stderr.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.cfgFile
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.LoadFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithJSON(cfg.LogJSON)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}
