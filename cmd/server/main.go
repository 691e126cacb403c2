package main

import (
	"os"

	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "TaskFlow multi-user task management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file layered under the environment")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, configFile)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the store schema and indexes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd, configFile)
			},
		},
		&cobra.Command{
			Use:   "promote <email>",
			Short: "Grant the admin role to an existing account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPromote(cmd, configFile, args[0])
			},
		},
	)

	return root
}

// bootstrap loads configuration and builds the process logger. Errors are
// logged here so every command reports them the same way.
func bootstrap(configFile string) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		logrus.WithError(err).Error("failed to load config")
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Environment, cfg.LogLevel), nil
}
