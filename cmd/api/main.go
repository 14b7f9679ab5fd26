package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"docvault/internal/config"
	"docvault/internal/logger"
)

// @title       DocVault API
// @version     1.0
// @description Reports and documents with soft delete, content deduplication and parsing.
// @BasePath    /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "docvault",
		Short:         "Report and document service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("DOCVAULT_CONFIG"), "YAML config file (env DOCVAULT_CONFIG); environment variables override it")

	load := func() (*config.AppConfig, error) {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel, ServiceName: "docvault"})
		return cfg, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				defer logger.Sync()
				return serve(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the schema if it does not exist",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				defer logger.Sync()
				return migrate(cmd.Context(), cfg)
			},
		},
	)
	return root
}
