package main

import (
	"github.com/spf13/cobra"

	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/logger"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "rentalctl",
		Short:         "operate the rental toll ledger",
		Long:          `rentalctl imports toll exports, runs database migrations and mints operator tokens for the API.`,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.dev.yaml", "path to configuration file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logger.Initialize(cfg.Log.Level, cfg.Log.Format)
		return cfg, nil
	}

	root.AddCommand(importCommand(load))
	root.AddCommand(migrateCommand(load))
	root.AddCommand(tokenCommand(load))
	return root
}

type configLoader func() (*config.Config, error)
