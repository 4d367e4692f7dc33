package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/skyroute/internal/app"
)

// serveCmd starts the router.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the router",
	Long:  "Start the edge listener and the admin endpoints under /_skyroute. Configuration comes from SKYROUTE_* environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if globalFlags.Verbose {
			cfg.LogLevel = "debug"
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		return a.Run()
	},
}
