package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/skyroute/internal/version"
)

// GlobalFlags are shared by every command.
type GlobalFlags struct {
	SpecDir     string // overrides SKYROUTE_SPEC_DIR
	CatalogFile string // overrides SKYROUTE_CATALOG_FILE
	Verbose     bool   // debug logs on stderr
}

var globalFlags GlobalFlags

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:     "skyroute",
	Short:   "AWS request router for local cloud emulators",
	Long:    "skyroute figures out which AWS service an HTTP request targets and forwards it to the emulator serving that service.",
	Version: version.String(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ skyroute: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.SpecDir, "spec-dir", "", "directory of service-2.json definitions (default: $SKYROUTE_SPEC_DIR)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.CatalogFile, "catalog-file", "", "YAML service catalog (default: $SKYROUTE_CATALOG_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "debug logs on stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(catalogCmd)
}
