package main

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/catalog"
	"github.com/MrSnakeDoc/skyroute/internal/config"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/sources/specs"
)

// loadConfig reads the environment and applies the global flags on top.
func loadConfig() *config.Config {
	cfg := config.Load()
	if globalFlags.SpecDir != "" {
		cfg.SpecDir = globalFlags.SpecDir
	}
	if globalFlags.CatalogFile != "" {
		cfg.CatalogFile = globalFlags.CatalogFile
	}
	return cfg
}

// cliLogger logs to stderr so stdout stays machine readable.
func cliLogger() logger.Logger {
	if globalFlags.Verbose {
		return logger.New("debug", true)
	}
	return logger.New("warn", true)
}

// loadCatalog builds a catalog from the definition files, without redis.
func loadCatalog(cfg *config.Config, log logger.Logger) (*catalog.Catalog, error) {
	services, err := specs.NewSource(cfg.SpecDir, cfg.CatalogFile, log).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load service definitions: %w", err)
	}
	return catalog.New(services), nil
}

// parsePairs splits "key<sep>value" arguments. Keys are trimmed, values
// keep their inner spaces.
func parsePairs(args []string, sep string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, sep)
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid value %q, expected key%svalue", arg, sep)
		}
		pairs = append(pairs, [2]string{k, strings.TrimSpace(v)})
	}
	return pairs, nil
}
