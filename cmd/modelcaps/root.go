package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/modelcaps"
	"github.com/jmylchreest/modelcaps/internal/logging"
)

var (
	// Global flags
	cachePath     string
	indexPath     string
	indexURL      string
	providerTable string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "modelcaps",
	Short: "Resolve model capability support",
	Long: `modelcaps answers "does model M support capability C?" by consulting,
in order: the local empirical observation cache, the remote capability
index, an optional host model registry, and a static provider heuristic.

Core Commands:
  supports      Resolve a (model, capability) pair through all tiers
  lookup        Consult only the empirical cache
  record        Store an empirical observation
  clear         Empty the empirical cache
  size          Count empirical cache entries
  capabilities  List the capability vocabulary
  version       Show version information`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "Empirical cache file (default: user cache dir)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "Capability index file (default: user cache dir)")
	rootCmd.PersistentFlags().StringVar(&indexURL, "index-url", "", "Capability index endpoint")
	rootCmd.PersistentFlags().StringVar(&providerTable, "provider-table", "", "YAML file overriding the static provider table")
}

// newDetector builds a detector from env config plus any flag overrides.
func newDetector() (*modelcaps.Detector, error) {
	logger := logging.SetDefault()

	cfg, err := modelcaps.Load()
	if err != nil {
		return nil, err
	}
	if cachePath != "" {
		cfg.CachePath = cachePath
	}
	if indexPath != "" {
		cfg.IndexPath = indexPath
	}
	if indexURL != "" {
		cfg.IndexURL = indexURL
	}
	if providerTable != "" {
		if err := cfg.LoadProviderTable(providerTable); err != nil {
			return nil, err
		}
	}
	return modelcaps.New(cfg, logger), nil
}
