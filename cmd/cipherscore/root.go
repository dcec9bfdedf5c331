package main

import (
	"github.com/spf13/cobra"
)

var (
	// configFlag is the CLI --config flag value.
	configFlag string

	// runtimeFlag overrides the configured runtime backend.
	runtimeFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cipherscore",
	Short: "cipherscore - confidential rating and tier-verdict engine",
	Long: `cipherscore runs a local session of the confidential rating engine:
ratings are submitted as encrypted 0-100 scores, aggregated homomorphically
into per-target sums, and evaluated against confidential tier thresholds
entirely on encrypted data. Only the selective-disclosure protocol decides
who may decrypt a verdict.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to a YAML session config (default: built-in demo session)")
	rootCmd.PersistentFlags().StringVar(&runtimeFlag, "runtime", "",
		"Runtime backend override: clear or bfv")
}
