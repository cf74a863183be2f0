// ════════════════════════════════════════════════════════════════════════════════════════════════
// Core-to-Core Latency - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: c2clat
// Component: Command Line & Run Orchestration
//
// Description:
//   Measures the one-way latency of handing a cache line between every pair of
//   CPU cores the process may run on and prints the result as min/avg matrices.
//
// Architecture:
//   - Phase 1: Configuration, topology discovery and cache line probing
//   - Phase 2: Heap cleanup, collector switched off for the timed section
//   - Phase 3: Pairwise measurement, report to stdout, optional history record
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"

	"c2clat/config"
	"c2clat/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		debug.DropError("c2clat", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The root command measures; the
// subcommands browse recorded runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "c2clat",
		Short: "Measure core-to-core cache line handoff latency",
		Long: `c2clat bounces a sequence number between two cores through a pair of
cache-line-isolated cells and reports, for every pair of allowed cores, the
minimum and mean one-way latency in nanoseconds.

Pipe --plot output into "gnuplot -p" to get heat maps.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, config.Load)
			if err != nil {
				return err
			}
			return runMeasurement(cmd.OutOrStdout(), cfg)
		},
	}

	config.RegisterFlags(root.PersistentFlags())
	root.MarkFlagsMutuallyExclusive(config.FormatFlags...)

	_ = root.RegisterFlagCompletionFunc(config.FlagFormat, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "plot", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newRunsCmd())
	root.AddCommand(newShowCmd())
	return root
}

// loadConfig resolves the layered configuration for cmd with load and
// applies the verbose switch.
func loadConfig(cmd *cobra.Command, load func(string, *pflag.FlagSet) (*config.Config, error)) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString(config.FlagConfig)
	cfg, err := load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	debug.SetVerbose(cfg.Verbose)
	if cfg.File != "" {
		debug.DropVerbose("CONFIG", "using "+cfg.File)
	}
	return cfg, nil
}
