package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/portfolio-intel/pkg/client"
)

const defaultServer = "http://localhost:8080"

// cliOptions holds the global flags shared by every command
type cliOptions struct {
	server  string
	timeout time.Duration
	verbose bool
}

func (o *cliOptions) client() *client.Client {
	return client.NewClient(o.server, client.WithTimeout(o.timeout))
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "portfolioctl",
		Short: "Inspect product portfolio coverage across markets",
		Long: `portfolioctl talks to a portfolio-intel server and renders market
coverage in the terminal.

Available commands:
  markets  - List markets with completeness and action flags
  market   - Show one market, or one pillar of it with --pillar
  compare  - Compare up to four markets pillar by pillar
  heatmap  - Show the cross-market pillar grid
  pillars  - List catalog pillars and their products
  reload   - Synthesize a fresh dataset on the server
  watch    - Follow dataset reloads as they happen`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(opts.verbose)
		},
		SilenceUsage: true,
	}

	server := os.Getenv("PORTFOLIO_SERVER")
	if server == "" {
		server = defaultServer
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "portfolio-intel base URL (env PORTFOLIO_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		newMarketsCmd(opts),
		newMarketCmd(opts),
		newCompareCmd(opts),
		newHeatmapCmd(opts),
		newPillarsCmd(opts),
		newReloadCmd(opts),
		newWatchCmd(opts),
	)

	return rootCmd
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	// Text output for terminals
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
