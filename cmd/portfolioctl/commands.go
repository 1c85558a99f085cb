package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/terra-clan/portfolio-intel/internal/events"
	"github.com/terra-clan/portfolio-intel/internal/models"
	"github.com/terra-clan/portfolio-intel/pkg/client"
)

func newMarketsCmd(opts *cliOptions) *cobra.Command {
	var filter models.MarketFilter

	cmd := &cobra.Command{
		Use:   "markets",
		Short: "List markets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := opts.client().ListMarkets(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list markets: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderMarkets(resp.Data.Markets))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "country name substring")
	cmd.Flags().StringVar(&filter.Region, "region", "", "region, e.g. APAC")
	return cmd
}

func newMarketCmd(opts *cliOptions) *cobra.Command {
	var pillar string

	cmd := &cobra.Command{
		Use:   "market <id>",
		Short: "Show one market",
		Long: `Show pillar coverage for one market.

With --pillar, list every product of that pillar with its status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			ctx := cmd.Context()

			if pillar != "" {
				resp, err := c.GetPillarDetail(ctx, args[0], models.PillarID(pillar))
				if err != nil {
					return fmt.Errorf("failed to get pillar detail: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderPillarDetail(&resp.Data))
				return nil
			}

			resp, err := c.GetMarket(ctx, args[0])
			if err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("market %q not found", args[0])
				}
				return fmt.Errorf("failed to get market: %w", err)
			}

			pillars, err := c.ListPillars(ctx)
			if err != nil {
				return fmt.Errorf("failed to list pillars: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderMarket(&resp.Data, pillars))
			return nil
		},
	}

	cmd.Flags().StringVarP(&pillar, "pillar", "p", "", "pillar id to drill into, e.g. HD")
	return cmd
}

func newCompareCmd(opts *cliOptions) *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "compare [market-id...]",
		Short: "Compare markets pillar by pillar",
		Long: fmt.Sprintf(`Compare up to %d markets side by side.

Without ids the server picks --initial plus one more market.`, models.MaxCompareMarkets),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Compare(cmd.Context(), client.CompareOptions{
				IDs:     args,
				Initial: initial,
			})
			if err != nil {
				return fmt.Errorf("failed to compare markets: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderComparison(&resp.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "", "market to start the default selection from")
	return cmd
}

func newHeatmapCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap",
		Short: "Show pillar completeness for every market",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := opts.client().Heatmap(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get heatmap: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderHeatmap(&resp.Data))
			return nil
		},
	}
}

func newPillarsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pillars",
		Short: "List catalog pillars and products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.client()

			pillars, err := c.ListPillars(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list pillars: %w", err)
			}
			products, err := c.ListProducts(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderPillars(pillars, products))
			return nil
		},
	}
}

func newReloadCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Synthesize a fresh dataset on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := opts.client().Reload(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to reload dataset: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDatasetInfo(info))
			return nil
		},
	}
}

func newWatchCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow dataset reloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			err := opts.client().Watch(cmd.Context(), func(version string, event *events.Event) {
				if event == nil {
					fmt.Fprintf(out, "connected, serving %s\n", version)
					return
				}
				slog.Debug("dataset event", "type", event.Type, "version", event.Version)
				fmt.Fprint(out, renderDatasetInfo(&models.DatasetInfo{
					Version:     event.Version,
					Seed:        event.Seed,
					Generation:  event.Generation,
					GeneratedAt: event.GeneratedAt,
					Markets:     event.Markets,
				}))
			})
			if err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	}
}
