package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tugot17/gpu-price-tracker/pkg/store"
	"github.com/tugot17/gpu-price-tracker/pkg/view"
)

func LatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest [GPU_TYPE]",
		Short: "Show the latest prices for one GPU type or the default set",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models := cfg.Viewer.DefaultModels
			if len(args) > 0 {
				models = []string{args[0]}
			}
			_, err := view.Latest(cmd.OutOrStdout(), store.NewSummaryStore(cfg.Storage.SummaryDir()), cfg.Tracking, models)
			return err
		},
	}
}

func TrendCmd() *cobra.Command {
	utc := false

	cmd := &cobra.Command{
		Use:   "trend GPU_TYPE [HOURS]",
		Short: "Show the price trend of a GPU type over the last hours",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) < 1 {
				fmt.Fprintln(out, "Error: GPU type required for trend")
				return nil
			}

			hours := cfg.Viewer.DefaultTrendHours
			if len(args) > 1 {
				h, err := strconv.Atoi(args[1])
				if err != nil {
					fmt.Fprintf(out, "Error: HOURS must be an integer, got %q\n", args[1])
					return nil
				}
				hours = h
			}

			mode := view.WallClock
			if utc {
				mode = view.Absolute
			}
			_, err := view.Trend(out, store.NewSummaryStore(cfg.Storage.SummaryDir()), args[0], hours, time.Now(), mode)
			return err
		},
	}

	cmd.Flags().BoolVar(&utc, "utc", utc, "Compare timestamps as instants instead of zone-less wall clocks")

	return cmd
}

// Usage prints the command summary shown for bare or unknown invocations.
func Usage(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  gpuprice collect")
	fmt.Fprintln(out, "  gpuprice latest [GPU_TYPE]")
	fmt.Fprintln(out, "  gpuprice trend GPU_TYPE [HOURS]")
	fmt.Fprintln(out, "  gpuprice status")
	fmt.Fprintln(out, "  gpuprice tui")
	fmt.Fprintln(out, "\nExamples:")
	fmt.Fprintln(out, "  gpuprice latest")
	fmt.Fprintln(out, "  gpuprice latest H100_80GB")
	fmt.Fprintln(out, "  gpuprice trend B200_180GB 48")
}
