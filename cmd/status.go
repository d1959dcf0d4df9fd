package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tugot17/gpu-price-tracker/pkg/store"
	"github.com/tugot17/gpu-price-tracker/pkg/view"
)

func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what has been collected so far",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(cmd.OutOrStdout())
		},
	}
}

func showStatus(out io.Writer) error {
	summaries := store.NewSummaryStore(cfg.Storage.SummaryDir())
	snapshots, err := store.NewSnapshotWriter(cfg.Storage.SnapshotDir()).List()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Tracker Status\n")
	fmt.Fprintf(out, "==============\n")
	fmt.Fprintf(out, "Data dir: %s\n", cfg.Storage.DataDir)
	fmt.Fprintf(out, "Pricing source: %s\n\n", cfg.Pricing.Source)

	series := 0
	for _, m := range cfg.Tracking.Models {
		for _, key := range store.SeriesKeys(m.Name, m.Sockets) {
			snaps, err := summaries.Load(key)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				fmt.Fprintf(out, "%-24s no data\n", key)
				continue
			}
			series++
			latest := snaps[len(snaps)-1]
			fmt.Fprintf(out, "%-24s %5d records, latest %s\n", key, len(snaps), view.FormatTimestamp(latest.Timestamp))
		}
	}

	fmt.Fprintf(out, "\nSeries with data: %d\n", series)
	fmt.Fprintf(out, "Full snapshots: %d\n", len(snapshots))
	if series == 0 {
		fmt.Fprintf(out, "\nNo summaries yet. Run 'gpuprice collect' to get started.\n")
	}
	return nil
}
