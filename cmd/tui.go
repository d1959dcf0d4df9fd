package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tugot17/gpu-price-tracker/pkg/store"
	"github.com/tugot17/gpu-price-tracker/pkg/tui"
)

func TuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open interactive TUI dashboard of the latest prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := collectReportData()
			if err != nil {
				return err
			}
			if len(data.Series) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No summaries yet. Run 'gpuprice collect' first.")
				return nil
			}
			return tui.ShowDashboard(data)
		},
	}
}

func collectReportData() (tui.ReportData, error) {
	summaries := store.NewSummaryStore(cfg.Storage.SummaryDir())
	data := tui.ReportData{DataDir: cfg.Storage.DataDir}

	for _, m := range cfg.Tracking.Models {
		for _, key := range store.SeriesKeys(m.Name, m.Sockets) {
			latest, ok, err := summaries.Latest(key)
			if err != nil {
				return tui.ReportData{}, err
			}
			if !ok {
				continue
			}
			data.Series = append(data.Series, tui.SeriesInfo{Name: key.String(), Snapshot: latest})
		}
	}
	return data, nil
}
