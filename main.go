package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tugot17/gpu-price-tracker/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "gpuprice",
	Short: "Track GPU cloud prices over time",
	Long: `gpuprice fetches GPU availability and prices, stores per-model summary
statistics as append-only logs, and shows the latest snapshot or a trend.`,
	Args: cobra.ArbitraryArgs,
	Run: func(c *cobra.Command, args []string) {
		if len(args) > 0 {
			fmt.Fprintf(c.OutOrStdout(), "Unknown command: %s\n\n", args[0])
		}
		cmd.Usage(c)
	},
}

func init() {
	rootCmd.AddCommand(cmd.CollectCmd())
	rootCmd.AddCommand(cmd.LatestCmd())
	rootCmd.AddCommand(cmd.TrendCmd())
	rootCmd.AddCommand(cmd.StatusCmd())
	rootCmd.AddCommand(cmd.TuiCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
