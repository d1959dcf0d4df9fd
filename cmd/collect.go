package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tugot17/gpu-price-tracker/pkg/collector"
	"github.com/tugot17/gpu-price-tracker/pkg/config"
	"github.com/tugot17/gpu-price-tracker/pkg/logutil"
	"github.com/tugot17/gpu-price-tracker/pkg/metrics"
	"github.com/tugot17/gpu-price-tracker/pkg/pricing"
	"github.com/tugot17/gpu-price-tracker/pkg/store"
)

var cfg *config.Config

func init() {
	path := strings.TrimSpace(os.Getenv("GPUPRICE_CONFIG"))
	if path == "" {
		path = "config.yaml"
	}

	// Try to load config, fall back to defaults
	var err error
	cfg, err = config.Load(path)
	if err != nil {
		log.Printf("warning: failed to load %s, using defaults: %v", path, err)
		cfg = config.DefaultConfig()
	}
}

func CollectCmd() *cobra.Command {
	pricingSource := cfg.Pricing.Source
	command := strings.TrimSpace(cfg.Pricing.Command)
	args := append([]string{}, cfg.Pricing.Args...)
	file := cfg.Pricing.File

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetch current GPU prices and append summaries to the data directory",
		Run: func(cmd *cobra.Command, _ []string) {
			src := cfg.Pricing
			src.Source, src.Command, src.Args, src.File = pricingSource, command, args, file
			runCollect(cmd.OutOrStdout(), src)
		},
	}

	cmd.Flags().StringVar(&pricingSource, "pricing-source", pricingSource, "Pricing source: api, command or file")
	cmd.Flags().StringVar(&command, "pricing-command", command, "Command printing availability JSON for the GPU type given as last arg")
	cmd.Flags().StringArrayVar(&args, "pricing-arg", args, "Repeatable arg passed to --pricing-command")
	cmd.Flags().StringVar(&file, "pricing-file", file, "JSON file with availability keyed by GPU type")

	return cmd
}

func runCollect(out io.Writer, src config.PricingConfig) {
	logger, err := logutil.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Printf("warning: %v; falling back to info level", err)
		logger, _ = logutil.New("info", "console")
	}
	defer logger.Sync()

	provider, err := buildPricingProvider(src)
	if err != nil {
		logger.Error("pricing provider unavailable", zap.Error(err))
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	rule := strings.Repeat("=", 60)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "GPU Price Tracker (Storage Efficient)")
	fmt.Fprintln(out, rule)

	run := collector.Config{
		Provider:     provider,
		Store:        store.NewSummaryStore(cfg.Storage.SummaryDir()),
		Snapshots:    store.NewSnapshotWriter(cfg.Storage.SnapshotDir()),
		Models:       cfg.Tracking.Models,
		FetchTimeout: src.Timeout(),
		Logger:       logger,
		Out:          out,
	}
	if path := strings.TrimSpace(cfg.Metrics.TextfilePath); path != "" {
		run.Metrics = metrics.NewRecorder()
		run.MetricsPath = path
	}

	if _, err := collector.Run(context.Background(), run); err != nil {
		logger.Error("collection aborted", zap.Error(err))
	}

	fmt.Fprintln(out, "\n"+rule)
	fmt.Fprintln(out, "Tracking complete!")
	fmt.Fprintf(out, "Summary files: %s\n", cfg.Storage.SummaryDir())
	fmt.Fprintln(out, rule)
}

func buildPricingProvider(src config.PricingConfig) (pricing.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(src.Source)) {
	case "", "api":
		p, err := pricing.NewAPIProvider(src.BaseURL, src.APIKey(), src.Timeout())
		if err != nil {
			return nil, err
		}
		return p, nil
	case "command":
		cmd := strings.TrimSpace(src.Command)
		if cmd == "" {
			return nil, fmt.Errorf("pricing source command requires --pricing-command or pricing.command in config.yaml")
		}
		return pricing.NewCommandProvider(cmd, src.Args), nil
	case "file":
		if strings.TrimSpace(src.File) == "" {
			return nil, fmt.Errorf("pricing source file requires --pricing-file or pricing.file in config.yaml")
		}
		return pricing.NewFileProvider(src.File), nil
	default:
		return nil, fmt.Errorf("invalid --pricing-source %q (expected: api, command or file)", src.Source)
	}
}
