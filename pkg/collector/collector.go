package collector

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tugot17/gpu-price-tracker/pkg/config"
	"github.com/tugot17/gpu-price-tracker/pkg/pricing"
	"github.com/tugot17/gpu-price-tracker/pkg/stats"
	"github.com/tugot17/gpu-price-tracker/pkg/store"
)

// Store is where aggregate snapshots are appended.
type Store interface {
	Append(key store.SeriesKey, snap stats.Snapshot) error
}

// SnapshotWriter persists the raw configurations of a run.
type SnapshotWriter interface {
	Write(ts time.Time, configs map[string][]stats.Configuration) (string, error)
}

// Recorder receives per-series results, e.g. for Prometheus gauges.
type Recorder interface {
	Observe(snap stats.Snapshot)
	RunFinished(ts time.Time, failures int)
	WriteTextfile(path string) error
}

// Config wires a collection run.
type Config struct {
	// Provider is queried once per tracked model.
	Provider pricing.Provider
	// Store receives one snapshot per (model, socket) with data.
	Store Store
	// Snapshots receives the raw configurations of the run. Optional.
	Snapshots SnapshotWriter
	// Models is the tracking table, in collection order.
	Models []config.TrackedModel
	// FetchTimeout bounds each provider call. Zero means no extra bound.
	FetchTimeout time.Duration
	// Metrics and MetricsPath enable the textfile output. Both optional.
	Metrics     Recorder
	MetricsPath string

	Logger *zap.Logger
	// Out receives human-readable progress. Defaults to io.Discard.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result summarises what a run managed to gather.
type Result struct {
	Timestamp    time.Time
	Series       []store.SeriesKey
	FailedModels []string
	SnapshotPath string
}

// Run fetches every tracked model, appends aggregates and writes the full
// snapshot. Per-model and per-series failures are logged and skipped; the
// only error is a Config that cannot run at all.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Provider == nil {
		return Result{}, fmt.Errorf("collector: Provider is required")
	}
	if cfg.Store == nil {
		return Result{}, fmt.Errorf("collector: Store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	res := Result{Timestamp: now().UTC()}
	all := make(map[string][]stats.Configuration)

	for _, model := range cfg.Models {
		configs, err := fetch(ctx, cfg, model.Name, out)
		if err != nil {
			logger.Warn("fetch failed", zap.String("gpu_type", model.Name), zap.String("source", cfg.Provider.Source()), zap.Error(err))
			fmt.Fprintf(out, "  Error fetching %s: %v\n", model.Name, err)
			res.FailedModels = append(res.FailedModels, model.Name)
		}
		if len(configs) == 0 {
			fmt.Fprintf(out, "  Skipping %s (no data)\n", model.Name)
			continue
		}
		all[model.Name] = configs

		for _, key := range store.SeriesKeys(model.Name, model.Sockets) {
			subset := configs
			if key.Socket != "" {
				subset = bySocket(configs, key.Socket)
				if len(subset) == 0 {
					fmt.Fprintf(out, "  Skipping %s %s (no data)\n", key.Model, key.Socket)
					continue
				}
			}

			fmt.Fprintf(out, "\n  %s\n", key)
			summary, ok := stats.Aggregate(subset)
			if !ok {
				logger.Debug("no priced configurations", zap.String("series", key.String()))
				continue
			}
			snap := stats.NewSnapshot(res.Timestamp, key.Model, key.Socket, summary)
			if err := cfg.Store.Append(key, snap); err != nil {
				logger.Error("append summary failed", zap.String("series", key.String()), zap.Error(err))
				continue
			}
			res.Series = append(res.Series, key)
			if cfg.Metrics != nil {
				cfg.Metrics.Observe(snap)
			}

			ps := summary.PriceStats
			fmt.Fprintf(out, "    Stats: $%.2f - $%.2f per GPU (avg: $%.2f, median: $%.2f)\n", ps.Min, ps.Max, ps.Mean, ps.Median)
			fmt.Fprintf(out, "    Available configs: %d/%d\n", summary.Availability.Available, summary.Availability.Total)
		}
	}

	if len(all) > 0 && cfg.Snapshots != nil {
		path, err := cfg.Snapshots.Write(res.Timestamp, all)
		if err != nil {
			logger.Error("write full snapshot failed", zap.Error(err))
		} else {
			res.SnapshotPath = path
			fmt.Fprintf(out, "\nFull snapshot saved: %s\n", path)
		}
	}

	if cfg.Metrics != nil {
		cfg.Metrics.RunFinished(res.Timestamp, len(res.FailedModels))
		if strings.TrimSpace(cfg.MetricsPath) != "" {
			if err := cfg.Metrics.WriteTextfile(cfg.MetricsPath); err != nil {
				logger.Error("write metrics failed", zap.String("path", cfg.MetricsPath), zap.Error(err))
			}
		}
	}

	logger.Info("collection finished",
		zap.Int("series", len(res.Series)),
		zap.Int("failed_models", len(res.FailedModels)),
		zap.String("snapshot", res.SnapshotPath))
	return res, nil
}

func fetch(ctx context.Context, cfg Config, gpuType string, out io.Writer) ([]stats.Configuration, error) {
	fmt.Fprintf(out, "Fetching prices for %s...\n", gpuType)

	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}

	availability, err := cfg.Provider.Availability(ctx, gpuType)
	if err != nil {
		return nil, err
	}
	configs := pricing.Configurations(availability)
	fmt.Fprintf(out, "  Found %d configurations\n", len(configs))
	return configs, nil
}

func bySocket(configs []stats.Configuration, socket string) []stats.Configuration {
	var out []stats.Configuration
	for _, c := range configs {
		if c.Socket == socket {
			out = append(out, c)
		}
	}
	return out
}
