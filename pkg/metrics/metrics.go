// Package metrics exposes the latest collection run as Prometheus gauges,
// written in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
)

const namespace = "gpuprice"

// Recorder holds the gauges of one collection run in a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	pricePerGPU   *prometheus.GaugeVec
	configs       *prometheus.GaugeVec
	lastRun       prometheus.Gauge
	fetchFailures prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pricePerGPU: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_per_gpu_dollars",
			Help:      "Per-GPU hourly price statistics of the latest run.",
		}, []string{"gpu_type", "socket", "stat"}),
		configs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "configurations",
			Help:      "Priced configurations of the latest run by stock status.",
		}, []string{"gpu_type", "socket", "stock_status"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the latest collection run.",
		}),
		fetchFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_failures",
			Help:      "GPU models whose fetch failed in the latest run.",
		}),
	}
	r.registry.MustRegister(r.pricePerGPU, r.configs, r.lastRun, r.fetchFailures)
	return r
}

// Observe records one series snapshot; unsplit series get an empty socket label.
func (r *Recorder) Observe(snap stats.Snapshot) {
	socket := snap.Socket()
	ps := snap.PriceStats
	for stat, v := range map[string]float64{
		"min":    ps.Min,
		"p10":    ps.P10,
		"p25":    ps.P25,
		"median": ps.Median,
		"p75":    ps.P75,
		"p90":    ps.P90,
		"max":    ps.Max,
		"mean":   ps.Mean,
	} {
		r.pricePerGPU.WithLabelValues(snap.GPUType, socket, stat).Set(v)
	}

	a := snap.Availability
	for status, v := range map[string]int{
		"total":     a.Total,
		"available": a.Available,
		"low":       a.Low,
		"medium":    a.Medium,
		"high":      a.High,
	} {
		r.configs.WithLabelValues(snap.GPUType, socket, status).Set(float64(v))
	}
}

func (r *Recorder) RunFinished(ts time.Time, failures int) {
	r.lastRun.Set(float64(ts.Unix()))
	r.fetchFailures.Set(float64(failures))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically replaces path with the current gauges.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
