// Package view renders summary logs as plain-text reports.
package view

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
	"github.com/tugot17/gpu-price-tracker/pkg/store"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// Source reads summary logs.
type Source interface {
	Load(key store.SeriesKey) ([]stats.Snapshot, error)
}

// SocketTable maps a model to its tracked socket variants.
type SocketTable interface {
	Sockets(model string) []string
}

// FormatTimestamp renders a log timestamp the way reports show it.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// Latest prints the newest snapshot of every series of the given models.
// Series without a log are skipped. It returns how many series were printed.
func Latest(w io.Writer, src Source, sockets SocketTable, models []string) (int, error) {
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w, "Latest GPU Prices (per GPU)")
	fmt.Fprintln(w, heavyRule)

	printed := 0
	for _, model := range models {
		for _, key := range store.SeriesKeys(model, sockets.Sockets(model)) {
			snaps, err := src.Load(key)
			if err != nil {
				return printed, err
			}
			if len(snaps) == 0 {
				continue
			}

			fmt.Fprintf(w, "\n%s\n", key)
			fmt.Fprintln(w, lightRule)
			PrintDetails(w, snaps[len(snaps)-1])
			printed++
		}
	}
	return printed, nil
}

// PrintDetails prints one snapshot: counts, price spread, providers and
// configuration sizes.
func PrintDetails(w io.Writer, snap stats.Snapshot) {
	fmt.Fprintf(w, "Last updated: %s\n", FormatTimestamp(snap.Timestamp))
	fmt.Fprintf(w, "Total configs: %d\n", snap.Availability.Total)
	fmt.Fprintf(w, "Available: %d\n", snap.Availability.Available)

	ps := snap.PriceStats
	fmt.Fprintf(w, "\nPrice Range (per GPU): $%.2f - $%.2f\n", ps.Min, ps.Max)
	fmt.Fprintf(w, "  Mean:   $%.2f\n", ps.Mean)
	fmt.Fprintf(w, "  Median: $%.2f\n", ps.Median)
	fmt.Fprintf(w, "  P10:    $%.2f\n", ps.P10)
	fmt.Fprintf(w, "  P90:    $%.2f\n", ps.P90)

	fmt.Fprintf(w, "\nBy Provider (per GPU):\n")
	for _, name := range ProviderNames(snap.ByProvider) {
		p := snap.ByProvider[name]
		fmt.Fprintf(w, "  %-15s: %3d configs, $%7.2f - $%7.2f avg\n", name, p.Count, p.Min, p.Avg)
	}

	fmt.Fprintf(w, "\nBy Configuration:\n")
	for _, key := range ConfigKeys(snap.ByConfig) {
		c := snap.ByConfig[key]
		fmt.Fprintf(w, "  %-4s: %3d configs, $%7.2f/GPU ($%8.2f total)\n", key, c.Count, c.MinPerGPU, c.MinTotal)
	}
}

// ProviderNames returns provider names in alphabetical order.
func ProviderNames(byProvider map[string]stats.ProviderStats) []string {
	names := make([]string, 0, len(byProvider))
	for name := range byProvider {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigKeys orders "<n>x" labels by GPU count.
func ConfigKeys(byConfig map[string]stats.ConfigStats) []string {
	keys := make([]string, 0, len(byConfig))
	for k := range byConfig {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, erri := gpuCount(keys[i])
		nj, errj := gpuCount(keys[j])
		if erri != nil || errj != nil || ni == nj {
			return keys[i] < keys[j]
		}
		return ni < nj
	})
	return keys
}

func gpuCount(key string) (int, error) {
	return strconv.Atoi(strings.TrimRight(key, "x"))
}
