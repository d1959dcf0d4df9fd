package view

import (
	"fmt"
	"io"
	"time"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
	"github.com/tugot17/gpu-price-tracker/pkg/store"
)

// ClockMode selects how the trend window compares timestamps.
type ClockMode int

const (
	// WallClock drops zone information from both the stored timestamp and
	// now, comparing bare wall clocks. Off by the local UTC offset when the
	// host is not on UTC.
	WallClock ClockMode = iota
	// Absolute compares instants.
	Absolute
)

// HoursAgo returns how long before now ts was, in hours.
func HoursAgo(ts, now time.Time, mode ClockMode) float64 {
	if mode == WallClock {
		ts, now = stripZone(ts), stripZone(now)
	}
	return now.Sub(ts).Hours()
}

func stripZone(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

// Window keeps snapshots taken at most hours before now, in stored order.
func Window(snaps []stats.Snapshot, hours int, now time.Time, mode ClockMode) []stats.Snapshot {
	var out []stats.Snapshot
	for _, s := range snaps {
		if HoursAgo(s.Timestamp, now, mode) <= float64(hours) {
			out = append(out, s)
		}
	}
	return out
}

// Trend prints one row per snapshot of the model's unsplit log within the
// last hours. It returns the number of rows printed.
func Trend(w io.Writer, src Source, model string, hours int, now time.Time, mode ClockMode) (int, error) {
	snaps, err := src.Load(store.SeriesKey{Model: model})
	if err != nil {
		return 0, err
	}
	if len(snaps) == 0 {
		fmt.Fprintf(w, "No data for %s\n", model)
		return 0, nil
	}

	fmt.Fprintln(w, heavyRule)
	fmt.Fprintf(w, "Price Trend: %s (last %d hours)\n", model, hours)
	fmt.Fprintln(w, heavyRule)

	recent := Window(snaps, hours, now, mode)
	if len(recent) == 0 {
		fmt.Fprintf(w, "No data in the last %d hours\n", hours)
		return 0, nil
	}

	fmt.Fprintf(w, "\nTimestamp                  | Min    | Median | Mean   | Max     | Configs\n")
	fmt.Fprintln(w, lightRule)
	for _, s := range recent {
		ps := s.PriceStats
		fmt.Fprintf(w, "%-23s | $%6.2f | $%6.2f | $%6.2f | $%7.2f | %3d\n",
			FormatTimestamp(s.Timestamp), ps.Min, ps.Median, ps.Mean, ps.Max, s.Availability.Total)
	}
	return len(recent), nil
}
