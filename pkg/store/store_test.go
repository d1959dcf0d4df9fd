package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
)

func sampleSnapshot(t *testing.T, ts time.Time, price float64) stats.Snapshot {
	t.Helper()
	summary, ok := stats.Aggregate([]stats.Configuration{
		{PricePerHour: stats.HourlyPrice(price), GPUCount: 1, Provider: "runpod", StockStatus: stats.StockAvailable},
	})
	if !ok {
		t.Fatalf("expected data")
	}
	return stats.NewSnapshot(ts, "H100_80GB", "SXM5", summary)
}

func TestSeriesKey_Filename(t *testing.T) {
	if got := (SeriesKey{Model: "B200_180GB"}).Filename(); got != "B200_180GB.jsonl" {
		t.Fatalf("unexpected filename %s", got)
	}
	if got := (SeriesKey{Model: "H100_80GB", Socket: "PCIe"}).Filename(); got != "H100_80GB_PCIe.jsonl" {
		t.Fatalf("unexpected filename %s", got)
	}
}

func TestSeriesKeys(t *testing.T) {
	keys := SeriesKeys("A100_80GB", []string{"SXM4", "PCIe"})
	if len(keys) != 2 || keys[0].Socket != "SXM4" || keys[1].Socket != "PCIe" {
		t.Fatalf("unexpected keys %v", keys)
	}
	keys = SeriesKeys("B200_180GB", nil)
	if len(keys) != 1 || keys[0].Socket != "" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestSummaryStore_AppendLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "summary")
	s := NewSummaryStore(dir)
	key := SeriesKey{Model: "H100_80GB", Socket: "SXM5"}
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	const n = 5
	for i := 0; i < n; i++ {
		if err := s.Append(key, sampleSnapshot(t, base.Add(time.Duration(i)*time.Hour), float64(i+1))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	snaps, err := s.Load(key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snaps) != n {
		t.Fatalf("expected %d records, got %d", n, len(snaps))
	}
	for i, snap := range snaps {
		if !snap.Timestamp.Equal(base.Add(time.Duration(i) * time.Hour)) {
			t.Fatalf("record %d out of order: %s", i, snap.Timestamp)
		}
		if snap.PriceStats.Min != float64(i+1) {
			t.Fatalf("record %d: expected min %d, got %v", i, i+1, snap.PriceStats.Min)
		}
		if snap.Socket() != "SXM5" {
			t.Fatalf("record %d: expected socket SXM5, got %q", i, snap.Socket())
		}
	}

	latest, ok, err := s.Latest(key)
	if err != nil || !ok {
		t.Fatalf("expected latest, got ok=%v err=%v", ok, err)
	}
	if latest.PriceStats.Min != n {
		t.Fatalf("expected latest to be the last append, got %v", latest.PriceStats.Min)
	}
}

func TestSummaryStore_AppendNeverRewrites(t *testing.T) {
	s := NewSummaryStore(t.TempDir())
	key := SeriesKey{Model: "B200_180GB"}
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := s.Append(key, sampleSnapshot(t, ts, 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	before, err := os.ReadFile(s.Path(key))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := s.Append(key, sampleSnapshot(t, ts.Add(time.Hour), 2)); err != nil {
		t.Fatalf("append: %v", err)
	}
	after, err := os.ReadFile(s.Path(key))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(after[:len(before)]) != string(before) {
		t.Fatalf("expected existing bytes to be preserved")
	}

	// every line is a complete JSON document
	f, err := os.Open(s.Path(key))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		if !json.Valid(scanner.Bytes()) {
			t.Fatalf("line %d is not valid JSON", lines)
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestSummaryStore_MissingLog(t *testing.T) {
	s := NewSummaryStore(filepath.Join(t.TempDir(), "absent"))
	snaps, err := s.Load(SeriesKey{Model: "GH200_96GB"})
	if err != nil || len(snaps) != 0 {
		t.Fatalf("expected empty result, got %v (%v)", snaps, err)
	}
	if _, ok, err := s.Latest(SeriesKey{Model: "GH200_96GB"}); ok || err != nil {
		t.Fatalf("expected no latest, got ok=%v err=%v", ok, err)
	}
}

func TestSummaryStore_ReadsPythonTimestamps(t *testing.T) {
	dir := t.TempDir()
	line := `{"timestamp": "2025-01-02T03:04:05.123456+00:00", "gpu_type": "B200_180GB", "socket_type": null, "price_stats": {"min": 3.5, "p10": 3.5, "p25": 3.5, "median": 3.5, "p75": 3.5, "p90": 3.5, "max": 3.5, "mean": 3.5}, "availability": {"total": 1, "available": 1, "low": 0, "medium": 0, "high": 0}, "by_provider": {}, "by_config": {}}` + "\n\n"
	if err := os.WriteFile(filepath.Join(dir, "B200_180GB.jsonl"), []byte(line), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	snaps, err := NewSummaryStore(dir).Load(SeriesKey{Model: "B200_180GB"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snaps) != 1 || snaps[0].PriceStats.Mean != 3.5 || snaps[0].SocketType != nil {
		t.Fatalf("unexpected snapshots %+v", snaps)
	}
	if snaps[0].Timestamp.UTC().Hour() != 3 {
		t.Fatalf("unexpected timestamp %s", snaps[0].Timestamp)
	}
}

func TestSummaryStore_CorruptLine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "X.jsonl"), []byte("{not json\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewSummaryStore(dir).Load(SeriesKey{Model: "X"}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSnapshotWriter_WriteReadList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "full_snapshots")
	w := NewSnapshotWriter(dir)
	ts := time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)

	configs := map[string][]stats.Configuration{
		"H100_80GB": {
			{CloudID: "a", PricePerHour: 2.5, GPUCount: 1, Socket: "SXM5", Provider: "runpod"},
			{CloudID: "b", PricePerHour: stats.Unpriced, GPUCount: 8, Socket: "PCIe", Provider: "lambda"},
		},
	}

	path, err := w.Write(ts, configs)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "2025-01-02T03-04-05.123456.json.gz" {
		t.Fatalf("unexpected snapshot name %s", filepath.Base(path))
	}

	snap, err := ReadFullSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !snap.Timestamp.Equal(ts) {
		t.Fatalf("expected %s, got %s", ts, snap.Timestamp)
	}
	got := snap.Configurations["H100_80GB"]
	if len(got) != 2 || got[0].PricePerHour != 2.5 || got[1].PricePerHour.Finite() {
		t.Fatalf("unexpected configurations %+v", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	list, err := w.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0] != path {
		t.Fatalf("unexpected list %v", list)
	}

	empty, err := NewSnapshotWriter(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v (%v)", empty, err)
	}
}
