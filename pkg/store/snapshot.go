package store

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
)

const snapshotSuffix = ".json.gz"

// FullSnapshot holds every raw configuration fetched in one run.
type FullSnapshot struct {
	Timestamp      time.Time                        `json:"timestamp"`
	Configurations map[string][]stats.Configuration `json:"configurations"`
}

// SnapshotWriter writes one compressed snapshot per collection run.
type SnapshotWriter struct {
	dir string
}

func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{dir: dir}
}

// SnapshotFilename derives a filesystem-safe name from the run time,
// e.g. 2025-01-02T03-04-05.000000.json.gz.
func SnapshotFilename(ts time.Time) string {
	return ts.UTC().Format("2006-01-02T15-04-05.000000") + snapshotSuffix
}

// Write stores the snapshot and returns its path.
func (w *SnapshotWriter) Write(ts time.Time, configs map[string][]stats.Configuration) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(w.dir, SnapshotFilename(ts))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FullSnapshot{Timestamp: ts.UTC(), Configurations: configs}); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	return path, nil
}

// List returns snapshot paths sorted oldest first.
func (w *SnapshotWriter) List() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		out = append(out, filepath.Join(w.dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// ReadFullSnapshot decodes a snapshot written by SnapshotWriter.
func ReadFullSnapshot(path string) (FullSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return FullSnapshot{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return FullSnapshot{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer zr.Close()

	var snap FullSnapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return FullSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
