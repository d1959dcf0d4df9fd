// Package store persists aggregate snapshots as append-only NDJSON logs,
// one per (model, socket) series, and full runs as gzip snapshots.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
)

// SeriesKey identifies one summary log. Socket is empty for unsplit models.
type SeriesKey struct {
	Model  string
	Socket string
}

func (k SeriesKey) Filename() string {
	if k.Socket == "" {
		return k.Model + ".jsonl"
	}
	return k.Model + "_" + k.Socket + ".jsonl"
}

func (k SeriesKey) String() string {
	if k.Socket == "" {
		return k.Model
	}
	return fmt.Sprintf("%s (%s)", k.Model, k.Socket)
}

// SeriesKeys expands a model into its series: one per socket, or the bare
// model when no sockets are tracked.
func SeriesKeys(model string, sockets []string) []SeriesKey {
	if len(sockets) == 0 {
		return []SeriesKey{{Model: model}}
	}
	keys := make([]SeriesKey, 0, len(sockets))
	for _, s := range sockets {
		keys = append(keys, SeriesKey{Model: model, Socket: s})
	}
	return keys
}

// SummaryStore is a directory of append-only summary logs. Appends are not
// locked: two collectors writing at once may interleave lines.
type SummaryStore struct {
	dir string
}

func NewSummaryStore(dir string) *SummaryStore {
	return &SummaryStore{dir: dir}
}

func (s *SummaryStore) Dir() string {
	return s.dir
}

func (s *SummaryStore) Path(key SeriesKey) string {
	return filepath.Join(s.dir, key.Filename())
}

// Append writes snap as one line at the end of the key's log.
func (s *SummaryStore) Append(key SeriesKey, snap stats.Snapshot) error {
	line, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot for %s: %w", key, err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}

	f, err := os.OpenFile(s.Path(key), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open summary log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append summary log: %w", err)
	}
	return f.Close()
}

// Load returns every record of the key's log in insertion order. A missing
// log is not an error.
func (s *SummaryStore) Load(key SeriesKey) ([]stats.Snapshot, error) {
	f, err := os.Open(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open summary log: %w", err)
	}
	defer f.Close()

	var out []stats.Snapshot
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var snap stats.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("decode %s line %d: %w", key.Filename(), lineNo, err)
		}
		out = append(out, snap)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read summary log: %w", err)
	}
	return out, nil
}

// Latest returns the last record of the key's log.
func (s *SummaryStore) Latest(key SeriesKey) (stats.Snapshot, bool, error) {
	snaps, err := s.Load(key)
	if err != nil || len(snaps) == 0 {
		return stats.Snapshot{}, false, err
	}
	return snaps[len(snaps)-1], true, nil
}
