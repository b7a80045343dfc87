// Package snapshot mirrors the document to timestamped JSON files on disk,
// keeping a rolling set of backups next to a stable latest.json.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tempo/internal/core"
)

// KeepSnapshots bounds how many timestamped files are retained.
const KeepSnapshots = 20

type Mirror struct {
	dir string
	now func() time.Time
}

func New(dir string) *Mirror {
	return &Mirror{dir: dir, now: time.Now}
}

// MirrorDocument writes the document to state-<timestamp>.json and
// refreshes latest.json, then prunes old snapshots. Writes are atomic:
// temp file then rename.
func (m *Mirror) MirrorDocument(ctx context.Context, doc *core.Document) error {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	stamp := m.now().UTC().Format("20060102T150405")
	name := fmt.Sprintf("state-%s.json", stamp)
	if err := writeAtomic(filepath.Join(m.dir, name), data); err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(m.dir, "latest.json"), data); err != nil {
		return err
	}

	if err := m.prune(); err != nil {
		slog.WarnContext(ctx, "Snapshot prune failed", "error", err, "dir", m.dir)
	}

	slog.InfoContext(ctx, "Document snapshot written", "file", name, "bytes", len(data))
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// prune deletes the oldest timestamped snapshots beyond KeepSnapshots.
// Timestamped names sort chronologically, so a lexicographic sort is
// enough.
func (m *Mirror) prune() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}
	var stamped []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "state-") && strings.HasSuffix(name, ".json") {
			stamped = append(stamped, name)
		}
	}
	if len(stamped) <= KeepSnapshots {
		return nil
	}
	sort.Strings(stamped)
	for _, name := range stamped[:len(stamped)-KeepSnapshots] {
		if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
			return err
		}
	}
	return nil
}
