package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tempo/internal/core"
)

func testDocument() *core.Document {
	doc := core.DefaultDocument()
	doc.Profile.Name = "Avery"
	doc.Profile.Rate = 85
	doc.Projects = []core.Project{
		{
			ID:   core.NewID(),
			Name: "Atlas",
			Entries: []core.Entry{
				{ID: core.NewID(), Date: "2024-01-05", Hours: 4.5},
			},
		},
	}
	return doc
}

func TestMirrorDocumentWritesSnapshotAndLatest(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)
	m.now = func() time.Time {
		return time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)
	}

	if err := m.MirrorDocument(context.Background(), testDocument()); err != nil {
		t.Fatalf("MirrorDocument: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "state-20240310T123000.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if doc.Profile.Name != "Avery" || len(doc.Projects) != 1 {
		t.Errorf("snapshot content mismatch: %+v", doc)
	}

	latest, err := os.ReadFile(filepath.Join(dir, "latest.json"))
	if err != nil {
		t.Fatalf("read latest.json: %v", err)
	}
	if string(latest) != string(data) {
		t.Error("latest.json differs from the timestamped snapshot")
	}
}

func TestMirrorDocumentPrunesOldSnapshots(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	doc := testDocument()
	for i := 0; i < KeepSnapshots+5; i++ {
		if err := m.MirrorDocument(context.Background(), doc); err != nil {
			t.Fatalf("MirrorDocument #%d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var stamped int
	for _, e := range entries {
		if e.Name() == "latest.json" {
			continue
		}
		stamped++
	}
	if stamped != KeepSnapshots {
		t.Errorf("expected %d timestamped snapshots, got %d", KeepSnapshots, stamped)
	}

	// Oldest file must be gone.
	oldest := filepath.Join(dir, "state-20240301T000100.json")
	if _, err := os.Stat(oldest); !os.IsNotExist(err) {
		t.Errorf("oldest snapshot still present: %v", err)
	}
}

func TestMirrorDocumentNoLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)

	if err := m.MirrorDocument(context.Background(), testDocument()); err != nil {
		t.Fatalf("MirrorDocument: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
