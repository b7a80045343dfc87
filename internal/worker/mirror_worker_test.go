package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/storage"
)

type recordingMirror struct {
	docs []*core.Document
	err  error
}

func (m *recordingMirror) MirrorDocument(ctx context.Context, doc *core.Document) error {
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, doc)
	return nil
}

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHandleStateSavedMirrorsLatestDocument(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := core.DefaultDocument()
	doc.Profile.Name = "Avery"
	doc.Projects = []core.Project{{ID: core.NewID(), Name: "Atlas"}}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m := &recordingMirror{}
	w := NewMirrorWorker(repo, m)

	if err := w.HandleStateSaved(ctx, amqp.NewStateSavedMessage(64)); err != nil {
		t.Fatalf("HandleStateSaved: %v", err)
	}
	if len(m.docs) != 1 {
		t.Fatalf("expected 1 mirrored document, got %d", len(m.docs))
	}
	if m.docs[0].Profile.Name != "Avery" {
		t.Errorf("mirrored stale document: %+v", m.docs[0].Profile)
	}
}

func TestHandleStateSavedEmptyStoreIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	m := &recordingMirror{}
	w := NewMirrorWorker(repo, m)

	if err := w.HandleStateSaved(context.Background(), amqp.NewStateSavedMessage(0)); err != nil {
		t.Fatalf("HandleStateSaved: %v", err)
	}
	if len(m.docs) != 0 {
		t.Errorf("expected no mirror call for empty store, got %d", len(m.docs))
	}
}

func TestHandleStateSavedPropagatesMirrorError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.Save(ctx, core.DefaultDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m := &recordingMirror{err: errors.New("sheet unavailable")}
	w := NewMirrorWorker(repo, m)

	if err := w.HandleStateSaved(ctx, amqp.NewStateSavedMessage(16)); err == nil {
		t.Error("expected error so the delivery gets requeued")
	}
}

func TestStartupMirror(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.Save(ctx, core.DefaultDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m := &recordingMirror{}
	w := NewMirrorWorker(repo, m)

	if err := w.StartupMirror(ctx); err != nil {
		t.Fatalf("StartupMirror: %v", err)
	}
	if len(m.docs) != 1 {
		t.Errorf("expected startup mirror call, got %d", len(m.docs))
	}
}
