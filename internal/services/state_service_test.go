package services

import (
	"context"
	"path/filepath"
	"testing"

	"tempo/internal/storage"
)

func newTestService(t *testing.T) *StateService {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewStateService(repo, nil)
}

func TestSaveAndLoadState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	raw := []byte(`{"profile":{"name":"Avery","rate":85},"projects":[]}`)
	if err := svc.SaveState(ctx, raw); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	got, err := svc.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("LoadState = %s, want %s", got, raw)
	}
}

func TestLoadStateEmpty(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.LoadState(context.Background())
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty store, got %s", got)
	}
}

func TestSaveStateRejectsInvalidJSON(t *testing.T) {
	svc := newTestService(t)

	if err := svc.SaveState(context.Background(), []byte("{broken")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestSaveStateWithoutAMQPSucceeds(t *testing.T) {
	// Publishing is optional; a nil client must never fail the save.
	svc := newTestService(t)

	if err := svc.SaveState(context.Background(), []byte(`{"projects":[]}`)); err != nil {
		t.Fatalf("SaveState with nil AMQP client: %v", err)
	}
}
