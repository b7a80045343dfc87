// Package worker consumes state-saved events and pushes the current
// document to a mirror backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tempo/internal/amqp"
	"tempo/internal/mirror"
	"tempo/internal/storage"
)

// MirrorWorker reacts to state-saved events by reloading the document from
// the primary store and handing it to the configured mirror. The event
// carries no payload, so a burst of saves collapses into mirroring the
// latest state.
type MirrorWorker struct {
	storage *storage.Repository
	mirror  mirror.DocumentMirror
}

func NewMirrorWorker(storage *storage.Repository, mirror mirror.DocumentMirror) *MirrorWorker {
	return &MirrorWorker{
		storage: storage,
		mirror:  mirror,
	}
}

// HandleStateSaved processes a single state-saved message.
func (w *MirrorWorker) HandleStateSaved(ctx context.Context, msg *amqp.StateSavedMessage) error {
	slog.InfoContext(ctx, "Processing state saved message",
		"saved_at", msg.SavedAt,
		"bytes", msg.Bytes)

	doc, err := w.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document from storage: %w", err)
	}
	if doc == nil {
		slog.WarnContext(ctx, "No document in storage, nothing to mirror")
		return nil
	}
	doc.Normalize()

	if err := w.mirror.MirrorDocument(ctx, doc); err != nil {
		return fmt.Errorf("mirror document: %w", err)
	}

	slog.InfoContext(ctx, "Document mirrored",
		"saved_at", msg.SavedAt,
		"projects", len(doc.Projects))

	return nil
}

// StartupMirror mirrors the current state once at worker startup. This
// recovers from events missed while the worker was down.
func (w *MirrorWorker) StartupMirror(ctx context.Context) error {
	doc, err := w.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document for startup mirror: %w", err)
	}
	if doc == nil {
		slog.InfoContext(ctx, "No document in storage on startup")
		return nil
	}
	doc.Normalize()

	if err := w.mirror.MirrorDocument(ctx, doc); err != nil {
		return fmt.Errorf("startup mirror: %w", err)
	}

	slog.InfoContext(ctx, "Startup mirror completed", "projects", len(doc.Projects))
	return nil
}
