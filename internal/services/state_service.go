// Package services orchestrates state operations across SQLite and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/storage"
)

// StateService persists the application document and announces saves over
// AMQP so downstream mirrors can pick up the latest state.
type StateService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

// NewStateService wires the service. amqpClient may be nil when event
// publishing is disabled; saves then stay local-only.
func NewStateService(storage *storage.Repository, amqpClient *amqp.Client) *StateService {
	return &StateService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// SaveState persists the raw document and publishes a state-saved event.
// The save is authoritative; a publish failure is logged and never fails
// the request.
func (s *StateService) SaveState(ctx context.Context, raw []byte) error {
	if err := s.storage.SaveRaw(ctx, raw); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	if err := s.publishStateSaved(ctx, len(raw)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish state saved message",
			"bytes", len(raw), "error", err)
	}

	return nil
}

// LoadState returns the persisted raw document, or nil when nothing has
// been saved yet.
func (s *StateService) LoadState(ctx context.Context) ([]byte, error) {
	raw, err := s.storage.LoadRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return raw, nil
}

// Ping reports whether the primary store is reachable.
func (s *StateService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// UpdatedAt reports when the document was last persisted. The zero time
// means nothing has been saved yet.
func (s *StateService) UpdatedAt(ctx context.Context) (time.Time, error) {
	return s.storage.UpdatedAt(ctx)
}

func (s *StateService) publishStateSaved(ctx context.Context, size int) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping state saved message")
		return nil
	}

	return s.amqpClient.PublishStateSaved(ctx, amqp.NewStateSavedMessage(size))
}

// Close closes both storage and AMQP connections.
func (s *StateService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close state service: %v", errs)
	}

	return nil
}
