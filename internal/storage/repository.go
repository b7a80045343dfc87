// Package storage persists the application document as a single-row JSON
// blob in SQLite. The blob is opaque to this layer; the only validation on
// write is that the payload is valid JSON.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tempo/internal/core"

	_ "modernc.org/sqlite"
)

// The document lives in exactly one row under this fixed key.
const stateKey = 1

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the SQLite database at dbPath
// and runs migrations. The process must not serve without durable storage,
// so callers treat any error here as fatal at startup.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports backend liveness for the health endpoint.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// LoadRaw returns the stored document bytes, or nil when nothing has been
// saved yet.
func (r *Repository) LoadRaw(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM app_state WHERE id = ?`, stateKey).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read app state: %w", err)
	}
	return blob, nil
}

// SaveRaw stores the document bytes, replacing whatever was there. The
// payload must be valid JSON; nothing else about its shape is checked.
func (r *Repository) SaveRaw(ctx context.Context, blob []byte) error {
	if !json.Valid(blob) {
		return core.ErrMalformedDocument
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO app_state (id, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		stateKey, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write app state: %w", err)
	}

	slog.DebugContext(ctx, "App state saved", "bytes", len(blob))
	return nil
}

// Load implements the controller store over the raw blob. Stored bytes
// that no longer decode yield core.ErrMalformedDocument so loaders can
// fall back to the default document.
func (r *Repository) Load(ctx context.Context) (*core.Document, error) {
	blob, err := r.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	var doc core.Document
	if err := json.Unmarshal(blob, &doc); err != nil {
		slog.WarnContext(ctx, "Stored document does not decode", "error", err)
		return nil, core.ErrMalformedDocument
	}
	return &doc, nil
}

// Save implements the controller store.
func (r *Repository) Save(ctx context.Context, doc *core.Document) error {
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return r.SaveRaw(ctx, blob)
}

// UpdatedAt returns when the document was last written, zero when nothing
// has been saved yet.
func (r *Repository) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM app_state WHERE id = ?`, stateKey).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read app state timestamp: %w", err)
	}
	return ts, nil
}
