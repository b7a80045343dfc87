// Package controller owns the mutable application state: the document plus
// UI selections. Every mutation is an atomic whole-document replacement
// followed by a debounced write to the backing store; the in-memory copy
// stays authoritative when a write fails.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"tempo/internal/calendar"
	"tempo/internal/core"
)

// DefaultDebounce is the quiet period after the last mutation before the
// document is written out. Rapid edits coalesce into one write.
const DefaultDebounce = 500 * time.Millisecond

const saveTimeout = 10 * time.Second

// Store persists the document as a whole. Load returns (nil, nil) when
// nothing has been saved yet and core.ErrMalformedDocument when the
// persisted state does not decode.
type Store interface {
	Load(ctx context.Context) (*core.Document, error)
	Save(ctx context.Context, doc *core.Document) error
}

// SyncStatus describes the relationship between the in-memory document and
// the store. All states are non-fatal; the UI stays usable throughout.
type SyncStatus string

const (
	SyncClean   SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "sync failed, will retry"
	SyncLocal   SyncStatus = "working locally"
)

// Controller processes mutations one at a time and owns the single pending
// write slot. The only asynchronous work is the store traffic.
type Controller struct {
	mu    sync.Mutex
	store Store
	delay time.Duration

	doc             *core.Document
	selectedProject string
	mode            calendar.Mode
	reference       time.Time

	pending *time.Timer
	status  SyncStatus
	loadGen int
	closed  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides the write delay, mainly for tests.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// New builds a controller around the store, starting from the default
// document until Load is called.
func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		delay:     DefaultDebounce,
		doc:       core.DefaultDocument(),
		mode:      calendar.ModeMonth,
		reference: time.Now().UTC(),
		status:    SyncClean,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the persisted document and replaces the in-memory one. A
// malformed document falls back to the default; a transport failure keeps
// the current document and flags "working locally". A Load superseded by a
// newer one discards its result.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()

	doc, err := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		// A later load superseded this one; drop the stale result.
		return nil
	}

	switch {
	case errors.Is(err, core.ErrMalformedDocument):
		slog.Warn("Persisted state malformed, starting from default document")
		c.doc = core.DefaultDocument()
		c.status = SyncClean
	case err != nil:
		slog.Warn("State load failed, working locally", "error", err)
		c.status = SyncLocal
	case doc == nil:
		c.doc = core.DefaultDocument()
		c.status = SyncClean
	default:
		doc.Normalize()
		c.doc = doc
		c.status = SyncClean
	}
	c.ensureSelection()
	return nil
}

// Document returns a deep copy of the current document.
func (c *Controller) Document() *core.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

// Status returns the current sync status.
func (c *Controller) Status() SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SelectedProject returns the id of the active project, empty when none.
func (c *Controller) SelectedProject() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedProject
}

// SelectProject makes the given active project current. Unknown or archived
// ids are ignored.
func (c *Controller) SelectProject(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.doc.Project(id); p != nil && !p.Archived {
		c.selectedProject = id
	}
}

// Mode returns the calendar mode.
func (c *Controller) Mode() calendar.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches between week and month view, preserving the reference
// date.
func (c *Controller) SetMode(mode calendar.Mode) {
	if !mode.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// Reference returns the calendar reference date.
func (c *Controller) Reference() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reference
}

// Navigate moves the reference date one step forward or back in the current
// mode.
func (c *Controller) Navigate(forward bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if forward {
		c.reference = calendar.Next(c.reference, c.mode)
	} else {
		c.reference = calendar.Prev(c.reference, c.mode)
	}
}

// SetProfile applies a partial profile update; nil fields are left alone.
func (c *Controller) SetProfile(name *string, rate *float64) {
	c.mutate(func(doc *core.Document) error {
		if name != nil {
			doc.Profile.Name = *name
		}
		if rate != nil {
			doc.Profile.Rate = safe(*rate)
		}
		return nil
	})
}

// AddProject creates an empty project, selects it, and returns its id.
func (c *Controller) AddProject(name string) string {
	if name == "" {
		name = "New project"
	}
	id := core.NewID()
	c.mutate(func(doc *core.Document) error {
		doc.Projects = append(doc.Projects, core.Project{
			ID:      id,
			Name:    name,
			Entries: []core.Entry{},
		})
		return nil
	})
	c.SelectProject(id)
	return id
}

// RenameProject sets the project name.
func (c *Controller) RenameProject(id, name string) error {
	return c.mutate(func(doc *core.Document) error {
		p := doc.Project(id)
		if p == nil {
			return core.ErrProjectNotFound
		}
		p.Name = name
		return nil
	})
}

// SetProjectRate sets or clears (nil) the project's rate override.
func (c *Controller) SetProjectRate(id string, rate *float64) error {
	return c.mutate(func(doc *core.Document) error {
		p := doc.Project(id)
		if p == nil {
			return core.ErrProjectNotFound
		}
		if rate == nil {
			p.Rate = nil
		} else {
			r := safe(*rate)
			p.Rate = &r
		}
		return nil
	})
}

// ArchiveProject moves a project out of the active set. Its entries remain
// exportable.
func (c *Controller) ArchiveProject(id string) error {
	return c.setArchived(id, true)
}

// RestoreProject brings an archived project back.
func (c *Controller) RestoreProject(id string) error {
	return c.setArchived(id, false)
}

func (c *Controller) setArchived(id string, archived bool) error {
	return c.mutate(func(doc *core.Document) error {
		p := doc.Project(id)
		if p == nil {
			return core.ErrProjectNotFound
		}
		p.Archived = archived
		return nil
	})
}

// DeleteProject removes the project and, with it, every entry it owns.
func (c *Controller) DeleteProject(id string) error {
	return c.mutate(func(doc *core.Document) error {
		for i := range doc.Projects {
			if doc.Projects[i].ID == id {
				doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)
				return nil
			}
		}
		return core.ErrProjectNotFound
	})
}

// AddEntry appends a work record to the project and returns its id. The
// row editor deliberately accepts any finite hours value, zero and negative
// included.
func (c *Controller) AddEntry(projectID, date string, hours float64) (string, error) {
	if !core.ValidDate(date) {
		return "", core.ErrInvalidDate
	}
	id := core.NewID()
	err := c.mutate(func(doc *core.Document) error {
		p := doc.Project(projectID)
		if p == nil {
			return core.ErrProjectNotFound
		}
		p.Entries = append(p.Entries, core.Entry{ID: id, Date: date, Hours: safeSigned(hours)})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateEntry applies a partial row edit; nil fields are left alone.
func (c *Controller) UpdateEntry(projectID, entryID string, date *string, hours *float64) error {
	if date != nil && !core.ValidDate(*date) {
		return core.ErrInvalidDate
	}
	return c.mutate(func(doc *core.Document) error {
		p := doc.Project(projectID)
		if p == nil {
			return core.ErrProjectNotFound
		}
		for i := range p.Entries {
			if p.Entries[i].ID != entryID {
				continue
			}
			if date != nil {
				p.Entries[i].Date = *date
			}
			if hours != nil {
				p.Entries[i].Hours = safeSigned(*hours)
			}
			return nil
		}
		return core.ErrEntryNotFound
	})
}

// DeleteEntry removes a single row.
func (c *Controller) DeleteEntry(projectID, entryID string) error {
	return c.mutate(func(doc *core.Document) error {
		p := doc.Project(projectID)
		if p == nil {
			return core.ErrProjectNotFound
		}
		for i := range p.Entries {
			if p.Entries[i].ID == entryID {
				p.Entries = append(p.Entries[:i], p.Entries[i+1:]...)
				return nil
			}
		}
		return core.ErrEntryNotFound
	})
}

// SetHoursForDate is the calendar single-cell editor: update the entry for
// the date when one exists (deleting it when the new value is zero or
// less), otherwise create one for a positive value. Non-numeric input
// counts as zero.
func (c *Controller) SetHoursForDate(projectID, date string, hours float64) error {
	if !core.ValidDate(date) {
		return core.ErrInvalidDate
	}
	hours = safe(hours)
	return c.mutate(func(doc *core.Document) error {
		p := doc.Project(projectID)
		if p == nil {
			return core.ErrProjectNotFound
		}
		for i := range p.Entries {
			if p.Entries[i].Date != date {
				continue
			}
			if hours <= 0 {
				p.Entries = append(p.Entries[:i], p.Entries[i+1:]...)
			} else {
				p.Entries[i].Hours = hours
			}
			return nil
		}
		if hours > 0 {
			p.Entries = append(p.Entries, core.Entry{ID: core.NewID(), Date: date, Hours: hours})
		}
		return nil
	})
}

// Flush cancels any pending write and persists the current document now.
// Failure keeps the document in memory and flags the status; the next
// mutation retries implicitly.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	doc := c.doc.Clone()
	c.mu.Unlock()

	return c.save(ctx, doc)
}

// Close flushes outstanding changes and stops the controller.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.Flush(ctx)
}

// mutate applies an edit to a clone of the document and swaps it in, then
// schedules the debounced write. Failed edits leave the document untouched
// and schedule nothing.
func (c *Controller) mutate(edit func(*core.Document) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.doc.Clone()
	if err := edit(next); err != nil {
		return err
	}
	c.doc = next
	c.ensureSelection()
	c.scheduleSave()
	return nil
}

// ensureSelection re-points the active project at the first remaining
// active one when the current selection was archived or deleted. Callers
// hold c.mu.
func (c *Controller) ensureSelection() {
	if p := c.doc.Project(c.selectedProject); p != nil && !p.Archived {
		return
	}
	c.selectedProject = ""
	for _, p := range c.doc.Projects {
		if !p.Archived {
			c.selectedProject = p.ID
			break
		}
	}
}

// scheduleSave resets the single pending-write slot: the previous timer is
// stopped, not merely ignored, so only the settled state after a burst of
// edits is written. Callers hold c.mu.
func (c *Controller) scheduleSave() {
	if c.closed {
		return
	}
	c.status = SyncPending
	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		c.pending = nil
		doc := c.doc.Clone()
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		_ = c.save(ctx, doc)
	})
}

func (c *Controller) save(ctx context.Context, doc *core.Document) error {
	err := c.store.Save(ctx, doc)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		slog.Warn("State save failed, will retry on next change", "error", err)
		c.status = SyncFailed
		return err
	}
	if c.pending == nil {
		c.status = SyncClean
	}
	return nil
}

func safe(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// safeSigned only clears non-finite values; the row editor keeps negative
// input as typed.
func safeSigned(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
