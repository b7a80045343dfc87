package core

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// DateLayout is the fixed-width calendar date format used everywhere.
	// Entries carry no time component.
	DateLayout = "2006-01-02"
)

type (
	// Profile holds the user's display name and default hourly rate.
	Profile struct {
		Name string  `json:"name"`
		Rate float64 `json:"rate"`
	}

	// Entry is one (date, hours) work record owned by a project.
	Entry struct {
		ID    string  `json:"id"`
		Date  string  `json:"date"` // YYYY-MM-DD
		Hours float64 `json:"hours"`
	}

	// Project is a named work stream. Rate is a per-project override of the
	// profile rate; nil means "inherit". Archived projects are excluded from
	// totals and the active list but stay exportable and restorable.
	Project struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Rate     *float64 `json:"rate,omitempty"`
		Archived bool     `json:"archived"`
		Entries  []Entry  `json:"entries"`
	}

	// Document is the entire unit of persistence: one JSON value holding all
	// application state. There is no per-entity versioning.
	Document struct {
		Profile  Profile   `json:"profile"`
		Projects []Project `json:"projects"`
	}

	// DateRange is an inclusive [From, To] filter on ISO date strings. An
	// empty bound leaves that side open.
	DateRange struct {
		From string
		To   string
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrProjectNotFound = errors.New("project not found")
	ErrEntryNotFound   = errors.New("entry not found")

	// ErrMalformedDocument is returned by stores when persisted state fails
	// to decode. Loaders fall back to the default document instead of
	// failing.
	ErrMalformedDocument = errors.New("malformed persisted document")
)

// NewID returns a fresh opaque entity identifier.
func NewID() string {
	return uuid.NewString()
}

// DefaultDocument returns the document used when nothing has been persisted
// yet, or when persisted state fails normalization.
func DefaultDocument() *Document {
	return &Document{
		Profile:  Profile{Name: "", Rate: 0},
		Projects: []Project{},
	}
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Contains reports whether the date passes the range filter. Comparison is
// string-lexicographic, which is ordering-correct for the fixed-width layout.
func (r *DateRange) Contains(date string) bool {
	if r == nil {
		return true
	}
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// Label returns a human-readable name for the range, used in export
// filenames.
func (r *DateRange) Label() string {
	switch {
	case r == nil || (r.From == "" && r.To == ""):
		return "all"
	case r.From == "":
		return "until-" + r.To
	case r.To == "":
		return "from-" + r.From
	case r.From == r.To:
		return r.From
	default:
		return r.From + "-to-" + r.To
	}
}

// Project returns a pointer to the project with the given id, or nil.
func (d *Document) Project(id string) *Project {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}

// ActiveProjects returns the non-archived projects in document order.
func (d *Document) ActiveProjects() []Project {
	var out []Project
	for _, p := range d.Projects {
		if !p.Archived {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of the document. Mutating operations work on a
// clone so every edit is a whole-document replacement.
func (d *Document) Clone() *Document {
	out := &Document{
		Profile:  d.Profile,
		Projects: make([]Project, len(d.Projects)),
	}
	for i, p := range d.Projects {
		cp := p
		if p.Rate != nil {
			rate := *p.Rate
			cp.Rate = &rate
		}
		cp.Entries = make([]Entry, len(p.Entries))
		copy(cp.Entries, p.Entries)
		out.Projects[i] = cp
	}
	return out
}

// Normalize coerces a freshly decoded document into a usable shape: nil
// slices become empty, missing ids are regenerated, non-finite numbers are
// zeroed and malformed entry dates are dropped. It never fails; a document
// that decodes at all is salvaged rather than rejected.
func (d *Document) Normalize() {
	if !isFinite(d.Profile.Rate) || d.Profile.Rate < 0 {
		d.Profile.Rate = 0
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	seen := make(map[string]bool, len(d.Projects))
	for i := range d.Projects {
		p := &d.Projects[i]
		if p.ID == "" || seen[p.ID] {
			p.ID = NewID()
		}
		seen[p.ID] = true
		if p.Rate != nil && (!isFinite(*p.Rate) || *p.Rate < 0) {
			p.Rate = nil
		}
		if p.Entries == nil {
			p.Entries = []Entry{}
		}
		kept := p.Entries[:0]
		entrySeen := make(map[string]bool, len(p.Entries))
		for _, e := range p.Entries {
			if !ValidDate(e.Date) {
				continue
			}
			if e.ID == "" || entrySeen[e.ID] {
				e.ID = NewID()
			}
			entrySeen[e.ID] = true
			if !isFinite(e.Hours) {
				e.Hours = 0
			}
			kept = append(kept, e)
		}
		p.Entries = kept
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
