package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tempo/internal/calendar"
	"tempo/internal/core"
)

type calendarCell struct {
	Date   string  `json:"date"`
	Day    int     `json:"day"`
	Hours  float64 `json:"hours"`
	Label  string  `json:"label"`
	Earned float64 `json:"earned"`
}

type calendarResponse struct {
	Mode      calendar.Mode   `json:"mode"`
	Reference string          `json:"reference"`
	Next      string          `json:"next"`
	Prev      string          `json:"prev"`
	Project   string          `json:"project,omitempty"`
	Cells     []*calendarCell `json:"cells"`
}

// handleCalendar returns the week or month grid around a reference date,
// each cell annotated with the hours logged that day. Null cells are the
// placeholders aligning a month grid to its 7-column layout.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	mode := calendar.Mode(strings.TrimSpace(r.URL.Query().Get("mode")))
	if mode == "" {
		mode = calendar.ModeMonth
	}
	if !mode.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown mode"})
		return
	}

	ref := time.Now().UTC()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := time.Parse(core.DateLayout, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid date"})
			return
		}
		ref = parsed
	}

	doc, err := s.document(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Calendar load error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to load document"})
		return
	}

	projectID := strings.TrimSpace(r.URL.Query().Get("project"))
	var scoped []*core.Project
	if projectID != "" {
		p := doc.Project(projectID)
		if p == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "project not found"})
			return
		}
		scoped = []*core.Project{p}
	} else {
		active := doc.ActiveProjects()
		for i := range active {
			scoped = append(scoped, &active[i])
		}
	}

	resp := calendarResponse{
		Mode:      mode,
		Reference: ref.Format(core.DateLayout),
		Next:      calendar.Next(ref, mode).Format(core.DateLayout),
		Prev:      calendar.Prev(ref, mode).Format(core.DateLayout),
		Project:   projectID,
	}

	for _, cell := range calendar.Grid(ref, mode) {
		if cell == nil {
			resp.Cells = append(resp.Cells, nil)
			continue
		}
		var hours, earned float64
		for _, p := range scoped {
			h := core.HoursOn(p.Entries, cell.Date)
			hours += h
			earned += h * core.EffectiveRate(p, doc.Profile)
		}
		resp.Cells = append(resp.Cells, &calendarCell{
			Date:   cell.Date,
			Day:    cell.Day,
			Hours:  hours,
			Label:  core.FormatHours(hours),
			Earned: earned,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type projectSummary struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rate   float64 `json:"rate"`
	Hours  float64 `json:"hours"`
	Label  string  `json:"label"`
	Earned float64 `json:"earned"`
}

type summaryResponse struct {
	Profile  core.Profile     `json:"profile"`
	Projects []projectSummary `json:"projects"`
	Hours    float64          `json:"hours"`
	Label    string           `json:"label"`
	Earned   float64          `json:"earned"`
}

// handleSummary returns per-project totals over an optional date range.
// Archived projects are excluded; their entries stay in the document but
// contribute nothing here.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	doc, err := s.document(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary load error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to load document"})
		return
	}

	resp := summaryResponse{
		Profile:  doc.Profile,
		Projects: []projectSummary{},
	}
	active := doc.ActiveProjects()
	for i := range active {
		p := &active[i]
		rate := core.EffectiveRate(p, doc.Profile)
		hours := core.SumHours(p.Entries, rng)
		earned := core.Earned(p.Entries, rate, rng)
		resp.Projects = append(resp.Projects, projectSummary{
			ID:     p.ID,
			Name:   p.Name,
			Rate:   rate,
			Hours:  hours,
			Label:  core.FormatHours(hours),
			Earned: earned,
		})
		resp.Hours += hours
		resp.Earned += earned
	}
	resp.Label = core.FormatHours(resp.Hours)

	writeJSON(w, http.StatusOK, resp)
}
