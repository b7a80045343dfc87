package http

import (
	"log/slog"
	"net/http"
	"strings"

	"tempo/internal/core"
	"tempo/internal/export"
)

// handleExport streams the timesheet as a CSV attachment. Query params
// from, to (YYYY-MM-DD, both optional) bound the export inclusively;
// project narrows it to one project by ID.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
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
	projectID := strings.TrimSpace(r.URL.Query().Get("project"))

	doc, err := s.document(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export load error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to load document"})
		return
	}

	if projectID != "" && doc.Project(projectID) == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "project not found"})
		return
	}

	csv := export.BuildCSV(doc, projectID, rng)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(rng)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// parseRange reads the optional from/to query params into a date range.
// Both empty yields nil, meaning no filtering.
func parseRange(r *http.Request) (*core.DateRange, error) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	if from != "" && !core.ValidDate(from) {
		return nil, core.ErrInvalidDate
	}
	if to != "" && !core.ValidDate(to) {
		return nil, core.ErrInvalidDate
	}
	if from == "" && to == "" {
		return nil, nil
	}
	return &core.DateRange{From: from, To: to}, nil
}
