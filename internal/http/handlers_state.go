package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"tempo/internal/core"
)

// maxStateBytes bounds a PUT /state body. A single-user timesheet document
// is small; anything near this limit is a client bug.
const maxStateBytes = 4 << 20

// stateEnvelope is the wire shape of /state: the document travels under a
// "state" key, null when nothing has been saved yet.
type stateEnvelope struct {
	State json.RawMessage `json:"state"`
}

// handleState serves the whole persisted document. GET returns
// {"state": <document>}, with a null state when nothing has been saved
// yet. PUT replaces the document wholesale from the same envelope.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetState(w, r)
	case http.MethodPut:
		s.handlePutState(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	raw, err := s.state.LoadState(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Load state error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to load state"})
		return
	}

	// A nil RawMessage encodes as a JSON null, so an empty store yields
	// {"state":null}.
	writeJSON(w, http.StatusOK, stateEnvelope{State: raw})
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxStateBytes+1))
	if err != nil {
		slog.ErrorContext(r.Context(), "Read state body error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "failed to read body"})
		return
	}
	if len(body) > maxStateBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "document too large"})
		return
	}

	var env stateEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.State) == 0 || string(env.State) == "null" {
		slog.WarnContext(r.Context(), "Malformed state envelope", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "malformed document"})
		return
	}

	// Decode into the document shape so unknown structure is rejected
	// before it reaches the store.
	var doc core.Document
	if err := json.Unmarshal(env.State, &doc); err != nil {
		slog.WarnContext(r.Context(), "Malformed state document", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "malformed document"})
		return
	}

	if err := s.state.SaveState(r.Context(), env.State); err != nil {
		if errors.Is(err, core.ErrMalformedDocument) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "malformed document"})
			return
		}
		slog.ErrorContext(r.Context(), "Save state error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to save state"})
		return
	}

	s.invalidateDocument()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "bytes": len(env.State)})
}
