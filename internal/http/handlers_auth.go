package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tempo/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleAuthConfig tells clients whether a login is required at all, so a
// credential-less deployment can skip the login screen entirely.
func (s *Server) handleAuthConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"required":      s.gate.Enabled(),
		"authenticated": s.gate.Authenticated(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	err := s.gate.Submit(req.Username, req.Password)
	switch {
	case err == nil:
		slog.InfoContext(r.Context(), "Login succeeded")
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": true})
	case errors.Is(err, auth.ErrLockedOut):
		until := s.gate.LockedUntil()
		slog.WarnContext(r.Context(), "Login rejected, locked out", "locked_until", until)
		writeJSON(w, http.StatusLocked, map[string]any{
			"error":        "too many failed attempts",
			"locked_until": until.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		slog.WarnContext(r.Context(), "Login failed, invalid credentials")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
	default:
		slog.ErrorContext(r.Context(), "Login error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "login failed"})
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.gate.Logout()
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": s.gate.Authenticated()})
}
