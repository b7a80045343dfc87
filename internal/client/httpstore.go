// Package client provides a controller.Store backed by a remote state
// service, for front ends that run apart from the server process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tempo/internal/controller"
	"tempo/internal/core"
)

// HTTPStore talks to the /state endpoint. It satisfies controller.Store,
// so a controller works identically against a local SQLite repository or
// a remote server.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

var _ controller.Store = (*HTTPStore)(nil)

// NewHTTPStore builds a store for the given server base URL, e.g.
// "http://localhost:8082".
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPStore) Load(ctx context.Context) (*core.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/state", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get state: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read state body: %w", err)
	}

	var env struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedDocument, err)
	}
	// A null state means the server has nothing persisted yet.
	if len(env.State) == 0 || string(env.State) == "null" {
		return nil, nil
	}

	var doc core.Document
	if err := json.Unmarshal(env.State, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedDocument, err)
	}
	return &doc, nil
}

func (s *HTTPStore) Save(ctx context.Context, doc *core.Document) error {
	body, err := json.Marshal(struct {
		State *core.Document `json:"state"`
	}{State: doc})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/state", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("put state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("put state: unexpected status %d", resp.StatusCode)
	}
	return nil
}
