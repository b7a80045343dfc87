package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"tempo/internal/core"
)

func TestHTTPStoreRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var stored []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("read body: %v", err)
			}
			var env struct {
				State json.RawMessage `json:"state"`
			}
			if err := json.Unmarshal(body, &env); err != nil || len(env.State) == 0 {
				t.Errorf("PUT body is not a state envelope: %s", body)
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			stored = env.State
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]json.RawMessage{"state": stored})
		}
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	ctx := context.Background()

	doc := core.DefaultDocument()
	doc.Profile.Name = "Avery"
	doc.Projects = []core.Project{{ID: "p1", Name: "Atlas"}}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.Profile.Name != "Avery" || len(got.Projects) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestHTTPStoreLoadNullState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"state":null}`))
	}))
	defer srv.Close()

	got, err := NewHTTPStore(srv.URL).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil document for null state, got %+v", got)
	}
}

func TestHTTPStoreLoadMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"broken envelope": "{broken",
		"broken document": `{"state":"bogus"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewHTTPStore(srv.URL).Load(context.Background())
			if !errors.Is(err, core.ErrMalformedDocument) {
				t.Errorf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestHTTPStoreSaveErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewHTTPStore(srv.URL).Save(context.Background(), core.DefaultDocument()); err == nil {
		t.Error("expected error for 500 response")
	}
}
