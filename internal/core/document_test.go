package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-05", true},
		{"2024-02-29", true}, // leap day
		{"2023-02-29", false},
		{"2024-13-01", false},
		{"2024-1-5", false}, // not fixed-width
		{"20240105", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidDate(tt.in); got != tt.want {
			t.Errorf("ValidDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDateRangeLabel(t *testing.T) {
	tests := []struct {
		name string
		r    *DateRange
		want string
	}{
		{"nil", nil, "all"},
		{"empty", &DateRange{}, "all"},
		{"from only", &DateRange{From: "2024-01-01"}, "from-2024-01-01"},
		{"to only", &DateRange{To: "2024-01-31"}, "until-2024-01-31"},
		{"single day", &DateRange{From: "2024-01-05", To: "2024-01-05"}, "2024-01-05"},
		{"span", &DateRange{From: "2024-01-01", To: "2024-01-31"}, "2024-01-01-to-2024-01-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	rate := 85.0
	doc := &Document{
		Profile: Profile{Name: "me", Rate: 50},
		Projects: []Project{
			{ID: "p1", Name: "Atlas", Rate: &rate, Entries: []Entry{
				{ID: "e1", Date: "2024-01-05", Hours: 4.5},
			}},
		},
	}

	clone := doc.Clone()
	clone.Projects[0].Name = "Changed"
	clone.Projects[0].Entries[0].Hours = 99
	*clone.Projects[0].Rate = 1

	if doc.Projects[0].Name != "Atlas" {
		t.Error("clone shares project slice with original")
	}
	if doc.Projects[0].Entries[0].Hours != 4.5 {
		t.Error("clone shares entry slice with original")
	}
	if *doc.Projects[0].Rate != 85 {
		t.Error("clone shares rate pointer with original")
	}
}

func TestNormalize(t *testing.T) {
	doc := &Document{
		Profile: Profile{Rate: math.NaN()},
		Projects: []Project{
			{ID: "", Name: "NoID", Entries: []Entry{
				{ID: "e1", Date: "2024-01-05", Hours: 2},
				{ID: "e2", Date: "garbage", Hours: 3}, // dropped
				{ID: "e1", Date: "2024-01-06", Hours: math.Inf(1)},
			}},
			{ID: "p2", Name: "NilEntries"},
		},
	}
	doc.Normalize()

	if doc.Profile.Rate != 0 {
		t.Errorf("NaN profile rate not zeroed: %v", doc.Profile.Rate)
	}
	if doc.Projects[0].ID == "" {
		t.Error("missing project id not regenerated")
	}
	entries := doc.Projects[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected malformed entry dropped, got %d entries", len(entries))
	}
	if entries[0].ID == entries[1].ID {
		t.Error("duplicate entry id not regenerated")
	}
	if entries[1].Hours != 0 {
		t.Errorf("non-finite hours not zeroed: %v", entries[1].Hours)
	}
	if doc.Projects[1].Entries == nil {
		t.Error("nil entries slice not initialized")
	}
}

func TestNormalizeRegeneratesDuplicateProjectIDs(t *testing.T) {
	doc := &Document{Projects: []Project{{ID: "dup"}, {ID: "dup"}}}
	doc.Normalize()
	if doc.Projects[0].ID == doc.Projects[1].ID {
		t.Error("duplicate project ids survived normalization")
	}
}

func TestDocumentWireShape(t *testing.T) {
	rate := 85.0
	doc := &Document{
		Profile: Profile{Name: "me", Rate: 50},
		Projects: []Project{
			{ID: "p1", Name: "Atlas", Rate: &rate, Entries: []Entry{
				{ID: "e1", Date: "2024-01-05", Hours: 4.5},
			}},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Projects[0].Rate == nil || *back.Projects[0].Rate != 85 {
		t.Error("rate override lost on the wire")
	}

	// Absent rate stays absent rather than being persisted as a copy.
	var sparse Document
	if err := json.Unmarshal([]byte(`{"profile":{"name":"","rate":50},"projects":[{"id":"p","name":"n","archived":false,"entries":[]}]}`), &sparse); err != nil {
		t.Fatalf("unmarshal sparse: %v", err)
	}
	if sparse.Projects[0].Rate != nil {
		t.Error("absent project rate decoded as non-nil")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("NewID produced empty or duplicate id %q", id)
		}
		seen[id] = true
	}
}
