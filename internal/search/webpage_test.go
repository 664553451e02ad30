package search

import (
	"encoding/json"
	"testing"
)

func TestWebPageData_SnippetList(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLen   int
		wantFirst string
	}{
		{"list", `{"snippets":[{"text":"one"},{"text":"two"}]}`, 2, "one"},
		{"map", `{"snippets":{"b":{"text":"second"},"a":{"text":"first"}}}`, 2, "first"},
		{"missing", `{}`, 0, ""},
		{"null", `{"snippets":null}`, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page WebPageData
			if err := json.Unmarshal([]byte(tt.raw), &page); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			got, err := page.SnippetList()
			if err != nil {
				t.Fatalf("SnippetList() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("SnippetList() len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0]["text"] != tt.wantFirst {
				t.Errorf("first snippet = %v, want %s", got[0], tt.wantFirst)
			}
		})
	}
}

func TestWebPageData_SnippetListInvalid(t *testing.T) {
	page := WebPageData{Snippets: json.RawMessage(`42`)}
	if _, err := page.SnippetList(); err == nil {
		t.Error("SnippetList() should fail on a scalar")
	}
}

func TestDecode(t *testing.T) {
	page := WebPageData{Page: json.RawMessage(`{"title":"Example"}`)}

	var p struct {
		Title string `json:"title"`
	}
	if err := Decode(page.Page, &p); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if p.Title != "Example" {
		t.Errorf("Title = %q", p.Title)
	}
	if err := Decode(nil, &p); err != nil {
		t.Errorf("Decode(nil) error = %v", err)
	}
}
