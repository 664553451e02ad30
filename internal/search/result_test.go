package search

import (
	"errors"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestResult_String(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"with similarity", Result{Title: "Example Domain", Similarity: ptr(0.9876)}, "  0.99 | Example Domain"},
		{"empty", Result{}, "   N/A | No Title"},
		{"negative", Result{Title: "x", Similarity: ptr(-0.5)}, " -0.50 | x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResult_Field(t *testing.T) {
	r := Result{URL: "https://example.com", Title: "Example", Similarity: ptr(0.5), URLHash: "abc"}

	tests := []struct {
		name string
		want any
	}{
		{"url", "https://example.com"},
		{"title", "Example"},
		{"Title", "Example"},
		{"similarity", 0.5},
		{"url_hash", "abc"},
		{"author", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Field(tt.name)
			if err != nil {
				t.Fatalf("Field(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Field(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := r.Field("colour"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("Field(colour) error = %v, want ErrFieldNotFound", err)
	}

	got, err := Result{}.Field("similarity")
	if err != nil || got != nil {
		t.Errorf("Field(similarity) on empty result = %v, %v", got, err)
	}
}

func TestResult_Record(t *testing.T) {
	rec := Result{URL: "u", Similarity: ptr(0.25), URLHash: "h"}.Record()
	if len(rec) != len(Fields) {
		t.Fatalf("Record() has %d columns, Fields has %d", len(rec), len(Fields))
	}
	if rec[0] != "u" || rec[9] != "0.25" || rec[10] != "h" {
		t.Errorf("Record() = %v", rec)
	}
}

func TestResultSet(t *testing.T) {
	rs := ResultSet{
		{Title: "a", URLHash: "1"},
		{Title: "b", URLHash: "2"},
		{Title: "c", URLHash: "3"},
	}

	if rs.Len() != 3 {
		t.Errorf("Len() = %d", rs.Len())
	}
	if r, ok := rs.Find("2"); !ok || r.Title != "b" {
		t.Errorf("Find(2) = %v, %v", r, ok)
	}
	if _, ok := rs.Find("9"); ok {
		t.Error("Find(9) should miss")
	}
	if got := rs.Top(2); len(got) != 2 || got[1].Title != "b" {
		t.Errorf("Top(2) = %v", got)
	}
	if got := rs.Top(10); len(got) != 3 {
		t.Errorf("Top(10) len = %d", len(got))
	}
	if got := rs.Top(-1); len(got) != 0 {
		t.Errorf("Top(-1) len = %d", len(got))
	}
}
