package filter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func newTestValidator(t *testing.T) *SQLiteValidator {
	t.Helper()
	v, err := NewSQLiteValidator(context.Background())
	if err != nil {
		t.Fatalf("NewSQLiteValidator() error = %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestSQLiteValidator_Validate(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"constant", "SELECT 1", true},
		{"missing table", "SELECT * FROM missing_table", false},
		{"engine table", "SELECT loc FROM engine", true},
		{"unknown column", "SELECT loc FROM engine WHERE colour = 'red'", false},
		{"trailing semicolon", "SELECT loc FROM engine;", true},
		{"syntax error", "SELECT loc FROM engine WHERE", false},
		{"not a select", "DELETE FROM engine", false},
		{"stacked statements", "SELECT 1; DROP TABLE engine", false},
		{"semicolon in literal", "SELECT loc FROM engine WHERE company_1 IN ('Foo; Inc')", true},
		{"escaped quote and semicolon", "SELECT loc FROM engine WHERE netloc = 'it''s;'", true},
		{"stacked after literal", "SELECT loc FROM engine WHERE netloc = 'a;b'; DROP TABLE engine", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Validate(context.Background(), tt.query); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSQLiteValidator_GeneratedFiltersAreValid(t *testing.T) {
	v := newTestValidator(t)

	params := []Params{
		{},
		{PublishStart: "2024-01-01", PublishEnd: "2024-06-01", VisitedEnd: "2025-01-01"},
		{Certain: Bool(true), IncludeNetlocs: []string{"example.com"}, ExcludeNetlocs: []string{"www.spam.net"}},
		{IncludeCompanies: []string{"/m/07gyp7"}, ExcludeCompanies: []string{"/m/0k8z"}},
		{IncludeLanguages: []string{"en"}, ExcludeLanguages: []string{"fr", "de"}},
		{IncludeDocs: []string{"ENNmqkF1mGNhVhvhmbUEs4U2"}, ExcludeDocs: []string{"x'y"}},
		{IncludeCompanies: []string{"Foo; Inc"}, ExcludeDocs: []string{"a;b", "c';d"}},
	}

	for i, p := range params {
		query, err := Format(p)
		if err != nil {
			t.Fatalf("Format() #%d error = %v", i, err)
		}
		if !v.Validate(context.Background(), query) {
			t.Errorf("generated filter #%d is invalid: %s", i, query)
		}
	}
}

func TestSQLiteValidator_ReadOnly(t *testing.T) {
	v := newTestValidator(t)

	// INSERT не начинается с SELECT, но проверим и сам pragma
	if _, err := v.conn.ExecContext(context.Background(), "INSERT INTO engine (loc) VALUES ('x')"); err == nil {
		t.Error("validator connection must be read only")
	}
}

func TestSQLiteValidator_Concurrent(t *testing.T) {
	v := newTestValidator(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !v.Validate(context.Background(), "SELECT loc FROM engine WHERE netloc IN ('a.com')") {
				t.Error("Validate() = false, want true")
			}
		}()
	}
	wg.Wait()
}

func TestSQLiteValidator_Closed(t *testing.T) {
	v, err := NewSQLiteValidator(context.Background())
	if err != nil {
		t.Fatalf("NewSQLiteValidator() error = %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := v.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if v.Validate(context.Background(), "SELECT 1") {
		t.Error("closed validator must reject everything")
	}
}

type stubValidator struct{ ok bool }

func (s stubValidator) Validate(ctx context.Context, query string) bool { return s.ok }

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(newTestValidator(t), zap.NewNop())

	got, err := b.Build(context.Background(), Params{IncludeNetlocs: []string{"example.com"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != "SELECT loc FROM engine WHERE netloc IN ('example.com', 'www.example.com')" {
		t.Errorf("Build() = %q", got)
	}
}

func TestBuilder_InvalidFilter(t *testing.T) {
	b := NewBuilder(stubValidator{ok: false}, nil)

	_, err := b.Build(context.Background(), Params{})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("Build() error = %v, want ErrInvalidFilter", err)
	}
}

func TestBuilder_CardinalityBeforeValidation(t *testing.T) {
	b := NewBuilder(stubValidator{ok: true}, nil)

	_, err := b.Build(context.Background(), Params{ExcludeLanguages: items(51)})
	if !errors.Is(err, ErrTooManyItems) {
		t.Errorf("Build() error = %v, want ErrTooManyItems", err)
	}
}

func TestStripLiterals(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"a = 'x;y'", "a = ''"},
		{"a = 'it''s' AND b = 'c'", "a = '' AND b = ''"},
		{"a = 'x'; DROP", "a = ''; DROP"},
		{"a = 'open;", "a = '"},
	}

	for _, tt := range tests {
		if got := stripLiterals(tt.in); got != tt.want {
			t.Errorf("stripLiterals(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
