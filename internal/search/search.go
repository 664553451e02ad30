package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kitbuilder587/nosible-go/internal/filter"
)

var (
	ErrEmptyQuestion = errors.New("question is required")
	ErrFieldNotFound = errors.New("field not found in result")
	ErrNoURL         = errors.New("cannot find similar results without a URL")
)

const (
	DefaultNResults    = 100
	DefaultNProbes     = 30
	DefaultNContextify = 128
	DefaultAlgorithm   = "hybrid-2"
)

// Searcher runs a single fast search.
type Searcher interface {
	Search(ctx context.Context, s Search) (ResultSet, error)
}

// Search is one query with its options. Filter fields are flattened into the
// JSON form.
type Search struct {
	Question               string   `json:"question"`
	Expansions             []string `json:"expansions,omitempty"`
	SQLFilter              string   `json:"sql_filter,omitempty"`
	NResults               int      `json:"n_results,omitempty"`
	NProbes                int      `json:"n_probes,omitempty"`
	NContextify            int      `json:"n_contextify,omitempty"`
	Algorithm              string   `json:"algorithm,omitempty"`
	AutogenerateExpansions bool     `json:"autogenerate_expansions,omitempty"`

	filter.Params
}

// WithDefaults fills zero numeric options and the algorithm.
func (s Search) WithDefaults() Search {
	if s.NResults == 0 {
		s.NResults = DefaultNResults
	}
	if s.NProbes == 0 {
		s.NProbes = DefaultNProbes
	}
	if s.NContextify == 0 {
		s.NContextify = DefaultNContextify
	}
	if s.Algorithm == "" {
		s.Algorithm = DefaultAlgorithm
	}
	return s
}

func (s Search) Validate() error {
	if s.Question == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// Save writes s as indented JSON.
func (s Search) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal search: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write search: %w", err)
	}
	return nil
}

func LoadSearch(path string) (Search, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Search{}, fmt.Errorf("read search: %w", err)
	}
	var s Search
	if err := json.Unmarshal(data, &s); err != nil {
		return Search{}, fmt.Errorf("unmarshal search: %w", err)
	}
	return s, nil
}

// LoadSearches reads a JSON array of searches, e.g. a saved batch.
func LoadSearches(path string) ([]Search, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read searches: %w", err)
	}
	var out []Search
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal searches: %w", err)
	}
	return out, nil
}
