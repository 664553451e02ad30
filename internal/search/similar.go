package search

import (
	"context"
	"fmt"
	"slices"
)

// Similar searches for documents like r, using its title as the question and
// excluding r itself. base supplies options and filters. r's hash takes one
// exclude_docs slot unless base already excludes it, so base.ExcludeDocs has
// room for filter.MaxItems-1 other hashes.
func Similar(ctx context.Context, s Searcher, r Result, base Search) (ResultSet, error) {
	if r.URL == "" {
		return nil, ErrNoURL
	}

	q := base
	q.Question = r.Title
	q.Expansions = nil
	q.AutogenerateExpansions = false
	q.SQLFilter = ""
	if r.URLHash != "" && !slices.Contains(base.ExcludeDocs, r.URLHash) {
		q.ExcludeDocs = append(append([]string(nil), base.ExcludeDocs...), r.URLHash)
	}

	results, err := s.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find similar results for %q: %w", r.Title, err)
	}
	return results, nil
}
