package search

import (
	"fmt"
	"strings"
)

// Result is a single search hit.
type Result struct {
	URL         string   `json:"url,omitempty" parquet:"url"`
	Title       string   `json:"title,omitempty" parquet:"title"`
	Description string   `json:"description,omitempty" parquet:"description"`
	Netloc      string   `json:"netloc,omitempty" parquet:"netloc"`
	Published   string   `json:"published,omitempty" parquet:"published"`
	Visited     string   `json:"visited,omitempty" parquet:"visited"`
	Author      string   `json:"author,omitempty" parquet:"author"`
	Content     string   `json:"content,omitempty" parquet:"content"`
	Language    string   `json:"language,omitempty" parquet:"language"`
	Similarity  *float64 `json:"similarity,omitempty" parquet:"similarity"`
	URLHash     string   `json:"url_hash,omitempty" parquet:"url_hash"`
}

// Fields lists result field names in column order.
var Fields = []string{
	"url", "title", "description", "netloc", "published", "visited",
	"author", "content", "language", "similarity", "url_hash",
}

// String is a one-line summary: right-aligned similarity and the title.
func (r Result) String() string {
	sim := "N/A"
	if r.Similarity != nil {
		sim = fmt.Sprintf("%.2f", *r.Similarity)
	}
	title := r.Title
	if title == "" {
		title = "No Title"
	}
	return fmt.Sprintf("%6s | %s", sim, title)
}

// Field returns a field by its JSON name. Similarity is a float64 or nil.
func (r Result) Field(name string) (any, error) {
	switch strings.ToLower(name) {
	case "url":
		return r.URL, nil
	case "title":
		return r.Title, nil
	case "description":
		return r.Description, nil
	case "netloc":
		return r.Netloc, nil
	case "published":
		return r.Published, nil
	case "visited":
		return r.Visited, nil
	case "author":
		return r.Author, nil
	case "content":
		return r.Content, nil
	case "language":
		return r.Language, nil
	case "similarity":
		if r.Similarity == nil {
			return nil, nil
		}
		return *r.Similarity, nil
	case "url_hash":
		return r.URLHash, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
}

// Record returns the result as strings in Fields order.
func (r Result) Record() []string {
	sim := ""
	if r.Similarity != nil {
		sim = fmt.Sprintf("%g", *r.Similarity)
	}
	return []string{
		r.URL, r.Title, r.Description, r.Netloc, r.Published, r.Visited,
		r.Author, r.Content, r.Language, sim, r.URLHash,
	}
}

type ResultSet []Result

func (rs ResultSet) Len() int { return len(rs) }

// Find returns the result with urlHash.
func (rs ResultSet) Find(urlHash string) (Result, bool) {
	for _, r := range rs {
		if r.URLHash == urlHash {
			return r, true
		}
	}
	return Result{}, false
}

// Top returns at most n first results.
func (rs ResultSet) Top(n int) ResultSet {
	if n < 0 {
		n = 0
	}
	if n > len(rs) {
		n = len(rs)
	}
	return rs[:n]
}

func (rs ResultSet) String() string {
	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%3d %s", i, r.String())
	}
	return b.String()
}
