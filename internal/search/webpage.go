package search

import (
	"encoding/json"
	"fmt"
	"sort"
)

// VisitRequest - параметры visit
type VisitRequest struct {
	URL     string `json:"url"`
	HTML    string `json:"html"`
	Recrawl bool   `json:"recrawl"`
	Render  bool   `json:"render"`
}

// WebPageData is the structured page returned by visit. Sections whose shape
// the service does not pin down are kept as raw JSON.
type WebPageData struct {
	Companies  json.RawMessage `json:"companies,omitempty"`
	FullText   string          `json:"full_text,omitempty"`
	Languages  json.RawMessage `json:"languages,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Page       json.RawMessage `json:"page,omitempty"`
	Request    json.RawMessage `json:"request,omitempty"`
	Snippets   json.RawMessage `json:"snippets,omitempty"`
	Statistics json.RawMessage `json:"statistics,omitempty"`
	Structured json.RawMessage `json:"structured,omitempty"`
	URLTree    json.RawMessage `json:"url_tree,omitempty"`
}

type Snippet map[string]any

// SnippetList decodes snippets sent either as a list or as a map keyed by
// snippet id. Map entries are returned in key order.
func (w *WebPageData) SnippetList() ([]Snippet, error) {
	if len(w.Snippets) == 0 || string(w.Snippets) == "null" {
		return nil, nil
	}

	var list []Snippet
	if err := json.Unmarshal(w.Snippets, &list); err == nil {
		return list, nil
	}

	var byID map[string]Snippet
	if err := json.Unmarshal(w.Snippets, &byID); err != nil {
		return nil, fmt.Errorf("unmarshal snippets: %w", err)
	}
	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Snippet, 0, len(keys))
	for _, k := range keys {
		out = append(out, byID[k])
	}
	return out, nil
}

// Decode unmarshals one raw section into v.
func Decode(section json.RawMessage, v any) error {
	if len(section) == 0 {
		return nil
	}
	return json.Unmarshal(section, v)
}
