package export

import (
	"fmt"
	"strconv"

	"github.com/kitbuilder587/nosible-go/internal/search"
)

// fromRecord maps a CSV row back onto a Result using the header names.
// Unknown columns are ignored.
func fromRecord(header, rec []string) (search.Result, error) {
	var r search.Result
	for i, name := range header {
		if i >= len(rec) {
			break
		}
		v := rec[i]
		switch name {
		case "url":
			r.URL = v
		case "title":
			r.Title = v
		case "description":
			r.Description = v
		case "netloc":
			r.Netloc = v
		case "published":
			r.Published = v
		case "visited":
			r.Visited = v
		case "author":
			r.Author = v
		case "content":
			r.Content = v
		case "language":
			r.Language = v
		case "similarity":
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return search.Result{}, fmt.Errorf("parse similarity %q: %w", v, err)
			}
			r.Similarity = &f
		case "url_hash":
			r.URLHash = v
		}
	}
	return r, nil
}
