package main

import (
	"encoding/json"
	"fmt"

	"github.com/kitbuilder587/nosible-go/internal/search"
	"github.com/kitbuilder587/nosible-go/pkg/nosible"
)

func (a *app) println(v any) error {
	_, err := fmt.Fprintln(a.out, v)
	return err
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.println(string(data))
}

func (a *app) printResults(rs search.ResultSet) error {
	if a.cli.JSON {
		if rs == nil {
			rs = search.ResultSet{}
		}
		return a.printJSON(rs)
	}
	if len(rs) == 0 {
		return a.println("no results")
	}
	return a.println(rs.String())
}

type outcomeJSON struct {
	Question string           `json:"question"`
	Results  search.ResultSet `json:"results,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (a *app) printOutcomes(outcomes []nosible.SearchOutcome) error {
	if a.cli.JSON {
		out := make([]outcomeJSON, 0, len(outcomes))
		for _, o := range outcomes {
			row := outcomeJSON{Question: o.Search.Question, Results: o.Results}
			if o.Err != nil {
				row.Error = o.Err.Error()
			}
			out = append(out, row)
		}
		return a.printJSON(out)
	}

	for _, o := range outcomes {
		if _, err := fmt.Fprintf(a.out, "== %s\n", o.Search.Question); err != nil {
			return err
		}
		if o.Err != nil {
			if err := a.println("error: " + o.Err.Error()); err != nil {
				return err
			}
			continue
		}
		if err := a.printResults(o.Results); err != nil {
			return err
		}
	}
	return nil
}
