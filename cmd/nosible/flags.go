package main

import (
	"fmt"

	"github.com/kitbuilder587/nosible-go/internal/export"
	"github.com/kitbuilder587/nosible-go/internal/filter"
	"github.com/kitbuilder587/nosible-go/internal/search"
)

// FilterFlags are the structured search filters.
type FilterFlags struct {
	PublishStart     string   `name:"publish-start" help:"Earliest publish date (YYYY-MM-DD)." group:"Filters"`
	PublishEnd       string   `name:"publish-end" help:"Latest publish date (YYYY-MM-DD)." group:"Filters"`
	VisitedStart     string   `name:"visited-start" help:"Earliest crawl date (YYYY-MM-DD)." group:"Filters"`
	VisitedEnd       string   `name:"visited-end" help:"Latest crawl date (YYYY-MM-DD)." group:"Filters"`
	Certain          string   `enum:"any,true,false" default:"any" help:"Filter on whether the publish date is certain (true or false)." group:"Filters"`
	IncludeNetlocs   []string `name:"include-netlocs" help:"Only these domains." group:"Filters"`
	ExcludeNetlocs   []string `name:"exclude-netlocs" help:"Skip these domains." group:"Filters"`
	IncludeLanguages []string `name:"include-languages" help:"Only these language codes." group:"Filters"`
	ExcludeLanguages []string `name:"exclude-languages" help:"Skip these language codes." group:"Filters"`
	IncludeCompanies []string `name:"include-companies" help:"Only documents about these company ids." group:"Filters"`
	ExcludeCompanies []string `name:"exclude-companies" help:"Skip documents about these company ids." group:"Filters"`
	IncludeDocs      []string `name:"include-docs" help:"Only these document hashes." group:"Filters"`
	ExcludeDocs      []string `name:"exclude-docs" help:"Skip these document hashes." group:"Filters"`
}

func (f FilterFlags) Params() filter.Params {
	var certain *bool
	if f.Certain == "true" || f.Certain == "false" {
		certain = filter.Bool(f.Certain == "true")
	}
	return filter.Params{
		PublishStart:     f.PublishStart,
		PublishEnd:       f.PublishEnd,
		VisitedStart:     f.VisitedStart,
		VisitedEnd:       f.VisitedEnd,
		Certain:          certain,
		IncludeNetlocs:   f.IncludeNetlocs,
		ExcludeNetlocs:   f.ExcludeNetlocs,
		IncludeLanguages: f.IncludeLanguages,
		ExcludeLanguages: f.ExcludeLanguages,
		IncludeCompanies: f.IncludeCompanies,
		ExcludeCompanies: f.ExcludeCompanies,
		IncludeDocs:      f.IncludeDocs,
		ExcludeDocs:      f.ExcludeDocs,
	}
}

// QueryFlags are the search options shared by search and bulk.
type QueryFlags struct {
	Expansions []string `help:"Query expansions to search alongside the question."`
	AutoExpand bool     `name:"auto-expand" help:"Generate expansions with the LLM (LLM_API_KEY)."`
	SQL        string   `name:"sql" help:"Raw SQL filter. Overrides the filter flags."`
	Algorithm  string   `default:"hybrid-2" help:"Search algorithm."`
	Probes     int      `default:"30" help:"Number of index partitions to probe."`
	Contextify int      `default:"128" help:"Context window around matches."`
}

func (q QueryFlags) search(question string, n int, f FilterFlags) search.Search {
	return search.Search{
		Question:               question,
		Expansions:             q.Expansions,
		SQLFilter:              q.SQL,
		NResults:               n,
		NProbes:                q.Probes,
		NContextify:            q.Contextify,
		Algorithm:              q.Algorithm,
		AutogenerateExpansions: q.AutoExpand,
		Params:                 f.Params(),
	}
}

// ExportFlags write results to files or the archive.
type ExportFlags struct {
	JSONFile string `name:"json-file" help:"Write results as JSON." type:"path" group:"Export"`
	CSV      string `help:"Write results as CSV." type:"path" group:"Export"`
	Parquet  string `help:"Write results as Parquet." type:"path" group:"Export"`
	SQLite   string `name:"sqlite" help:"Write results to a SQLite database (table results)." type:"path" group:"Export"`
	Archive  bool   `help:"Save results to the Postgres archive (DATABASE_URL)." group:"Export"`
}

func (e ExportFlags) save(a *app, question string, rs search.ResultSet) error {
	writes := []struct {
		path  string
		write func() error
	}{
		{e.JSONFile, func() error { return export.WriteJSON(e.JSONFile, rs) }},
		{e.CSV, func() error { return export.WriteCSV(e.CSV, rs) }},
		{e.Parquet, func() error { return export.WriteParquet(e.Parquet, rs) }},
		{e.SQLite, func() error { return export.WriteSQLite(a.ctx, e.SQLite, "results", rs) }},
	}
	for _, w := range writes {
		if w.path == "" {
			continue
		}
		if err := w.write(); err != nil {
			return fmt.Errorf("export %s: %w", w.path, err)
		}
	}

	if e.Archive {
		repo, err := a.archive()
		if err != nil {
			return err
		}
		if _, err := repo.SaveResults(a.ctx, question, rs); err != nil {
			return fmt.Errorf("archive results: %w", err)
		}
	}
	return nil
}
