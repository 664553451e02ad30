package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kitbuilder587/nosible-go/internal/config"
	"github.com/kitbuilder587/nosible-go/internal/filter"
	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
	"github.com/kitbuilder587/nosible-go/internal/search"
	"github.com/kitbuilder587/nosible-go/pkg/nosible"
)

type SearchCmd struct {
	Question   string      `arg:"" help:"Search question."`
	N          int         `short:"n" default:"10" help:"Number of results (at most 100)."`
	SaveSearch string      `name:"save-search" type:"path" help:"Write the search as JSON, e.g. to build a batch file."`
	Query      QueryFlags  `embed:""`
	Filters    FilterFlags `embed:""`
	Export     ExportFlags `embed:""`
}

func (c *SearchCmd) Run(a *app) error {
	s := c.Query.search(c.Question, c.N, c.Filters)
	if c.SaveSearch != "" {
		if err := s.Save(c.SaveSearch); err != nil {
			return err
		}
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	rs, err := client.Search(a.ctx, s)
	if err != nil {
		return err
	}
	if err := c.Export.save(a, c.Question, rs); err != nil {
		return err
	}
	return a.printResults(rs)
}

type BulkCmd struct {
	Question string      `arg:"" help:"Search question."`
	N        int         `short:"n" default:"1000" help:"Number of results (1000 to 10000)."`
	Query    QueryFlags  `embed:""`
	Filters  FilterFlags `embed:""`
	Export   ExportFlags `embed:""`
}

func (c *BulkCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	rs, err := client.BulkSearch(a.ctx, c.Query.search(c.Question, c.N, c.Filters))
	if err != nil {
		return err
	}
	if err := c.Export.save(a, c.Question, rs); err != nil {
		return err
	}
	return a.printResults(rs)
}

type BatchCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON file with an array of searches or a single saved search."`
}

func (c *BatchCmd) Run(a *app) error {
	searches, err := search.LoadSearches(c.File)
	if err != nil {
		// файл от --save-search содержит один объект
		single, serr := search.LoadSearch(c.File)
		if serr != nil {
			return err
		}
		searches = []search.Search{single}
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	outcomes := client.Searches(a.ctx, searches)
	if err := a.printOutcomes(outcomes); err != nil {
		return err
	}

	logger := config.LoggerFromContext(a.ctx)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			logger.Warn("search failed", zap.String("question", o.Search.Question), zap.Error(o.Err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d searches failed", failed, len(outcomes))
	}
	return nil
}

type SimilarCmd struct {
	Question string `arg:"" help:"Question of the original search."`
	URLHash  string `arg:"" name:"url-hash" help:"Hash of the result to find similar documents for."`
	N        int    `short:"n" default:"10" help:"Number of results (at most 100)."`
}

func (c *SimilarCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	rs, err := client.Search(a.ctx, nosible.Search{Question: c.Question, NResults: nosible.MaxResults})
	if err != nil {
		return err
	}
	r, ok := rs.Find(c.URLHash)
	if !ok {
		return fmt.Errorf("no result with hash %q for %q", c.URLHash, c.Question)
	}

	similar, err := client.Similar(a.ctx, r, nosible.Search{NResults: c.N})
	if err != nil {
		return err
	}
	return a.printResults(similar)
}

type VisitCmd struct {
	URL     string `arg:"" help:"URL to visit."`
	Render  bool   `help:"Render JavaScript before extraction."`
	Recrawl bool   `help:"Force a fresh crawl."`
}

func (c *VisitCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	page, err := client.Visit(a.ctx, nosible.VisitRequest{URL: c.URL, Render: c.Render, Recrawl: c.Recrawl})
	if err != nil {
		return err
	}
	if a.cli.JSON {
		return a.printJSON(page)
	}
	return a.println(page.FullText)
}

type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	v, err := client.Version(a.ctx)
	if err != nil {
		return err
	}
	return a.println(v)
}

type PreflightCmd struct {
	URL string `arg:"" help:"URL to check."`
}

func (c *PreflightCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	doc, err := client.Preflight(a.ctx, c.URL)
	if err != nil {
		return err
	}
	return a.println(doc)
}

type IndexedCmd struct {
	URL string `arg:"" help:"URL to check."`
}

func (c *IndexedCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	indexed := client.Indexed(a.ctx, c.URL)
	if a.cli.JSON {
		return a.printJSON(map[string]any{"url": c.URL, "indexed": indexed})
	}
	if indexed {
		return a.println("indexed")
	}
	return a.println("not indexed")
}

type LimitsCmd struct {
	Plan string `help:"Plan to mark as current. Defaults to the plan of the API key."`
}

func (c *LimitsCmd) Run(a *app) error {
	plan := ratelimit.Plan(c.Plan)
	if plan == "" {
		key := a.cli.APIKey
		if key == "" {
			key = os.Getenv("NOSIBLE_API_KEY")
		}
		if p, err := ratelimit.PlanFromAPIKey(key); err == nil {
			plan = p
		}
	} else if !plan.IsValid() {
		return fmt.Errorf("%w: %q", ratelimit.ErrInvalidPlan, c.Plan)
	}

	if a.cli.JSON {
		out := make(map[string][]ratelimit.Summary, len(ratelimit.Plans))
		for _, p := range ratelimit.Plans {
			rows, err := ratelimit.Summarize(p)
			if err != nil {
				return err
			}
			out[p.DisplayName()] = rows
		}
		return a.printJSON(out)
	}
	return a.println(ratelimit.Table(plan))
}

type FilterCmd struct {
	Filters FilterFlags `embed:""`
}

func (c *FilterCmd) Run(a *app) error {
	validator, err := filter.NewSQLiteValidator(a.ctx)
	if err != nil {
		return err
	}
	defer validator.Close()

	sql, err := filter.NewBuilder(validator, a.logger).Build(a.ctx, c.Filters.Params())
	if err != nil {
		return err
	}
	return a.println(sql)
}

type ArchiveCmd struct {
	List   ArchiveListCmd   `cmd:"" help:"List archived questions."`
	Show   ArchiveShowCmd   `cmd:"" help:"Show archived results for a question."`
	Delete ArchiveDeleteCmd `cmd:"" help:"Delete archived results for a question."`
}

type ArchiveListCmd struct {
	Limit int `default:"20" help:"Maximum number of questions."`
}

func (c *ArchiveListCmd) Run(a *app) error {
	repo, err := a.archive()
	if err != nil {
		return err
	}
	qs, err := repo.Questions(a.ctx, c.Limit)
	if err != nil {
		return err
	}
	if a.cli.JSON {
		return a.printJSON(qs)
	}
	for _, q := range qs {
		if _, err := fmt.Fprintf(a.out, "%s  %4d  %s\n", q.SavedAt.Format("2006-01-02 15:04"), q.Results, q.Question); err != nil {
			return err
		}
	}
	return nil
}

type ArchiveShowCmd struct {
	Question string `arg:"" help:"Archived question."`
	N        int    `short:"n" default:"100" help:"Number of results."`
}

func (c *ArchiveShowCmd) Run(a *app) error {
	repo, err := a.archive()
	if err != nil {
		return err
	}
	rs, err := repo.ListByQuestion(a.ctx, c.Question, c.N)
	if err != nil {
		return err
	}
	return a.printResults(rs)
}

type ArchiveDeleteCmd struct {
	Question string `arg:"" help:"Archived question."`
}

func (c *ArchiveDeleteCmd) Run(a *app) error {
	repo, err := a.archive()
	if err != nil {
		return err
	}
	return repo.DeleteQuestion(a.ctx, c.Question)
}
