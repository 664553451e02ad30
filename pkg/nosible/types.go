package nosible

import (
	"github.com/kitbuilder587/nosible-go/internal/cache"
	"github.com/kitbuilder587/nosible-go/internal/filter"
	"github.com/kitbuilder587/nosible-go/internal/llm"
	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
	"github.com/kitbuilder587/nosible-go/internal/retry"
	"github.com/kitbuilder587/nosible-go/internal/search"
)

type (
	Search       = search.Search
	Result       = search.Result
	ResultSet    = search.ResultSet
	VisitRequest = search.VisitRequest
	WebPageData  = search.WebPageData
	Params       = filter.Params
	Plan         = ratelimit.Plan
	RetryPolicy  = retry.Policy
	Cache        = cache.Cache
	LLMClient    = llm.Client
)

// SearchOutcome is the result of one search in a batch.
type SearchOutcome struct {
	Search  Search
	Results ResultSet
	Err     error
}

// Bool is a helper for Params.Certain.
func Bool(v bool) *bool { return filter.Bool(v) }
