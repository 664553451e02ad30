package nosible

import (
	"errors"

	"github.com/kitbuilder587/nosible-go/internal/api"
	"github.com/kitbuilder587/nosible-go/internal/filter"
	"github.com/kitbuilder587/nosible-go/internal/llm"
	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
	"github.com/kitbuilder587/nosible-go/internal/search"
)

// Sentinel errors re-exported from the internal packages.
// Use errors.Is() to check.
var (
	ErrInvalidAPIKey  = api.ErrInvalidAPIKey
	ErrAPIKeyTooShort = api.ErrAPIKeyTooShort
	ErrBadRequest     = api.ErrBadRequest
	ErrRateLimited    = api.ErrRateLimited
	ErrServerError    = api.ErrServerError
	ErrRestarting     = api.ErrRestarting
	ErrOverloaded     = api.ErrOverloaded

	ErrInvalidPlan   = ratelimit.ErrInvalidPlan
	ErrTooManyItems  = filter.ErrTooManyItems
	ErrInvalidFilter = filter.ErrInvalidFilter
	ErrEmptyQuestion = search.ErrEmptyQuestion
	ErrNoURL         = search.ErrNoURL

	ErrMissingLLMKey     = llm.ErrMissingAPIKey
	ErrInvalidExpansions = llm.ErrInvalidExpansions
	ErrInvalidSentiment  = llm.ErrInvalidSentiment
)

var (
	ErrMissingAPIKey    = errors.New("API key is required")
	ErrTooManyResults   = errors.New("search can not have more than 100 results, use bulk search instead")
	ErrInvalidNResults  = errors.New("n_results must be positive")
	ErrBulkResultsRange = errors.New("bulk search must request between 1000 and 10000 results")
	ErrMissingURL       = errors.New("URL must be provided")
	ErrURLNotFound      = errors.New("the URL could not be found")
	ErrNoResponse       = errors.New("no 'response' key in server response")
	ErrInvalidResponse  = errors.New("invalid JSON response from server")
	ErrMissingDownload  = errors.New("bulk search response has no download link")
	ErrResultsNotReady  = errors.New("results were not retrieved from NOSIBLE")
	ErrEmptyContent     = errors.New("result has no content")
	ErrClosed           = errors.New("client is closed")

	ErrInvalidToken      = errors.New("invalid or tampered results token")
	ErrInvalidDecryptKey = errors.New("invalid results decryption key")
)
