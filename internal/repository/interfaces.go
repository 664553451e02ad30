package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kitbuilder587/nosible-go/internal/search"
)

var (
	ErrEmptyQuestion    = errors.New("question is required")
	ErrDuplicateResult  = errors.New("result already archived")
	ErrQuestionNotFound = errors.New("question not found")
	ErrResultNotFound   = errors.New("result not found")
)

// ArchivedQuestion - сводка по сохранённому вопросу
type ArchivedQuestion struct {
	Question string
	Results  int
	SavedAt  time.Time
}

// ResultArchive хранит результаты поиска по вопросу.
type ResultArchive interface {
	SaveResults(ctx context.Context, question string, rs search.ResultSet) (int, error)
	ListByQuestion(ctx context.Context, question string, limit int) (search.ResultSet, error)
	Questions(ctx context.Context, limit int) ([]ArchivedQuestion, error)
	DeleteQuestion(ctx context.Context, question string) error
	GetByHash(ctx context.Context, question, urlHash string) (*search.Result, error)
}
