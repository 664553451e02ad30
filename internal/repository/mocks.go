package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kitbuilder587/nosible-go/internal/search"
)

type archivedResult struct {
	rank   int
	result search.Result
}

type archivedSet struct {
	results map[string]archivedResult // key: url_hash
	savedAt time.Time
}

// MockResultArchive is an in-memory ResultArchive.
type MockResultArchive struct {
	mu        sync.RWMutex
	questions map[string]*archivedSet
	now       func() time.Time
}

func NewMockResultArchive() *MockResultArchive {
	return &MockResultArchive{
		questions: make(map[string]*archivedSet),
		now:       time.Now,
	}
}

func (m *MockResultArchive) SaveResults(ctx context.Context, question string, rs search.ResultSet) (int, error) {
	if question == "" {
		return 0, ErrEmptyQuestion
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.questions[question]
	if !ok {
		set = &archivedSet{results: make(map[string]archivedResult)}
		m.questions[question] = set
	}
	for i, r := range rs {
		key := r.URLHash
		if key == "" {
			key = r.URL
		}
		set.results[key] = archivedResult{rank: i, result: r}
	}
	set.savedAt = m.now()
	return len(rs), nil
}

func (m *MockResultArchive) ListByQuestion(ctx context.Context, question string, limit int) (search.ResultSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := search.ResultSet{}
	set, ok := m.questions[question]
	if !ok {
		return out, nil
	}

	items := make([]archivedResult, 0, len(set.results))
	for _, r := range set.results {
		items = append(items, r)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].rank < items[j].rank })

	if limit <= 0 {
		limit = search.DefaultNResults
	}
	for _, it := range items {
		if len(out) == limit {
			break
		}
		out = append(out, it.result)
	}
	return out, nil
}

func (m *MockResultArchive) Questions(ctx context.Context, limit int) ([]ArchivedQuestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ArchivedQuestion, 0, len(m.questions))
	for q, set := range m.questions {
		out = append(out, ArchivedQuestion{Question: q, Results: len(set.results), SavedAt: set.savedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockResultArchive) DeleteQuestion(ctx context.Context, question string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.questions[question]; !ok {
		return ErrQuestionNotFound
	}
	delete(m.questions, question)
	return nil
}

func (m *MockResultArchive) GetByHash(ctx context.Context, question, urlHash string) (*search.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.questions[question]
	if !ok {
		return nil, ErrResultNotFound
	}
	r, ok := set.results[urlHash]
	if !ok {
		return nil, ErrResultNotFound
	}
	res := r.result
	return &res, nil
}

var _ ResultArchive = (*MockResultArchive)(nil)
