package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kitbuilder587/nosible-go/internal/repository"
	"github.com/kitbuilder587/nosible-go/internal/search"
)

type ArchiveRepo struct {
	db *DB
}

func NewArchiveRepo(db *DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

// SaveResults stores rs under question in rank order. A result already saved
// for the question (same url_hash) is overwritten.
func (r *ArchiveRepo) SaveResults(ctx context.Context, question string, rs search.ResultSet) (int, error) {
	if question == "" {
		return 0, repository.ErrEmptyQuestion
	}

	query := `
		INSERT INTO search_results (question, rank, url, url_hash, title, description, netloc,
			published, visited, author, content, language, similarity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (question, url_hash) DO UPDATE SET
			rank = EXCLUDED.rank,
			url = EXCLUDED.url,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			netloc = EXCLUDED.netloc,
			published = EXCLUDED.published,
			visited = EXCLUDED.visited,
			author = EXCLUDED.author,
			content = EXCLUDED.content,
			language = EXCLUDED.language,
			similarity = EXCLUDED.similarity,
			saved_at = NOW()
	`

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, res := range rs {
		batch.Queue(query, question, i, res.URL, hashOf(res), res.Title, res.Description,
			res.Netloc, res.Published, res.Visited, res.Author, res.Content, res.Language, res.Similarity)
	}

	br := tx.SendBatch(ctx, batch)
	for range rs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if isDuplicateError(err) {
				return 0, repository.ErrDuplicateResult
			}
			return 0, fmt.Errorf("save result: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rs), nil
}

func (r *ArchiveRepo) ListByQuestion(ctx context.Context, question string, limit int) (search.ResultSet, error) {
	query := `
		SELECT url, title, description, netloc, published, visited, author, content,
			language, similarity, url_hash
		FROM search_results
		WHERE question = $1
		ORDER BY rank
		LIMIT $2
	`

	if limit <= 0 {
		limit = search.DefaultNResults
	}

	rows, err := r.db.Pool.Query(ctx, query, question, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := search.ResultSet{}
	for rows.Next() {
		var res search.Result
		err := rows.Scan(
			&res.URL,
			&res.Title,
			&res.Description,
			&res.Netloc,
			&res.Published,
			&res.Visited,
			&res.Author,
			&res.Content,
			&res.Language,
			&res.Similarity,
			&res.URLHash,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// Questions lists archived questions, most recently saved first.
func (r *ArchiveRepo) Questions(ctx context.Context, limit int) ([]repository.ArchivedQuestion, error) {
	query := `
		SELECT question, COUNT(*), MAX(saved_at)
		FROM search_results
		GROUP BY question
		ORDER BY MAX(saved_at) DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []repository.ArchivedQuestion
	for rows.Next() {
		var q repository.ArchivedQuestion
		var savedAt time.Time
		if err := rows.Scan(&q.Question, &q.Results, &savedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.SavedAt = savedAt
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *ArchiveRepo) DeleteQuestion(ctx context.Context, question string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM search_results WHERE question = $1`, question)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrQuestionNotFound
	}

	return nil
}

// GetByHash returns the archived result for question with urlHash.
func (r *ArchiveRepo) GetByHash(ctx context.Context, question, urlHash string) (*search.Result, error) {
	query := `
		SELECT url, title, description, netloc, published, visited, author, content,
			language, similarity, url_hash
		FROM search_results
		WHERE question = $1 AND url_hash = $2
	`

	var res search.Result
	err := r.db.Pool.QueryRow(ctx, query, question, urlHash).Scan(
		&res.URL,
		&res.Title,
		&res.Description,
		&res.Netloc,
		&res.Published,
		&res.Visited,
		&res.Author,
		&res.Content,
		&res.Language,
		&res.Similarity,
		&res.URLHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return &res, nil
}

func hashOf(r search.Result) string {
	if r.URLHash != "" {
		return r.URLHash
	}
	return r.URL
}

var _ repository.ResultArchive = (*ArchiveRepo)(nil)
