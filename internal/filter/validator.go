package filter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Validator checks that a filter statement is well formed.
type Validator interface {
	Validate(ctx context.Context, query string) bool
}

// engineColumns - все колонки, которые может упомянуть Format
var engineColumns = []string{
	"loc",
	"published",
	"visited",
	"certain",
	"netloc",
	"language",
	"company_1",
	"company_2",
	"company_3",
	"doc_hash",
}

// SQLiteValidator executes statements against an empty in-memory engine
// table. The connection is read only.
type SQLiteValidator struct {
	mu   sync.Mutex
	db   *sql.DB
	conn *sql.Conn
}

func NewSQLiteValidator(ctx context.Context) (*SQLiteValidator, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// каждое соединение :memory: - своя база, держим одно
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("acquire sqlite conn: %w", err)
	}

	ddl := "CREATE TABLE engine (" + strings.Join(engineColumns, ", ") + ")"
	for _, stmt := range []string{ddl, "PRAGMA query_only = ON"} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			conn.Close()
			db.Close()
			return nil, fmt.Errorf("prepare validator schema: %w", err)
		}
	}

	return &SQLiteValidator{db: db, conn: conn}, nil
}

// Validate reports whether query runs against the engine schema. Only a
// single SELECT statement is accepted.
func (v *SQLiteValidator) Validate(ctx context.Context, query string) bool {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if !strings.HasPrefix(strings.ToUpper(q), "SELECT") {
		return false
	}
	// ';' внутри строкового литерала не разделяет запросы
	if strings.Contains(stripLiterals(q), ";") {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.conn == nil {
		return false
	}

	rows, err := v.conn.QueryContext(ctx, q)
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
	}
	return rows.Err() == nil
}

func (v *SQLiteValidator) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.conn == nil {
		return nil
	}
	v.conn.Close()
	v.conn = nil
	return v.db.Close()
}

// stripLiterals drops the contents of single-quoted literals ('' is an
// escaped quote). An unterminated literal swallows the rest of the input,
// which SQLite then rejects on its own.
func stripLiterals(q string) string {
	var b strings.Builder
	in := false
	for i := 0; i < len(q); i++ {
		ch := q[i]
		switch {
		case ch == '\'' && in && i+1 < len(q) && q[i+1] == '\'':
			i++
		case ch == '\'':
			in = !in
			b.WriteByte(ch)
		case !in:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
