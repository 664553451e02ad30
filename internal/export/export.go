package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/parquet-go/parquet-go"

	"github.com/kitbuilder587/nosible-go/internal/search"
)

var (
	ErrUnknownFormat    = errors.New("unknown export format")
	ErrInvalidTableName = errors.New("invalid table name")
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
)

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Save writes rs to path in the format implied by its extension.
func Save(ctx context.Context, path string, rs search.ResultSet) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return WriteJSON(path, rs)
	case FormatCSV:
		return WriteCSV(path, rs)
	case FormatParquet:
		return WriteParquet(path, rs)
	default:
		return WriteSQLite(ctx, path, "results", rs)
	}
}

// Load reads a file written by Save. SQLite is read from the results table.
func Load(ctx context.Context, path string) (search.ResultSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return ReadJSON(path)
	case FormatCSV:
		return ReadCSV(path)
	case FormatParquet:
		return ReadParquet(path)
	default:
		return ReadSQLite(ctx, path, "results")
	}
}

func WriteJSON(path string, rs search.ResultSet) error {
	if rs == nil {
		rs = search.ResultSet{}
	}
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func ReadJSON(path string) (search.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var rs search.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return rs, nil
}

// WriteCSV writes a header of search.Fields and one row per result.
func WriteCSV(path string, rs search.ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(search.Fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rs {
		if err := w.Write(r.Record()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func ReadCSV(path string) (search.ResultSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return search.ResultSet{}, nil
	}

	header := records[0]
	out := make(search.ResultSet, 0, len(records)-1)
	for _, rec := range records[1:] {
		r, err := fromRecord(header, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func WriteParquet(path string, rs search.ResultSet) error {
	if err := parquet.WriteFile(path, []search.Result(rs)); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}

func ReadParquet(path string) (search.ResultSet, error) {
	rows, err := parquet.ReadFile[search.Result](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return search.ResultSet(rows), nil
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// WriteSQLite replaces table in the database at path with rs.
func WriteSQLite(ctx context.Context, path, table string, rs search.ResultSet) error {
	if !tableNameRe.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		"DROP TABLE IF EXISTS " + table,
		`CREATE TABLE ` + table + ` (
			url TEXT, title TEXT, description TEXT, netloc TEXT,
			published TEXT, visited TEXT, author TEXT, content TEXT,
			language TEXT, similarity REAL, url_hash TEXT
		)`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("prepare table: %w", err)
		}
	}

	insert, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" ("+strings.Join(search.Fields, ", ")+
		") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for _, r := range rs {
		var sim any
		if r.Similarity != nil {
			sim = *r.Similarity
		}
		if _, err := insert.ExecContext(ctx, r.URL, r.Title, r.Description, r.Netloc, r.Published,
			r.Visited, r.Author, r.Content, r.Language, sim, r.URLHash); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func ReadSQLite(ctx context.Context, path, table string) (search.ResultSet, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT "+strings.Join(search.Fields, ", ")+" FROM "+table+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := search.ResultSet{}
	for rows.Next() {
		var r search.Result
		var sim sql.NullFloat64
		if err := rows.Scan(&r.URL, &r.Title, &r.Description, &r.Netloc, &r.Published, &r.Visited,
			&r.Author, &r.Content, &r.Language, &sim, &r.URLHash); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if sim.Valid {
			v := sim.Float64
			r.Similarity = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
