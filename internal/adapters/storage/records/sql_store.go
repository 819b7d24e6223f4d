package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onda/internal/adapters/storage"
	"onda/internal/application/listutil"
	"onda/internal/domain/registration"
)

// SQLStore implements Store for one table using database/sql and sqlx scanning.
type SQLStore struct {
	db   storage.SQLDB
	form registration.Form
	now  func() time.Time
}

// Compile-time check that *SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store for the form's table.
// PRE: form.Columns include id, created_at and updated_at
func NewSQLStore(db storage.SQLDB, form registration.Form) *SQLStore {
	return &SQLStore{db: db, form: form, now: time.Now}
}

// Table returns the table the store reads.
func (s *SQLStore) Table() string {
	return s.form.Table
}

func quote(col string) string {
	return `"` + col + `"`
}

func (s *SQLStore) selectList() string {
	cols := make([]string, len(s.form.Columns))
	for i, c := range s.form.Columns {
		cols[i] = quote(c)
	}
	return strings.Join(cols, ", ")
}

// FetchAll returns every row, newest first.
// PRE: none
// POST: each record carries every column of the form; nil for SQL NULL
func (s *SQLStore) FetchAll(ctx context.Context) ([]listutil.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC", s.selectList(), s.form.Table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.form.Table, err)
	}
	defer rows.Close()

	var out []listutil.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.form.Table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.form.Table, err)
	}
	return out, nil
}

// Get returns one row by id.
// PRE: id is non-empty
// POST: returns ErrNotFound when the row does not exist
func (s *SQLStore) Get(ctx context.Context, id string) (listutil.Record, error) {
	query := storage.Rebind(s.db, fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", s.selectList(), s.form.Table))
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.form.Table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get %s: %w", s.form.Table, err)
		}
		return nil, ErrNotFound
	}
	return scanRecord(rows)
}

// Insert adds a row. The store assigns id, created_at and updated_at.
// PRE: rec holds writable columns only
// POST: returns the stored row
func (s *SQLStore) Insert(ctx context.Context, rec listutil.Record) (listutil.Record, error) {
	if len(rec) > 0 {
		if err := s.form.ValidateUpdate(rec); err != nil {
			return nil, err
		}
	}
	id := uuid.New().String()
	now := s.now().UTC().Format(time.RFC3339)

	cols := []string{quote(registration.ColumnID), quote(registration.ColumnCreatedAt), quote(registration.ColumnUpdatedAt)}
	args := []any{id, now, now}
	for _, k := range sortedKeys(rec) {
		cols = append(cols, quote(k))
		args = append(args, dbValue(rec[k]))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	query := storage.Rebind(s.db, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.form.Table, strings.Join(cols, ", "), placeholders))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert %s: %w", s.form.Table, err)
	}
	return s.Get(ctx, id)
}

// Update applies a partial update and refreshes updated_at. Last write wins.
// PRE: id is non-empty
// POST: returns the row as stored after the update; ErrNotFound when absent;
// validation errors wrap registration sentinels
func (s *SQLStore) Update(ctx context.Context, id string, partial map[string]any) (listutil.Record, error) {
	if err := s.form.ValidateUpdate(partial); err != nil {
		return nil, err
	}

	keys := sortedKeys(partial)
	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		sets = append(sets, quote(k)+" = ?")
		args = append(args, dbValue(partial[k]))
	}
	sets = append(sets, quote(registration.ColumnUpdatedAt)+" = ?")
	args = append(args, s.now().UTC().Format(time.RFC3339), id)

	query := storage.Rebind(s.db, fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.form.Table, strings.Join(sets, ", ")))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.form.Table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a row.
// PRE: id is non-empty
// POST: returns ErrNotFound when nothing was deleted
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	query := storage.Rebind(s.db, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.form.Table))
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.form.Table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of rows.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.form.Table).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count %s: %w", s.form.Table, err)
	}
	return n, nil
}

// scanRecord reads the current row into a record, converting driver byte slices to strings.
func scanRecord(rows *sql.Rows) (listutil.Record, error) {
	m := make(map[string]any)
	if err := sqlx.MapScan(rows, m); err != nil {
		return nil, err
	}
	for k, v := range m {
		switch t := v.(type) {
		case []byte:
			m[k] = string(t)
		case time.Time:
			m[k] = t.UTC().Format(time.RFC3339)
		}
	}
	return listutil.Record(m), nil
}

// dbValue converts decoded JSON values to driver-friendly ones. Whole floats become integers.
func dbValue(v any) any {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, _ := n.Float64()
		v = f
	}
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
