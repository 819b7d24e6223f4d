package agenda

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"onda/internal/adapters/storage"
	domain "onda/internal/domain/agenda"
)

const selectColumns = `SELECT id, titulo, descricao, data_evento, COALESCE(hora_inicio, ''), COALESCE(hora_fim, ''),
	tipo_evento, COALESCE(criado_por, ''), created_at, updated_at FROM eventos_agenda`

// SQLStore implements Store on the eventos_agenda table.
type SQLStore struct {
	db storage.SQLDB
}

// Compile-time check that *SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a new SQLStore.
// PRE: db is a valid, open database connection with migrations applied
// POST: store is ready for use
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Save inserts or updates an agenda event.
// PRE: e is a valid Event (Validate() returns nil)
// POST: event is persisted; created_at and criado_por keep their first values
func (s *SQLStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx, storage.Rebind(s.db,
		`INSERT INTO eventos_agenda (id, titulo, descricao, data_evento, hora_inicio, hora_fim, tipo_evento, criado_por, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   titulo=excluded.titulo, descricao=excluded.descricao, data_evento=excluded.data_evento,
		   hora_inicio=excluded.hora_inicio, hora_fim=excluded.hora_fim, tipo_evento=excluded.tipo_evento,
		   updated_at=excluded.updated_at`),
		e.ID, e.Titulo, e.Descricao, e.DataEvento,
		nullable(e.HoraInicio), nullable(e.HoraFim),
		e.TipoEvento, nullable(e.CriadoPor),
		e.CreatedAt.UTC().Format(time.RFC3339), e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetByID retrieves an event by ID.
// PRE: id is non-empty
// POST: returns the event or ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, storage.Rebind(s.db, selectColumns+" WHERE id = ?"), id)
	e, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, ErrNotFound
	}
	return e, err
}

// List returns events ordered by date then start time. A non-empty month (YYYY-MM) narrows the result.
// PRE: month is empty or passes domain.ParseMonth
// POST: events without a start time come first on their day
func (s *SQLStore) List(ctx context.Context, month string) ([]domain.Event, error) {
	query := selectColumns
	var args []any
	if month != "" {
		query += " WHERE data_evento >= ? AND data_evento <= ?"
		args = append(args, month+"-01", month+"-31")
	}
	query += " ORDER BY data_evento ASC, COALESCE(hora_inicio, '') ASC, titulo ASC"

	rows, err := s.db.QueryContext(ctx, storage.Rebind(s.db, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Delete removes an event by ID.
// PRE: id is non-empty
// POST: event is removed; ErrNotFound when absent
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, storage.Rebind(s.db, `DELETE FROM eventos_agenda WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of events.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM eventos_agenda").Scan(&n)
	return n, err
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var createdAt, updatedAt string
	if err := scan(&e.ID, &e.Titulo, &e.Descricao, &e.DataEvento, &e.HoraInicio, &e.HoraFim,
		&e.TipoEvento, &e.CriadoPor, &createdAt, &updatedAt); err != nil {
		return domain.Event{}, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
