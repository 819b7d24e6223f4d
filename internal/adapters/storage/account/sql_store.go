package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"onda/internal/adapters/storage"
	domain "onda/internal/domain/account"
)

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

const selectColumns = "id, email, nome_completo, permissao, password_hash, primeiro_login, failed_logins, locked_until, created_at, updated_at"

// SQLStore implements Store on the usuarios table.
type SQLStore struct {
	db storage.SQLDB
}

// Compile-time check that *SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a new account store.
// PRE: db has migrations applied
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, storage.Rebind(s.db, "SELECT "+selectColumns+" FROM usuarios WHERE id = ?"), id)
	return scanOne(row)
}

// GetByEmail retrieves an Account by email, case-insensitively.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, storage.Rebind(s.db, "SELECT "+selectColumns+" FROM usuarios WHERE email = ?"), normalizeEmail(email))
	return scanOne(row)
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); email is stored lower-cased
func (s *SQLStore) Save(ctx context.Context, entity domain.Account) error {
	fields := []string{"id", "email", "nome_completo", "permissao", "password_hash", "primeiro_login", "failed_logins", "locked_until", "created_at", "updated_at"}
	updates := []string{
		"email=excluded.email",
		"nome_completo=excluded.nome_completo",
		"permissao=excluded.permissao",
		"password_hash=excluded.password_hash",
		"primeiro_login=excluded.primeiro_login",
		"failed_logins=excluded.failed_logins",
		"locked_until=excluded.locked_until",
		"updated_at=excluded.updated_at",
	}
	query := fmt.Sprintf(
		"INSERT INTO usuarios (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", "),
		strings.Join(updates, ", "),
	)

	var lockedUntil any
	if !entity.LockedUntil.IsZero() {
		lockedUntil = entity.LockedUntil.UTC().Format(timeLayout)
	}
	createdAt := entity.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := entity.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := s.db.ExecContext(ctx, storage.Rebind(s.db, query),
		entity.ID,
		normalizeEmail(entity.Email),
		entity.NomeCompleto,
		entity.Permissao,
		entity.PasswordHash,
		entity.PrimeiroLogin,
		entity.FailedLogins,
		lockedUntil,
		createdAt.UTC().Format(timeLayout),
		updatedAt.UTC().Format(timeLayout),
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed; ErrNotFound when absent
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, storage.Rebind(s.db, "DELETE FROM usuarios WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every account ordered by name.
// PRE: none
// POST: Returns all entities
func (s *SQLStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM usuarios ORDER BY nome_completo, email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios").Scan(&count)
	return count, err
}

// CountByPermission returns the number of accounts holding permission.
func (s *SQLStore) CountByPermission(ctx context.Context, permission string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, storage.Rebind(s.db, "SELECT COUNT(*) FROM usuarios WHERE permissao = ?"), permission).Scan(&count)
	return count, err
}

func scanOne(row *sql.Row) (domain.Account, error) {
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	return entity, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt, updatedAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.NomeCompleto,
		&entity.Permissao,
		&entity.PasswordHash,
		&entity.PrimeiroLogin,
		&entity.FailedLogins,
		&lockedUntil,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = parseTime(createdAt)
	entity.UpdatedAt, _ = parseTime(updatedAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		entity.LockedUntil, _ = parseTime(lockedUntil.String)
	}
	return entity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation matches the SQLite and Postgres unique-constraint messages.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
