package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// SQLitePragmas is appended to file DSNs opened with the sqlite driver.
const SQLitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

// Open opens a database for driver. SQLite file DSNs get the standard pragmas.
// PRE: driver is DriverSQLite or DriverPostgres
// POST: returns a handle that has answered a ping
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.Contains(dsn, "_pragma=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + SQLitePragmas
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY under WAL.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Dialect is implemented by handles that know their driver name.
type Dialect interface {
	Driver() string
}

// Rebind rewrites ? placeholders into the bind style of db's driver.
// Handles that do not implement Dialect are assumed to accept ?.
func Rebind(db SQLDB, query string) string {
	if d, ok := db.(Dialect); ok {
		return sqlx.Rebind(sqlx.BindType(d.Driver()), query)
	}
	return query
}

// registrationColumns are the columns shared by every registration table.
const registrationColumns = `
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL`

// Schema returns the CREATE statements for every table, in dependency order.
// The same DDL runs on SQLite and Postgres; timestamps are RFC 3339 text.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS usuarios (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		nome_completo TEXT NOT NULL,
		permissao TEXT NOT NULL DEFAULT 'user',
		password_hash TEXT NOT NULL DEFAULT '',
		primeiro_login BOOLEAN NOT NULL DEFAULT TRUE,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

		`CREATE TABLE IF NOT EXISTS pre_inscricoes (` + registrationColumns + `,
		nome_completo TEXT NOT NULL,
		idade INTEGER,
		bairro TEXT,
		cidade TEXT,
		nome_responsavel TEXT,
		telefone_responsavel TEXT,
		"Status" TEXT
	)`,

		`CREATE TABLE IF NOT EXISTS confirmados (` + registrationColumns + `,
		nome_completo TEXT NOT NULL,
		idade INTEGER,
		bairro TEXT,
		cidade TEXT,
		nome_responsavel TEXT,
		telefone_responsavel TEXT,
		"Status" TEXT
	)`,

		`CREATE TABLE IF NOT EXISTS fichas_surfistas (` + registrationColumns + `,
		nome_surfista TEXT NOT NULL,
		data_nascimento TEXT,
		rg_cpf_surfista TEXT,
		telefone_surfista TEXT,
		arroba_instagram TEXT,
		endereco_completo_surfista TEXT,
		escola_serie_ano TEXT,
		tamanho_camiseta_surfista TEXT,
		nome_mae TEXT,
		telefone_mae TEXT,
		nome_pai TEXT,
		telefone_pai TEXT,
		irmaos TEXT,
		fez_primeira_comunhao TEXT,
		fez_crisma TEXT,
		instrumento TEXT,
		alergia TEXT,
		fobia TEXT,
		medicamento TEXT,
		informacao_adicional_surfista TEXT,
		status_inscricao TEXT,
		status_pagamento TEXT,
		tipo_pagamento TEXT,
		foto_url TEXT,
		comprovante_url TEXT
	)`,

		`CREATE TABLE IF NOT EXISTS fichas_apoio (` + registrationColumns + `,
		nome TEXT NOT NULL,
		data_nascimento TEXT,
		whatsapp TEXT,
		tem_instagram TEXT,
		arroba_instagram TEXT,
		nome_responsavel TEXT,
		telefone_responsavel TEXT,
		equipe_trabalho TEXT,
		tamanho_camiseta TEXT,
		toma_medicamento_continuo TEXT,
		medicamento_qual TEXT,
		ja_fez_onda BOOLEAN,
		onda_numero TEXT,
		onda_onde TEXT
	)`,

		`CREATE TABLE IF NOT EXISTS fichas_marujos (` + registrationColumns + `,
		nome TEXT NOT NULL,
		data_nascimento TEXT,
		whatsapp TEXT,
		tem_instagram TEXT,
		arroba_instagram TEXT,
		nome_responsavel TEXT,
		telefone_responsavel TEXT,
		equipe_trabalho TEXT,
		tamanho_camiseta TEXT,
		toma_medicamento_continuo TEXT,
		medicamento_qual TEXT,
		onda_numero TEXT NOT NULL,
		onda_onde TEXT NOT NULL
	)`,

		`CREATE TABLE IF NOT EXISTS eventos_agenda (
		id TEXT PRIMARY KEY,
		titulo TEXT NOT NULL,
		descricao TEXT NOT NULL DEFAULT '',
		data_evento TEXT NOT NULL,
		hora_inicio TEXT,
		hora_fim TEXT,
		tipo_evento TEXT NOT NULL DEFAULT 'evento',
		criado_por TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

		`CREATE INDEX IF NOT EXISTS idx_eventos_agenda_data ON eventos_agenda (data_evento, hora_inicio)`,
	}
}

// migration is one forward-only schema step.
type migration struct {
	version int
	stmts   func() []string
}

var migrations = []migration{
	{version: 1, stmts: Schema},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for a fresh database.
// PRE: db is a valid database connection
// POST: returns the highest recorded version
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL, applied_at TEXT NOT NULL)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration. It is idempotent.
// PRE: db is a valid database connection
// POST: SchemaVersion == LatestSchemaVersion and all tables exist
func MigrateDB(ctx context.Context, db SQLDB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		for i, stmt := range m.stmts() {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d statement %d: %w", m.version, i, err)
			}
		}
		if _, err := db.ExecContext(ctx, Rebind(db, `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`),
			m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		slog.Info("schema_migrated", "version", m.version)
	}
	return nil
}
