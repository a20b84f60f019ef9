package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects SQL differences between the supported databases
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// DialectFor picks the dialect for a DSN: postgres URLs use Postgres,
// anything else is a sqlite path or ":memory:".
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Open opens the database for dsn and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, Dialect, error) {
	dialect := DialectFor(dsn)

	driver := "sqlite"
	if dialect == Postgres {
		driver = "postgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, dialect, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// every new connection to :memory: is a fresh empty database
		if strings.Contains(dsn, ":memory:") {
			db.SetMaxOpenConns(1)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dialect, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	return db, dialect, nil
}

// Rebind rewrites ? placeholders into $n for Postgres.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) vectorType() string {
	if d == Postgres {
		return "sparsevec"
	}
	return "TEXT"
}

func (d Dialect) schema() []string {
	vec := d.vectorType()
	var stmts []string
	if d == Postgres {
		stmts = append(stmts, `CREATE EXTENSION IF NOT EXISTS vector`)
	}
	return append(stmts,
		`CREATE TABLE IF NOT EXISTS corpora (
			corpus_key  TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			tuple_count INTEGER NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tuples (
			id             TEXT PRIMARY KEY,
			corpus_key     TEXT NOT NULL REFERENCES corpora(corpus_key) ON DELETE CASCADE,
			position       INTEGER NOT NULL,
			e1             TEXT NOT NULL,
			e2             TEXT NOT NULL,
			sentence       TEXT NOT NULL,
			before_tokens  TEXT NOT NULL,
			between_tokens TEXT NOT NULL,
			after_tokens   TEXT NOT NULL,
			before_vector  `+vec+`,
			between_vector `+vec+`,
			after_vector   `+vec+`,
			voice          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tuples_corpus ON tuples(corpus_key, position)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			corpus_key  TEXT NOT NULL,
			config      TEXT NOT NULL,
			iterations  TEXT NOT NULL,
			started_at  TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank          INTEGER NOT NULL,
			e1            TEXT NOT NULL,
			e2            TEXT NOT NULL,
			confidence    DOUBLE PRECISION NOT NULL,
			sentence      TEXT NOT NULL,
			passive_voice BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, rank)
		)`,
	)
}

// EnsureSchema creates the tables if they do not exist
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	for _, stmt := range dialect.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
