package db

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
    id           SERIAL PRIMARY KEY,
    title        TEXT NOT NULL,
    url          TEXT NOT NULL UNIQUE,
    summary      TEXT NOT NULL DEFAULT '',
    polarity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    subjectivity DOUBLE PRECISION NOT NULL DEFAULT 0,
    bias_rating  INTEGER NOT NULL DEFAULT 1 CHECK (bias_rating BETWEEN 1 AND 5),
    bias_words   TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC)`,
}

// pg_trgm speeds up ILIKE search; it needs privileges the service may not have.
var postgresOptional = []string{
	`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
	`CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(title gin_trgm_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_summary_gin ON articles USING gin(summary gin_trgm_ops)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    title        TEXT NOT NULL,
    url          TEXT NOT NULL UNIQUE,
    summary      TEXT NOT NULL DEFAULT '',
    polarity     REAL NOT NULL DEFAULT 0,
    subjectivity REAL NOT NULL DEFAULT 0,
    bias_rating  INTEGER NOT NULL DEFAULT 1 CHECK (bias_rating BETWEEN 1 AND 5),
    bias_words   TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC)`,
}

// MigrateUp creates the article schema for dialect. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var required, optional []string
	switch dialect {
	case DialectPostgres:
		required, optional = postgresSchema, postgresOptional
	case DialectSQLite:
		required = sqliteSchema
	default:
		return fmt.Errorf("unknown dialect %q", dialect)
	}

	for _, stmt := range required {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range optional {
		_, _ = db.ExecContext(ctx, stmt)
	}
	return nil
}

// MigrateDown drops the article schema. All stored articles are lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`DROP INDEX IF EXISTS idx_articles_created_at`,
		`DROP TABLE IF EXISTS articles`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
