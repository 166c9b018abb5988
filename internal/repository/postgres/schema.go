package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the documents and history tables when they do not
// exist yet. Idempotent; run by cmd/seed and at server startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id TEXT PRIMARY KEY,
			qr_code TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			department_id TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL DEFAULT '',
			current_status TEXT NOT NULL,
			current_holder_name TEXT NOT NULL DEFAULT '',
			is_bottleneck BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	createHistory := `
		CREATE TABLE IF NOT EXISTS ` + tables.History + ` (
			id UUID PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			action TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			actor_name TEXT NOT NULL DEFAULT '',
			action_type TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createHistory); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Documents + `_status ON ` + tables.Documents + ` (current_status)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Documents + `_department ON ` + tables.Documents + ` (department_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.History + `_document ON ` + tables.History + ` (document_id, created_at DESC)`,
	}
	for _, stmt := range indexes {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}
