// Package repository stores normalized invoices and batch runs in sqlite.
package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/TriAiAdmin/LLM-automation/pkg/database"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date
func Migrate(ctx context.Context, db *database.DB, logger *zap.Logger) error {
	if err := database.NewMigrator(db, logger).RunMigrations(ctx, migrations); err != nil {
		return fmt.Errorf("failed to migrate results database: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// conn picks the transaction when one is given
func conn(db *sql.DB, tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return db
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
