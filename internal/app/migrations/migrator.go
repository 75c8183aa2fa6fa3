package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursereview/internal/db"
	"github.com/yigit/coursereview/internal/pkg/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrator applies the embedded schema files in lexical order, each in its own transaction.
type Migrator struct {
	db    *db.PostgresDB
	files fs.FS
}

// NewMigrator creates a migrator over the embedded schema.
func NewMigrator(database *db.PostgresDB) *Migrator {
	sub, _ := fs.Sub(embedded, "sql")
	return &Migrator{db: database, files: sub}
}

// NewMigratorFromFS creates a migrator over an arbitrary directory of .sql files.
func NewMigratorFromFS(database *db.PostgresDB, files fs.FS) *Migrator {
	return &Migrator{db: database, files: files}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// Pending lists the migration files in the order they are applied.
func (m *Migrator) Pending() ([]string, error) {
	entries, err := fs.ReadDir(m.files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Up applies every migration not yet recorded in schema_migrations.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	files, err := m.Pending()
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := m.apply(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one file. The version ("001" for "001_init.sql") is recorded in the same
// transaction as the statements.
func (m *Migrator) apply(ctx context.Context, file string) error {
	version := strings.SplitN(path.Base(file), "_", 2)[0]

	content, err := fs.ReadFile(m.files, file)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", file, err)
	}

	return m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var applied bool
		err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			logger.Debug().Str("migration", file).Msg("Migration already applied, skipping")
			return nil
		}

		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("error applying migration %s: %w", file, err)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}

		logger.Info().Str("migration", file).Msg("Migration applied")
		return nil
	})
}
