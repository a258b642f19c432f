package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"

	"github.com/Dosada05/padel-circuit/db/migrations"
)

// NewMigrator wraps the lib/pq handle in bun so the schema migrations can run over it.
func NewMigrator(sqlDB *sql.DB) *migrate.Migrator {
	bunDB := bun.NewDB(sqlDB, pgdialect.New())
	return migrate.NewMigrator(bunDB, migrations.Migrations)
}

// Migrate creates the bookkeeping tables if needed and applies pending migrations.
func Migrate(ctx context.Context, sqlDB *sql.DB, logger *slog.Logger) error {
	migrator := NewMigrator(sqlDB)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if group.IsZero() {
		logger.Info("no new migrations to run")
		return nil
	}
	logger.Info("database migrated", slog.String("group", group.String()))
	return nil
}

// Rollback reverts the last applied migration group.
func Rollback(ctx context.Context, sqlDB *sql.DB, logger *slog.Logger) error {
	migrator := NewMigrator(sqlDB)
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	if group.IsZero() {
		logger.Info("no groups to roll back")
		return nil
	}
	logger.Info("rolled back", slog.String("group", group.String()))
	return nil
}

// Status lists applied and pending migrations.
func Status(ctx context.Context, sqlDB *sql.DB) (applied, pending []string, err error) {
	ms, err := NewMigrator(sqlDB).MigrationsWithStatus(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range ms.Applied() {
		applied = append(applied, m.Name)
	}
	for _, m := range ms.Unapplied() {
		pending = append(pending, m.Name)
	}
	return applied, pending, nil
}
