package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/internal/config"
	pgInfra "github.com/fastygo/kanban/internal/infrastructure/postgres"
	sqlitedb "github.com/fastygo/kanban/internal/infrastructure/sqlite"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or revert the database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrations(func(cfg *config.Config, logger *zap.Logger) error {
						if cfg.Database.Driver == config.DriverSQLite {
							db, err := sqlitedb.Open(cfg.Database.SQLitePath)
							if err != nil {
								return err
							}
							defer db.Close()
							return sqlitedb.RunMigrations(db, logger)
						}
						return pgInfra.RunMigrations(cfg, logger)
					})
				},
			},
			{
				Name:  "down",
				Usage: "Revert the most recent migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withMigrations(func(cfg *config.Config, logger *zap.Logger) error {
						if cfg.Database.Driver == config.DriverSQLite {
							db, err := sqlitedb.Open(cfg.Database.SQLitePath)
							if err != nil {
								return err
							}
							defer db.Close()
							return sqlitedb.RollbackMigration(db, logger)
						}
						return pgInfra.RollbackMigration(cfg, logger)
					})
				},
			},
		},
	}
}

func withMigrations(run func(cfg *config.Config, logger *zap.Logger) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// An explicit migrate command ignores RUN_MIGRATIONS.
	cfg.Migrations.Enabled = true
	if err := run(cfg, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
