package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"eduquiz-service/internal/config"
	pgstore "eduquiz-service/internal/infra/postgres"
	pgmigrations "eduquiz-service/internal/infra/postgres/migrations"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seedCatalog bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runMigrationsWithConfig(cmd.Context(), cfg, seedCatalog)
		},
	}
	cmd.Flags().BoolVar(&seedCatalog, "seed", true, "upsert the quiz catalog after migrating")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, seedCatalog bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("no new migrations")
	} else {
		log.Printf("migrations applied: %s", group)
	}

	if !seedCatalog {
		return nil
	}
	quizzes, err := catalogQuizzes(cfg)
	if err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := pgstore.UpsertQuizzes(ctx, pool, quizzes); err != nil {
		return err
	}
	log.Printf("catalog seeded with %d quizzes", len(quizzes))
	return nil
}
