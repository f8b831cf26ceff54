package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id         UUID        PRIMARY KEY,
  path       TEXT        NOT NULL,
  content    JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_path",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_path ON documents (path);`,
	},
	{
		Name: "create_table_file_metadata",
		SQL: `CREATE TABLE IF NOT EXISTS file_metadata (
  path        TEXT        PRIMARY KEY,
  name        TEXT        NOT NULL,
  description TEXT,
  file_type   TEXT        NOT NULL,
  size        BIGINT      NOT NULL CHECK (size >= 0),
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_file_metadata_path_pattern",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_metadata_path_pattern ON file_metadata (path text_pattern_ops);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("msg", "schema already exists, skipping migration"),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}

	log.Info("db_migration_start", zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("duration", time.Since(start)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Duration("step_duration", time.Since(stepStart)),
		)
	}

	log.Info("db_migration_success", zap.Duration("duration", time.Since(start)))
	return nil
}

// EnsureMongoIndexes creates the unique index on file_metadata.path. Creating an
// index that already exists with the same definition is a no-op on the server.
func EnsureMongoIndexes(ctx context.Context, metadata *mongo.Collection, log *zap.Logger) error {
	name, err := metadata.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "path", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_path"),
	})
	if err != nil {
		log.Error("mongo_index_failed", zap.String("collection", metadata.Name()), zap.Error(err))
		return fmt.Errorf("create index on %s.path: %w", metadata.Name(), err)
	}
	log.Info("mongo_index_ready", zap.String("collection", metadata.Name()), zap.String("index", name))
	return nil
}
