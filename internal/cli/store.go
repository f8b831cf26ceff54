package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docmcp/internal/config"
	"docmcp/internal/database"
	"docmcp/internal/database/migration"
	"docmcp/internal/http/handler"
	"docmcp/internal/repository"
	"docmcp/internal/repository/memory"
	mongorepo "docmcp/internal/repository/mongo"
	postgresrepo "docmcp/internal/repository/postgres"
)

// backend bundles the repositories of one store driver with its lifecycle hooks.
type backend struct {
	docs    repository.DocumentRepository
	meta    repository.MetadataRepository
	health  handler.Pinger
	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

func nopHook(context.Context) error { return nil }

// openBackend connects the store selected by cfg.Driver.
func openBackend(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*backend, error) {
	log = log.With(zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		log.Warn("using in-memory store, data is lost on exit")
		return &backend{
			docs:    store.Documents(),
			meta:    store.Metadata(),
			health:  store,
			migrate: nopHook,
			close:   nopHook,
		}, nil

	case config.DriverPostgres:
		gw := database.NewPostgresGateway(cfg.Database)
		if err := gw.Connect(ctx); err != nil {
			return nil, err
		}
		log.Info("store connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
		return &backend{
			docs:   postgresrepo.NewDocumentPostgres(gw),
			meta:   postgresrepo.NewMetadataPostgres(gw),
			health: gw,
			migrate: func(ctx context.Context) error {
				db, err := gw.DB()
				if err != nil {
					return err
				}
				return migration.EnsureMigrated(ctx, db, log)
			},
			close: gw.Close,
		}, nil

	case config.DriverMongo:
		gw := database.NewMongoGateway(cfg.Mongo)
		if err := gw.Connect(ctx); err != nil {
			return nil, err
		}
		log.Info("store connected", zap.String("database", cfg.Mongo.Database))
		return &backend{
			docs:   mongorepo.NewDocumentMongo(gw),
			meta:   mongorepo.NewMetadataMongo(gw),
			health: gw,
			migrate: func(ctx context.Context) error {
				col, err := gw.Metadata()
				if err != nil {
					return err
				}
				return migration.EnsureMongoIndexes(ctx, col, log)
			},
			close: gw.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DOCSTORE_DRIVER %q", cfg.Driver)
	}
}

func (b *backend) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := b.close(ctx); err != nil {
		log.Warn("store close failed", zap.Error(err))
	}
}

// withBackend loads configuration, opens the store and hands both to fn. Logs go to
// stderr so command output on stdout stays machine readable.
func withBackend(ctx context.Context, opts *rootOptions, fn func(ctx context.Context, cfg *config.AppConfig, log *zap.Logger, b *backend) error) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.shutdown(log)

	return fn(ctx, cfg, log, b)
}
