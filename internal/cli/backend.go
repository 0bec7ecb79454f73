package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/paywall/pkg/kv"
	"github.com/dmitrymomot/paywall/pkg/mongo"
	"github.com/dmitrymomot/paywall/pkg/pg"
	"github.com/dmitrymomot/paywall/pkg/redis"
	"github.com/dmitrymomot/paywall/pkg/sqlite"
)

var errUnknownStorage = errors.New("unknown storage backend")

// backend is an opened kv.Storage together with its lifecycle hooks.
type backend struct {
	kv.Storage
	probe func(context.Context) error
	close func() error
}

func openBackend(ctx context.Context, cfg Config, log *slog.Logger) (*backend, error) {
	switch cfg.Storage {
	case storageMemory:
		return &backend{
			Storage: kv.NewMemory(),
			probe:   func(context.Context) error { return nil },
			close:   func() error { return nil },
		}, nil

	case storageSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return &backend{Storage: s, probe: s.Healthcheck, close: s.Close}, nil

	case storageRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s := redis.NewStorage(client)
		return &backend{Storage: s, probe: redis.Healthcheck(client), close: s.Close}, nil

	case storagePostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
			pool.Close()
			return nil, err
		}
		s := pg.NewStorage(pool)
		return &backend{Storage: s, probe: pg.Healthcheck(pool), close: s.Close}, nil

	case storageMongo:
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		s := mongo.NewStorage(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		return &backend{
			Storage: s,
			probe:   mongo.Healthcheck(client),
			close:   func() error { return s.Close(context.WithoutCancel(ctx)) },
		}, nil
	}

	return nil, fmt.Errorf("%w %q: use memory, sqlite, redis, postgres or mongo", errUnknownStorage, cfg.Storage)
}
