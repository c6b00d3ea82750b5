package app

import (
	"context"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/stockroom/internal/domain/inventory"
	"github.com/xenking/stockroom/internal/storage/file"
	"github.com/xenking/stockroom/internal/storage/postgres"
	"github.com/xenking/stockroom/internal/storage/redis"
)

// OpenStorage connects the backend selected by cfg. The returned function
// releases its connections.
func OpenStorage(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (inventory.Storage, func(), error) {
	switch cfg.Driver {
	case DriverFile:
		lg.Info("Using file storage", zap.String("dir", cfg.Dir))
		return file.New(cfg.Dir), func() {}, nil

	case DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open postgres")
		}
		lg.Info("Using postgres storage")
		return postgres.NewDocumentStorage(pool), pool.Close, nil

	case DriverRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		lg.Info("Using redis storage", zap.String("addr", cfg.RedisAddr))
		return redis.New(client), func() { _ = client.Close() }, nil

	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
