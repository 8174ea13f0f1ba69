package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pecunia/internal/server/config"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/repomanager"
	"github.com/redis/go-redis/v9"
)

// Store is the repository manager selected by the configuration together
// with the optional Redis client backing refresh tokens.
type Store struct {
	repomanager.RepositoryManager
	redis *redis.Client
}

// OpenStore builds the store described by cfg:
//   - DatabaseDSN set: PostgreSQL with migrations applied, otherwise memory
//   - RedisAddr set: refresh tokens live in Redis
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		opts []repomanager.Option
		rdb  *redis.Client
	)

	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		opts = append(opts, repomanager.WithRefreshTokens(refreshtokens.NewRedisRepository(rdb)))
	}

	if cfg.DatabaseDSN == "" {
		return &Store{RepositoryManager: repomanager.NewInMemoryRepositoryManager(opts...), redis: rdb}, nil
	}

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		closeRedis(rdb)
		return nil, err
	}

	m := repomanager.NewPostgresRepositoryManager(db, opts...)
	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		closeRedis(rdb)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &Store{RepositoryManager: m, redis: rdb}, nil
}

// Close releases the database and the Redis client.
func (s *Store) Close() error {
	err := s.RepositoryManager.Close()
	if s.redis != nil {
		err = errors.Join(err, s.redis.Close())
	}
	return err
}

func closeRedis(rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}
