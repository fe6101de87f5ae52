package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDB backs sessions and the mutation rate limiter.
type RedisDB struct {
	Client *redis.Client
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// PoolSize defaults to 20; sessions are read on every request.
	PoolSize int
}

var (
	newRedisClient = redis.NewClient
	redisPing      = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
)

func NewRedisDB(ctx context.Context, opts RedisOptions) (*RedisDB, error) {
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = 20
	}
	client := newRedisClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisPing(pingCtx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}
	return &RedisDB{Client: client}, nil
}

func (r *RedisDB) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// Health is used by the readiness probe.
func (r *RedisDB) Health(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return redisPing(ctx, r.Client)
}
