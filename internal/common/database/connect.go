package database

import (
	"context"

	"visa-portal/internal/common/config"
)

// Conn is a backend client that can be verified and released.
type Conn interface {
	Pinger
	Close() error
}

// connect opens a client and pings it. A client that fails the ping is
// closed before the error is returned.
func connect[C Conn](ctx context.Context, open func() (C, error)) (C, error) {
	var zero C
	c, err := open()
	if err != nil {
		return zero, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return zero, err
	}
	return c, nil
}

func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresClient, error) {
	return connect(ctx, func() (*PostgresClient, error) { return NewPostgres(cfg) })
}

func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	return connect(ctx, func() (*RedisClient, error) { return NewRedis(cfg) })
}

func ConnectElasticsearch(ctx context.Context, cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	return connect(ctx, func() (*ElasticsearchClient, error) { return NewElasticsearch(cfg) })
}
