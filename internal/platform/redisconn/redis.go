package redisconn

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type OpenConfig struct {
	Addr     string
	Password string
	DB       int
}

func Open(ctx context.Context, cfg OpenConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
