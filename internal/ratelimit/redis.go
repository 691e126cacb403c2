package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/httprate"
	httprateredis "github.com/go-chi/httprate-redis"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient parses url and verifies the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}

	return client, nil
}

// NewRedisLimiter counts in Redis under prefix so every replica sharing
// the server shares the budget. While Redis is unreachable the counter
// falls back to process memory.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration, log logrus.FieldLogger) *Limiter {
	log = log.WithField("prefix", prefix)
	counter := httprateredis.NewCounter(&httprateredis.Config{
		Client:    client,
		PrefixKey: prefix,
		OnError: func(err error) {
			log.WithError(err).Warn("[ratelimit.Redis] counter error")
		},
		OnFallbackChange: func(activated bool) {
			if activated {
				log.Warn("[ratelimit.Redis] redis unavailable, counting in process")
				return
			}
			log.Info("[ratelimit.Redis] redis reachable again")
		},
	})

	return &Limiter{
		Limit:   limit,
		Window:  window,
		Counter: httprate.LimitCounter(counter),
	}
}
