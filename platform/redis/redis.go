// Package redis provides overlay store connection infrastructure.
// This is part of the platform layer and contains no business logic.
package redis

import (
	"context"
	"crypto/tls"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from a URL, verifying connectivity with a
// ping before returning.
func NewClient(ctx context.Context, redisURL string, tlsInsecure bool) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil && tlsInsecure {
		opt.TLSConfig.InsecureSkipVerify = true
	} else if opt.TLSConfig == nil && tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
