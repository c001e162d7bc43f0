package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ClientName identifies the ledger's connections in CLIENT LIST.
const ClientName = "debtledger"

// NewClient connects to redisURL and verifies the connection. Redis backs the
// idempotency store, the summary cache and event publishing.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = ClientName
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
