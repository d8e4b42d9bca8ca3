// Package idempotency deduplicates send requests by client request id,
// backed by Redis so retries across process restarts are still caught.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyTTL = 24 * time.Hour

type Checker struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection. url accepts both
// redis://host:port/db form and a bare host:port.
func New(url string) (*Checker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &Checker{client: client}, nil
}

// IsDuplicate atomically claims requestID and reports whether it was
// already claimed. The claim expires after 24 hours.
func (c *Checker) IsDuplicate(ctx context.Context, requestID string) (bool, error) {
	wasSet, err := c.client.SetNX(ctx, "idem:"+requestID, "processed", keyTTL).Result()
	if err != nil {
		return false, err
	}
	return !wasSet, nil
}

// Release drops a claim so a failed send can be retried with the same
// request id.
func (c *Checker) Release(ctx context.Context, requestID string) error {
	return c.client.Del(ctx, "idem:"+requestID).Err()
}

func (c *Checker) Close() error {
	return c.client.Close()
}
