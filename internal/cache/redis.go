package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListingCache is a read-side cache for ward report listings. Scores are
// derived on read, so entries stay valid until any report in the ward
// mutates; mutation paths call InvalidateWard. A nil *ListingCache is a
// pass-through, which keeps Redis optional.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(redisURL string) (*ListingCache, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	slog.Info("redis connected", "url", redisURL)
	return &ListingCache{client: client, ttl: 60 * time.Second}, nil
}

func (c *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *ListingCache) Set(ctx context.Context, key string, value []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.Error("cache set failed", "key", key, "error", err.Error())
	}
}

// InvalidateWard drops every cached listing page for the ward.
func (c *ListingCache) InvalidateWard(ctx context.Context, wardID string) {
	if c == nil {
		return
	}
	pattern := "reports:ward:" + wardID + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Error("cache invalidation failed", "key", iter.Val(), "error", err.Error())
		}
	}
}

func (c *ListingCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// WardKey builds the cache key for one ward listing page.
func WardKey(wardID string, page, limit int) string {
	return fmt.Sprintf("reports:ward:%s:%d:%d", wardID, page, limit)
}
