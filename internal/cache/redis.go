package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// linkTTL bounds how long a cached destination can go stale after an edit
// that raced with a cache write.
const linkTTL = 1 * time.Hour

// LinkCache caches short code -> destination URL for the redirect hot path.
// Implementations must be safe for concurrent use; a nil LinkCache is a
// valid "no cache" configuration for the service layer.
type LinkCache interface {
	GetDestination(ctx context.Context, shortCode string) (string, error)
	SetDestination(ctx context.Context, shortCode, originalURL string) error
	Invalidate(ctx context.Context, shortCode string) error
}

type redisLinkCache struct {
	client *redis.Client
}

// NewRedisLinkCache creates a Redis-backed link cache
func NewRedisLinkCache(redisURL string) (LinkCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// If URL parsing fails, try as simple host:port
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisLinkCache{client: client}, nil
}

func destinationKey(shortCode string) string {
	return "link:dest:" + shortCode
}

// GetDestination returns the cached destination for a short code
func (c *redisLinkCache) GetDestination(ctx context.Context, shortCode string) (string, error) {
	val, err := c.client.Get(ctx, destinationKey(shortCode)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetDestination caches the destination for a short code
func (c *redisLinkCache) SetDestination(ctx context.Context, shortCode, originalURL string) error {
	return c.client.Set(ctx, destinationKey(shortCode), originalURL, linkTTL).Err()
}

// Invalidate drops the cached destination for a short code
func (c *redisLinkCache) Invalidate(ctx context.Context, shortCode string) error {
	return c.client.Del(ctx, destinationKey(shortCode)).Err()
}
