package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const rateLimitPrefix = "ratelimit"

// RateLimitStore is a fixed-window request counter shared by every API
// instance. It satisfies echo's middleware.RateLimiterStore.
// Key format: ratelimit:<identifier>:<window_start_unix>
type RateLimitStore struct {
	client *redis.Client
	limit  int64
	window time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewRateLimitStore allows limit requests per identifier in each window.
func NewRateLimitStore(client *redis.Client, limit int, window time.Duration, log zerolog.Logger) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		limit:  int64(limit),
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Allow counts the request and reports whether the identifier is still under
// its limit. Redis failures are logged and the request is let through.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	key := s.key(identifier)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("identifier", identifier).Msg("rate limit store unavailable")
		return true, nil
	}

	return incr.Val() <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string) string {
	start := s.now().Truncate(s.window).Unix()
	return fmt.Sprintf("%s:%s:%d", rateLimitPrefix, identifier, start)
}
