// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// windowScript counts a hit and returns {allowed, remaining window in ms}.
// A counter that somehow lost its expiry gets one again instead of locking
// the key out forever.
const windowScript = `
local hits = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if hits == 1 or ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
if hits > tonumber(ARGV[2]) then
  return {0, ttl}
end
return {1, ttl}
`

const (
	defaultPrefix  = "clubhire:ratelimit"
	defaultTimeout = 250 * time.Millisecond
)

// Limiter allows at most limit hits per key per window. A nil Limiter, or
// one whose Redis call fails, allows everything.
type Limiter struct {
	client  redis.Scripter
	script  *redis.Script
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithPrefix namespaces the Redis keys; an empty prefix uses keys as given.
func WithPrefix(prefix string) Option {
	return func(l *Limiter) { l.prefix = prefix }
}

// WithTimeout bounds each Redis round trip.
func WithTimeout(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func NewLimiter(client redis.Scripter, limit int, window time.Duration, logger *zap.Logger, opts ...Option) *Limiter {
	if client == nil {
		return nil
	}
	l := &Limiter{
		client:  client,
		script:  redis.NewScript(windowScript),
		limit:   limit,
		window:  window,
		prefix:  defaultPrefix,
		timeout: defaultTimeout,
		logger:  logger.Named("rate_limiter"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) key(key string) string {
	if l.prefix == "" {
		return key
	}
	return l.prefix + ":" + key
}

// Allow records a hit for key. When the key is over its limit it returns
// false and how long until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l == nil || l.client == nil {
		return true, 0
	}
	if key == "" || l.limit <= 0 || l.window <= 0 {
		return true, 0
	}
	windowMs := l.window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	res, err := l.script.Run(ctx, l.client, []string{l.key(key)}, windowMs, l.limit).Int64Slice()
	if err == nil && len(res) != 2 {
		err = fmt.Errorf("unexpected limiter reply %v", res)
	}
	if err != nil {
		l.logger.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
		return true, 0
	}
	if res[0] == 1 {
		return true, 0
	}
	return false, time.Duration(res[1]) * time.Millisecond
}
