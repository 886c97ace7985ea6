// Package timeouts provides the context deadlines used by handlers and
// background jobs.
//
// Pick the tier by the work involved:
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries, small transactions
//   - Long: exports, analytics, cascading deletes
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config holds timeout configuration values.
// Zero values are ignored (the current value is kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }

// Configure overrides the non-zero values of cfg. Call it at startup before
// handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, f := range fields(&current) {
		if d := f.of(cfg); d > 0 {
			*f.ptr = d
		}
	}
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM and
// TIMEOUT_LONG (Go durations such as "500ms" or "1m"). Unset, unparsable and
// non-positive values are ignored. It returns how many were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	applied := 0
	for _, f := range fields(&current) {
		v := os.Getenv(f.env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*f.ptr = d
			applied++
		}
	}
	return applied
}

// Current returns the timeouts in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

type field struct {
	env string
	ptr *time.Duration
	of  func(Config) time.Duration
}

func fields(c *Config) []field {
	return []field{
		{"TIMEOUT_PING", &c.Ping, func(c Config) time.Duration { return c.Ping }},
		{"TIMEOUT_SHORT", &c.Short, func(c Config) time.Duration { return c.Short }},
		{"TIMEOUT_MEDIUM", &c.Medium, func(c Config) time.Duration { return c.Medium }},
		{"TIMEOUT_LONG", &c.Long, func(c Config) time.Duration { return c.Long }},
	}
}

// WithTimeout wraps context.WithTimeout. The returned cancel logs a warning
// naming operation when the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "generate export")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
