// Package ratelimit implements a per-key sliding window request limiter.
//
// Each key (usually a client IP) may make at most Limit requests in any
// Window. Request timestamps live in a Store; MemoryStore keeps them in
// process with LRU eviction of idle keys.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Store records request timestamps per key.
type Store interface {
	// CheckAndAdd counts the requests of key after cutoff and, when the count
	// is below limit, records now. It returns whether now was recorded and
	// the count including it.
	CheckAndAdd(ctx context.Context, key string, now, cutoff time.Time, limit int) (allowed bool, count int, err error)

	// Cleanup drops timestamps at or before cutoff and returns the number of
	// keys left without any.
	Cleanup(ctx context.Context, cutoff time.Time) (int, error)

	// KeyCount returns the number of tracked keys.
	KeyCount(ctx context.Context) (int, error)
}

// Config configures a SlidingWindow.
type Config struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// DefaultConfig allows 30 requests per minute.
func DefaultConfig() Config {
	return Config{Enabled: true, Limit: 30, Window: time.Minute}
}

// Validate checks the limit and window.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.Limit)
	}
	if c.Window <= 0 {
		return errors.New("rate limit window must be positive")
	}
	return nil
}

// Decision is the outcome of one check.
type Decision struct {
	Key        string
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (d *Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64(math.Ceil(d.RetryAfter.Seconds()))
}

func (d *Decision) String() string {
	if d.Allowed {
		return fmt.Sprintf("allowed key=%s remaining=%d/%d", d.Key, d.Remaining, d.Limit)
	}
	return fmt.Sprintf("denied key=%s limit=%d retry_after=%s", d.Key, d.Limit, d.RetryAfter)
}

// SlidingWindow checks keys against a Store.
type SlidingWindow struct {
	cfg   Config
	store Store
	clock Clock

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewSlidingWindow returns a limiter over store. A nil clock means SystemClock.
func NewSlidingWindow(cfg Config, store Store, clock Clock) (*SlidingWindow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("rate limit store is required")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SlidingWindow{
		cfg:      cfg,
		store:    store,
		clock:    clock,
		lastSeen: make(map[string]time.Time),
	}, nil
}

// Config returns the limiter configuration.
func (l *SlidingWindow) Config() Config { return l.cfg }

// Allow records a request of key if the window has room.
func (l *SlidingWindow) Allow(ctx context.Context, key string) (*Decision, error) {
	now := l.timestamp(key)
	resetAt := now.Add(l.cfg.Window)

	allowed, count, err := l.store.CheckAndAdd(ctx, key, now, now.Add(-l.cfg.Window), l.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("check rate limit: %w", err)
	}

	d := &Decision{
		Key:     key,
		Allowed: allowed,
		Limit:   l.cfg.Limit,
		ResetAt: resetAt,
	}
	if allowed {
		d.Remaining = max(l.cfg.Limit-count, 0)
	} else {
		d.RetryAfter = resetAt.Sub(now)
	}
	return d, nil
}

// timestamp returns now, or the last timestamp seen for key when the clock
// went backwards, so windows never move back in time.
func (l *SlidingWindow) timestamp(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if last, ok := l.lastSeen[key]; ok && now.Before(last) {
		slog.Warn("clock skew detected, using last timestamp",
			slog.String("key", key),
			slog.Duration("skew", last.Sub(now)))
		return last
	}
	l.lastSeen[key] = now
	return now
}

// Cleanup drops expired timestamps from the store and forgets keys idle for
// longer than a window.
func (l *SlidingWindow) Cleanup(ctx context.Context) error {
	cutoff := l.clock.Now().Add(-l.cfg.Window)

	l.mu.Lock()
	for key, last := range l.lastSeen {
		if !last.After(cutoff) {
			delete(l.lastSeen, key)
		}
	}
	l.mu.Unlock()

	removed, err := l.store.Cleanup(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup rate limit store: %w", err)
	}
	if removed > 0 {
		slog.Debug("rate limit keys expired", slog.Int("removed", removed))
	}
	return nil
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (l *SlidingWindow) RunCleanup(ctx context.Context, interval time.Duration, m Metrics) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.Cleanup(ctx); err != nil {
				slog.Warn("rate limit cleanup failed", slog.Any("error", err))
				continue
			}
			if m != nil {
				if n, err := l.store.KeyCount(ctx); err == nil {
					m.SetActiveKeys(n)
				}
			}
		}
	}
}
