package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"golang-admin-command-runner/internal/utils"
)

// Config controls a KeyedLimiter. Zero RequestsPerMinute disables limiting.
type Config struct {
	RequestsPerMinute int
	Burst             int
	CleanupDuration   time.Duration
	ExpireDuration    time.Duration
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// KeyedLimiter keeps one token bucket per key (a principal id, a client ip)
// and forgets keys that have been idle longer than ExpireDuration.
type KeyedLimiter struct {
	cfg      Config
	log      *logrus.Logger
	limiters map[string]*limiterEntry
	now      func() time.Time
	mu       sync.Mutex
	wg       sync.WaitGroup
}

func NewKeyedLimiter(cfg Config, log *logrus.Logger) *KeyedLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.CleanupDuration <= 0 {
		cfg.CleanupDuration = time.Minute
	}
	if cfg.ExpireDuration <= 0 {
		cfg.ExpireDuration = 10 * time.Minute
	}
	return &KeyedLimiter{
		cfg:      cfg,
		log:      log,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

func (r *KeyedLimiter) Enabled() bool {
	return r.cfg.RequestsPerMinute > 0
}

// Allow reports whether one more event for key fits in the bucket right now.
func (r *KeyedLimiter) Allow(key string) bool {
	if !r.Enabled() {
		return true
	}
	return r.getLimiter(key).limiter.AllowN(r.now(), 1)
}

// Wait blocks until key may proceed or ctx ends.
func (r *KeyedLimiter) Wait(ctx context.Context, key string) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.getLimiter(key).limiter.Wait(ctx); err != nil {
		r.log.WithError(err).Error("Failed to wait for rate limit")
		return err
	}
	return nil
}

func (r *KeyedLimiter) getLimiter(key string) *limiterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, exists := r.limiters[key]; exists {
		entry.lastAccess = r.now()
		return entry
	}

	perSecond := rate.Limit(float64(r.cfg.RequestsPerMinute) / 60)
	entry := &limiterEntry{
		limiter:    rate.NewLimiter(perSecond, r.cfg.Burst),
		lastAccess: r.now(),
	}
	r.limiters[key] = entry
	return entry
}

func (r *KeyedLimiter) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}

func (r *KeyedLimiter) cleanupExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for key, entry := range r.limiters {
		if now.Sub(entry.lastAccess) > r.cfg.ExpireDuration {
			delete(r.limiters, key)
		}
	}
}

func (r *KeyedLimiter) StartCleanupExpired(ctx context.Context) {
	r.wg.Add(1)
	utils.SafeGo(func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cfg.CleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.log.Info("Received signal to stop rate limiter cleanup expired")
				return
			case <-ticker.C:
				r.cleanupExpired()
			}
		}
	})
}

func (r *KeyedLimiter) StopCleanupExpired() {
	r.wg.Wait()
	r.log.Info("Rate limiter stopped")
}
