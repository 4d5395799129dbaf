package gateway

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a per-key token bucket. Each key may spend limit requests
// per period; tokens refill continuously.
type RateLimiter struct {
	buckets    map[string]*tokenBucket
	bucketsMux sync.RWMutex
	limit      int
	period     time.Duration
	now        func() time.Time
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
	mutex    sync.Mutex
}

// NewRateLimiter creates a limiter allowing limit requests per period per key
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow spends one token for key if one is available
func (rl *RateLimiter) Allow(key string) (bool, error) {
	bucket := rl.getBucket(key)

	bucket.mutex.Lock()
	defer bucket.mutex.Unlock()

	rl.refill(bucket)
	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, nil
	}
	return false, nil
}

// Reset refills the bucket for key
func (rl *RateLimiter) Reset(key string) error {
	rl.bucketsMux.RLock()
	bucket, exists := rl.buckets[key]
	rl.bucketsMux.RUnlock()

	if exists {
		bucket.mutex.Lock()
		bucket.tokens = float64(rl.limit)
		bucket.lastSeen = rl.now()
		bucket.mutex.Unlock()
	}
	return nil
}

// GetLimits returns the whole tokens left for key and the configured limit
func (rl *RateLimiter) GetLimits(key string) (int, int, error) {
	bucket := rl.getBucket(key)

	bucket.mutex.Lock()
	defer bucket.mutex.Unlock()

	rl.refill(bucket)
	return int(bucket.tokens), rl.limit, nil
}

// refill must be called with the bucket locked
func (rl *RateLimiter) refill(bucket *tokenBucket) {
	now := rl.now()
	elapsed := now.Sub(bucket.lastSeen)
	bucket.lastSeen = now
	if elapsed <= 0 {
		return
	}

	bucket.tokens += elapsed.Seconds() / rl.period.Seconds() * float64(rl.limit)
	if bucket.tokens > float64(rl.limit) {
		bucket.tokens = float64(rl.limit)
	}
}

func (rl *RateLimiter) getBucket(key string) *tokenBucket {
	rl.bucketsMux.RLock()
	bucket, exists := rl.buckets[key]
	rl.bucketsMux.RUnlock()

	if exists {
		return bucket
	}

	rl.bucketsMux.Lock()
	defer rl.bucketsMux.Unlock()

	// another request may have created it meanwhile
	if bucket, exists := rl.buckets[key]; exists {
		return bucket
	}

	bucket = &tokenBucket{
		tokens:   float64(rl.limit),
		lastSeen: rl.now(),
	}
	rl.buckets[key] = bucket
	return bucket
}

// cleanup drops buckets idle for longer than one period; such a bucket would
// be full again anyway
func (rl *RateLimiter) cleanup() int {
	rl.bucketsMux.Lock()
	defer rl.bucketsMux.Unlock()

	cutoff := rl.now().Add(-rl.period)
	removed := 0
	for key, bucket := range rl.buckets {
		bucket.mutex.Lock()
		if bucket.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
		bucket.mutex.Unlock()
	}
	return removed
}

// StartCleanup drops idle buckets every interval until ctx is done
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
}
