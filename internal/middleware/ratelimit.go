package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateStore counts requests per key within a fixed window.
type RateStore interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryRateStore keeps a sliding window of request times per key in process memory.
type MemoryRateStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryRateStore starts a background sweep that drops idle keys.
// Call Close to stop it.
func NewMemoryRateStore(limit int, window time.Duration) *MemoryRateStore {
	rl := &MemoryRateStore{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go rl.cleanupLoop(5 * time.Minute)

	return rl
}

func (rl *MemoryRateStore) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, nil
	}

	rl.requests[key] = append(valid, now)
	return true, nil
}

func (rl *MemoryRateStore) Close() {
	close(rl.stop)
	<-rl.done
}

func (rl *MemoryRateStore) cleanupLoop(every time.Duration) {
	defer close(rl.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup removes keys with no request in the last window
func (rl *MemoryRateStore) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)
	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RedisRateStore shares a fixed-window counter between instances.
type RedisRateStore struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisClient connects using a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func NewRedisRateStore(client *redis.Client, prefix string, limit int, window time.Duration) *RedisRateStore {
	return &RedisRateStore{client: client, prefix: prefix, limit: limit, window: window}
}

// allowScript counts a hit and starts the window on the first one. The TTL
// check also repairs a counter left without expiry, so a key can never
// block forever.
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

func (s *RedisRateStore) Allow(ctx context.Context, key string) (bool, error) {
	count, err := allowScript.Run(ctx, s.client, []string{s.prefix + key}, s.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis rate count: %w", err)
	}
	return count <= int64(s.limit), nil
}

// RateLimit rejects callers that exceed the store's budget.
// Store errors fail open so an outage of the shared store does not lock users out.
func RateLimit(store RateStore) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			allowed, err := store.Allow(r.Context(), ip)
			if err != nil {
				slog.Error("rate limit store failed", "error", err, "ip", ip)
				allowed = true
			}

			if !allowed {
				slog.Warn("rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
				)
				http.Error(w, "Prea multe încercări. Încearcă din nou mai târziu.", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}
