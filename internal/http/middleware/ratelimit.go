package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/wolfman30/schedulepay/pkg/logging"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter caps requests per client IP. With Redis the window is shared
// across instances; without it each process keeps its own token buckets.
type RateLimiter struct {
	rdb      *redis.Client
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
	logger   *logging.Logger

	mu      sync.Mutex
	local   map[string]*visitor
	nowFunc func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows limit requests per window. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, failOpen bool, logger *logging.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RateLimiter{
		rdb:      rdb,
		limit:    limit,
		window:   window,
		prefix:   "schedulepay:rl",
		failOpen: failOpen,
		logger:   logger,
		local:    make(map[string]*visitor),
		nowFunc:  time.Now,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := rl.Allow(r.Context(), clientKey(r))
		if err != nil {
			rl.logger.Warn("rate limiter error", "error", err)
			if !rl.failOpen {
				http.Error(w, "rate limiter unavailable", http.StatusServiceUnavailable)
				return
			}
			allowed = true
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow reports whether key may make another request.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if rl.rdb == nil {
		return rl.allowLocal(key), nil
	}
	count, err := rl.incr(ctx, rl.prefix+":"+key)
	if err != nil {
		return false, err
	}
	return count <= int64(rl.limit), nil
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}

func (rl *RateLimiter) allowLocal(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.nowFunc()
	v, ok := rl.local[key]
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.limit)}
		rl.local[key] = v
	}
	v.lastSeen = now

	// evict idle visitors while holding the lock
	if len(rl.local) > 1024 {
		cutoff := now.Add(-10 * rl.window)
		for k, other := range rl.local {
			if other.lastSeen.Before(cutoff) {
				delete(rl.local, k)
			}
		}
	}
	return v.limiter.AllowN(now, 1)
}

func clientKey(r *http.Request) string {
	if xri := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
