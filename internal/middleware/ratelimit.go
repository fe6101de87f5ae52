package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/combohub/internal/handlers"
	"github.com/HammerMeetNail/combohub/internal/logging"
)

// Scripter is the part of the redis client the limiter needs.
type Scripter interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RateLimiter caps mutations per key within a fixed window.
type RateLimiter struct {
	redis  Scripter
	limit  int64
	window time.Duration
	prefix string
	keyFn  func(r *http.Request) string
	// failOpen lets requests through when redis is unavailable.
	failOpen bool
}

func NewRateLimiter(redis Scripter, limit int64, window time.Duration, prefix string, keyFn func(r *http.Request) string, failOpen bool) *RateLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RateLimiter{
		redis:    redis,
		limit:    limit,
		window:   window,
		prefix:   prefix,
		keyFn:    keyFn,
		failOpen: failOpen,
	}
}

// hitScript counts a hit, starts the window on the first one and returns the
// count with the seconds left in the window.
const hitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("TTL", KEYS[1])}
`

func (rl *RateLimiter) hit(ctx context.Context, key string) (count, retryAfter int64, err error) {
	values, err := rl.redis.Eval(ctx, hitScript, []string{key}, int64(rl.window/time.Second)).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(values))
	}
	retryAfter = values[1]
	if retryAfter < 1 {
		retryAfter = int64(rl.window / time.Second)
	}
	return values[0], retryAfter, nil
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.redis == nil || rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		subject := ""
		if rl.keyFn != nil {
			subject = rl.keyFn(r)
		}
		if subject == "" {
			subject = GetClientIP(r)
		}

		count, retryAfter, err := rl.hit(r.Context(), rl.prefix+subject)
		if err != nil {
			logging.Error("Rate limit check failed", map[string]interface{}{
				"error":     err.Error(),
				"fail_open": rl.failOpen,
			})
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusServiceUnavailable, "Rate limiting temporarily unavailable")
			return
		}

		if count > rl.limit {
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			writeError(w, http.StatusTooManyRequests, "Too many actions, slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ViewerKey limits per signed-in viewer; anonymous requests fall back to the
// client IP.
func ViewerKey(r *http.Request) string {
	if viewer := handlers.GetViewerFromContext(r.Context()); viewer != nil {
		return "user:" + viewer.ID.String()
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
