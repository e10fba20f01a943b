package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"codequest/internal/metrics"
	"codequest/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per client. Authenticated requests are keyed by user id,
// anonymous ones by remote IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 3
	}
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{visitors: make(map[string]*visitor), rps: rate.Limit(rps), burst: burst}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup forgets visitors idle for longer than maxIdle and returns how many were removed.
func (l *RateLimiter) Cleanup(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, v := range l.visitors {
		if time.Since(v.lastSeen) > maxIdle {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(clientKey(r)).Allow() {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(1))
			utils.HandleError(w, utils.NewApiError(http.StatusTooManyRequests, "Too many requests, please slow down"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if userID, ok := utils.UserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
