package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/storyfront/internal/util"
)

// maxTrackedClients bounds the per-client limiter table.
const maxTrackedClients = 10000

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits comment submissions per client IP. API paths get a JSON
// 429 and form posts a plain text one.
type RateLimiter struct {
	rate  rate.Limit
	burst int

	// idle is how long a client must be quiet before its bucket is full again
	// and it can be forgotten.
	idle time.Duration
	now  func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

// NewRateLimiter allows rps requests per second per client with bursts of up
// to burst requests.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate.Limit(rps),
		burst:   burst,
		idle:    time.Duration(float64(burst) / rps * float64(time.Second)),
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// allow takes one token from ip's bucket.
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[ip]
	if !ok {
		if len(rl.clients) >= maxTrackedClients {
			rl.pruneLocked(now)
		}
		c = &client{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// pruneLocked forgets clients whose bucket has refilled. If every client is
// active the table starts over.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.idle {
			delete(rl.clients, ip)
		}
	}
	if len(rl.clients) >= maxTrackedClients {
		rl.clients = make(map[string]*client)
	}
}

func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// retryAfter is the whole number of seconds until one token is back.
func (rl *RateLimiter) retryAfter() string {
	return strconv.Itoa(int(math.Ceil(1 / float64(rl.rate))))
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := util.ClientIP(r)
			if rl.allow(ip) {
				next.ServeHTTP(w, r)
				return
			}

			slog.Warn("comment rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", rl.retryAfter())
			if isAPIPath(r.URL.Path) {
				WriteAPIError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down.", nil)
				return
			}
			http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
		})
	}
}
