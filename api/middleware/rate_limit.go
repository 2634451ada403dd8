package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP and forgets IPs idle for ttl.
type RateLimiter struct {
	mutex   sync.Mutex
	clients map[string]*rateClient
	rate    rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(r rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rateClient),
		rate:    r,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

func (l *RateLimiter) Allow(ip string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	client, ok := l.clients[ip]
	if !ok {
		l.evictIdle(now)
		client = &rateClient{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

// evictIdle must be called with the mutex held.
func (l *RateLimiter) evictIdle(now time.Time) {
	if l.ttl == 0 {
		return
	}
	cutoff := now.Add(-l.ttl)
	for ip, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

func (l *RateLimiter) retryAfterSeconds() int {
	if l.rate <= 0 {
		return 60
	}
	seconds := int(1 / float64(l.rate))
	if seconds < 1 {
		return 1
	}
	return seconds
}
