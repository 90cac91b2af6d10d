package redisserver

import (
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// limiterRegistry holds one token bucket per client IP.
type limiterRegistry struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    int
}

func newLimiterRegistry(commandsPerSecond int) *limiterRegistry {
	return &limiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		limit:    commandsPerSecond,
	}
}

// Allow reports whether a command from addr is within the per-IP
// budget. A non-positive limit disables throttling.
func (r *limiterRegistry) Allow(addr net.Addr) bool {
	if r.limit <= 0 {
		return true
	}

	ip := addr.String()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	r.mu.RLock()
	limiter, exists := r.limiters[ip]
	r.mu.RUnlock()

	if !exists {
		r.mu.Lock()
		// Double-check after acquiring write lock
		if limiter, exists = r.limiters[ip]; !exists {
			limiter = rate.NewLimiter(rate.Limit(r.limit), r.limit)
			r.limiters[ip] = limiter
		}
		r.mu.Unlock()
	}

	return limiter.Allow()
}
