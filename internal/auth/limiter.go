// File: internal/auth/limiter.go
package auth

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// sendLimiter keeps one token bucket per key. Idle buckets expire from the cache.
type sendLimiter struct {
	mu       sync.Mutex
	cache    *gocache.Cache
	interval time.Duration
	burst    int
}

func newSendLimiter(interval time.Duration, burst int) *sendLimiter {
	idle := interval * time.Duration(burst+1)
	return &sendLimiter{
		cache:    gocache.New(idle, idle),
		interval: interval,
		burst:    burst,
	}
}

// Allow reports whether key may act at now and consumes a token if so.
func (l *sendLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lim *rate.Limiter
	if v, ok := l.cache.Get(key); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(rate.Every(l.interval), l.burst)
	}
	l.cache.SetDefault(key, lim)
	return lim.AllowN(now, 1)
}
