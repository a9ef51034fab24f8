package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyLimiter struct {
	lim *rate.Limiter
	ts  time.Time
}

type limiterSet struct {
	mu  sync.Mutex
	m   map[string]*keyLimiter
	r   rate.Limit
	b   int
	ttl time.Duration
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kl, ok := s.m[key]; ok {
		kl.ts = time.Now()
		return kl.lim
	}
	lim := rate.NewLimiter(s.r, s.b)
	s.m[key] = &keyLimiter{lim: lim, ts: time.Now()}
	return lim
}

func (s *limiterSet) gc() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for k, v := range s.m {
			if now.Sub(v.ts) > s.ttl {
				delete(s.m, k)
			}
		}
		s.mu.Unlock()
	}
}

// RateLimit applies a per-client-IP token bucket.
func RateLimit(r rate.Limit, burst int) func(http.Handler) http.Handler {
	set := &limiterSet{m: make(map[string]*keyLimiter), r: r, b: burst, ttl: 2 * time.Minute}
	go set.gc()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !set.get(clientIP(req.RemoteAddr)).Allow() {
				http.Error(w, `{"error":{"code":"RATE_LIMITED","message":"Too many requests"}}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func clientIP(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
