package main

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/DanieloDark/philemma/internal/logging"
)

// maxTrackedClients bounds the per-client limiter table.
const maxTrackedClients = 4096

// rateLimiter applies a token bucket per client address.
type rateLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients *lru.Cache[string, *rate.Limiter]
}

func newRateLimiter(perSecond float64, burst int) (*rateLimiter, error) {
	clients, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		return nil, err
	}
	return &rateLimiter{limit: rate.Limit(perSecond), burst: burst, clients: clients}, nil
}

func (rl *rateLimiter) limiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.clients.Get(client); ok {
		return l
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.clients.Add(client, l)
	return l
}

// Middleware rejects requests beyond the client's budget with 429.
func (rl *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		if !rl.limiter(client).Allow() {
			retry := int(math.Ceil(1 / float64(rl.limit)))
			w.Header().Set("Retry-After", fmt.Sprintf("%d", max(retry, 1)))
			logging.LoggerFromContext(r.Context()).Warn("rate_limited", "client", client)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func corsMiddleware(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Cache"},
	})
}
