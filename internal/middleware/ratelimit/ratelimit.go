// Package ratelimit throttles write requests per client with a fixed
// one-minute window, either in process or shared through Redis.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"charitytracker/internal/metrics"
)

// Window is the length of one rate limit window.
const Window = time.Minute

// Allower decides whether one more request from key fits in the current window.
type Allower interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Limiter is the in-process fixed window limiter.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time

	requestsPerMinute int
	cleanupInterval   time.Duration
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	Now               func() time.Time
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine; call Stop
// to release it.
func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	rl := &Limiter{
		clients:           make(map[string]*clientInfo),
		stopCleanup:       make(chan struct{}),
		now:               config.Now,
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow never fails; the error is always nil.
func (rl *Limiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, ok := rl.clients[key]
	if !ok || now.Sub(client.windowStart) >= Window {
		rl.clients[key] = &clientInfo{windowStart: now, requests: 1}
		return true, nil
	}

	client.requests++
	return client.requests <= rl.requestsPerMinute, nil
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries drops clients whose window ended.
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, client := range rl.clients {
		if now.Sub(client.windowStart) >= Window {
			delete(rl.clients, key)
		}
	}
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop shuts down the cleanup goroutine.
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Middleware applies an Allower to requests keyed by client IP.
type Middleware struct {
	allower   Allower
	extractIP func(*http.Request) string
	onLimit   func(http.ResponseWriter, *http.Request)
	metrics   *metrics.Metrics
}

// NewMiddleware wires allower. onLimit renders the 429 response; a plain
// text body is used when it is nil.
func NewMiddleware(allower Allower, extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) *Middleware {
	return &Middleware{
		allower:   allower,
		extractIP: extractIP,
		onLimit:   onLimit,
	}
}

// WithMetrics reports every decision to pm.
func (m *Middleware) WithMetrics(pm *metrics.Metrics) *Middleware {
	m.metrics = pm
	return m
}

// Handler throttles the wrapped handler. A failing Allower lets the request
// through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.extractIP(r)

		ok, err := m.allower.Allow(r.Context(), key)
		if err != nil {
			m.metrics.RateLimitDecision(metrics.DecisionError)
			slog.WarnContext(r.Context(), "Rate limiter unavailable, allowing request",
				"client_ip", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			m.metrics.RateLimitDecision(metrics.DecisionRejected)
			w.Header().Set("Retry-After", strconv.Itoa(int(Window.Seconds())))
			if m.onLimit != nil {
				m.onLimit(w, r)
			} else {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			}
			return
		}

		m.metrics.RateLimitDecision(metrics.DecisionAllowed)
		next.ServeHTTP(w, r)
	})
}
