package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const initialBackoff = 500 * time.Millisecond

// Limiter paces calls to one upstream API and tracks quota back-off
type Limiter struct {
	limiter   *rate.Limiter
	name      string
	perMinute int
	mu        sync.Mutex
	backoff time.Duration
	maxWait time.Duration
}

// NewLimiter creates a new rate limiter.
// perMinute is the upstream quota for this API.
func NewLimiter(name string, perMinute int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	rps := float64(perMinute) / 60.0
	// Burst of 1/10th of the quota, capped so a burst never trips the minute window
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	if burst > 5 {
		burst = 5
	}

	return &Limiter{
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		name:      name,
		perMinute: perMinute,
		backoff:   initialBackoff,
		maxWait:   time.Minute,
	}
}

// Wait blocks until a token is available or context is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// SignalRateLimited doubles the back-off after the upstream reported an
// exhausted quota
func (l *Limiter) SignalRateLimited() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.backoff *= 2
	if l.backoff > l.maxWait {
		l.backoff = l.maxWait
	}
}

// ResetBackoff resets the backoff duration after successful request
func (l *Limiter) ResetBackoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoff = initialBackoff
}

// GetBackoff returns the current backoff duration
func (l *Limiter) GetBackoff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backoff
}

// Sleep waits for the current back-off or until ctx is done
func (l *Limiter) Sleep(ctx context.Context) error {
	t := time.NewTimer(l.GetBackoff())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}

// MultiLimiter keeps one limiter per API name. Tushare quotas are counted
// per interface, so every api_name gets its own bucket.
type MultiLimiter struct {
	limiters  map[string]*Limiter
	perMinute int
	mu        sync.RWMutex
}

// NewMultiLimiter creates a multi-limiter whose lazily created limiters
// allow perMinute calls each
func NewMultiLimiter(perMinute int) *MultiLimiter {
	return &MultiLimiter{
		limiters:  make(map[string]*Limiter),
		perMinute: perMinute,
	}
}

// Add registers a limiter with its own quota
func (m *MultiLimiter) Add(name string, perMinute int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[name] = NewLimiter(name, perMinute)
}

// Get returns the limiter for name, creating it with the default quota
func (m *MultiLimiter) Get(name string) *Limiter {
	m.mu.RLock()
	l, ok := m.limiters[name]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.limiters[name]; ok {
		return l
	}
	l = NewLimiter(name, m.perMinute)
	m.limiters[name] = l
	return l
}

// Names returns the APIs seen so far, sorted
func (m *MultiLimiter) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.limiters))
	for name := range m.limiters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status is a point-in-time view of one limiter
type Status struct {
	API       string `json:"api"`
	PerMinute int    `json:"per_minute"`
	BackoffMS int64  `json:"backoff_ms"`
}

// Status reports every limiter, sorted by API name
func (m *MultiLimiter) Status() []Status {
	names := m.Names()
	out := make([]Status, 0, len(names))
	for _, name := range names {
		l := m.Get(name)
		out = append(out, Status{
			API:       l.Name(),
			PerMinute: l.perMinute,
			BackoffMS: l.GetBackoff().Milliseconds(),
		})
	}
	return out
}
