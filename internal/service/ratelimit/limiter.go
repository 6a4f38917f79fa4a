package ratelimit

import (
	"sync"
	"time"

	"CryptoView/internal/clock"
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter is a set of token buckets keyed by client.
type Limiter struct {
	clk clock.Clock

	mu sync.Mutex
	m  map[string]*bucket
}

func New(clk clock.Clock) *Limiter {
	if clk == nil {
		clk = clock.Real()
	}
	return &Limiter{clk: clk, m: make(map[string]*bucket)}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	ok, _ := l.Reserve(key, capacity, refillPerSec)
	return ok
}

// Reserve consumes one token for key. When none is available it reports how
// long until one will be; zero if the bucket never refills.
func (l *Limiter) Reserve(key string, capacity, refillPerSec float64) (bool, time.Duration) {
	if capacity <= 0 {
		return true, 0
	}
	now := l.clk.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.refillRate <= 0 {
		return false, 0
	}
	return false, time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
}

// Prune forgets buckets untouched for longer than idle.
func (l *Limiter) Prune(idle time.Duration) int {
	now := l.clk.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.m {
		if now.Sub(b.last) > idle {
			delete(l.m, k)
			n++
		}
	}
	return n
}
