package util

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits per hostname (www.amazon.com, etc).
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}

// Pacer spaces out navigations: a per-host token bucket plus a uniform random
// pause in [Min, Max]. It only blocks the calling goroutine.
type Pacer struct {
	Hosts *HostLimiter
	Min   time.Duration
	Max   time.Duration

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPacer(hosts *HostLimiter, min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{Hosts: hosts, Min: min, Max: max, sleep: sleepCtx}
}

// NoPacing never waits.
func NoPacing() *Pacer { return &Pacer{} }

// Delay returns the next random pause.
func (p *Pacer) Delay() time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + rand.N(p.Max-p.Min+1)
}

// Wait blocks until a request to raw may proceed.
func (p *Pacer) Wait(ctx context.Context, raw string) error {
	if p == nil {
		return ctx.Err()
	}
	if p.Hosts != nil {
		if err := p.Hosts.WaitURL(ctx, raw); err != nil {
			return err
		}
	}
	d := p.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
