package fetch

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces outgoing requests evenly. One limiter is shared by every
// caller of a Client, so catalog downloads, searches and completions queue
// behind each other.
type RateLimiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
	now      func() time.Time
}

func NewRateLimiter(perSecond int) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(perSecond), now: time.Now}
}

// Wait blocks until the caller's slot comes up or ctx is done. A caller that
// gives up hands its slot back when nobody has queued behind it.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	slot := r.reserve()
	delay := slot.Sub(r.now())
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.release(slot)
		return ctx.Err()
	}
}

func (r *RateLimiter) reserve() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.now()
	if r.next.After(slot) {
		slot = r.next
	}
	r.next = slot.Add(r.interval)
	return slot
}

func (r *RateLimiter) release(slot time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next.Equal(slot.Add(r.interval)) {
		r.next = slot
	}
}
