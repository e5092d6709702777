package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// openRateInterval is how often a user may open a ticket.
	openRateInterval = 10 * time.Second

	// openRateBurst is how many tickets a user may open at once.
	openRateBurst = 1

	// limiterIdleTTL is how long an unused limiter is kept for.
	limiterIdleTTL = 10 * time.Minute
)

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// openLimiter limits how often each user can open tickets.
type openLimiter struct {
	mut   sync.Mutex
	every rate.Limit
	burst int
	users map[string]*userLimiter

	// now is replaced in tests.
	now func() time.Time
}

func newOpenLimiter(interval time.Duration, burst int) *openLimiter {
	return &openLimiter{
		every: rate.Every(interval),
		burst: burst,
		users: make(map[string]*userLimiter),
		now:   time.Now,
	}
}

// Allow reports whether the user may open a ticket now.
func (o *openLimiter) Allow(userID string) bool {
	o.mut.Lock()
	defer o.mut.Unlock()

	now := o.now()
	o.evict(now)

	u, ok := o.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(o.every, o.burst)}
		o.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

func (o *openLimiter) evict(now time.Time) {
	for id, u := range o.users {
		if now.Sub(u.lastSeen) > limiterIdleTTL {
			delete(o.users, id)
		}
	}
}
