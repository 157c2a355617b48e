package middleware

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

// limiterIdle is how long an unused limiter is kept
const limiterIdle = 10 * time.Minute

// RateLimitOptions configures the per-user token bucket
type RateLimitOptions struct {
	// Interval between tokens; zero disables limiting
	Interval time.Duration
	Burst    int
	// Exempt users are never limited
	Exempt map[int64]struct{}
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter drops updates of users who exceed their token bucket
type RateLimiter struct {
	opts   RateLimitOptions
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	users     map[int64]*userLimiter
	lastSweep time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(opts RateLimitOptions, logger *zap.Logger) *RateLimiter {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &RateLimiter{
		opts:   opts,
		logger: logger,
		now:    time.Now,
		users:  make(map[int64]*userLimiter),
	}
}

// Middleware returns the telebot middleware
func (l *RateLimiter) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || l.Allow(sender.ID) {
				return next(c)
			}
			l.logger.Warn("Rate limit exceeded", zap.Int64("chat_id", sender.ID))
			return nil
		}
	}
}

// Allow takes one token from the bucket of userID
func (l *RateLimiter) Allow(userID int64) bool {
	if l.opts.Interval <= 0 {
		return true
	}
	if _, ok := l.opts.Exempt[userID]; ok {
		return true
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(rate.Every(l.opts.Interval), l.opts.Burst)}
		l.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

// Len returns the number of tracked users
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < limiterIdle {
		return
	}
	l.lastSweep = now
	for id, u := range l.users {
		if now.Sub(u.lastSeen) > limiterIdle {
			delete(l.users, id)
		}
	}
}
