package bot

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// maxTrackedUsers caps the limiter memory.
const maxTrackedUsers = 10000

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiter is a token bucket per Discord user.
type userLimiter struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	limit   rate.Limit
	burst   int
	max     int
	buckets map[string]*userBucket
}

func newUserLimiter(clock clockwork.Clock, perSecond float64, burst int) *userLimiter {
	return &userLimiter{
		clock:   clock,
		limit:   rate.Limit(perSecond),
		burst:   burst,
		max:     maxTrackedUsers,
		buckets: map[string]*userBucket{},
	}
}

func (l *userLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	bucket, ok := l.buckets[userID]
	if !ok {
		if len(l.buckets) >= l.max {
			l.evict(now)
		}

		bucket = &userBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = bucket
	}

	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// evict forgets every bucket that refilled, it is the same as a new one.
// If none did, the least recently seen bucket is dropped.
func (l *userLimiter) evict(now time.Time) {
	var (
		oldestID string
		oldest   time.Time
	)

	for id, bucket := range l.buckets {
		if bucket.limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.buckets, id)
			continue
		}

		if oldestID == "" || bucket.lastSeen.Before(oldest) {
			oldestID, oldest = id, bucket.lastSeen
		}
	}

	if len(l.buckets) >= l.max && oldestID != "" {
		delete(l.buckets, oldestID)
	}
}
