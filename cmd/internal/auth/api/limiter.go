package authapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/httpx"
)

// sweepEvery bounds how many recorded failures pass between stale-key sweeps.
const sweepEvery = 256

// loginLimiter counts failed logins per client IP over a sliding window.
type loginLimiter struct {
	mu     sync.Mutex
	events map[string][]time.Time
	limit  int
	window time.Duration
	writes int
}

func newLoginLimiter(limit int, window time.Duration) *loginLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &loginLimiter{
		events: make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

// Blocked reports whether key has reached the failure limit at now, and how
// long until the oldest failure leaves the window.
func (l *loginLimiter) Blocked(key string, now time.Time) (bool, time.Duration) {
	if l == nil || key == "" {
		return false, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	evs := l.pruneLocked(key, now)
	if len(evs) < l.limit {
		return false, 0
	}
	retry := evs[0].Add(l.window).Sub(now)
	if retry < time.Second {
		retry = time.Second
	}
	return true, retry
}

// Fail records one failed attempt for key.
func (l *loginLimiter) Fail(key string, now time.Time) {
	if l == nil || key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	evs := l.pruneLocked(key, now)
	l.events[key] = append(evs, now)

	l.writes++
	if l.writes >= sweepEvery {
		l.writes = 0
		for k := range l.events {
			l.pruneLocked(k, now)
		}
	}
}

func (l *loginLimiter) pruneLocked(key string, now time.Time) []time.Time {
	evs := l.events[key]
	cut := now.Add(-l.window)
	dst := evs[:0]
	for _, t := range evs {
		if t.After(cut) {
			dst = append(dst, t)
		}
	}
	if len(dst) == 0 {
		delete(l.events, key)
		return nil
	}
	l.events[key] = dst
	return dst
}

func (l *loginLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func limiterKey(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration, msg string) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter/time.Second), 10))
	}
	httpx.WriteMessage(w, http.StatusTooManyRequests, false, msg)
}
