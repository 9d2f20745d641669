package pollwindow

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusRateLimited Status = "rate_limited"
)

// Window records one polling attempt for one account over one time range.
// It is the collector's at-most-once-per-window fetch guarantee: created on
// the first attempt, updated in place on retry, never deleted.
type Window struct {
	Platform         string
	Handle           string
	WindowStart      time.Time
	WindowEnd        time.Time
	Status           Status
	PostsFound       int
	RateLimitedUntil *time.Time
	ErrorDetail      string
	Attempts         int
	UpdatedAt        time.Time
}

// Key is the canonical cache key for the window. Bounds are normalized to
// UTC seconds so overlapping scheduler runs agree on the same key.
func (w Window) Key() string {
	return Key(w.Platform, w.Handle, w.WindowStart, w.WindowEnd)
}

func Key(platform, handle string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%d|%d", platform, handle, start.UTC().Unix(), end.UTC().Unix())
}

// Fresh reports whether the entry can short-circuit a new fetch: only a
// successful attempt counts, and only within ttl of its last update.
func (w Window) Fresh(now time.Time, ttl time.Duration) bool {
	if w.Status != StatusSuccess {
		return false
	}
	if ttl <= 0 {
		return true
	}
	return now.Sub(w.UpdatedAt) < ttl
}
