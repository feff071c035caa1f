package device

import (
	"errors"
	"sync"
	"time"

	"timecircuits/internal/clock"
	"timecircuits/internal/timecodec"
)

var ErrInvalidDateTime = errors.New("invalid date/time")

// SystemRTC stands in for a battery-backed real-time clock. It keeps wall
// fields as the host clock plus a delta; Adjust moves the delta. The host
// clock is maintained by the OS, so it never reports lost power.
type SystemRTC struct {
	mu    sync.Mutex
	clock clock.Clock
	delta time.Duration
}

// NewSystemRTC starts out showing the local time of loc.
func NewSystemRTC(c clock.Clock, loc *time.Location) *SystemRTC {
	if loc == nil {
		loc = time.UTC
	}
	_, off := c.Now().In(loc).Zone()
	return &SystemRTC{clock: c, delta: time.Duration(off) * time.Second}
}

func (r *SystemRTC) wall() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clock.Now().UTC().Add(r.delta)
}

func (r *SystemRTC) Now() timecodec.DateTime {
	t := r.wall()
	return timecodec.DateTime{
		Calendar: timecodec.Calendar{
			Year:   t.Year(),
			Month:  int(t.Month()),
			Day:    t.Day(),
			Hour:   t.Hour(),
			Minute: t.Minute(),
		},
		Second: t.Second(),
	}
}

// Adjust sets the wall fields to dt, keeping the sub-second phase of the
// host clock so Pulse stays aligned with it.
func (r *SystemRTC) Adjust(dt timecodec.DateTime) error {
	if dt.Year < timecodec.MinYear || dt.Year > timecodec.MaxYear ||
		dt.Month < 1 || dt.Month > 12 ||
		dt.Day < 1 || dt.Day > timecodec.DaysInMonth(dt.Month, dt.Year) ||
		dt.Hour < 0 || dt.Hour > 23 || dt.Minute < 0 || dt.Minute > 59 ||
		dt.Second < 0 || dt.Second > 59 {
		return ErrInvalidDateTime
	}
	target := time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, 0, time.UTC)

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now().UTC()
	r.delta = target.Sub(now.Truncate(time.Second))
	return nil
}

// Pulse is high for the first half of every second.
func (r *SystemRTC) Pulse() bool {
	return r.wall().Nanosecond() < int(500*time.Millisecond)
}

func (r *SystemRTC) LostPower() bool { return false }
