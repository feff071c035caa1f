package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"timecircuits/internal/models"
	"timecircuits/internal/repository"
	"timecircuits/internal/timecodec"
)

const (
	// rtcWindowTop is the last year written to the hardware clock; later
	// years are shifted down in 28-year steps, which keeps weekdays and leap
	// years aligned.
	rtcWindowTop = 2050
	rtcYearStep  = 28

	// A sync that moves true time by more than this drops the travel offset.
	maxSyncDrift = 30

	rolloverYearOffset = 2016
)

var errRTCGlitch = errors.New("rtc returned out-of-range fields")

// steppedBackOff waits short for the first `after` attempts, then long.
type steppedBackOff struct {
	short, long time.Duration
	after       int
	n           int
}

func (b *steppedBackOff) NextBackOff() time.Duration {
	b.n++
	if b.n <= b.after {
		return b.short
	}
	return b.long
}

func (b *steppedBackOff) Reset() { b.n = 0 }

func newRTCBackOff() backoff.BackOff {
	return &steppedBackOff{short: 50 * time.Millisecond, long: 100 * time.Millisecond, after: 5}
}

func newNTPBackOff() backoff.BackOff {
	return &steppedBackOff{short: 50 * time.Millisecond, long: 300 * time.Millisecond, after: 3}
}

const pumpInterval = 10 * time.Millisecond

// pumpTimer waits out a retry delay on the loop goroutine while keeping the
// audio pump serviced.
type pumpTimer struct {
	pump  func()
	sleep func(time.Duration)
	c     chan time.Time
}

func newPumpTimer(pump func()) *pumpTimer {
	return &pumpTimer{pump: pump, sleep: time.Sleep, c: make(chan time.Time, 1)}
}

func (p *pumpTimer) Start(d time.Duration) {
	for d > 0 {
		p.pump()
		step := min(d, pumpInterval)
		p.sleep(step)
		d -= step
	}
	p.pump()
	select {
	case p.c <- time.Now():
	default:
	}
}

func (p *pumpTimer) Stop() {}

func (p *pumpTimer) C() <-chan time.Time { return p.c }

func validDateTime(dt timecodec.DateTime) bool {
	return dt.Year >= 1 &&
		dt.Month >= 1 && dt.Month <= 12 &&
		dt.Day >= 1 && dt.Day <= 31 &&
		dt.Hour >= 0 && dt.Hour <= 23 &&
		dt.Minute >= 0 && dt.Minute <= 59 &&
		dt.Second >= 0 && dt.Second <= 59
}

// readRTC returns the first valid read of the true-time source. When every
// retry fails the last good value is used instead.
func (c *core) readRTC(ctx context.Context) timecodec.DateTime {
	var dt timecodec.DateTime
	retries := 0

	op := func() error {
		dt = c.RTC.Now()
		if !validDateTime(dt) {
			return errRTCGlitch
		}
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(c.rtcBackOff(), uint64(c.cfg.TimeSync.RTCRetries)), ctx)
	err := backoff.RetryNotifyWithTimer(op, b, func(error, time.Duration) { retries++ }, newPumpTimer(c.Audio.Pump))

	if retries > 0 {
		c.Metrics.RTCRetries.Add(float64(retries))
		c.Log.Warnw("rtc_glitch", "retries", retries, "recovered", err == nil)
		c.record(ctx, models.EventRTCGlitch, "True-time source returned invalid fields",
			map[string]any{"retries": retries, "recovered": err == nil})
	}
	if err != nil {
		if validDateTime(c.st.LastRTC) {
			return c.st.LastRTC
		}
		return dt
	}
	c.st.LastRTC = dt
	return dt
}

// rtcMinutes maps a hardware read onto the real calendar.
func (c *core) rtcMinutes(rtc timecodec.DateTime) timecodec.EpochMinutes {
	return timecodec.ToMinutes(rtc.Year-c.st.Present.YearOffset, rtc.Month, rtc.Day, rtc.Hour, rtc.Minute)
}

// refreshPresent recomputes the present from true time and the offset.
func (c *core) refreshPresent(rtc timecodec.DateTime) {
	shown := c.st.Offset.Apply(c.rtcMinutes(rtc))
	c.st.Present.SetCalendar(timecodec.ToCalendar(shown))
}

type edge int

const (
	noEdge edge = iota
	risingEdge
	fallingEdge
)

// ntpResult is a finished background fetch. at is the loop clock when the
// fetch returned, so the time can be aged before it is applied.
type ntpResult struct {
	now time.Time
	at  time.Time
	err error
}

// TimeSync reconciles the hardware clock, network time and the present
// offset.
type TimeSync struct {
	*core

	loc       *time.Location
	lastPulse bool
	requested bool
	// lastSync is the true-time date of the last daily sync.
	lastSync timecodec.Calendar

	// Scheduled syncs fetch on their own goroutine; the loop applies the
	// result. At most one fetch is in flight.
	inflight bool
	results  chan ntpResult
}

func newTimeSync(c *core) *TimeSync {
	loc, err := time.LoadLocation(c.cfg.TimeSync.Timezone)
	if err != nil {
		c.Log.Warnw("timezone_invalid", "zone", c.cfg.TimeSync.Timezone, "err", err)
		loc = time.UTC
	}
	return &TimeSync{core: c, loc: loc, results: make(chan ntpResult, 1)}
}

// Edge samples the half-second pulse and reports a transition.
func (t *TimeSync) Edge() edge {
	p := t.RTC.Pulse()
	if p == t.lastPulse {
		return noEdge
	}
	t.lastPulse = p
	if p {
		return risingEdge
	}
	return fallingEdge
}

// RequestSync schedules a network sync for the next rising edge.
func (t *TimeSync) RequestSync() { t.requested = true }

// Boot restores the present mapping and tries a first network sync.
func (t *TimeSync) Boot(ctx context.Context) {
	po, err := t.Offsets.Load(ctx)
	switch {
	case err == nil:
		t.st.Offset = po.Offset
		t.st.Present.YearOffset = po.YearOffset
	case !errors.Is(err, repository.ErrNotFound):
		t.Log.Warnw("offset_load_failed", "err", err)
	}

	if t.RTC.LostPower() {
		t.Log.Warnw("rtc_lost_power")
		t.st.Offset = models.VirtualOffset{}
		t.st.Present.YearOffset = 0
	}
	if !t.cfg.Clock.TravelPersistent {
		t.st.Offset = models.VirtualOffset{}
	}

	if err := t.Sync(ctx); err != nil {
		t.Log.Warnw("ntp_sync_failed", "err", err)
	}
	rtc := t.readRTC(ctx)
	t.checkRollover(ctx, &rtc)
	t.refreshPresent(rtc)
	t.Metrics.OffsetMinutes.Set(float64(signedMinutes(t.st.Offset)))
}

// OnRising runs once per second and returns the true time it read.
func (t *TimeSync) OnRising(ctx context.Context) timecodec.DateTime {
	t.setColon(true)

	rtc := t.readRTC(ctx)
	t.checkRollover(ctx, &rtc)
	t.refreshPresent(rtc)

	if t.st.Phase != models.PhaseIdle {
		return rtc
	}
	if t.requested || t.dailyDue(rtc) {
		t.requested = false
		t.lastSync = t.trueDate(rtc)
		t.startSync(ctx)
	}
	return rtc
}

// startSync begins a background fetch unless one is already running.
func (t *TimeSync) startSync(ctx context.Context) {
	if t.inflight {
		return
	}
	if t.NTP == nil {
		t.remapWindow(ctx)
		return
	}
	t.inflight = true
	go func() {
		now, err := t.fetch(ctx)
		t.results <- ntpResult{now: now, at: t.Clock.Now(), err: err}
	}()
}

// Poll applies a finished background fetch. It leaves the result queued
// while a travel sequence runs.
func (t *TimeSync) Poll(ctx context.Context) {
	if !t.inflight || t.st.Phase != models.PhaseIdle {
		return
	}
	select {
	case r := <-t.results:
		t.inflight = false
		if r.err == nil {
			r.now = r.now.Add(t.Clock.Since(r.at))
		}
		if err := t.finish(ctx, r.now, r.err); err != nil {
			t.Log.Warnw("ntp_sync_failed", "err", err)
		}
		t.refreshPresent(t.readRTC(ctx))
	default:
	}
}

func (t *TimeSync) OnFalling() { t.setColon(false) }

func (t *TimeSync) setColon(on bool) {
	t.st.Colon = on
	for _, d := range t.displays() {
		d.SetColon(on)
	}
}

func (t *TimeSync) trueDate(rtc timecodec.DateTime) timecodec.Calendar {
	return timecodec.Calendar{Year: rtc.Year - t.st.Present.YearOffset, Month: rtc.Month, Day: rtc.Day}
}

// dailyDue reports whether the sync point has passed on a day without a sync.
func (t *TimeSync) dailyDue(rtc timecodec.DateTime) bool {
	if t.trueDate(rtc) == t.lastSync {
		return false
	}
	ts := t.cfg.TimeSync
	at := (rtc.Hour*60+rtc.Minute)*60 + rtc.Second
	point := (ts.SyncHour*60+ts.SyncMinute)*60 + ts.SyncSecond
	return at >= point
}

// Sync fetches network time and writes it to the hardware clock, blocking
// until the retries are done. Only boot calls it; the loop uses startSync.
func (t *TimeSync) Sync(ctx context.Context) error {
	if t.NTP == nil {
		t.remapWindow(ctx)
		return ErrTimeUnavailable
	}

	now, err := t.fetch(ctx)
	return t.finish(ctx, now, err)
}

// fetch asks the network source with bounded retries. It touches no loop
// state and may run on any goroutine.
func (t *TimeSync) fetch(ctx context.Context) (time.Time, error) {
	op := func() (time.Time, error) {
		now, err := t.NTP.Fetch(ctx)
		if errors.Is(err, ErrTimeUnavailable) {
			return now, backoff.Permanent(err)
		}
		return now, err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(t.ntpBackOff(), uint64(t.cfg.TimeSync.NTPRetries)), ctx)
	return backoff.RetryWithData(op, b)
}

func (t *TimeSync) finish(ctx context.Context, now time.Time, err error) error {
	if err != nil {
		t.Metrics.NTPSyncs.WithLabelValues("error").Inc()
		t.remapWindow(ctx)
		return fmt.Errorf("fetch network time: %w", err)
	}
	t.apply(ctx, now.In(t.loc))
	t.Metrics.NTPSyncs.WithLabelValues("ok").Inc()
	return nil
}

func (t *TimeSync) apply(ctx context.Context, tl time.Time) {
	before := t.rtcMinutes(t.readRTC(ctx))

	year, yoffs := tl.Year(), 0
	for year > rtcWindowTop {
		year -= rtcYearStep
		yoffs -= rtcYearStep
	}
	dt := timecodec.DateTime{
		Calendar: timecodec.Calendar{Year: year, Month: int(tl.Month()), Day: tl.Day(), Hour: tl.Hour(), Minute: tl.Minute()},
		Second:   tl.Second(),
	}
	if err := t.RTC.Adjust(dt); err != nil {
		t.Log.Errorw("rtc_adjust_failed", "err", err)
		return
	}
	t.st.LastRTC = dt
	t.st.Present.YearOffset = yoffs

	after := timecodec.ToMinutes(tl.Year(), int(tl.Month()), tl.Day(), tl.Hour(), tl.Minute())
	dropped := false
	if !t.st.Offset.IsZero() && minuteDistance(before, after) > maxSyncDrift {
		t.st.Offset = models.VirtualOffset{}
		dropped = true
	}

	t.lastSync = t.trueDate(dt)
	t.saveOffsets(ctx)
	t.refreshPresent(dt)
	t.Log.Infow("ntp_synced", "time", tl.Format(time.RFC3339), "year_offset", yoffs, "offset_dropped", dropped)
	t.record(ctx, models.EventNTPSync, "Hardware clock set from network time",
		map[string]any{"time": tl.Format(time.RFC3339), "offset_dropped": dropped})
}

// remapWindow shifts a hardware year beyond the window back into it.
func (t *TimeSync) remapWindow(ctx context.Context) {
	rtc := t.readRTC(ctx)
	if rtc.Year <= rtcWindowTop {
		return
	}
	yoffs := t.st.Present.YearOffset
	for rtc.Year > rtcWindowTop {
		rtc.Year -= rtcYearStep
		yoffs -= rtcYearStep
	}
	if err := t.RTC.Adjust(rtc); err != nil {
		t.Log.Errorw("rtc_adjust_failed", "err", err)
		return
	}
	t.st.LastRTC = rtc
	t.st.Present.YearOffset = yoffs
	t.saveOffsets(ctx)
}

// checkRollover wraps true time from year 9999 back to year 1 while keeping
// the shown present where it is.
func (t *TimeSync) checkRollover(ctx context.Context, rtc *timecodec.DateTime) {
	if rtc.Year-t.st.Present.YearOffset <= timecodec.MaxYear {
		return
	}
	t.st.Offset = t.st.Offset.Rollover()
	t.st.Present.YearOffset = rolloverYearOffset
	rtc.Year = rolloverYearOffset + 1
	if err := t.RTC.Adjust(*rtc); err != nil {
		t.Log.Errorw("rtc_adjust_failed", "err", err)
	}
	t.st.LastRTC = *rtc
	t.saveOffsets(ctx)
	t.Metrics.Rollovers.Inc()
	t.Log.Infow("rollover", "offset_minutes", signedMinutes(t.st.Offset))
	t.record(ctx, models.EventRollover, "True time wrapped past year 9999", nil)
}

func minuteDistance(a, b timecodec.EpochMinutes) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
