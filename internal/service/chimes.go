package service

import (
	"context"
	"time"

	"timecircuits/internal/models"
	"timecircuits/internal/timecodec"
)

// Beep modes.
const (
	BeepOff = iota
	BeepOn
	Beep30s
	Beep60s
)

// Chimes fires the alarm, reminder, countdown, hourly sound and the
// seconds beep. Step runs once per rising edge.
type Chimes struct {
	*core

	lastAlarm    timecodec.Calendar
	lastReminder timecodec.Calendar
	lastHour     timecodec.Calendar
}

func newChimes(c *core) *Chimes {
	return &Chimes{core: c}
}

func (ch *Chimes) Step(ctx context.Context, rtc timecodec.DateTime, now time.Time) {
	trueCal := rtc.Calendar
	trueCal.Year -= ch.st.Present.YearOffset

	alarmBase := ch.st.Present.EffectiveCalendar()
	if ch.cfg.Clock.AlarmRTC {
		alarmBase = trueCal
	}

	alarmed := ch.alarm(ctx, alarmBase)
	ch.reminder(ctx, trueCal)
	ch.countdown(ctx, now)
	ch.hourly(trueCal, now, alarmed)
	ch.beep(now)
}

func (ch *Chimes) alarm(ctx context.Context, cal timecodec.Calendar) bool {
	a := ch.st.Alarm
	if !a.Set || !a.Enabled || cal.Hour != a.Hour || cal.Minute != a.Minute {
		return false
	}
	if cal == ch.lastAlarm || !a.Matches(timecodec.Weekday(cal.Year, cal.Month, cal.Day)) {
		return false
	}
	ch.lastAlarm = cal
	ch.play(CueAlarm, PlayInterruptMusic)
	ch.Metrics.Chimes.WithLabelValues("alarm").Inc()
	ch.Log.Infow("alarm_fired", "at", cal.String())
	ch.record(ctx, models.EventAlarm, "Alarm fired", map[string]any{"at": cal.String()})
	return true
}

func (ch *Chimes) reminder(ctx context.Context, cal timecodec.Calendar) {
	r := ch.st.Reminder
	if !r.IsSet() || cal == ch.lastReminder {
		return
	}
	if (r.Month != 0 && r.Month != cal.Month) || r.Day != cal.Day || r.Hour != cal.Hour || r.Minute != cal.Minute {
		return
	}
	ch.lastReminder = cal
	ch.play(CueReminder, PlayInterruptMusic)
	ch.Metrics.Chimes.WithLabelValues("reminder").Inc()
	ch.Log.Infow("reminder_fired", "at", cal.String())
	ch.record(ctx, models.EventReminder, "Reminder fired", map[string]any{"at": cal.String()})
}

func (ch *Chimes) countdown(ctx context.Context, now time.Time) {
	cd := ch.st.Countdown
	if !cd.Active() || cd.Remaining(now) > 0 {
		return
	}
	ch.st.Countdown = models.CountdownTimer{}
	ch.saveCountdown(ctx)
	ch.play(CueTimer, PlayInterruptMusic)
	ch.Metrics.Chimes.WithLabelValues("countdown").Inc()
	ch.Log.Infow("countdown_expired", "duration", cd.Duration.String())
	ch.record(ctx, models.EventCountdown, "Countdown expired", map[string]any{"duration_ms": cd.Duration.Milliseconds()})
}

func (ch *Chimes) hourly(cal timecodec.Calendar, now time.Time, alarmed bool) {
	if !ch.cfg.Clock.HourlySound || cal.Minute != 0 || cal == ch.lastHour {
		return
	}
	ch.lastHour = cal
	if alarmed || ch.st.NightMode || !ch.st.Powered || ch.st.InStartup(now) || ch.st.Phase != models.PhaseIdle {
		return
	}
	ch.play(CueHour, PlaySkipInNightMode)
	ch.Metrics.Chimes.WithLabelValues("hour").Inc()
}

func (ch *Chimes) beep(now time.Time) {
	if !ch.st.Powered || ch.st.NightMode || ch.st.Phase != models.PhaseIdle || ch.st.InStartup(now) {
		return
	}
	since := now.Sub(ch.st.BeepTimerStart)
	switch ch.st.BeepMode {
	case BeepOn:
	case Beep30s:
		if since >= 30*time.Second {
			return
		}
	case Beep60s:
		if since >= 60*time.Second {
			return
		}
	default:
		return
	}
	ch.play(CueBeep, PlaySkipInNightMode)
}
