package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timecircuits/internal/models"
	"timecircuits/internal/timecodec"
)

const restartCode = "64738"

// outcome describes how a committed entry is acknowledged.
type outcome struct {
	shape   string
	invalid bool
	// silent entries play cue, if any, instead of the confirmation; delay
	// replaces the enter delay.
	silent    bool
	cue       Cue
	delay     time.Duration
	keepMusic bool
	after     []destStep
}

func invalid(shape string) outcome { return outcome{shape: shape, invalid: true} }

func status(shape, text string) outcome {
	return outcome{shape: shape, after: []destStep{{text: text, dur: statusHold}}}
}

// num parses a run of ASCII digits.
func num(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func (i *Interpreter) dispatch(ctx context.Context, digits string, now time.Time) outcome {
	switch len(digits) {
	case 2:
		return i.statusQuery(digits, now)
	case 3:
		return i.code(ctx, num(digits), now)
	case 4:
		if strings.HasPrefix(digits, "44") {
			return i.setCountdown(ctx, num(digits[2:]), now)
		}
		return i.setDate(ctx, digits, now)
	case 5:
		if digits != restartCode || i.Restarter == nil {
			return invalid("restart")
		}
		i.Log.Warnw("restart_requested")
		i.record(ctx, models.EventRestart, "Restart requested from keypad", nil)
		i.Restarter.Restart()
		return outcome{shape: "restart", silent: true, after: []destStep{{text: "REBOOTING", dur: statusHold}}}
	case 6:
		switch {
		case strings.HasPrefix(digits, "11"):
			return i.setAlarm(ctx, num(digits[2:4]), num(digits[4:6]))
		case strings.HasPrefix(digits, "77"):
			return i.setReminder(ctx, num(digits[2:4]), num(digits[4:6]), -1, -1)
		case strings.HasPrefix(digits, "888") && i.Music != nil:
			track := i.Music.GoTo(num(digits[3:]))
			return outcome{shape: "music_goto", keepMusic: true,
				after: []destStep{{text: fmt.Sprintf("NEXT      %03d", track), dur: statusHold}}}
		}
		return invalid("six_digit")
	case 8, 12:
		return i.setDate(ctx, digits, now)
	case 10:
		if strings.HasPrefix(digits, "77") {
			return i.setReminder(ctx, num(digits[2:4]), num(digits[4:6]), num(digits[6:8]), num(digits[8:10]))
		}
		return invalid("reminder")
	}
	return invalid("unknown")
}

func (i *Interpreter) statusQuery(digits string, now time.Time) outcome {
	switch digits {
	case "11":
		return status("alarm_status", i.st.Alarm.Display())
	case "44":
		return status("countdown_status", i.st.Countdown.Display(now))
	case "77":
		return status("reminder_status", i.st.Reminder.Display())
	case "88", "55":
		if i.Music == nil {
			return invalid("music_status")
		}
		text := "STOPPED"
		if i.Music.Playing() {
			text = fmt.Sprintf("PLAYING   %03d", i.Music.Current())
		}
		out := status("music_status", text)
		out.keepMusic = true
		return out
	}
	return invalid("status")
}

func (i *Interpreter) code(ctx context.Context, code int, now time.Time) outcome {
	if code == 113 && (!i.haveRC() || !i.haveWC()) {
		if i.haveRC() {
			code = 111
		} else {
			code = 112
		}
	}

	switch code {
	case 111:
		if !i.haveRC() {
			return invalid("rc_mode")
		}
		i.st.RCMode = !i.st.RCMode
		return outcome{shape: "rc_mode"}
	case 112:
		if !i.haveWC() {
			return invalid("wc_mode")
		}
		i.st.WCMode = !i.st.WCMode
		return outcome{shape: "wc_mode"}
	case 113:
		i.st.RCMode = !i.st.RCMode
		i.st.WCMode = i.st.RCMode
		return outcome{shape: "rc_wc_mode"}
	case 222, 555:
		if i.Music == nil {
			return invalid("shuffle")
		}
		on := code == 555
		i.Music.SetShuffle(on)
		text := "SHUFFLE   OFF"
		if on {
			text = "SHUFFLE    ON"
		}
		out := status("shuffle", text)
		out.keepMusic = true
		return out
	case 888:
		if i.Music == nil {
			return invalid("music_goto")
		}
		i.Music.GoTo(0)
		out := status("music_goto", "NEXT      000")
		out.keepMusic = true
		return out
	case 440:
		return i.setCountdown(ctx, 0, now)
	case 770:
		i.st.Reminder = models.Reminder{}
		i.saveReminder(ctx)
		return status("reminder_clear", i.st.Reminder.Display())
	case 777:
		return status("reminder_until", i.untilReminder(ctx))
	case 0, 1, 2, 3:
		i.st.BeepMode = code
		i.st.BeepTimerStart = now
		out := status("beep_mode", fmt.Sprintf("BEEP MODE   %1d", code))
		out.silent = true
		return out
	}
	return invalid("code")
}

// untilReminder renders the time left until the reminder next fires. DST
// changes between now and then are not accounted for.
func (i *Interpreter) untilReminder(ctx context.Context) string {
	r := i.st.Reminder
	if !r.IsSet() {
		return r.Display()
	}
	rtc := i.readRTC(ctx)
	yr := rtc.Year - i.st.Present.YearOffset
	nowMins := timecodec.ToMinutes(yr, rtc.Month, rtc.Day, rtc.Hour, rtc.Minute)

	month := r.Month
	if month == 0 {
		month = rtc.Month
	}
	target := timecodec.ToMinutes(yr, month, r.Day, r.Hour, r.Minute)
	if target < nowMins {
		switch {
		case r.Month != 0:
			target = timecodec.ToMinutes(yr+1, r.Month, r.Day, r.Hour, r.Minute)
		case rtc.Month == 12:
			target = timecodec.ToMinutes(yr+1, 1, r.Day, r.Hour, r.Minute)
		default:
			target = timecodec.ToMinutes(yr, rtc.Month+1, r.Day, r.Hour, r.Minute)
		}
	}

	left := uint64(target - nowMins)
	days := left / (24 * 60)
	hours := (left % (24 * 60)) / 60
	mins := left % 60
	return fmt.Sprintf("     %3dd%2d%02d", days, hours, mins)
}

func (i *Interpreter) setCountdown(ctx context.Context, minutes int, now time.Time) outcome {
	if minutes == 0 {
		i.st.Countdown = models.CountdownTimer{}
	} else {
		i.st.Countdown = models.CountdownTimer{Duration: time.Duration(minutes) * time.Minute, StartedAt: now}
	}
	i.saveCountdown(ctx)
	text := "TIMER     OFF"
	if minutes > 0 {
		text = fmt.Sprintf("TIMER    %02d00", minutes)
	}
	return status("countdown_set", text)
}

func (i *Interpreter) setAlarm(ctx context.Context, hour, minute int) outcome {
	if hour > 23 || minute > 59 {
		return invalid("alarm_set")
	}
	a := i.st.Alarm
	if a.Hour != hour || a.Minute != minute || !a.Set || !a.Enabled {
		a.Hour, a.Minute, a.Set, a.Enabled = hour, minute, true, true
		i.st.Alarm = a
		i.saveAlarm(ctx)
	}
	return status("alarm_set", i.st.Alarm.Display())
}

// configureAlarm replaces the alarm with one set over the API. The displays
// are left alone.
func (i *Interpreter) configureAlarm(ctx context.Context, a models.Alarm) {
	i.st.Alarm = a
	i.saveAlarm(ctx)
	i.Log.Infow("alarm_configured", "hour", a.Hour, "minute", a.Minute, "days", a.Label(), "enabled", a.Enabled)
}

// setReminder stores a reminder. A negative hour keeps the current time of
// day, defaulting to 09:00 when none is set.
func (i *Interpreter) setReminder(ctx context.Context, month, day, hour, minute int) outcome {
	if month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return invalid("reminder_set")
	}
	if month != 0 && day > timecodec.DaysInMonth(month, 2000) {
		return invalid("reminder_set")
	}

	r := i.st.Reminder
	r.Month, r.Day = month, day
	if hour >= 0 {
		r.Hour, r.Minute = hour, minute
	} else if r.Hour == 0 && r.Minute == 0 {
		r.Hour = 9
	}
	if r != i.st.Reminder {
		i.st.Reminder = r
		i.saveReminder(ctx)
	}
	return status("reminder_set", r.Display())
}

// setDate parses HHMM, mmddyyyy or mmddyyyyHHMM into the destination.
func (i *Interpreter) setDate(ctx context.Context, digits string, now time.Time) outcome {
	v := i.st.Destination
	hour, minute := v.Hour, v.Minute
	shape := "time"

	if len(digits) == 4 {
		hour, minute = num(digits[0:2]), num(digits[2:4])
	} else {
		shape = "date"
		month, day, year := num(digits[0:2]), num(digits[2:4]), num(digits[4:8])
		v.SetYear(year)
		v.SetMonth(month)
		v.SetDay(day)
		if len(digits) == 12 {
			shape = "datetime"
			hour, minute = num(digits[8:10]), num(digits[10:12])
		}
	}
	if v.SetHour(hour) != nil || v.SetMinute(minute) != nil {
		return invalid(shape)
	}

	out := outcome{shape: shape}
	if len(digits) != 4 {
		typedHour := -1
		if len(digits) == 12 {
			typedHour = v.Hour
		}
		if egg, ok := lookupEgg(v.Year, v.Month, v.Day, typedHour); ok {
			out = egg.outcome(shape)
		}
	}

	i.st.Destination = v
	pushValue(i.Destination, v)
	if i.cfg.Clock.TravelPersistent {
		i.saveClock(ctx, v)
	}
	i.st.RCMode = false
	i.st.WCMode = false
	i.rotation.Pause(now)
	i.st.BeepTimerStart = now
	return out
}
