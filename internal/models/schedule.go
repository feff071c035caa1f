package models

import (
	"fmt"
	"strings"
	"time"
)

var monthNames = [13]string{"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// MonthName returns the three-letter display name, or "" outside 1..12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month]
}

// Reminder fires once per matching minute. Month 0 means every month; a zero
// Day means no reminder is set.
type Reminder struct {
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (r Reminder) IsSet() bool { return r.Month != 0 || r.Day != 0 }

// Display renders the reminder for the destination row.
func (r Reminder) Display() string {
	if !r.IsSet() {
		return "REMINDER  OFF"
	}
	if r.Month == 0 {
		return fmt.Sprintf("   %02d    %02d%02d", r.Day, r.Hour, r.Minute)
	}
	return fmt.Sprintf("%3s%02d    %02d%02d", MonthName(r.Month), r.Day, r.Hour, r.Minute)
}

// Alarm weekday modes. Modes 3..9 select a single day, Sunday first.
const (
	AlarmDaily    = 0
	AlarmWorkdays = 1
	AlarmWeekends = 2
	AlarmSunday   = 3
	AlarmSaturday = 9
)

var alarmLabels = [10]string{"MON-SUN", "MON-FRI", "SAT-SUN", "SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

var alarmModes = map[string]int{
	"daily": AlarmDaily, "workdays": AlarmWorkdays, "weekends": AlarmWeekends,
	"sun": 3, "mon": 4, "tue": 5, "wed": 6, "thu": 7, "fri": 8, "sat": 9,
}

// ParseAlarmWeekday maps "daily", "workdays", "weekends" or a day name such
// as "tue" to its weekday mode. An empty name is daily.
func ParseAlarmWeekday(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return AlarmDaily, true
	}
	mode, ok := alarmModes[name]
	return mode, ok
}

// Alarm is the daily alarm. Set distinguishes a configured alarm from the
// zero value; Enabled is toggled with the held 1 key.
type Alarm struct {
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	Weekday int  `json:"weekday"`
	Set     bool `json:"set"`
	Enabled bool `json:"enabled"`
}

// Label is the weekday mode as shown on the display.
func (a Alarm) Label() string {
	if a.Weekday < 0 || a.Weekday >= len(alarmLabels) {
		return alarmLabels[AlarmDaily]
	}
	return alarmLabels[a.Weekday]
}

// Display renders the alarm status for the destination row.
func (a Alarm) Display() string {
	if !a.Set {
		return "ALARM   UNSET"
	}
	label := a.Label()
	if !a.Enabled {
		label = "ALARMOFF"
	}
	return fmt.Sprintf("%-8s %02d%02d", label, a.Hour, a.Minute)
}

// Matches reports whether the alarm applies on weekday (0 = Sunday).
func (a Alarm) Matches(weekday int) bool {
	switch {
	case a.Weekday == AlarmDaily:
		return true
	case a.Weekday == AlarmWorkdays:
		return weekday >= 1 && weekday <= 5
	case a.Weekday == AlarmWeekends:
		return weekday == 0 || weekday == 6
	case a.Weekday >= AlarmSunday && a.Weekday <= AlarmSaturday:
		return weekday == a.Weekday-AlarmSunday
	}
	return false
}

// CountdownTimer runs for Duration from StartedAt. A zero Duration is off.
type CountdownTimer struct {
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

func (c CountdownTimer) Active() bool { return c.Duration > 0 }

// Remaining returns the time left at now, never negative.
func (c CountdownTimer) Remaining(now time.Time) time.Duration {
	if !c.Active() {
		return 0
	}
	left := c.Duration - now.Sub(c.StartedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Display renders the countdown status for the destination row.
func (c CountdownTimer) Display(now time.Time) string {
	if !c.Active() {
		return "TIMER     OFF"
	}
	left := c.Remaining(now)
	mins := int(left / time.Minute)
	secs := int((left % time.Minute) / time.Second)
	return fmt.Sprintf("TIMER    %02d%02d", mins, secs)
}
