package models

import (
	"errors"

	"timecircuits/internal/timecodec"
)

// DisplayID names one of the three panel rows.
type DisplayID string

const (
	DisplayDestination DisplayID = "destination"
	DisplayPresent     DisplayID = "present"
	DisplayDeparted    DisplayID = "departed"
)

// Field selects one part of a display row.
type Field int

const (
	FieldYear Field = iota
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
)

const (
	MaxBrightness     = 15
	DefaultBrightness = 12
)

var ErrOutOfRange = errors.New("value out of range")

// ClockValue is the mutable date/time shown on one display.
//
// Year holds the stored year; the shown year is Year - YearOffset. Only the
// present row carries a non-zero YearOffset, which maps the hardware clock's
// year window onto the real year.
type ClockValue struct {
	ID         DisplayID `json:"id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Day        int       `json:"day"`
	Hour       int       `json:"hour"`
	Minute     int       `json:"minute"`
	YearOffset int       `json:"year_offset"`
	Colon      bool      `json:"colon"`
	Brightness int       `json:"brightness"`
	NightMode  bool      `json:"night_mode"`
}

// NewClockValue returns a value set to 0001-01-01 00:00.
func NewClockValue(id DisplayID) ClockValue {
	return ClockValue{
		ID:         id,
		Year:       timecodec.MinYear,
		Month:      1,
		Day:        1,
		Brightness: DefaultBrightness,
	}
}

// SetYear clamps to 1..9999, the range the codec represents. A typed 0000
// becomes year 1.
func (c *ClockValue) SetYear(year int) {
	c.Year = clampInt(year, timecodec.MinYear, timecodec.MaxYear)
	c.normalizeDay()
}

// SetMonth clamps to 1..12 and re-clamps the day.
func (c *ClockValue) SetMonth(month int) {
	c.Month = clampInt(month, 1, 12)
	c.normalizeDay()
}

// SetDay clamps to the length of the current month.
func (c *ClockValue) SetDay(day int) {
	c.Day = clampInt(day, 1, timecodec.DaysInMonth(c.Month, c.EffectiveYear()))
}

func (c *ClockValue) SetHour(hour int) error {
	if hour < 0 || hour > 23 {
		return ErrOutOfRange
	}
	c.Hour = hour
	return nil
}

func (c *ClockValue) SetMinute(minute int) error {
	if minute < 0 || minute > 59 {
		return ErrOutOfRange
	}
	c.Minute = minute
	return nil
}

func (c *ClockValue) SetBrightness(level int) {
	c.Brightness = clampInt(level, 0, MaxBrightness)
}

func (c ClockValue) EffectiveYear() int {
	return c.Year - c.YearOffset
}

// EffectiveCalendar returns the shown date and time.
func (c ClockValue) EffectiveCalendar() timecodec.Calendar {
	return timecodec.Calendar{
		Year:   c.EffectiveYear(),
		Month:  c.Month,
		Day:    c.Day,
		Hour:   c.Hour,
		Minute: c.Minute,
	}
}

// SetCalendar stores cal so that EffectiveCalendar returns it, keeping the
// current YearOffset.
func (c *ClockValue) SetCalendar(cal timecodec.Calendar) {
	c.Year = cal.Year + c.YearOffset
	c.Month = clampInt(cal.Month, 1, 12)
	c.Hour = clampInt(cal.Hour, 0, 23)
	c.Minute = clampInt(cal.Minute, 0, 59)
	c.Day = cal.Day
	c.normalizeDay()
}

// Minutes returns the shown value as EpochMinutes.
func (c ClockValue) Minutes() timecodec.EpochMinutes {
	return timecodec.CalendarMinutes(c.EffectiveCalendar())
}

func (c *ClockValue) normalizeDay() {
	if c.Month < 1 || c.Month > 12 {
		c.Month = clampInt(c.Month, 1, 12)
	}
	c.Day = clampInt(c.Day, 1, timecodec.DaysInMonth(c.Month, c.EffectiveYear()))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
