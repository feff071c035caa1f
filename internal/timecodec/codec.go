// Package timecodec converts between calendar fields and a linear minute
// count covering years 1 through 9999 of the proleptic Gregorian calendar.
package timecodec

import "fmt"

// EpochMinutes counts minutes since 0001-01-01 00:00.
type EpochMinutes uint64

const (
	MinYear = 1
	MaxYear = 9999

	minutesPerDay      = 24 * 60
	minutesPerYear     = 365 * minutesPerDay
	minutesPerLeapYear = 366 * minutesPerDay

	// SpanMinutes is the number of minutes in years 1..9999.
	SpanMinutes EpochMinutes = 5258964960
	// MaxMinutes is 9999-12-31 23:59.
	MaxMinutes = SpanMinutes - 1
)

// minutesAtMillennium[k] holds the minutes elapsed before year k*1000
// (year 1 for k == 0).
var minutesAtMillennium = [10]EpochMinutes{
	0,
	525422880,
	1051371360,
	1577321280,
	2103269760,
	2629219680,
	3155168160,
	3681118080,
	4207066560,
	4733016480,
}

var daysBeforeMonth = [2][13]int{
	{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365},
	{0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366},
}

// Calendar is a minute-resolution calendar date and time.
type Calendar struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// DateTime is a Calendar with seconds, as read from a real-time clock.
type DateTime struct {
	Calendar
	Second int `json:"second"`
}

func (c Calendar) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute)
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month in year. Months outside 1..12 are
// clamped.
func DaysInMonth(month, year int) int {
	month = clamp(month, 1, 12)
	return daysBeforeMonth[leapIndex(year)][month] - daysBeforeMonth[leapIndex(year)][month-1]
}

// ToMinutes converts calendar fields to EpochMinutes. Fields outside their
// valid range are clamped first.
func ToMinutes(year, month, day, hour, minute int) EpochMinutes {
	year = clamp(year, MinYear, MaxYear)
	month = clamp(month, 1, 12)
	day = clamp(day, 1, DaysInMonth(month, year))
	hour = clamp(hour, 0, 23)
	minute = clamp(minute, 0, 59)

	block := year / 1000
	total := minutesAtMillennium[block]
	for y := max(block*1000, MinYear); y < year; y++ {
		total += yearMinutes(y)
	}

	days := daysBeforeMonth[leapIndex(year)][month-1] + day - 1
	total += EpochMinutes(days*minutesPerDay + hour*60 + minute)
	return total
}

// CalendarMinutes is ToMinutes for a Calendar value.
func CalendarMinutes(c Calendar) EpochMinutes {
	return ToMinutes(c.Year, c.Month, c.Day, c.Hour, c.Minute)
}

// ToCalendar converts EpochMinutes back to calendar fields. Values beyond
// MaxMinutes are clamped.
func ToCalendar(m EpochMinutes) Calendar {
	if m > MaxMinutes {
		m = MaxMinutes
	}

	block := len(minutesAtMillennium) - 1
	for block > 0 && minutesAtMillennium[block] > m {
		block--
	}
	m -= minutesAtMillennium[block]

	year := max(block*1000, MinYear)
	for {
		ym := yearMinutes(year)
		if m < ym {
			break
		}
		m -= ym
		year++
	}

	dayOfYear := int(m / minutesPerDay)
	rem := int(m % minutesPerDay)

	table := daysBeforeMonth[leapIndex(year)]
	month := 1
	for month < 12 && table[month] <= dayOfYear {
		month++
	}

	return Calendar{
		Year:   year,
		Month:  month,
		Day:    dayOfYear - table[month-1] + 1,
		Hour:   rem / 60,
		Minute: rem % 60,
	}
}

// Weekday returns the day of the week for the given date, 0 = Sunday.
func Weekday(year, month, day int) int {
	days := ToMinutes(year, month, day, 0, 0) / minutesPerDay
	// 0001-01-01 was a Monday.
	return int((days + 1) % 7)
}

// MillenniumHours returns the hours elapsed before year k*1000, k in 0..9.
func MillenniumHours(k int) uint32 {
	k = clamp(k, 0, len(minutesAtMillennium)-1)
	return uint32(minutesAtMillennium[k] / 60)
}

func yearMinutes(year int) EpochMinutes {
	if IsLeapYear(year) {
		return minutesPerLeapYear
	}
	return minutesPerYear
}

func leapIndex(year int) int {
	if IsLeapYear(year) {
		return 1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
