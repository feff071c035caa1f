package timecodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeapYear(t *testing.T) {
	cases := map[int]bool{
		1:    false,
		4:    true,
		100:  false,
		400:  true,
		1900: false,
		1985: false,
		2000: true,
		2024: true,
		2100: false,
	}
	for year, want := range cases {
		assert.Equalf(t, want, IsLeapYear(year), "year %d", year)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2, 2000))
	assert.Equal(t, 28, DaysInMonth(2, 1900))
	assert.Equal(t, 31, DaysInMonth(12, 1985))
	assert.Equal(t, 30, DaysInMonth(11, 1955))
	assert.Equal(t, 31, DaysInMonth(13, 1985), "month clamps to december")
}

func TestMillenniumTableMatchesYearSums(t *testing.T) {
	var total EpochMinutes
	year := MinYear
	for k := 0; k < len(minutesAtMillennium); k++ {
		for ; year < k*1000; year++ {
			total += yearMinutes(year)
		}
		require.Equalf(t, total, minutesAtMillennium[k], "boundary %d", k)
	}
	for ; year <= MaxYear; year++ {
		total += yearMinutes(year)
	}
	assert.Equal(t, SpanMinutes, total)
}

func TestToMinutesKnownValues(t *testing.T) {
	assert.Equal(t, EpochMinutes(0), ToMinutes(1, 1, 1, 0, 0))
	assert.Equal(t, EpochMinutes(1043912241), ToMinutes(1985, 10, 26, 1, 21))
	assert.Equal(t, EpochMinutes(1051457040), ToMinutes(2000, 2, 29, 12, 0))
	assert.Equal(t, EpochMinutes(1028147400), ToMinutes(1955, 11, 5, 6, 0))
	assert.Equal(t, EpochMinutes(1059786720), ToMinutes(2016, 1, 1, 0, 0))
	assert.Equal(t, MaxMinutes, ToMinutes(9999, 12, 31, 23, 59))
}

func TestToMinutesClampsOutOfRange(t *testing.T) {
	assert.Equal(t, ToMinutes(1, 1, 1, 0, 0), ToMinutes(0, 1, 1, 0, 0))
	assert.Equal(t, ToMinutes(9999, 1, 1, 0, 0), ToMinutes(12000, 1, 1, 0, 0))
	assert.Equal(t, ToMinutes(2001, 2, 28, 0, 0), ToMinutes(2001, 2, 31, 0, 0))
}

func TestToCalendarClampsBeyondMax(t *testing.T) {
	assert.Equal(t, Calendar{Year: 9999, Month: 12, Day: 31, Hour: 23, Minute: 59}, ToCalendar(SpanMinutes+500))
}

func TestRoundTripAcrossBoundaries(t *testing.T) {
	dates := []Calendar{
		{1, 1, 1, 0, 0},
		{999, 12, 31, 23, 59},
		{1000, 1, 1, 0, 0},
		{1885, 9, 2, 12, 0},
		{1955, 11, 12, 22, 4},
		{2000, 2, 29, 23, 59},
		{2000, 3, 1, 0, 0},
		{2015, 10, 21, 16, 29},
		{4000, 12, 31, 12, 30},
		{9000, 1, 1, 0, 0},
		{9999, 12, 31, 23, 59},
	}
	for _, c := range dates {
		m := CalendarMinutes(c)
		assert.Equalf(t, c, ToCalendar(m), "round trip of %s", c)
	}
}

func TestRoundTripEveryFirstOfMonthForSampledYears(t *testing.T) {
	for year := MinYear; year <= MaxYear; year += 37 {
		for month := 1; month <= 12; month++ {
			last := DaysInMonth(month, year)
			for _, day := range []int{1, last} {
				c := Calendar{Year: year, Month: month, Day: day, Hour: 13, Minute: 7}
				require.Equal(t, c, ToCalendar(CalendarMinutes(c)))
			}
		}
	}
}

func TestMinutesAreMonotonic(t *testing.T) {
	prev := ToMinutes(1999, 12, 31, 23, 59)
	next := ToMinutes(2000, 1, 1, 0, 0)
	assert.Equal(t, prev+1, next)
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, 1, Weekday(1, 1, 1))
	assert.Equal(t, 6, Weekday(1985, 10, 26))
	assert.Equal(t, 3, Weekday(2015, 10, 21))
	assert.Equal(t, 5, Weekday(2016, 1, 1))
}

func TestMillenniumHours(t *testing.T) {
	assert.Equal(t, uint32(0), MillenniumHours(0))
	assert.Equal(t, uint32(17522856), MillenniumHours(2))
	assert.Equal(t, uint32(78883608), MillenniumHours(9))
}
