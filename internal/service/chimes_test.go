package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecircuits/internal/config"
	"timecircuits/internal/models"
)

func TestChimes_AlarmFiresOncePerMinute(t *testing.T) {
	r := newRig(t).boot()
	r.c.st.Alarm = models.Alarm{Hour: 10, Minute: 1, Set: true, Enabled: true}

	r.setTrueTime(time.Date(2025, 6, 15, 10, 0, 59, 0, time.UTC))
	r.second()
	r.second()

	assert.Equal(t, 1, r.audio.count(CueAlarm))
	assert.Len(t, r.events.ofType(models.EventAlarm), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.Chimes.WithLabelValues("alarm")))
}

func TestChimes_AlarmRespectsWeekdayAndEnable(t *testing.T) {
	tests := []struct {
		name  string
		alarm models.Alarm
	}{
		{"workdays on a sunday", models.Alarm{Hour: 10, Minute: 1, Weekday: models.AlarmWorkdays, Set: true, Enabled: true}},
		{"saturday only", models.Alarm{Hour: 10, Minute: 1, Weekday: models.AlarmSaturday, Set: true, Enabled: true}},
		{"disabled", models.Alarm{Hour: 10, Minute: 1, Set: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t).boot()
			r.c.st.Alarm = tt.alarm

			r.setTrueTime(time.Date(2025, 6, 15, 10, 0, 59, 0, time.UTC))
			r.second()

			assert.Equal(t, 0, r.audio.count(CueAlarm))
		})
	}
}

func TestChimes_AlarmWeekdaySetThroughPanel(t *testing.T) {
	tests := []struct {
		weekday string
		fires   bool
	}{
		{"weekends", true},
		{"sun", true},
		{"workdays", false},
		{"sat", false},
	}
	for _, tt := range tests {
		t.Run(tt.weekday, func(t *testing.T) {
			r := newRig(t).boot()
			require.NoError(t, NewPanelService(r.ctl).SetAlarm(r.ctx, 10, 1, tt.weekday, true))
			r.ctl.step(r.ctx)

			require.NotNil(t, r.prefs.alarm)
			assert.Equal(t, r.c.st.Alarm, *r.prefs.alarm)

			r.setTrueTime(time.Date(2025, 6, 15, 10, 0, 59, 0, time.UTC))
			r.second()

			want := 0
			if tt.fires {
				want = 1
			}
			assert.Equal(t, want, r.audio.count(CueAlarm))
		})
	}
}

func TestChimes_KeypadAlarmKeepsWeekday(t *testing.T) {
	r := newRig(t).boot()
	require.NoError(t, NewPanelService(r.ctl).SetAlarm(r.ctx, 6, 0, "workdays", false))
	r.ctl.step(r.ctx)

	r.enter("111015")

	assert.Equal(t, models.Alarm{Hour: 10, Minute: 15, Weekday: models.AlarmWorkdays, Set: true, Enabled: true}, r.c.st.Alarm)
}

func TestChimes_AlarmFollowsPresentWhenConfigured(t *testing.T) {
	r := newRig(t, withConfig(func(c *config.Config) { c.Clock.AlarmRTC = false })).boot()
	r.enter("070419760930")
	r.submit(InputEvent{Kind: TravelRequested})
	r.advance(travelHold)
	r.c.st.Alarm = models.Alarm{Hour: 9, Minute: 31, Set: true, Enabled: true}

	r.setTrueTime(time.Date(2025, 6, 15, 10, 0, 59, 0, time.UTC))
	r.second()

	assert.Equal(t, 1, r.audio.count(CueAlarm))
}

func TestChimes_MonthlyReminder(t *testing.T) {
	r := newRig(t).boot()
	r.c.st.Reminder = models.Reminder{Day: 15, Hour: 10, Minute: 1}

	r.setTrueTime(time.Date(2025, 6, 15, 10, 0, 59, 0, time.UTC))
	r.second()
	r.second()

	assert.Equal(t, 1, r.audio.count(CueReminder))
	assert.Len(t, r.events.ofType(models.EventReminder), 1)
}

func TestChimes_CountdownExpires(t *testing.T) {
	r := newRig(t).boot()
	r.c.st.Countdown = models.CountdownTimer{Duration: time.Minute, StartedAt: r.clk.Now()}

	r.clk.Advance(58 * time.Second)
	r.second()
	assert.Equal(t, 0, r.audio.count(CueTimer))

	r.second()
	assert.Equal(t, 1, r.audio.count(CueTimer))
	assert.False(t, r.c.st.Countdown.Active())
	require.NotNil(t, r.prefs.countdown)
	assert.False(t, r.prefs.countdown.Active())
	assert.Len(t, r.events.ofType(models.EventCountdown), 1)
}

func TestChimes_HourlySound(t *testing.T) {
	hourly := withConfig(func(c *config.Config) { c.Clock.HourlySound = true })

	t.Run("on the hour", func(t *testing.T) {
		r := newRig(t, hourly).boot()
		r.setTrueTime(time.Date(2025, 6, 15, 10, 59, 59, 0, time.UTC))
		r.second()
		r.second()

		assert.Equal(t, 1, r.audio.count(CueHour))
	})

	t.Run("quiet at night", func(t *testing.T) {
		r := newRig(t, hourly).boot()
		r.c.st.NightMode = true
		r.setTrueTime(time.Date(2025, 6, 15, 10, 59, 59, 0, time.UTC))
		r.second()

		assert.Equal(t, 0, r.audio.count(CueHour))
	})

	t.Run("alarm wins", func(t *testing.T) {
		r := newRig(t, hourly).boot()
		r.c.st.Alarm = models.Alarm{Hour: 11, Set: true, Enabled: true}
		r.setTrueTime(time.Date(2025, 6, 15, 10, 59, 59, 0, time.UTC))
		r.second()

		assert.Equal(t, 1, r.audio.count(CueAlarm))
		assert.Equal(t, 0, r.audio.count(CueHour))
	})
}

func TestChimes_BeepModes(t *testing.T) {
	t.Run("thirty seconds after entry", func(t *testing.T) {
		r := newRig(t).boot()
		r.c.st.BeepMode = Beep30s
		r.c.st.BeepTimerStart = r.clk.Now()

		r.second()
		assert.Equal(t, 1, r.audio.count(CueBeep))

		r.clk.Advance(30 * time.Second)
		r.second()
		assert.Equal(t, 1, r.audio.count(CueBeep))
	})

	t.Run("always on", func(t *testing.T) {
		r := newRig(t).boot()
		r.c.st.BeepMode = BeepOn
		r.c.st.BeepTimerStart = r.clk.Now().Add(-time.Hour)

		r.second()
		r.second()
		assert.Equal(t, 2, r.audio.count(CueBeep))
	})

	t.Run("off", func(t *testing.T) {
		r := newRig(t).boot()
		r.second()
		assert.Equal(t, 0, r.audio.count(CueBeep))
	})
}
