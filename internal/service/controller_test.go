package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecircuits/internal/models"
	"timecircuits/internal/timecodec"
)

func TestController_BootSeedsEmptyStore(t *testing.T) {
	r := newRig(t)
	r.ctl.Boot(r.ctx)

	assert.Equal(t, preset0, r.c.st.Destination.EffectiveCalendar())
	assert.Equal(t, presetCalendar(Presets[0].Departed), r.c.st.Departed.EffectiveCalendar())
	assert.Equal(t, 2, r.clocks.saves)
	assert.Equal(t, "RESET", r.dest.text)
	assert.True(t, r.dest.on)
	assert.False(t, r.pres.on)
	assert.Equal(t, CueStartup, r.audio.last())

	r.advance(startupDelay)
	assert.True(t, r.pres.on)
	assert.True(t, r.dep.on)
	assert.Equal(t, "", r.dest.text)
	assert.Equal(t, trueNow(), r.pres.calendar())
}

func TestController_BootRestoresStoredValues(t *testing.T) {
	r := newRig(t)
	dest := models.NewClockValue(models.DisplayDestination)
	dest.SetCalendar(july1976)
	require.NoError(t, r.clocks.Save(r.ctx, dest))
	dep := models.NewClockValue(models.DisplayDeparted)
	dep.SetCalendar(timecodec.Calendar{Year: 1885, Month: 9, Day: 2, Hour: 8})
	require.NoError(t, r.clocks.Save(r.ctx, dep))
	r.prefs.alarm = &models.Alarm{Hour: 6, Minute: 45, Set: true, Enabled: true}
	r.prefs.reminder = &models.Reminder{Month: 3, Day: 1, Hour: 9}

	r.boot()

	assert.Equal(t, july1976, r.c.st.Destination.EffectiveCalendar())
	assert.Equal(t, 1885, r.c.st.Departed.EffectiveYear())
	assert.Equal(t, 2, r.clocks.saves, "nothing re-seeded")
	assert.Equal(t, 6, r.c.st.Alarm.Hour)
	assert.Equal(t, 3, r.c.st.Reminder.Month)
	assert.Equal(t, july1976, r.dest.calendar())
}

func TestController_Snapshot(t *testing.T) {
	r := newRig(t).boot()
	r.c.st.Alarm = models.Alarm{Hour: 7, Minute: 5, Set: true, Enabled: true}
	r.typeDigits("12")

	snap := r.ctl.Snapshot()

	assert.Equal(t, "IDLE", snap.Phase)
	assert.True(t, snap.Powered)
	assert.Equal(t, "12", snap.PendingEntry)
	assert.Equal(t, "OCT 26 1985 01:21", snap.Destination.Text)
	assert.Equal(t, string(models.DisplayPresent), snap.Present.ID)
	assert.Equal(t, 2025, snap.Present.Year)
	assert.Equal(t, "MON-SUN  0705", snap.Alarm)
	assert.Equal(t, "REMINDER  OFF", snap.Reminder)
	assert.Equal(t, "TIMER     OFF", snap.Countdown)
	assert.Equal(t, r.clk.Now().UTC(), snap.UpdatedAt)
}

func TestController_SnapshotDuringTravel(t *testing.T) {
	r := newRig(t).boot()
	r.enter("070419760930")
	r.submit(InputEvent{Kind: TravelRequested, Long: true})

	assert.Equal(t, "PHASE1", r.ctl.Snapshot().Phase)

	for _, d := range []time.Duration{phase1Delay, phase2Delay, phase3Delay, phase4Delay, phase5Delay} {
		r.advance(d)
	}
	snap := r.ctl.Snapshot()
	assert.Equal(t, "TRAVELED", snap.Phase)
	assert.Less(t, snap.OffsetMinutes, int64(0))
}

func TestController_SubmitRejectsWhenQueueFull(t *testing.T) {
	r := newRig(t)
	for i := 0; i < inputBuffer; i++ {
		require.NoError(t, r.ctl.Submit(r.ctx, InputEvent{Kind: EnterPressed}))
	}

	err := r.ctl.Submit(r.ctx, InputEvent{Kind: EnterPressed})

	assert.ErrorIs(t, err, ErrInputQueueFull)
}

func TestController_PowerCycle(t *testing.T) {
	r := newRig(t).boot()

	r.submit(InputEvent{Kind: PowerOff})
	assert.False(t, r.ctl.Snapshot().Powered)
	assert.False(t, r.dest.on)

	r.typeDigits("1")
	assert.Equal(t, 0, r.c.st.Entry.Len(), "keys are ignored while off")

	r.submit(InputEvent{Kind: PowerOn})
	assert.Equal(t, CueStartup, r.audio.last())
	assert.False(t, r.dest.on)

	r.advance(startupDelay)
	assert.True(t, r.dest.on)
	assert.True(t, r.pres.on)
	assert.Len(t, r.events.ofType(models.EventPower), 2)
}

func TestController_RunStopsOnCancel(t *testing.T) {
	r := newRig(t)
	r.ctl.Boot(r.ctx)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.ctl.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.NoError(t, r.ctl.Submit(ctx, InputEvent{Kind: PowerOff}))
	require.Eventually(t, func() bool { return !r.ctl.Snapshot().Powered }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFormatRow(t *testing.T) {
	assert.Equal(t, "OCT 26 1985 01:21", FormatRow(preset0))
	assert.Equal(t, "JAN 01 0001 00:00", FormatRow(timecodec.Calendar{Year: 1, Month: 1, Day: 1}))
}
