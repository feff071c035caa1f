package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"timecircuits"
	"timecircuits/internal/clock"
	"timecircuits/internal/config"
	"timecircuits/internal/logger"
	"timecircuits/internal/metrics"
	"timecircuits/internal/models"
	"timecircuits/internal/repository"
	"timecircuits/internal/timecodec"
)

const (
	startupDelay = time.Second
	inputBuffer  = 64
)

// ErrInputQueueFull is returned by Submit when the loop is not keeping up.
var ErrInputQueueFull = errors.New("input queue full")

// Controller owns the panel state and runs the cooperative control loop.
// Other goroutines reach it only through Submit and Snapshot.
type Controller struct {
	core *core

	rotation *Scheduler
	engine   *Engine
	sync     *TimeSync
	keypad   *Interpreter
	chimes   *Chimes

	input chan InputEvent

	startupPending bool

	mu       sync.RWMutex
	snapshot timecircuits.PanelSnapshot
}

// NewController wires the loop components around deps.
func NewController(cfg config.Config, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &core{
		Deps:       deps,
		cfg:        cfg,
		st:         NewState(),
		rtcBackOff: newRTCBackOff,
		ntpBackOff: newNTPBackOff,
	}
	c.Log = c.Log.Named("controller")

	rotation := newScheduler(c)
	engine := newEngine(c, rotation)
	ts := newTimeSync(c)
	return &Controller{
		core:     c,
		rotation: rotation,
		engine:   engine,
		sync:     ts,
		keypad:   newInterpreter(c, engine, rotation, ts),
		chimes:   newChimes(c),
		input:    make(chan InputEvent, inputBuffer),
	}
}

// Submit queues an input event for the loop.
func (ctl *Controller) Submit(ctx context.Context, ev InputEvent) error {
	select {
	case ctl.input <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrInputQueueFull
	}
}

// Snapshot returns the last published panel state.
func (ctl *Controller) Snapshot() timecircuits.PanelSnapshot {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	return ctl.snapshot
}

// Boot restores persisted state and starts the startup sequence.
func (ctl *Controller) Boot(ctx context.Context) {
	c := ctl.core
	reset := false

	load := func(v *models.ClockValue, preset models.Preset) {
		if c.cfg.Clock.TravelPersistent {
			stored, err := c.Clocks.Load(ctx, v.ID)
			if err == nil {
				*v = stored
				return
			}
			if !errors.Is(err, repository.ErrNotFound) {
				c.Log.Warnw("clock_load_failed", "display", v.ID, "err", err)
			}
		}
		v.SetCalendar(presetCalendar(preset))
		reset = true
	}
	load(&c.st.Destination, Presets[0].Destination)
	load(&c.st.Departed, Presets[0].Departed)
	if reset && c.cfg.Clock.TravelPersistent {
		c.saveClock(ctx, c.st.Destination)
		c.saveClock(ctx, c.st.Departed)
	}

	if r, err := c.Prefs.LoadReminder(ctx); err == nil {
		c.st.Reminder = r
	} else if !errors.Is(err, repository.ErrNotFound) {
		c.Log.Warnw("reminder_load_failed", "err", err)
	}
	if a, err := c.Prefs.LoadAlarm(ctx); err == nil {
		c.st.Alarm = a
	} else if !errors.Is(err, repository.ErrNotFound) {
		c.Log.Warnw("alarm_load_failed", "err", err)
	}
	if cd, err := c.Prefs.LoadCountdown(ctx); err == nil {
		c.st.Countdown = cd
	} else if !errors.Is(err, repository.ErrNotFound) {
		c.Log.Warnw("countdown_load_failed", "err", err)
	}

	c.st.BeepMode = c.cfg.Clock.BeepMode
	for _, d := range c.displays() {
		d.SetBrightness(c.cfg.Clock.Brightness)
	}

	ctl.sync.Boot(ctx)

	now := c.Clock.Now()
	c.st.BeepTimerStart = now
	c.st.StartupUntil = now.Add(startupDelay)
	ctl.startupPending = true
	c.allOff()
	if reset {
		c.Destination.On()
		c.Destination.ShowText("RESET", false)
	}
	c.play(CueStartup, PlayInterruptMusic)
	c.Log.Infow("boot", "destination", c.st.Destination.EffectiveCalendar().String(),
		"present", c.st.Present.EffectiveCalendar().String(), "reset", reset)
	ctl.publish(now)
}

// Run drives the loop until ctx is cancelled.
func (ctl *Controller) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			ctl.step(ctx)
		}
	}
}

// step is one loop iteration.
func (ctl *Controller) step(ctx context.Context) {
	c := ctl.core
	c.Audio.Pump()

	now := c.Clock.Now()
	ctl.drain(ctx, now)
	ctl.keypad.Step(ctx, now)
	ctl.sync.Poll(ctx)

	e := ctl.sync.Edge()
	ctl.engine.Step(ctx, now, e == risingEdge)

	switch e {
	case risingEdge:
		rtc := ctl.sync.OnRising(ctx)
		if c.st.Phase == models.PhaseIdle && c.st.Powered {
			ctl.rotation.Step(rtc, now)
		}
		ctl.chimes.Step(ctx, rtc, now)
	case fallingEdge:
		ctl.sync.OnFalling()
	}

	if ctl.startupPending && !c.st.InStartup(now) {
		ctl.startupPending = false
		if c.st.Powered {
			c.allOn()
		}
	}

	ctl.refreshDisplays(now)
	ctl.publish(now)
}

func (ctl *Controller) drain(ctx context.Context, now time.Time) {
	for {
		select {
		case ev := <-ctl.input:
			wasPowered := ctl.core.st.Powered
			ctl.keypad.Handle(ctx, ev, now)
			if ev.Kind == PowerOn && !wasPowered {
				ctl.startupPending = true
			}
		default:
			return
		}
	}
}

// refreshDisplays pushes the current values while the panel is idle.
func (ctl *Controller) refreshDisplays(now time.Time) {
	c := ctl.core
	if !c.st.Powered || c.st.Phase != models.PhaseIdle || c.st.InStartup(now) {
		return
	}

	pushValue(c.Present, c.st.Present)

	wc := c.st.WCMode && len(ctl.keypad.zones) > 0
	if !ctl.keypad.HoldsDestination() {
		switch {
		case wc:
			showZone(c.Destination, now, ctl.keypad.zones[0])
		case c.st.RCMode:
			ctl.showTemperature(c.Destination)
		default:
			pushValue(c.Destination, c.st.Destination)
		}
	}

	switch {
	case wc && c.st.RCMode:
		ctl.showTemperature(c.Departed)
	case wc && len(ctl.keypad.zones) > 1:
		showZone(c.Departed, now, ctl.keypad.zones[1])
	default:
		pushValue(c.Departed, c.st.Departed)
	}
}

func showZone(d Display, now time.Time, loc *time.Location) {
	t := now.In(loc)
	v := models.ClockValue{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}
	pushValue(d, v)
}

func (ctl *Controller) showTemperature(d Display) {
	c := ctl.core
	if c.Thermometer == nil {
		d.ShowText("TEMP     ----", false)
		return
	}
	temp, err := c.Thermometer.Temperature()
	if err != nil {
		d.ShowText("TEMP     ----", false)
		return
	}
	d.ShowText(fmt.Sprintf("TEMP %6.1fC", temp), false)
}

func (ctl *Controller) publish(now time.Time) {
	c := ctl.core
	snap := timecircuits.PanelSnapshot{
		Destination:    describe(c.Destination, c.st.Destination),
		Present:        describe(c.Present, c.st.Present),
		Departed:       describe(c.Departed, c.st.Departed),
		Phase:          c.st.Phase.String(),
		Powered:        c.st.Powered,
		OffsetMinutes:  signedMinutes(c.st.Offset),
		PendingEntry:   c.st.Entry.String(),
		RotationPaused: ctl.rotation.Paused(now),
		Alarm:          c.st.Alarm.Display(),
		Reminder:       c.st.Reminder.Display(),
		Countdown:      c.st.Countdown.Display(now),
		UpdatedAt:      now.UTC(),
	}
	ctl.mu.Lock()
	ctl.snapshot = snap
	ctl.mu.Unlock()
}

// describe prefers what the display reports; otherwise the value is used.
func describe(d Display, v models.ClockValue) timecircuits.DisplayState {
	if r, ok := d.(DisplayReporter); ok {
		return r.State()
	}
	cal := v.EffectiveCalendar()
	return timecircuits.DisplayState{
		ID:         string(v.ID),
		On:         true,
		Text:       FormatRow(cal),
		Year:       cal.Year,
		Month:      cal.Month,
		Day:        cal.Day,
		Hour:       cal.Hour,
		Minute:     cal.Minute,
		Colon:      v.Colon,
		Brightness: v.Brightness,
		NightMode:  v.NightMode,
	}
}

// FormatRow renders a calendar the way a display row shows it, for
// example "OCT 26 1985 01:21".
func FormatRow(cal timecodec.Calendar) string {
	return fmt.Sprintf("%3s %02d %04d %02d:%02d", models.MonthName(cal.Month), cal.Day, cal.Year, cal.Hour, cal.Minute)
}
