package service

import (
	"context"
	"time"

	"timecircuits/internal/models"
)

// Delays after ENTER before the destination row comes back.
const (
	enterDelay   = 600 * time.Millisecond
	badDateDelay = 400 * time.Millisecond
	statusHold   = 3 * time.Second
)

// destStep is one stage of what the destination row shows after ENTER.
type destStep struct {
	off  bool
	text string
	cue  Cue
	dur  time.Duration
}

// Interpreter turns key events into commands.
type Interpreter struct {
	*core
	engine   *Engine
	rotation *Scheduler
	sync     *TimeSync
	zones    []*time.Location

	armed bool

	holding   bool
	steps     []destStep
	stepUntil time.Time

	travelPending bool
	travelAt      time.Time
}

func newInterpreter(c *core, engine *Engine, rotation *Scheduler, sync *TimeSync) *Interpreter {
	i := &Interpreter{core: c, engine: engine, rotation: rotation, sync: sync}
	for _, name := range c.cfg.WorldClock.Zones {
		loc, err := time.LoadLocation(name)
		if err != nil {
			c.Log.Warnw("worldclock_zone_invalid", "zone", name, "err", err)
			continue
		}
		i.zones = append(i.zones, loc)
	}
	return i
}

// HoldsDestination reports whether the destination row is showing an entry
// result instead of its value.
func (i *Interpreter) HoldsDestination() bool { return i.holding }

func (i *Interpreter) haveRC() bool { return i.Thermometer != nil }

func (i *Interpreter) haveWC() bool { return len(i.zones) > 0 }

// Handle processes one input event.
func (i *Interpreter) Handle(ctx context.Context, ev InputEvent, now time.Time) {
	switch ev.Kind {
	case PowerOn:
		i.power(ctx, true, now)
		return
	case PowerOff:
		i.power(ctx, false, now)
		return
	case AlarmConfigured:
		i.configureAlarm(ctx, ev.Alarm)
		return
	}

	if !i.st.Powered || i.st.InStartup(now) || i.engine.Busy() {
		return
	}
	switch ev.Kind {
	case KeyPressed:
		if !isDigit(ev.Key) {
			return
		}
		i.armed = true
		i.play(KeyCue(ev.Key), PlaySkipInNightMode)
	case KeyReleased:
		if i.armed && isDigit(ev.Key) {
			i.st.Entry.Add(ev.Key, now)
			i.rotation.Pause(now)
		}
		i.armed = false
	case KeyHeld:
		i.armed = false
		i.held(ctx, ev.Key, now)
	case EnterPressed:
		i.enter(ctx, now)
	case TravelButtonPressed:
		if d := i.cfg.Travel.ButtonDelay; d > 0 {
			i.travelPending = true
			i.travelAt = now.Add(d)
			return
		}
		i.engine.Trigger(ctx, i.cfg.Travel.ButtonLong)
	case TravelRequested:
		i.engine.Trigger(ctx, ev.Long)
	case TravelButtonHeld, ReturnRequested:
		i.travelPending = false
		i.engine.ResetPresent(ctx)
	}
}

// Step runs the timed parts of entry handling: the idle timeout, the
// delayed travel button and the destination result display.
func (i *Interpreter) Step(ctx context.Context, now time.Time) {
	if i.st.Entry.Expired(now) {
		i.st.Entry.Clear()
		i.Log.Debugw("keypad_entry_expired")
	}
	if i.travelPending && !now.Before(i.travelAt) && !i.engine.Busy() {
		i.travelPending = false
		i.engine.Trigger(ctx, i.cfg.Travel.ButtonLong)
	}

	for i.holding && !now.Before(i.stepUntil) {
		if len(i.steps) == 0 {
			i.holding = false
			i.Destination.On()
			pushValue(i.Destination, i.st.Destination)
			return
		}
		s := i.steps[0]
		i.steps = i.steps[1:]
		if s.off {
			i.Destination.Off()
		} else {
			i.Destination.On()
			i.Destination.ShowText(s.text, false)
		}
		if s.cue != "" {
			i.play(s.cue, PlaySkipInNightMode|PlayInterruptMusic)
		}
		i.stepUntil = now.Add(s.dur)
	}
}

func (i *Interpreter) showSteps(now time.Time, steps []destStep) {
	i.holding = true
	i.steps = steps
	i.stepUntil = now
}

func (i *Interpreter) held(ctx context.Context, key byte, now time.Time) {
	switch key {
	case '0':
		i.engine.Trigger(ctx, true)
	case '9':
		i.engine.ResetPresent(ctx)
	case '1':
		if !i.st.Alarm.Set {
			i.play(CueBadDate, 0)
			return
		}
		i.st.Alarm.Enabled = !i.st.Alarm.Enabled
		i.saveAlarm(ctx)
		if i.st.Alarm.Enabled {
			i.play(CueAlarmOn, PlayInterruptMusic)
		} else {
			i.play(CueAlarmOff, PlayInterruptMusic)
		}
		i.showSteps(now, []destStep{{text: i.st.Alarm.Display(), dur: statusHold}})
	case '4':
		i.setNightMode(!i.st.NightMode)
	case '3':
		i.play(CueKey3, PlayInterruptMusic)
	case '6':
		i.play(CueKey6, PlayInterruptMusic)
	case '7':
		i.play(CuePing, 0)
		i.sync.RequestSync()
	case '2', '5', '8':
		if i.Music == nil {
			i.play(CueBadDate, 0)
			return
		}
		switch key {
		case '2':
			i.Music.Prev()
		case '5':
			i.Music.Toggle()
		case '8':
			i.Music.Next()
		}
	}
}

func (i *Interpreter) setNightMode(on bool) {
	i.st.NightMode = on
	for _, d := range i.displays() {
		d.SetNightMode(on)
	}
	i.Log.Infow("night_mode", "on", on)
}

func (i *Interpreter) power(ctx context.Context, on bool, now time.Time) {
	if i.st.Powered == on {
		return
	}
	i.st.Powered = on
	if on {
		i.st.StartupUntil = now.Add(startupDelay)
		i.play(CueStartup, PlayInterruptMusic)
	} else {
		i.engine.Cancel()
		i.st.Entry.Clear()
		i.holding = false
		i.steps = nil
		i.travelPending = false
		i.allOff()
	}
	i.Log.Infow("power", "on", on)
	i.record(ctx, models.EventPower, powerText(on), map[string]any{"on": on})
}

func powerText(on bool) string {
	if on {
		return "Power on"
	}
	return "Power off"
}

// enter commits the pending entry.
func (i *Interpreter) enter(ctx context.Context, now time.Time) {
	digits := i.st.Entry.String()
	i.st.Entry.Clear()
	i.armed = false

	out := i.dispatch(ctx, digits, now)

	result := "valid"
	delay := enterDelay
	flags := PlayInterruptMusic
	if out.keepMusic {
		flags = 0
	}
	switch {
	case out.invalid:
		result = "invalid"
		delay = badDateDelay
		i.play(CueBadDate, flags)
		i.Log.Debugw("keypad_invalid", "entry", digits, "shape", out.shape)
	case out.silent:
		if out.cue != "" {
			i.play(out.cue, PlaySkipInNightMode|PlayInterruptMusic)
		}
		if out.delay > 0 {
			delay = out.delay
		}
	default:
		i.play(CueEnter, flags)
	}
	i.Metrics.KeypadCommands.WithLabelValues(out.shape, result).Inc()

	steps := []destStep{{off: true, dur: delay}}
	steps = append(steps, out.after...)
	i.showSteps(now, steps)

	if !out.invalid {
		i.record(ctx, models.EventKeypad, "Keypad "+out.shape,
			map[string]any{"entry": digits, "shape": out.shape})
	}
}
