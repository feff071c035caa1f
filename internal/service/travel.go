package service

import (
	"context"
	"time"

	"timecircuits/internal/models"
)

// Durations of the long travel sequence.
const (
	phase1Delay = 1400 * time.Millisecond
	phase2Delay = 4100 * time.Millisecond
	phase3Delay = 400 * time.Millisecond
	phase4Delay = 1000 * time.Millisecond
	phase5Delay = 1500 * time.Millisecond
	travelHold  = 1500 * time.Millisecond
)

const (
	malfunctionText = "MALFUNCTION"
	garbageText     = "KHDW2011GIDUW"
	zeroText        = "00000000000000"
)

var phaseDelays = map[models.TravelPhase]time.Duration{
	models.Phase1: phase1Delay,
	models.Phase2: phase2Delay,
	models.Phase3: phase3Delay,
	models.Phase4: phase4Delay,
	models.Phase5: phase5Delay,
}

// Engine runs time travel: the phased sequence, the commit and the return
// to present.
type Engine struct {
	*core
	rotation *Scheduler

	until time.Time
	beat  int
}

func newEngine(c *core, rotation *Scheduler) *Engine {
	return &Engine{core: c, rotation: rotation}
}

// Busy reports whether input should be ignored.
func (e *Engine) Busy() bool { return e.st.Phase != models.PhaseIdle }

// Trigger starts a travel to the destination. A long travel animates first;
// a short one commits at once.
func (e *Engine) Trigger(ctx context.Context, long bool) {
	now := e.Clock.Now()
	e.rotation.Pause(now)
	if !long {
		e.Metrics.Travels.WithLabelValues("short").Inc()
		e.commit(ctx, now)
		return
	}
	e.Metrics.Travels.WithLabelValues("long").Inc()
	e.play(CueTravelStart, PlayInterruptMusic)
	e.enter(models.Phase1, now)
}

// Step advances the sequence. rising is true on a half-second pulse edge.
func (e *Engine) Step(ctx context.Context, now time.Time, rising bool) {
	switch e.st.Phase {
	case models.PhaseIdle, models.PhaseCommitting:
		return
	case models.PhaseTraveled:
		if !now.Before(e.until) {
			e.finish()
		}
		return
	}

	if rising {
		e.animate()
	}
	if now.Before(e.until) {
		return
	}

	switch e.st.Phase {
	case models.Phase1:
		e.enter(models.Phase2, e.until)
	case models.Phase2:
		e.allOff()
		e.enter(models.Phase3, e.until)
	case models.Phase3:
		e.allOn()
		e.Destination.ShowText(malfunctionText, false)
		e.Present.ShowText(garbageText, false)
		e.Departed.ShowText(malfunctionText, false)
		e.enter(models.Phase4, e.until)
	case models.Phase4:
		e.enter(models.Phase5, e.until)
	case models.Phase5:
		e.setPhase(models.PhaseCommitting)
		e.restoreBrightness()
		e.commit(ctx, now)
	}
}

func (e *Engine) enter(p models.TravelPhase, from time.Time) {
	e.setPhase(p)
	e.until = from.Add(phaseDelays[p])
	e.beat = 0
}

func (e *Engine) setPhase(p models.TravelPhase) {
	e.st.Phase = p
	e.Metrics.TravelPhase.Set(float64(p))
}

// animate runs the per-edge effect of the current phase.
func (e *Engine) animate() {
	e.beat++
	switch e.st.Phase {
	case models.Phase2:
		for _, d := range e.displays() {
			if e.Rand.Intn(3) == 0 {
				d.Off()
			} else {
				d.On()
			}
		}
	case models.Phase3:
		e.allOff()
	case models.Phase4:
		for _, d := range e.displays() {
			d.SetBrightness(e.Rand.Intn(models.MaxBrightness + 1))
		}
	case models.Phase5:
		for _, d := range e.displays() {
			if e.beat%2 == 1 {
				d.LampTest()
			} else {
				d.ShowText(zeroText, false)
			}
		}
	}
}

func (e *Engine) restoreBrightness() {
	for _, d := range e.displays() {
		d.SetBrightness(e.cfg.Clock.Brightness)
	}
}

// commit makes the destination the new present.
func (e *Engine) commit(ctx context.Context, now time.Time) {
	e.setPhase(models.PhaseCommitting)
	e.copyDeparted(ctx)

	rtc := e.readRTC(ctx)
	from := e.st.Present.Minutes()
	e.st.Offset = models.OffsetBetween(e.rtcMinutes(rtc), e.st.Destination.Minutes())
	e.persistOffsets(ctx)
	e.refreshPresent(rtc)

	e.rotation.Pause(now)
	e.play(CueTimeTravel, PlayInterruptMusic)
	e.hold(now)

	e.Log.Infow("time_travel", "destination", e.st.Destination.EffectiveCalendar().String(),
		"offset_minutes", signedMinutes(e.st.Offset))
	e.record(ctx, models.EventTravel, "Traveled to "+e.st.Destination.EffectiveCalendar().String(),
		map[string]any{"from_minutes": uint64(from), "offset_minutes": signedMinutes(e.st.Offset)})
}

// ResetPresent returns the present to true time.
func (e *Engine) ResetPresent(ctx context.Context) {
	now := e.Clock.Now()
	wasActive := !e.st.Offset.IsZero()

	e.copyDeparted(ctx)
	e.st.Offset = models.VirtualOffset{}
	e.persistOffsets(ctx)
	e.refreshPresent(e.readRTC(ctx))

	e.Metrics.Travels.WithLabelValues("return").Inc()
	if wasActive {
		e.play(CueTimeTravel, PlayInterruptMusic)
		e.hold(now)
	}
	e.Log.Infow("return_to_present", "was_active", wasActive)
	e.record(ctx, models.EventReturn, "Returned to present", map[string]any{"was_active": wasActive})
}

// Cancel aborts a running sequence.
func (e *Engine) Cancel() {
	if e.st.Phase == models.PhaseIdle {
		return
	}
	e.setPhase(models.PhaseIdle)
	e.until = time.Time{}
	e.beat = 0
	e.restoreBrightness()
}

// hold darkens the panel and enters Traveled.
func (e *Engine) hold(now time.Time) {
	e.allOff()
	e.setPhase(models.PhaseTraveled)
	e.until = now.Add(travelHold)
}

func (e *Engine) finish() {
	e.setPhase(models.PhaseIdle)
	e.until = time.Time{}
	pushValue(e.Destination, e.st.Destination)
	pushValue(e.Present, e.st.Present)
	pushValue(e.Departed, e.st.Departed)
	e.allOn()
}

// copyDeparted moves the current present into the departed row.
func (e *Engine) copyDeparted(ctx context.Context) {
	e.st.Departed.SetCalendar(e.st.Present.EffectiveCalendar())
	pushValue(e.Departed, e.st.Departed)
	if e.cfg.Clock.TravelPersistent {
		e.saveClock(ctx, e.st.Departed)
	}
}

func (e *Engine) persistOffsets(ctx context.Context) {
	if e.cfg.Clock.TravelPersistent {
		e.saveOffsets(ctx)
		return
	}
	e.Metrics.OffsetMinutes.Set(float64(signedMinutes(e.st.Offset)))
}
