package service

import (
	"time"

	"timecircuits/internal/models"
	"timecircuits/internal/timecodec"
)

// PresetPair is one auto-rotation step.
type PresetPair struct {
	Destination models.Preset
	Departed    models.Preset
}

// Presets is the fixed rotation table. Preset 0 also seeds an empty store.
var Presets = [8]PresetPair{
	{models.Preset{Year: 1985, Month: 10, Day: 26, Hour: 1, Minute: 21}, models.Preset{Year: 1985, Month: 10, Day: 26, Hour: 1, Minute: 20}},
	{models.Preset{Year: 1985, Month: 10, Day: 26, Hour: 1, Minute: 24}, models.Preset{Year: 1955, Month: 11, Day: 12, Hour: 22, Minute: 4}},
	{models.Preset{Year: 1955, Month: 11, Day: 5, Hour: 6, Minute: 0}, models.Preset{Year: 1985, Month: 10, Day: 26, Hour: 1, Minute: 34}},
	{models.Preset{Year: 1985, Month: 10, Day: 27, Hour: 11, Minute: 0}, models.Preset{Year: 1885, Month: 9, Day: 7, Hour: 9, Minute: 10}},
	{models.Preset{Year: 2015, Month: 10, Day: 21, Hour: 16, Minute: 29}, models.Preset{Year: 1985, Month: 10, Day: 26, Hour: 11, Minute: 35}},
	{models.Preset{Year: 1955, Month: 11, Day: 12, Hour: 6, Minute: 0}, models.Preset{Year: 1985, Month: 10, Day: 27, Hour: 2, Minute: 42}},
	{models.Preset{Year: 1885, Month: 1, Day: 1, Hour: 0, Minute: 0}, models.Preset{Year: 1955, Month: 11, Day: 12, Hour: 21, Minute: 44}},
	{models.Preset{Year: 1885, Month: 9, Day: 2, Hour: 12, Minute: 0}, models.Preset{Year: 1955, Month: 11, Day: 13, Hour: 12, Minute: 0}},
}

func presetCalendar(p models.Preset) timecodec.Calendar {
	return timecodec.Calendar{Year: p.Year, Month: p.Month, Day: p.Day, Hour: p.Hour, Minute: p.Minute}
}

// Scheduler cycles destination and departed through Presets while the
// panel is left alone.
type Scheduler struct {
	*core

	interval int
	pauseFor time.Duration

	index    int
	paused   bool
	pausedAt time.Time

	// reshow is set after a step blanked the panel; the next rising edge
	// brings the displays back with the new values.
	reshow bool
}

func newScheduler(c *core) *Scheduler {
	return &Scheduler{
		core:     c,
		interval: c.cfg.Rotation.IntervalMinutes,
		pauseFor: c.cfg.Rotation.Pause,
	}
}

// Enabled reports whether an interval is configured.
func (s *Scheduler) Enabled() bool { return s.interval > 0 }

// Index is the preset currently shown.
func (s *Scheduler) Index() int { return s.index }

// Pause holds rotation for the configured pause duration starting at now.
// It has no effect while rotation is disabled.
func (s *Scheduler) Pause(now time.Time) {
	if !s.Enabled() {
		return
	}
	s.paused = true
	s.pausedAt = now
}

// Paused reports whether a pause is still running at now. An expired pause
// is cleared.
func (s *Scheduler) Paused(now time.Time) bool {
	if !s.paused {
		return false
	}
	if !now.Before(s.pausedAt.Add(s.pauseFor)) {
		s.paused = false
		return false
	}
	return true
}

// Step runs on each rising edge with the current true time.
func (s *Scheduler) Step(rtc timecodec.DateTime, now time.Time) {
	if s.reshow {
		s.reshow = false
		s.allOn()
		return
	}
	if !s.Enabled() || s.Paused(now) || rtc.Second != 59 {
		return
	}
	if (rtc.Minute+1)%s.interval != 0 {
		return
	}

	s.index = (s.index + 1) % len(Presets)
	s.load(s.index)
	s.allOff()
	s.reshow = true
	s.Log.Debugw("rotation_step", "index", s.index)
}

// load writes preset i into destination and departed. Rotation never
// persists; the stored values are the operator's.
func (s *Scheduler) load(i int) {
	pair := Presets[i]
	s.st.Destination.SetCalendar(presetCalendar(pair.Destination))
	s.st.Departed.SetCalendar(presetCalendar(pair.Departed))
	pushValue(s.Destination, s.st.Destination)
	pushValue(s.Departed, s.st.Departed)
}
