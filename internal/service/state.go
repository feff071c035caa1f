package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"timecircuits/internal/clock"
	"timecircuits/internal/config"
	"timecircuits/internal/logger"
	"timecircuits/internal/metrics"
	"timecircuits/internal/models"
	"timecircuits/internal/repository"
	"timecircuits/internal/timecodec"
)

// InputKind enumerates everything the control loop reacts to.
type InputKind int

const (
	KeyPressed InputKind = iota + 1
	KeyReleased
	KeyHeld
	EnterPressed
	TravelButtonPressed
	TravelButtonHeld
	PowerOn
	PowerOff
	TravelRequested
	ReturnRequested
	// AlarmConfigured replaces the alarm with InputEvent.Alarm.
	AlarmConfigured
)

var inputKindNames = map[string]InputKind{
	"key_pressed":           KeyPressed,
	"key_released":          KeyReleased,
	"key_held":              KeyHeld,
	"enter_pressed":         EnterPressed,
	"travel_button_pressed": TravelButtonPressed,
	"travel_button_held":    TravelButtonHeld,
	"power_on":              PowerOn,
	"power_off":             PowerOff,
	"travel":                TravelRequested,
	"return":                ReturnRequested,
}

// ParseInputKind maps an API name such as "key_pressed" to its InputKind.
func ParseInputKind(s string) (InputKind, error) {
	k, ok := inputKindNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown input kind %q", s)
	}
	return k, nil
}

// InputEvent is one item on the control loop's input channel. Key is a digit
// '0'..'9' for key events; Long selects the full sequence for travel requests.
type InputEvent struct {
	Kind  InputKind
	Key   byte
	Long  bool
	Alarm models.Alarm
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

const (
	maxEntryDigits = 12
	entryTimeout   = 2 * time.Minute
)

// PendingEntry buffers typed digits until ENTER.
type PendingEntry struct {
	digits    []byte
	lastInput time.Time
}

// Add appends d. A full buffer overwrites its last digit.
func (e *PendingEntry) Add(d byte, now time.Time) {
	if len(e.digits) >= maxEntryDigits {
		e.digits[maxEntryDigits-1] = d
	} else {
		e.digits = append(e.digits, d)
	}
	e.lastInput = now
}

func (e *PendingEntry) String() string { return string(e.digits) }

func (e *PendingEntry) Len() int { return len(e.digits) }

// Clear drops the buffered digits and the idle timer with them.
func (e *PendingEntry) Clear() {
	e.digits = e.digits[:0]
	e.lastInput = time.Time{}
}

// Expired reports whether the entry has been idle for longer than the
// entry timeout.
func (e *PendingEntry) Expired(now time.Time) bool {
	return len(e.digits) > 0 && now.Sub(e.lastInput) > entryTimeout
}

// State is everything the control loop owns. Only the loop goroutine
// touches it.
type State struct {
	Present     models.ClockValue
	Destination models.ClockValue
	Departed    models.ClockValue
	Offset      models.VirtualOffset

	Phase     models.TravelPhase
	Powered   bool
	NightMode bool
	Colon     bool

	StartupUntil time.Time

	Entry     PendingEntry
	Reminder  models.Reminder
	Alarm     models.Alarm
	Countdown models.CountdownTimer

	BeepMode       int
	BeepTimerStart time.Time

	RCMode bool
	WCMode bool

	// LastRTC is the most recent valid true-time read.
	LastRTC timecodec.DateTime
}

// NewState returns the power-on defaults.
func NewState() *State {
	return &State{
		Present:     models.NewClockValue(models.DisplayPresent),
		Destination: models.NewClockValue(models.DisplayDestination),
		Departed:    models.NewClockValue(models.DisplayDeparted),
		Powered:     true,
	}
}

// InStartup reports whether the startup sequence is still running.
func (s *State) InStartup(now time.Time) bool {
	return now.Before(s.StartupUntil)
}

// PresentOffset returns the persisted form of the present mapping.
func (s *State) PresentOffset() models.PresentOffset {
	return models.PresentOffset{Offset: s.Offset, YearOffset: s.Present.YearOffset}
}

// Deps are the collaborators of the control loop. Music, Thermometer, NTP
// and Restarter may be nil.
type Deps struct {
	Destination Display
	Present     Display
	Departed    Display

	Audio       Audio
	RTC         TrueTimeSource
	NTP         NetworkTimeSource
	Music       MusicPlayer
	Thermometer Thermometer
	Restarter   Restarter

	Clocks  repository.ClockRepo
	Offsets repository.OffsetRepo
	Prefs   repository.PrefsRepo
	Events  repository.EventRepo

	Clock   clock.Clock
	Metrics *metrics.Registry
	Log     *logger.Logger
	Rand    *rand.Rand
}

// core is shared by the loop components.
type core struct {
	Deps
	cfg config.Config
	st  *State

	rtcBackOff func() backoff.BackOff
	ntpBackOff func() backoff.BackOff
}

func (c *core) displays() []Display {
	return []Display{c.Destination, c.Present, c.Departed}
}

func (c *core) allOff() {
	for _, d := range c.displays() {
		d.Off()
	}
}

func (c *core) allOn() {
	for _, d := range c.displays() {
		d.On()
	}
}

// pushValue copies v onto d and renders it.
func pushValue(d Display, v models.ClockValue) {
	cal := v.EffectiveCalendar()
	d.SetField(models.FieldYear, cal.Year)
	d.SetField(models.FieldMonth, cal.Month)
	d.SetField(models.FieldDay, cal.Day)
	d.SetField(models.FieldHour, cal.Hour)
	d.SetField(models.FieldMinute, cal.Minute)
	d.Show()
}

func (c *core) play(cue Cue, flags PlayFlags) {
	if flags&PlaySkipInNightMode != 0 && c.st.NightMode {
		return
	}
	c.Audio.Play(cue, flags)
}
