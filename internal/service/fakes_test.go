package service

import (
	"context"
	"sync"
	"testing"
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

// ---- Collaborator doubles ----

type fakeDisplay struct {
	fields     [5]int
	on         bool
	text       string
	brightness int
	night      bool
	colon      bool
	lampTests  int
}

func (d *fakeDisplay) SetField(f models.Field, v int) { d.fields[f] = v }
func (d *fakeDisplay) Show()                          { d.text = "" }
func (d *fakeDisplay) On()                            { d.on = true }
func (d *fakeDisplay) Off()                           { d.on = false }
func (d *fakeDisplay) SetBrightness(level int)        { d.brightness = level }
func (d *fakeDisplay) ShowText(text string, _ bool)   { d.text = text }
func (d *fakeDisplay) SetNightMode(on bool)           { d.night = on }
func (d *fakeDisplay) SetColon(on bool)               { d.colon = on }
func (d *fakeDisplay) LampTest()                      { d.lampTests++ }

func (d *fakeDisplay) calendar() timecodec.Calendar {
	return timecodec.Calendar{Year: d.fields[0], Month: d.fields[1], Day: d.fields[2], Hour: d.fields[3], Minute: d.fields[4]}
}

type fakeAudio struct {
	played []Cue
	pumps  int
}

func (a *fakeAudio) Play(cue Cue, _ PlayFlags) { a.played = append(a.played, cue) }
func (a *fakeAudio) IsBusy() bool              { return false }
func (a *fakeAudio) Pump()                     { a.pumps++ }

func (a *fakeAudio) count(cue Cue) int {
	n := 0
	for _, c := range a.played {
		if c == cue {
			n++
		}
	}
	return n
}

func (a *fakeAudio) last() Cue {
	if len(a.played) == 0 {
		return ""
	}
	return a.played[len(a.played)-1]
}

type fakeRTC struct {
	now       timecodec.DateTime
	pulse     bool
	lost      bool
	glitches  []timecodec.DateTime
	adjusted  []timecodec.DateTime
	adjustErr error
}

func (r *fakeRTC) Now() timecodec.DateTime {
	if len(r.glitches) > 0 {
		g := r.glitches[0]
		r.glitches = r.glitches[1:]
		return g
	}
	return r.now
}

func (r *fakeRTC) Adjust(dt timecodec.DateTime) error {
	if r.adjustErr != nil {
		return r.adjustErr
	}
	r.now = dt
	r.adjusted = append(r.adjusted, dt)
	return nil
}

func (r *fakeRTC) Pulse() bool     { return r.pulse }
func (r *fakeRTC) LostPower() bool { return r.lost }

// fakeNTP may be called from the background sync goroutine. A non-nil gate
// holds every Fetch until it is closed.
type fakeNTP struct {
	mu    sync.Mutex
	t     time.Time
	err   error
	gate  chan struct{}
	calls int
}

func (n *fakeNTP) Fetch(ctx context.Context) (time.Time, error) {
	n.mu.Lock()
	n.calls++
	gate := n.gate
	n.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.t, n.err
}

func (n *fakeNTP) set(t time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.t = t
}

func (n *fakeNTP) hold() chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gate = make(chan struct{})
	return n.gate
}

func (n *fakeNTP) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type fakeMusic struct {
	playing bool
	track   int
	shuffle bool
	prev    int
	next    int
}

func (m *fakeMusic) Prev()              { m.prev++ }
func (m *fakeMusic) Next()              { m.next++ }
func (m *fakeMusic) Toggle()            { m.playing = !m.playing }
func (m *fakeMusic) Playing() bool      { return m.playing }
func (m *fakeMusic) Current() int       { return m.track }
func (m *fakeMusic) GoTo(track int) int { m.track = track; return track }
func (m *fakeMusic) SetShuffle(on bool) { m.shuffle = on }

type fakeThermometer struct {
	temp float64
	err  error
}

func (f fakeThermometer) Temperature() (float64, error) { return f.temp, f.err }

type fakeRestarter struct{ calls int }

func (r *fakeRestarter) Restart() { r.calls++ }

// ---- In-memory repositories ----

type memClockRepo struct {
	values map[models.DisplayID]models.ClockValue
	saves  int
}

func (m *memClockRepo) Save(_ context.Context, v models.ClockValue) error {
	if m.values == nil {
		m.values = map[models.DisplayID]models.ClockValue{}
	}
	m.values[v.ID] = v
	m.saves++
	return nil
}

func (m *memClockRepo) Load(_ context.Context, id models.DisplayID) (models.ClockValue, error) {
	v, ok := m.values[id]
	if !ok {
		return models.ClockValue{}, repository.ErrNotFound
	}
	return v, nil
}

type memOffsetRepo struct {
	value *models.PresentOffset
	saves int
}

func (m *memOffsetRepo) Save(_ context.Context, o models.PresentOffset) error {
	m.value = &o
	m.saves++
	return nil
}

func (m *memOffsetRepo) Load(context.Context) (models.PresentOffset, error) {
	if m.value == nil {
		return models.PresentOffset{}, repository.ErrNotFound
	}
	return *m.value, nil
}

type memPrefsRepo struct {
	reminder  *models.Reminder
	alarm     *models.Alarm
	countdown *models.CountdownTimer
}

func (m *memPrefsRepo) SaveReminder(_ context.Context, r models.Reminder) error {
	m.reminder = &r
	return nil
}

func (m *memPrefsRepo) LoadReminder(context.Context) (models.Reminder, error) {
	if m.reminder == nil {
		return models.Reminder{}, repository.ErrNotFound
	}
	return *m.reminder, nil
}

func (m *memPrefsRepo) SaveAlarm(_ context.Context, a models.Alarm) error {
	m.alarm = &a
	return nil
}

func (m *memPrefsRepo) LoadAlarm(context.Context) (models.Alarm, error) {
	if m.alarm == nil {
		return models.Alarm{}, repository.ErrNotFound
	}
	return *m.alarm, nil
}

func (m *memPrefsRepo) SaveCountdown(_ context.Context, c models.CountdownTimer) error {
	m.countdown = &c
	return nil
}

func (m *memPrefsRepo) LoadCountdown(context.Context) (models.CountdownTimer, error) {
	if m.countdown == nil {
		return models.CountdownTimer{}, repository.ErrNotFound
	}
	return *m.countdown, nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events []models.Event
}

func (m *memEventRepo) Append(_ context.Context, e models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memEventRepo) List(context.Context, time.Time, time.Time, string) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Event(nil), m.events...), nil
}

func (m *memEventRepo) ofType(typ string) []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// ---- Test rig ----

// rigStart is the true time every rig starts at: Sunday 2025-06-15 10:00:00.
var rigStart = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Clock: config.ClockConfig{
			TravelPersistent: true,
			AlarmRTC:         true,
			Brightness:       12,
			Tick:             20 * time.Millisecond,
		},
		TimeSync: config.TimeSyncConfig{
			Timezone:   "UTC",
			SyncHour:   3,
			SyncMinute: 1,
			SyncSecond: 10,
			NTPRetries: 3,
			RTCRetries: 5,
		},
		Rotation: config.RotationConfig{Pause: 30 * time.Minute},
		Travel:   config.TravelConfig{ButtonLong: true},
	}
}

func toDateTime(t time.Time) timecodec.DateTime {
	return timecodec.DateTime{
		Calendar: timecodec.Calendar{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()},
		Second:   t.Second(),
	}
}

type rig struct {
	t   *testing.T
	ctx context.Context
	ctl *Controller
	c   *core

	dest, pres, dep *fakeDisplay
	audio           *fakeAudio
	rtc             *fakeRTC
	clk             *clock.MockClock

	clocks  *memClockRepo
	offsets *memOffsetRepo
	prefs   *memPrefsRepo
	events  *memEventRepo
	metrics *metrics.Registry
}

type rigOption func(*config.Config, *Deps)

func withConfig(f func(*config.Config)) rigOption {
	return func(c *config.Config, _ *Deps) { f(c) }
}

func withDeps(f func(*Deps)) rigOption {
	return func(_ *config.Config, d *Deps) { f(d) }
}

func newRig(t *testing.T, opts ...rigOption) *rig {
	t.Helper()
	r := &rig{
		t:       t,
		ctx:     context.Background(),
		dest:    &fakeDisplay{},
		pres:    &fakeDisplay{},
		dep:     &fakeDisplay{},
		audio:   &fakeAudio{},
		rtc:     &fakeRTC{now: toDateTime(rigStart)},
		clk:     clock.NewMockClock(rigStart),
		clocks:  &memClockRepo{},
		offsets: &memOffsetRepo{},
		prefs:   &memPrefsRepo{},
		events:  &memEventRepo{},
		metrics: metrics.New(),
	}
	cfg := testConfig()
	deps := Deps{
		Destination: r.dest,
		Present:     r.pres,
		Departed:    r.dep,
		Audio:       r.audio,
		RTC:         r.rtc,
		Clocks:      r.clocks,
		Offsets:     r.offsets,
		Prefs:       r.prefs,
		Events:      r.events,
		Clock:       r.clk,
		Metrics:     r.metrics,
		Log:         logger.Nop(),
	}
	for _, o := range opts {
		o(&cfg, &deps)
	}
	r.ctl = NewController(cfg, deps)
	r.c = r.ctl.core
	zero := func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	r.c.rtcBackOff = zero
	r.c.ntpBackOff = zero
	return r
}

// boot runs Boot and waits out the startup sequence.
func (r *rig) boot() *rig {
	r.ctl.Boot(r.ctx)
	r.clk.Advance(startupDelay)
	r.ctl.step(r.ctx)
	return r
}

func (r *rig) submit(ev InputEvent) {
	r.t.Helper()
	if err := r.ctl.Submit(r.ctx, ev); err != nil {
		r.t.Fatalf("submit %+v: %v", ev, err)
	}
	r.ctl.step(r.ctx)
}

func (r *rig) typeDigits(digits string) {
	for i := 0; i < len(digits); i++ {
		r.submit(InputEvent{Kind: KeyPressed, Key: digits[i]})
		r.submit(InputEvent{Kind: KeyReleased, Key: digits[i]})
	}
}

// enter types digits, presses ENTER and lets the enter delay pass so the
// result text is on the destination row.
func (r *rig) enter(digits string) {
	r.typeDigits(digits)
	r.submit(InputEvent{Kind: EnterPressed})
	r.advance(enterDelay)
}

func (r *rig) advance(d time.Duration) {
	r.clk.Advance(d)
	r.ctl.step(r.ctx)
}

// second moves true time forward by one second and runs both pulse edges.
func (r *rig) second() {
	next := time.Date(r.rtc.now.Year, time.Month(r.rtc.now.Month), r.rtc.now.Day,
		r.rtc.now.Hour, r.rtc.now.Minute, r.rtc.now.Second, 0, time.UTC).Add(time.Second)
	r.rtc.now = toDateTime(next)
	r.clk.Advance(time.Second)
	r.rtc.pulse = true
	r.ctl.step(r.ctx)
	r.rtc.pulse = false
	r.ctl.step(r.ctx)
}

// settleSync steps the loop until a background network fetch is applied.
func (r *rig) settleSync() {
	r.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.ctl.sync.inflight {
		if time.Now().After(deadline) {
			r.t.Fatal("network sync did not finish")
		}
		time.Sleep(time.Millisecond)
		r.ctl.step(r.ctx)
	}
}

// setTrueTime moves the hardware clock without an edge.
func (r *rig) setTrueTime(t time.Time) {
	r.rtc.now = toDateTime(t)
	r.clk.Set(t)
}
