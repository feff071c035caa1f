// Package device holds the host-side collaborators of the control loop: an
// in-memory display panel, the system-clock backed RTC, the NTP client,
// audio and music stand-ins and the process restarter.
package device

import (
	"sync"

	"timecircuits"
	"timecircuits/internal/models"
	"timecircuits/internal/service"
	"timecircuits/internal/timecodec"
)

const lampTestText = "88888888888888"

// VirtualDisplay is one panel row kept in memory. API clients see it through
// State.
type VirtualDisplay struct {
	mu sync.RWMutex

	id         models.DisplayID
	fields     [5]int
	on         bool
	text       string
	message    bool
	colon      bool
	night      bool
	lamp       bool
	brightness int
}

func NewVirtualDisplay(id models.DisplayID) *VirtualDisplay {
	return &VirtualDisplay{id: id, brightness: models.DefaultBrightness}
}

func (d *VirtualDisplay) SetField(f models.Field, v int) {
	if f < models.FieldYear || f > models.FieldMinute {
		return
	}
	d.mu.Lock()
	d.fields[f] = v
	d.mu.Unlock()
}

// Show renders the fields, replacing any message.
func (d *VirtualDisplay) Show() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.message = false
	d.lamp = false
	d.text = service.FormatRow(d.calendar())
}

func (d *VirtualDisplay) On() {
	d.mu.Lock()
	d.on = true
	d.mu.Unlock()
}

func (d *VirtualDisplay) Off() {
	d.mu.Lock()
	d.on = false
	d.mu.Unlock()
}

func (d *VirtualDisplay) SetBrightness(level int) {
	if level < 0 {
		level = 0
	}
	if level > models.MaxBrightness {
		level = models.MaxBrightness
	}
	d.mu.Lock()
	d.brightness = level
	d.mu.Unlock()
}

func (d *VirtualDisplay) ShowText(text string, colon bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.message = true
	d.lamp = false
	d.colon = colon
}

func (d *VirtualDisplay) SetNightMode(on bool) {
	d.mu.Lock()
	d.night = on
	d.mu.Unlock()
}

func (d *VirtualDisplay) SetColon(on bool) {
	d.mu.Lock()
	d.colon = on
	d.mu.Unlock()
}

// LampTest lights every segment until the next Show or ShowText.
func (d *VirtualDisplay) LampTest() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lamp = true
	d.message = true
	d.text = lampTestText
}

// State implements service.DisplayReporter.
func (d *VirtualDisplay) State() timecircuits.DisplayState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cal := d.calendar()
	text := d.text
	if text == "" && !d.message {
		text = service.FormatRow(cal)
	}
	return timecircuits.DisplayState{
		ID:         string(d.id),
		On:         d.on,
		Text:       text,
		Message:    d.message,
		Year:       cal.Year,
		Month:      cal.Month,
		Day:        cal.Day,
		Hour:       cal.Hour,
		Minute:     cal.Minute,
		Colon:      d.colon,
		Brightness: d.brightness,
		NightMode:  d.night,
		LampTest:   d.lamp,
	}
}

func (d *VirtualDisplay) calendar() timecodec.Calendar {
	return timecodec.Calendar{
		Year:   d.fields[models.FieldYear],
		Month:  d.fields[models.FieldMonth],
		Day:    d.fields[models.FieldDay],
		Hour:   d.fields[models.FieldHour],
		Minute: d.fields[models.FieldMinute],
	}
}
