package service

import (
	"context"
	"errors"
	"time"

	"timecircuits"
	"timecircuits/internal/models"
	"timecircuits/internal/timecodec"
)

// ErrTimeUnavailable is returned by a NetworkTimeSource that cannot answer.
var ErrTimeUnavailable = errors.New("network time unavailable")

// Display drives one row of the panel.
type Display interface {
	SetField(f models.Field, v int)
	// Show renders the current fields, replacing any text.
	Show()
	On()
	Off()
	SetBrightness(level int)
	ShowText(text string, colon bool)
	SetNightMode(on bool)
	SetColon(on bool)
	LampTest()
}

// DisplayReporter is implemented by displays that can describe what they show.
type DisplayReporter interface {
	State() timecircuits.DisplayState
}

// Cue names a sound file.
type Cue string

const (
	CueEnter       Cue = "enter"
	CueBadDate     Cue = "baddate"
	CueTravelStart Cue = "travelstart"
	CueTimeTravel  Cue = "timetravel"
	CueStartup     Cue = "startup"
	CueAlarmOn     Cue = "alarmon"
	CueAlarmOff    Cue = "alarmoff"
	CueAlarm       Cue = "alarm"
	CueReminder    Cue = "reminder"
	CueTimer       Cue = "timer"
	CueHour        Cue = "hour"
	CueBeep        Cue = "beep"
	CueKey3        Cue = "key3"
	CueKey6        Cue = "key6"
	CuePing        Cue = "ping"
	CueEgg1        Cue = "ee1"
	CueEgg2        Cue = "ee2"
	CueEgg3        Cue = "ee3"
	CueEgg4        Cue = "ee4"
)

// KeyCue is the click played when a digit key goes down.
func KeyCue(key byte) Cue {
	return Cue("dtmf-" + string(key))
}

// PlayFlags modify how a cue is played.
type PlayFlags uint8

const (
	// PlayInterruptMusic stops the music player for the cue.
	PlayInterruptMusic PlayFlags = 1 << iota
	// PlaySkipInNightMode drops the cue while night mode is on.
	PlaySkipInNightMode
)

type Audio interface {
	Play(cue Cue, flags PlayFlags)
	IsBusy() bool
	// Pump advances playback; called once per loop iteration.
	Pump()
}

// TrueTimeSource is the battery-backed real-time clock.
type TrueTimeSource interface {
	Now() timecodec.DateTime
	Adjust(dt timecodec.DateTime) error
	// Pulse is high during the first half of every second.
	Pulse() bool
	LostPower() bool
}

type NetworkTimeSource interface {
	Fetch(ctx context.Context) (time.Time, error)
}

// MusicPlayer is an optional capability.
type MusicPlayer interface {
	Prev()
	Next()
	Toggle()
	Playing() bool
	Current() int
	GoTo(track int) int
	SetShuffle(on bool)
}

// Thermometer is an optional capability for room-condition mode.
type Thermometer interface {
	Temperature() (float64, error)
}

type Restarter interface {
	Restart()
}
