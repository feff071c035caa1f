package device

import (
	"sync"
	"time"

	"timecircuits/internal/clock"
	"timecircuits/internal/logger"
	"timecircuits/internal/service"
)

const defaultCueLength = 500 * time.Millisecond

// LogAudio logs cues instead of playing them. A cue keeps the player busy
// for a fixed time; music interrupted by a cue resumes once it is done.
type LogAudio struct {
	mu sync.Mutex

	clock  clock.Clock
	log    *logger.Logger
	music  *Playlist
	cueLen time.Duration

	busyUntil   time.Time
	resumeMusic bool
	last        service.Cue
}

// NewLogAudio returns an audio sink. music may be nil.
func NewLogAudio(c clock.Clock, log *logger.Logger, music *Playlist) *LogAudio {
	return &LogAudio{clock: c, log: log, music: music, cueLen: defaultCueLength}
}

func (a *LogAudio) Play(cue service.Cue, flags service.PlayFlags) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if flags&service.PlayInterruptMusic != 0 && a.music != nil && a.music.Playing() {
		a.music.Toggle()
		a.resumeMusic = true
	}
	a.last = cue
	a.busyUntil = a.clock.Now().Add(a.cueLen)
	a.log.Infow("play", "cue", string(cue))
}

func (a *LogAudio) IsBusy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clock.Now().Before(a.busyUntil)
}

// Pump resumes interrupted music once the last cue has finished.
func (a *LogAudio) Pump() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.resumeMusic || a.clock.Now().Before(a.busyUntil) {
		return
	}
	a.resumeMusic = false
	if !a.music.Playing() {
		a.music.Toggle()
	}
}

// Last returns the most recent cue.
func (a *LogAudio) Last() service.Cue {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}
