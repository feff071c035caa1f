package device

import (
	"math/rand"
	"sync"

	"timecircuits/internal/logger"
)

// Playlist is a numbered track list without actual playback.
type Playlist struct {
	mu sync.Mutex

	tracks  int
	current int
	playing bool
	shuffle bool

	rnd *rand.Rand
	log *logger.Logger
}

// NewPlaylist returns nil when tracks is not positive, so callers can leave
// the music capability out.
func NewPlaylist(tracks int, shuffle bool, rnd *rand.Rand, log *logger.Logger) *Playlist {
	if tracks <= 0 {
		return nil
	}
	return &Playlist{tracks: tracks, shuffle: shuffle, rnd: rnd, log: log}
}

func (p *Playlist) Prev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = (p.current + p.tracks - 1) % p.tracks
	p.log.Debugw("music_prev", "track", p.current)
}

func (p *Playlist) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shuffle && p.tracks > 1 {
		next := p.rnd.Intn(p.tracks - 1)
		if next >= p.current {
			next++
		}
		p.current = next
	} else {
		p.current = (p.current + 1) % p.tracks
	}
	p.log.Debugw("music_next", "track", p.current, "shuffle", p.shuffle)
}

func (p *Playlist) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = !p.playing
	p.log.Debugw("music_toggle", "playing", p.playing, "track", p.current)
}

func (p *Playlist) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Playlist) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// GoTo selects track, clamped to the last one, and returns the selection.
func (p *Playlist) GoTo(track int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if track < 0 {
		track = 0
	}
	if track >= p.tracks {
		track = p.tracks - 1
	}
	p.current = track
	return track
}

func (p *Playlist) SetShuffle(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shuffle = on
}
