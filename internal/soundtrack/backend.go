package soundtrack

import (
	"sync"
	"time"
)

// Player is a single loaded sound.
type Player interface {
	Play() error
	Pause()
	IsPlaying() bool
	SetVolume(v float64)
	Volume() float64
	Position() time.Duration
	Duration() time.Duration
	Seek(pos time.Duration) error
	Close() error
}

// Backend loads sounds by asset path.
type Backend interface {
	Load(path string) (Player, error)
}

// Scheduler runs f once after d. Controllers never block waiting for it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SystemScheduler schedules on the runtime timers.
type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// SilentBackend loads players that keep state but produce no sound. It is
// used when audio is disabled or no device is available.
type SilentBackend struct{}

func (SilentBackend) Load(string) (Player, error) { return &silentPlayer{}, nil }

type silentPlayer struct {
	mu      sync.Mutex
	playing bool
	volume  float64
	started time.Time
	offset  time.Duration
}

func (p *silentPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		p.playing = true
		p.started = time.Now()
	}
	return nil
}

func (p *silentPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		p.offset += time.Since(p.started)
		p.playing = false
	}
}

func (p *silentPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *silentPlayer) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

func (p *silentPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *silentPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return p.offset + time.Since(p.started)
	}
	return p.offset
}

// Duration is unknown for silent players, which disables the loop guard.
func (p *silentPlayer) Duration() time.Duration { return 0 }

func (p *silentPlayer) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = pos
	p.started = time.Now()
	return nil
}

func (p *silentPlayer) Close() error { return nil }
