package soundtrack

import (
	"sync"

	"go.uber.org/zap"
)

// Effects plays one-shot sound effects, keeping loaded sounds for reuse.
type Effects struct {
	mu      sync.Mutex
	backend Backend
	volume  float64
	enabled bool
	cache   map[SFX]Player
	log     *zap.Logger
}

// NewEffects creates an effects player with a default volume.
func NewEffects(backend Backend, volume float64, enabled bool, log *zap.Logger) *Effects {
	if log == nil {
		log = zap.NewNop()
	}
	return &Effects{
		backend: backend,
		volume:  volume,
		enabled: enabled,
		cache:   make(map[SFX]Player),
		log:     log.Named("sfx"),
	}
}

// Preload loads effects ahead of their first use.
func (e *Effects) Preload(names ...SFX) {
	if e == nil || !e.enabled {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range names {
		if _, err := e.load(name); err != nil {
			e.log.Warn("failed to preload effect", zap.String("sfx", string(name)), zap.Error(err))
		}
	}
}

// Play restarts the effect from the beginning.
func (e *Effects) Play(name SFX) {
	if e == nil || !e.enabled {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.load(name)
	if err != nil {
		e.log.Warn("effect unavailable", zap.String("sfx", string(name)), zap.Error(err))
		return
	}
	volume := effects[name].volume
	if volume == 0 {
		volume = e.volume
	}
	p.SetVolume(volume)
	if err := p.Seek(0); err != nil {
		e.log.Debug("effect rewind failed", zap.String("sfx", string(name)), zap.Error(err))
	}
	if err := p.Play(); err != nil {
		e.log.Warn("effect playback failed", zap.String("sfx", string(name)), zap.Error(err))
	}
}

func (e *Effects) load(name SFX) (Player, error) {
	if p, ok := e.cache[name]; ok {
		return p, nil
	}
	p, err := e.backend.Load(name.Path())
	if err != nil {
		return nil, err
	}
	p.SetVolume(e.volume)
	e.cache[name] = p
	return p, nil
}

// Close releases every loaded effect.
func (e *Effects) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, p := range e.cache {
		p.Pause()
		_ = p.Close()
		delete(e.cache, name)
	}
}
