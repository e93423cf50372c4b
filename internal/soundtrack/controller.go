package soundtrack

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// FadeSteps is the number of volume changes in a fade.
	FadeSteps = 20
	// LoopPoll is how often a looping track is checked for its seam.
	LoopPoll = 100 * time.Millisecond
	// LoopLead is how long before the natural end a loop is rewound.
	LoopLead = 150 * time.Millisecond
)

type playing struct {
	name   string
	cfg    TrackConfig
	player Player
}

// Controller owns the background music: one track at a time, faded in and
// out, with requests held back until the user first interacts.
//
// Controller is safe for concurrent use; fades and loop checks run on the
// scheduler.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	sched   Scheduler
	tracks  map[string]TrackConfig
	log     *zap.Logger

	interacted bool
	pending    string
	hasPending bool

	current *playing
	fading  bool
	next    string
	gen     uint64
	closed  bool
}

// NewController creates a controller playing tracks from the given table.
func NewController(backend Backend, sched Scheduler, tracks map[string]TrackConfig, log *zap.Logger) *Controller {
	if sched == nil {
		sched = SystemScheduler{}
	}
	if tracks == nil {
		tracks = Music
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		backend: backend,
		sched:   sched,
		tracks:  tracks,
		log:     log.Named("soundtrack"),
	}
}

// SetTrack switches the background music. An empty name fades out whatever
// is playing. Requesting the track that is already playing does nothing; a
// track that has ended is played again.
func (c *Controller) SetTrack(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if !c.interacted {
		// Only the latest request survives until the first interaction.
		c.pending = name
		c.hasPending = name != ""
		if c.hasPending {
			c.log.Debug("track queued until first interaction", zap.String("track", name))
		}
		return
	}
	c.request(name)
}

// Interact records a user interaction (click, key press, touch) and starts
// the queued track, if any.
func (c *Controller) Interact() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interacted || c.closed {
		return
	}
	c.interacted = true
	if c.hasPending {
		name := c.pending
		c.pending, c.hasPending = "", false
		c.request(name)
	}
}

// Current returns the name of the track playing (or fading), or "".
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.name
}

// Pending returns the track waiting for the first interaction, or "".
func (c *Controller) Pending() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Close stops playback immediately. Later requests are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	c.stopCurrent()
	c.fading = false
	c.next = ""
}

func (c *Controller) request(name string) {
	if name != "" {
		if _, ok := c.tracks[name]; !ok {
			c.log.Warn("unknown track, stopping music", zap.String("track", name))
			name = ""
		}
	}

	if c.fading {
		// The fade-out in progress will start the newest request.
		c.next = name
		return
	}
	if c.current != nil && c.current.name == name {
		if c.current.player.IsPlaying() {
			return
		}
		// A track that ran out is started again.
		c.stopCurrent()
		c.start(name, false)
		return
	}
	if c.current == nil {
		if name != "" {
			c.start(name, false)
		}
		return
	}
	c.next = name
	c.fadeOut()
}

func (c *Controller) start(name string, replacing bool) {
	cfg := c.tracks[name]
	p, err := c.backend.Load(cfg.Path)
	if err != nil {
		c.log.Warn("failed to load track", zap.String("track", name), zap.String("path", cfg.Path), zap.Error(err))
		return
	}

	c.gen++
	gen := c.gen
	pl := &playing{name: name, cfg: cfg, player: p}
	c.current = pl

	instant := cfg.FadeIn <= 0 || (cfg.Loop && !replacing)
	if instant {
		p.SetVolume(cfg.Volume)
	} else {
		p.SetVolume(0)
	}
	if err := p.Play(); err != nil {
		c.log.Warn("track playback failed", zap.String("track", name), zap.Error(err))
		_ = p.Close()
		c.current = nil
		return
	}
	c.log.Debug("track started", zap.String("track", name), zap.Bool("fade_in", !instant))

	if !instant {
		c.scheduleFadeIn(gen, pl, 1)
	}
	if cfg.Loop {
		c.scheduleLoopGuard(pl)
	}
}

func (c *Controller) scheduleFadeIn(gen uint64, pl *playing, step int) {
	c.sched.AfterFunc(pl.cfg.FadeIn/FadeSteps, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen || c.current != pl {
			return
		}
		pl.player.SetVolume(pl.cfg.Volume * float64(step) / FadeSteps)
		if step < FadeSteps {
			c.scheduleFadeIn(gen, pl, step+1)
		}
	})
}

func (c *Controller) fadeOut() {
	c.fading = true
	c.gen++
	pl := c.current
	if pl.cfg.FadeOut <= 0 {
		c.finishFadeOut()
		return
	}
	c.scheduleFadeOut(c.gen, pl, pl.player.Volume(), 1)
}

func (c *Controller) scheduleFadeOut(gen uint64, pl *playing, from float64, step int) {
	c.sched.AfterFunc(pl.cfg.FadeOut/FadeSteps, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen || c.current != pl {
			return
		}
		v := from * float64(FadeSteps-step) / FadeSteps
		pl.player.SetVolume(v)
		if step < FadeSteps {
			c.scheduleFadeOut(gen, pl, from, step+1)
			return
		}
		c.finishFadeOut()
	})
}

func (c *Controller) finishFadeOut() {
	c.stopCurrent()
	c.fading = false
	next := c.next
	c.next = ""
	if next != "" {
		c.start(next, true)
	}
}

func (c *Controller) stopCurrent() {
	if c.current == nil {
		return
	}
	pl := c.current
	c.current = nil
	pl.player.SetVolume(0)
	pl.player.Pause()
	if err := pl.player.Close(); err != nil {
		c.log.Debug("close track", zap.String("track", pl.name), zap.Error(err))
	}
}

// scheduleLoopGuard rewinds a looping track just before its end, and again
// if it ended anyway.
func (c *Controller) scheduleLoopGuard(pl *playing) {
	c.sched.AfterFunc(LoopPoll, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.current != pl {
			return
		}
		p := pl.player
		if dur := p.Duration(); dur > 0 && p.Position() >= dur-LoopLead {
			if err := p.Seek(0); err != nil {
				c.log.Debug("loop rewind failed", zap.String("track", pl.name), zap.Error(err))
			}
		}
		if !p.IsPlaying() {
			_ = p.Seek(0)
			if err := p.Play(); err != nil {
				c.log.Warn("loop restart failed", zap.String("track", pl.name), zap.Error(err))
			}
		}
		c.scheduleLoopGuard(pl)
	})
}
