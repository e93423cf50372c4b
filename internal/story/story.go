// Package story walks the slide table: it keeps the current slide, switches
// the soundtrack, preloads backgrounds and drives the typewriter.
//
// A Sequencer owns no goroutines or timers. Every state change returns a
// Result telling the front-end what to schedule next: a typewriter tick, the
// end of a slide transition, or an opportunistic background prefetch. Front
// ends call back with the token they were handed, and stale tokens are
// ignored.
package story

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/slides"
	"github.com/metcalfc/trustfall/internal/typewriter"
)

const (
	// DefaultPriority is how many leading backgrounds are loaded before the
	// story becomes interactive.
	DefaultPriority = 3
	// DefaultTransition is the fade between two slides.
	DefaultTransition = 500 * time.Millisecond
)

// TrackSetter switches the background music. An empty name means silence.
type TrackSetter interface {
	SetTrack(name string)
}

// Preloader fetches backgrounds ahead of display.
type Preloader interface {
	Preload(ctx context.Context, ref string) error
	PreloadAll(ctx context.Context, refs []string) error
	Loaded(ref string) bool
}

// Options tunes a Sequencer. Zero values select the defaults.
type Options struct {
	// Priority is the number of backgrounds PreloadPriority loads.
	Priority int
	// Transition is the delay between leaving a slide and typing the next
	// one. A negative value disables transitions.
	Transition time.Duration
	// Typing is the per-character interval.
	Typing time.Duration
	// Tracks maps a 1-based slide ordinal to a track name.
	Tracks func(ordinal int) string
	// OnExit runs once, after the last line of the last slide.
	OnExit func()
	Logger *zap.Logger
}

// Transition is the token of one slide transition.
type Transition struct {
	id uint64
}

// Result tells the caller what to schedule after a state change.
type Result struct {
	Outcome typewriter.Outcome
	// Tick, when set, must be passed to Sequencer.Tick after TickInterval.
	Tick *typewriter.Session
	// Transition, when set, must be passed to CompleteTransition after
	// TransitionDuration.
	Transition *Transition
	// Prefetch names a background worth loading in the background.
	Prefetch string
	// Display names the background of the slide now on screen when it is
	// not loaded yet, typically after a failed preload. Front ends load it
	// with Prefetch and redraw.
	Display string
	// SlideChanged reports that the current slide index moved.
	SlideChanged bool
	// Exited is true exactly once, when the story ends.
	Exited bool
}

// Sequencer is the state machine of the story view.
type Sequencer struct {
	slides     []slides.Slide
	tracks     TrackSetter
	preloader  Preloader
	tw         *typewriter.Typewriter
	log        *zap.Logger
	trackFor   func(int) string
	onExit     func()
	priority   int
	transition time.Duration

	index   int
	started bool
	exited  bool
	pending *Transition
	nextID  uint64
}

// New creates a sequencer over story. The story must not be empty.
func New(story []slides.Slide, tracks TrackSetter, pre Preloader, opts Options) (*Sequencer, error) {
	if len(story) == 0 {
		return nil, slides.ErrEmptyStory
	}
	if opts.Priority <= 0 {
		opts.Priority = DefaultPriority
	}
	if opts.Transition == 0 {
		opts.Transition = DefaultTransition
	}
	if opts.Transition < 0 {
		opts.Transition = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tracks == nil {
		opts.Tracks = func(int) string { return "" }
	}
	return &Sequencer{
		slides:     story,
		tracks:     tracks,
		preloader:  pre,
		tw:         typewriter.New(opts.Typing),
		log:        opts.Logger.Named("story"),
		trackFor:   opts.Tracks,
		onExit:     opts.OnExit,
		priority:   opts.Priority,
		transition: opts.Transition,
	}, nil
}

// PreloadPriority loads the leading backgrounds. Failures are logged and
// never stop the story.
func (s *Sequencer) PreloadPriority(ctx context.Context) {
	n := min(s.priority, len(s.slides))
	s.preload(ctx, slides.Backgrounds(s.slides[:n]), "priority")
}

// PreloadRemaining loads every background after the priority prefix.
func (s *Sequencer) PreloadRemaining(ctx context.Context) {
	if s.priority >= len(s.slides) {
		return
	}
	s.preload(ctx, slides.Backgrounds(s.slides[s.priority:]), "background")
}

// Prefetch loads a single background, logging a failure.
func (s *Sequencer) Prefetch(ctx context.Context, ref string) {
	if s.preloader == nil || ref == "" {
		return
	}
	if err := s.preloader.Preload(ctx, ref); err != nil {
		s.log.Warn("prefetch failed", zap.String("ref", ref), zap.Error(err))
	}
}

func (s *Sequencer) preload(ctx context.Context, refs []string, phase string) {
	if s.preloader == nil || len(refs) == 0 {
		return
	}
	start := time.Now()
	if err := s.preloader.PreloadAll(ctx, refs); err != nil {
		s.log.Warn("preload incomplete", zap.String("phase", phase), zap.Error(err))
	}
	s.log.Debug("preload finished",
		zap.String("phase", phase),
		zap.Int("images", len(refs)),
		zap.Duration("elapsed", time.Since(start)))
}

// Begin activates the story at its first slide.
func (s *Sequencer) Begin() Result {
	if s.started {
		return Result{}
	}
	s.started = true
	s.index = 0
	s.switchTrack()
	r := s.load()
	r.SlideChanged = true
	r.Display = s.missingBackground()
	return r
}

// Click handles a user interaction.
func (s *Sequencer) Click() Result {
	if !s.started || s.exited || s.pending != nil {
		return Result{}
	}
	tr := s.tw.Click()
	if tr.Outcome != typewriter.SlideDone {
		return Result{Outcome: tr.Outcome, Tick: tr.Session}
	}
	return s.advance()
}

func (s *Sequencer) advance() Result {
	if s.index >= len(s.slides)-1 {
		s.exited = true
		s.log.Info("story finished", zap.Int("slides", len(s.slides)))
		if s.onExit != nil {
			s.onExit()
		}
		return Result{Outcome: typewriter.SlideDone, Exited: true}
	}

	s.index++
	s.switchTrack()
	s.tw.Load(nil)
	r := Result{Outcome: typewriter.SlideDone, SlideChanged: true}
	if s.index+1 < len(s.slides) {
		r.Prefetch = s.slides[s.index+1].Background
	}
	if s.transition == 0 {
		lr := s.load()
		r.Tick = lr.Tick
		r.Display = s.missingBackground()
		return r
	}
	s.nextID++
	s.pending = &Transition{id: s.nextID}
	r.Transition = s.pending
	return r
}

// CompleteTransition ends the transition t and starts typing the new slide.
func (s *Sequencer) CompleteTransition(t *Transition) Result {
	if t == nil || t != s.pending {
		return Result{}
	}
	s.pending = nil
	r := s.load()
	r.Display = s.missingBackground()
	return r
}

// Tick reveals the next character of session.
func (s *Sequencer) Tick(session *typewriter.Session) Result {
	if s.exited || s.pending != nil {
		return Result{}
	}
	if s.tw.Tick(session) {
		return Result{Tick: session}
	}
	return Result{}
}

func (s *Sequencer) load() Result {
	tr := s.tw.Load(s.slides[s.index].Lines)
	return Result{Outcome: tr.Outcome, Tick: tr.Session}
}

// missingBackground returns the current background when the preloader does
// not hold it.
func (s *Sequencer) missingBackground() string {
	ref := s.slides[s.index].Background
	if s.preloader == nil || ref == "" || s.preloader.Loaded(ref) {
		return ""
	}
	return ref
}

func (s *Sequencer) switchTrack() {
	if s.tracks != nil {
		s.tracks.SetTrack(s.trackFor(s.index + 1))
	}
}

// Index returns the 0-based index of the current slide.
func (s *Sequencer) Index() int { return s.index }

// Len returns the number of slides.
func (s *Sequencer) Len() int { return len(s.slides) }

// Slide returns the current slide.
func (s *Sequencer) Slide() slides.Slide { return s.slides[s.index] }

// Background returns the current background reference.
func (s *Sequencer) Background() string { return s.slides[s.index].Background }

// Counter renders the slide position as "n / total".
func (s *Sequencer) Counter() string {
	return fmt.Sprintf("%d / %d", s.index+1, len(s.slides))
}

// Text returns the revealed part of the current line.
func (s *Sequencer) Text() string { return s.tw.Prefix() }

// Typing reports whether the current line is still being revealed.
func (s *Sequencer) Typing() bool { return s.tw.Typing() }

// LineIndex returns the index of the current line within the slide.
func (s *Sequencer) LineIndex() int { return s.tw.LineIndex() }

// Transitioning reports whether a slide transition is in progress.
func (s *Sequencer) Transitioning() bool { return s.pending != nil }

// Started reports whether Begin was called.
func (s *Sequencer) Started() bool { return s.started }

// Exited reports whether the story has ended.
func (s *Sequencer) Exited() bool { return s.exited }

// TickInterval is the delay before a scheduled Tick.
func (s *Sequencer) TickInterval() time.Duration { return s.tw.Interval }

// TransitionDuration is the delay before a scheduled CompleteTransition.
func (s *Sequencer) TransitionDuration() time.Duration { return s.transition }
