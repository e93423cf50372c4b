package story

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/metcalfc/trustfall/internal/slides"
	"github.com/metcalfc/trustfall/internal/soundtrack"
	"github.com/metcalfc/trustfall/internal/typewriter"
)

type recordingTracks struct {
	names []string
}

func (r *recordingTracks) SetTrack(name string) { r.names = append(r.names, name) }

type fakePreloader struct {
	mu       sync.Mutex
	calls    [][]string
	fail     map[string]bool
	flaky    bool
	attempts map[string]int
	loaded   map[string]bool
}

// load fails refs listed in fail and, when flaky, the first attempt of every
// ref. The caller holds f.mu.
func (f *fakePreloader) load(ref string) error {
	if f.attempts == nil {
		f.attempts = map[string]int{}
		f.loaded = map[string]bool{}
	}
	f.attempts[ref]++
	if f.fail[ref] || (f.flaky && f.attempts[ref] == 1) {
		return errors.New("boom")
	}
	f.loaded[ref] = true
	return nil
}

func (f *fakePreloader) Preload(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, []string{ref})
	return f.load(ref)
}

func (f *fakePreloader) PreloadAll(_ context.Context, refs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, refs)
	var failed error
	for _, r := range refs {
		if err := f.load(r); err != nil {
			failed = err
		}
	}
	return failed
}

func (f *fakePreloader) Loaded(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded[ref]
}

func testStory() []slides.Slide {
	return []slides.Slide{
		{ID: 1, Background: "/images/slide_1.png", Lines: []string{"ab", "c"}},
		{ID: 2, Background: "/images/slide_2.png", Lines: []string{"d"}},
		{ID: 3, Background: "/images/slide_3.png", Lines: []string{"ef"}},
	}
}

// typeOut drives ticks until the current line is fully revealed and returns
// every prefix observed along the way.
func typeOut(t *testing.T, s *Sequencer, r Result) []string {
	t.Helper()
	prefixes := []string{s.Text()}
	session := r.Tick
	for session != nil {
		next := s.Tick(session)
		prefixes = append(prefixes, s.Text())
		session = next.Tick
	}
	return prefixes
}

func TestSequencerRevealsLinesInOrder(t *testing.T) {
	tracks := &recordingTracks{}
	s, err := New(testStory(), tracks, nil, Options{Transition: -1, Tracks: soundtrack.TrackForSlide})
	if err != nil {
		t.Fatal(err)
	}

	var lines []string
	r := s.Begin()
	for !s.Exited() {
		typeOut(t, s, r)
		if !s.Typing() {
			lines = append(lines, s.Text())
		}
		r = s.Click()
	}

	want := []string{"ab", "c", "d", "ef"}
	if len(lines) != len(want) {
		t.Fatalf("revealed lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	wantTracks := []string{"intro", "intro", "intro"}
	if len(tracks.names) != len(wantTracks) {
		t.Fatalf("track requests = %q, want %q", tracks.names, wantTracks)
	}
}

func TestTypingProducesNPlusOnePrefixes(t *testing.T) {
	story := []slides.Slide{{ID: 1, Background: "/images/slide_1.png", Lines: []string{"hello"}}}
	s, _ := New(story, nil, nil, Options{})
	prefixes := typeOut(t, s, s.Begin())

	want := []string{"", "h", "he", "hel", "hell", "hello"}
	if len(prefixes) != len(want) {
		t.Fatalf("prefixes = %q, want %q", prefixes, want)
	}
	for i := range want {
		if prefixes[i] != want[i] {
			t.Errorf("prefix %d = %q, want %q", i, prefixes[i], want[i])
		}
	}
}

func TestSkipRevealsWholeLine(t *testing.T) {
	s, _ := New(testStory(), nil, nil, Options{})
	r := s.Begin()
	s.Tick(r.Tick)

	skip := s.Click()
	if skip.Outcome != typewriter.Skipped {
		t.Fatalf("Click() outcome = %v, want skipped", skip.Outcome)
	}
	if s.Text() != "ab" || s.Typing() {
		t.Errorf("after skip text=%q typing=%v", s.Text(), s.Typing())
	}
	if skip.Tick != nil {
		t.Error("skip must not schedule more ticks")
	}
	if next := s.Tick(r.Tick); next.Tick != nil || s.Text() != "ab" {
		t.Error("stale tick after skip must be a no-op")
	}
}

func TestTransitionGatesNextSlide(t *testing.T) {
	s, _ := New(testStory(), &recordingTracks{}, nil, Options{})
	s.Begin()
	s.Click() // skip "ab"
	s.Click() // next line "c"
	s.Click() // skip "c"

	r := s.Click()
	if !r.SlideChanged || r.Transition == nil {
		t.Fatalf("advance result = %+v, want slide change with transition", r)
	}
	if s.Index() != 1 || s.Counter() != "2 / 3" {
		t.Errorf("index=%d counter=%q", s.Index(), s.Counter())
	}
	if r.Prefetch != "/images/slide_3.png" {
		t.Errorf("Prefetch = %q, want next slide background", r.Prefetch)
	}
	if s.Text() != "" || s.Typing() {
		t.Error("typing must wait for the transition")
	}
	if c := s.Click(); c.Outcome != typewriter.Ignored {
		t.Errorf("click during transition = %v, want ignored", c.Outcome)
	}

	if got := s.CompleteTransition(&Transition{id: 99}); got.Tick != nil {
		t.Error("unknown transition token must be ignored")
	}
	done := s.CompleteTransition(r.Transition)
	if done.Tick == nil || !s.Typing() {
		t.Fatal("completing the transition should start typing")
	}
	if again := s.CompleteTransition(r.Transition); again.Tick != nil {
		t.Error("completing twice must be a no-op")
	}
}

func TestExitHappensOnce(t *testing.T) {
	exits := 0
	story := []slides.Slide{{ID: 1, Background: "/images/slide_1.png", Lines: []string{"x"}}}
	s, _ := New(story, nil, nil, Options{OnExit: func() { exits++ }})
	s.Begin()
	s.Click() // skip
	r := s.Click()
	if !r.Exited {
		t.Fatal("last click should exit")
	}
	for range 3 {
		if r := s.Click(); r.Exited {
			t.Error("exit reported twice")
		}
	}
	if exits != 1 {
		t.Errorf("OnExit called %d times, want 1", exits)
	}
}

func TestTrackRequestedForEverySlide(t *testing.T) {
	tracks := &recordingTracks{}
	story := make([]slides.Slide, 7)
	for i := range story {
		story[i] = slides.Slide{ID: i + 1, Background: slides.DefaultBackground(i + 1), Lines: []string{""}}
	}
	s, _ := New(story, tracks, nil, Options{Transition: -1, Tracks: soundtrack.TrackForSlide})
	s.Begin()
	for !s.Exited() {
		s.Click()
	}
	want := []string{"intro", "intro", "intro", "intro", "intro", "collapse", "collapse"}
	if len(tracks.names) != len(want) {
		t.Fatalf("tracks = %q, want %q", tracks.names, want)
	}
	for i := range want {
		if tracks.names[i] != want[i] {
			t.Errorf("slide %d track = %q, want %q", i+1, tracks.names[i], want[i])
		}
	}
}

func TestPreloadFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pre := &fakePreloader{fail: map[string]bool{"/images/slide_2.png": true}}
	s, _ := New(testStory(), nil, pre, Options{Priority: 2, Logger: zap.New(core)})

	s.PreloadPriority(context.Background())
	s.PreloadRemaining(context.Background())

	if len(pre.calls) != 2 {
		t.Fatalf("PreloadAll called %d times, want 2", len(pre.calls))
	}
	if len(pre.calls[0]) != 2 || pre.calls[1][0] != "/images/slide_3.png" {
		t.Errorf("preload batches = %q", pre.calls)
	}
	if n := logs.FilterMessage("preload incomplete").Len(); n != 1 {
		t.Errorf("logged %d preload warnings, want 1", n)
	}

	// The story still starts.
	if r := s.Begin(); r.Tick == nil {
		t.Error("story should begin despite failed preload")
	}
}

func TestPrefetchLogsFailure(t *testing.T) {
	pre := &fakePreloader{fail: map[string]bool{"/images/slide_3.png": true}}
	s, _ := New(testStory(), nil, pre, Options{Logger: zaptest.NewLogger(t)})
	s.Prefetch(context.Background(), "/images/slide_3.png")
	s.Prefetch(context.Background(), "")
	if len(pre.calls) != 1 {
		t.Errorf("Prefetch issued %d loads, want 1", len(pre.calls))
	}
}

func TestNewRejectsEmptyStory(t *testing.T) {
	if _, err := New(nil, nil, nil, Options{}); !errors.Is(err, slides.ErrEmptyStory) {
		t.Errorf("New(nil) error = %v, want ErrEmptyStory", err)
	}
}

func TestDisplayRetriesFailedBackgrounds(t *testing.T) {
	tests := []struct {
		name       string
		transition time.Duration
	}{
		{"without transitions", -1},
		{"with transitions", time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre := &fakePreloader{flaky: true}
			s, _ := New(testStory(), nil, pre, Options{Priority: 2, Transition: tt.transition, Logger: zaptest.NewLogger(t)})
			ctx := context.Background()
			s.PreloadPriority(ctx)
			s.PreloadRemaining(ctx)

			r := s.Begin()
			if r.Display != "/images/slide_1.png" {
				t.Fatalf("Begin Display = %q, want slide 1", r.Display)
			}
			s.Prefetch(ctx, r.Display)
			if !pre.Loaded("/images/slide_1.png") {
				t.Fatal("display-time load should retry the failed preload")
			}

			// Finish slide 1 ("ab", "c").
			typeOut(t, s, r)
			typeOut(t, s, s.Click())
			r = s.Click()
			if r.Transition != nil {
				if r.Display != "" {
					t.Errorf("Display = %q during the transition", r.Display)
				}
				r = s.CompleteTransition(r.Transition)
			}
			if s.Index() != 1 || r.Display != "/images/slide_2.png" {
				t.Fatalf("slide %d Display = %q, want slide 2", s.Index()+1, r.Display)
			}
			s.Prefetch(ctx, r.Display)
			if got := pre.attempts["/images/slide_2.png"]; got != 2 {
				t.Errorf("slide 2 attempts = %d, want 2", got)
			}
		})
	}
}

func TestDisplayEmptyWhenLoaded(t *testing.T) {
	pre := &fakePreloader{}
	s, _ := New(testStory(), nil, pre, Options{Priority: 3, Logger: zaptest.NewLogger(t)})
	s.PreloadPriority(context.Background())
	if r := s.Begin(); r.Display != "" {
		t.Errorf("Display = %q for a preloaded background", r.Display)
	}
}
