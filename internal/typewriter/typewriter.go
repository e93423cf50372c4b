// Package typewriter reveals the lines of a slide one character at a time.
//
// The typewriter owns no timers. Callers schedule a Tick for the session
// returned by Load or Click after Interval has elapsed; ticks carrying a
// session that has since been replaced are ignored, so a user clicking faster
// than the tick interval can never have a stale line overwrite a newer one.
package typewriter

import "time"

// DefaultInterval is the delay between two revealed characters.
const DefaultInterval = 50 * time.Millisecond

// Session is the cancellation token of one line being typed.
type Session struct {
	id        uint64
	line      string
	cancelled bool
}

// ID identifies the session.
func (s *Session) ID() uint64 { return s.id }

// Line returns the line this session types.
func (s *Session) Line() string { return s.line }

// Cancelled reports whether the session was superseded or finished early.
func (s *Session) Cancelled() bool { return s == nil || s.cancelled }

func (s *Session) cancel() {
	if s != nil {
		s.cancelled = true
	}
}

// Outcome is what a click did.
type Outcome int

const (
	// Ignored means there was nothing to act on.
	Ignored Outcome = iota
	// Skipped means the rest of the line was revealed at once.
	Skipped
	// NextLine means a new line started typing.
	NextLine
	// SlideDone means the last line was acknowledged; the caller advances the slide.
	SlideDone
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case NextLine:
		return "next-line"
	case SlideDone:
		return "slide-done"
	}
	return "ignored"
}

// Result describes a state change. Session is set when the caller must
// schedule a tick for it.
type Result struct {
	Outcome Outcome
	Session *Session
}

// Typewriter types the lines of one slide.
type Typewriter struct {
	Interval time.Duration

	lines     []string
	lineIndex int
	runes     []rune
	revealed  int
	typing    bool
	session   *Session
	nextID    uint64
}

// New creates a typewriter revealing one character per interval.
func New(interval time.Duration) *Typewriter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Typewriter{Interval: interval}
}

// Load resets the typewriter to the first line of a new slide.
func (t *Typewriter) Load(lines []string) Result {
	t.lines = append([]string(nil), lines...)
	t.lineIndex = 0
	if len(t.lines) == 0 {
		t.session.cancel()
		t.session = nil
		t.runes = nil
		t.revealed = 0
		t.typing = false
		return Result{Outcome: Ignored}
	}
	return t.startLine()
}

func (t *Typewriter) startLine() Result {
	t.session.cancel()
	t.nextID++
	line := t.lines[t.lineIndex]
	t.session = &Session{id: t.nextID, line: line}
	t.runes = []rune(line)
	t.revealed = 0
	t.typing = len(t.runes) > 0
	if !t.typing {
		// Nothing to reveal; the line is finished as soon as it starts.
		t.session.cancel()
		return Result{Outcome: NextLine}
	}
	return Result{Outcome: NextLine, Session: t.session}
}

// Tick reveals one more character for s. It reports whether another tick
// should be scheduled. Ticks for a stale or cancelled session do nothing.
func (t *Typewriter) Tick(s *Session) bool {
	if s == nil || s != t.session || s.cancelled || !t.typing {
		return false
	}
	t.revealed++
	if t.revealed >= len(t.runes) {
		t.revealed = len(t.runes)
		t.typing = false
		s.cancel()
		return false
	}
	return true
}

// Click handles user interaction: skip while typing, otherwise move on.
func (t *Typewriter) Click() Result {
	if t.session == nil && len(t.lines) == 0 {
		return Result{Outcome: Ignored}
	}
	if t.typing {
		t.revealed = len(t.runes)
		t.typing = false
		t.session.cancel()
		return Result{Outcome: Skipped}
	}
	if t.lineIndex >= len(t.lines) {
		return Result{Outcome: SlideDone}
	}
	t.lineIndex++
	if t.lineIndex >= len(t.lines) {
		return Result{Outcome: SlideDone}
	}
	return t.startLine()
}

// Prefix returns the currently revealed part of the active line.
func (t *Typewriter) Prefix() string {
	return string(t.runes[:t.revealed])
}

// Line returns the active line in full.
func (t *Typewriter) Line() string {
	return string(t.runes)
}

// LineIndex returns the index of the active line; it equals the number of
// lines once the slide is done.
func (t *Typewriter) LineIndex() int { return t.lineIndex }

// Typing reports whether characters remain to be revealed.
func (t *Typewriter) Typing() bool { return t.typing }

// Session returns the active typing session, or nil.
func (t *Typewriter) Session() *Session { return t.session }

// Progress returns how many characters of the active line are visible.
func (t *Typewriter) Progress() (revealed, total int) {
	return t.revealed, len(t.runes)
}
