package typewriter

import (
	"testing"
	"time"
)

// typeOut ticks s until the typewriter stops asking for ticks, collecting
// every visible prefix including the initial empty one.
func typeOut(tw *Typewriter, s *Session) []string {
	prefixes := []string{tw.Prefix()}
	for tw.Tick(s) {
		prefixes = append(prefixes, tw.Prefix())
	}
	if last := prefixes[len(prefixes)-1]; last != tw.Prefix() {
		prefixes = append(prefixes, tw.Prefix())
	}
	return prefixes
}

func TestTypingProducesEveryPrefix(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"ascii", "Welcome to Earth-0."},
		{"single char", "A"},
		{"multibyte", "The end… and the beginning —"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := New(0)
			res := tw.Load([]string{tt.line})
			if res.Session == nil {
				t.Fatal("Load() should return a session to tick")
			}

			prefixes := typeOut(tw, res.Session)
			runes := []rune(tt.line)
			if len(prefixes) != len(runes)+1 {
				t.Fatalf("got %d prefixes, want %d", len(prefixes), len(runes)+1)
			}
			for i, p := range prefixes {
				if want := string(runes[:i]); p != want {
					t.Errorf("prefix %d = %q, want %q", i, p, want)
				}
			}
			if tw.Typing() {
				t.Error("typewriter should be finished")
			}
		})
	}
}

func TestSkipRevealsWholeLine(t *testing.T) {
	tw := New(time.Millisecond)
	res := tw.Load([]string{"Value became memory.", "Ideas."})
	tw.Tick(res.Session)
	tw.Tick(res.Session)

	click := tw.Click()
	if click.Outcome != Skipped {
		t.Fatalf("Click() while typing = %v, want skipped", click.Outcome)
	}
	if click.Session != nil {
		t.Error("skip must not schedule further ticks")
	}
	if tw.Prefix() != "Value became memory." {
		t.Errorf("Prefix() = %q", tw.Prefix())
	}
	if tw.Typing() {
		t.Error("typewriter should be finished after skip")
	}

	// Ticks already in flight are no-ops.
	if tw.Tick(res.Session) {
		t.Error("tick after skip should not continue")
	}
	if tw.Prefix() != "Value became memory." {
		t.Errorf("stale tick changed prefix to %q", tw.Prefix())
	}
}

func TestClickAdvancesLinesThenSlide(t *testing.T) {
	lines := []string{"one", "two", "three"}
	tw := New(0)
	res := tw.Load(lines)

	for i := range lines {
		if tw.LineIndex() != i {
			t.Fatalf("LineIndex() = %d, want %d", tw.LineIndex(), i)
		}
		typeOut(tw, res.Session)
		if tw.Prefix() != lines[i] {
			t.Fatalf("line %d fully typed = %q", i, tw.Prefix())
		}
		res = tw.Click()
		if i < len(lines)-1 {
			if res.Outcome != NextLine || res.Session == nil {
				t.Fatalf("Click() after line %d = %+v, want next line", i, res)
			}
			if tw.Prefix() != "" {
				t.Fatalf("new line should start empty, got %q", tw.Prefix())
			}
		}
	}
	if res.Outcome != SlideDone {
		t.Fatalf("Click() after last line = %v, want slide done", res.Outcome)
	}
	if tw.LineIndex() != len(lines) {
		t.Errorf("LineIndex() = %d, want %d", tw.LineIndex(), len(lines))
	}
}

func TestStaleSessionIsIgnored(t *testing.T) {
	tw := New(0)
	first := tw.Load([]string{"first line", "second line"}).Session
	tw.Click() // skip
	second := tw.Click().Session

	if !first.Cancelled() {
		t.Error("first session should be cancelled")
	}
	if tw.Tick(first) {
		t.Error("stale session tick should report no further ticks")
	}
	if tw.Prefix() != "" {
		t.Errorf("stale tick revealed %q on the new line", tw.Prefix())
	}
	if !tw.Tick(second) || tw.Prefix() != "s" {
		t.Errorf("current session tick should reveal, got %q", tw.Prefix())
	}
}

func TestLoadCancelsPreviousSlide(t *testing.T) {
	tw := New(0)
	old := tw.Load([]string{"old slide"}).Session
	fresh := tw.Load([]string{"new slide"}).Session

	if tw.Tick(old) {
		t.Error("tick from the previous slide should be ignored")
	}
	if tw.Prefix() != "" {
		t.Errorf("Prefix() = %q, want empty", tw.Prefix())
	}
	if old.ID() == fresh.ID() {
		t.Error("sessions should have distinct ids")
	}
}

func TestEmptyLineFinishesImmediately(t *testing.T) {
	tw := New(0)
	res := tw.Load([]string{"", "next"})
	if res.Session != nil {
		t.Error("empty line should not need ticks")
	}
	if tw.Typing() {
		t.Error("empty line should be finished")
	}
	if res := tw.Click(); res.Outcome != NextLine {
		t.Errorf("Click() = %v, want next line", res.Outcome)
	}
}

func TestDefaultInterval(t *testing.T) {
	if got := New(0).Interval; got != 50*time.Millisecond {
		t.Errorf("Interval = %v, want 50ms", got)
	}
}
