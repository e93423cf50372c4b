package soundtrack

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestEffectsReusePlayers(t *testing.T) {
	backend := &fakeBackend{}
	fx := NewEffects(backend, 0.3, true, zaptest.NewLogger(t))

	fx.Preload(CommonSFX...)
	if len(backend.loaded) != len(CommonSFX) {
		t.Fatalf("preloaded %d effects, want %d", len(backend.loaded), len(CommonSFX))
	}

	fx.Play(Click)
	fx.Play(Click)
	if len(backend.loaded) != len(CommonSFX) {
		t.Errorf("playing a preloaded effect should not load it again")
	}

	var click *fakePlayer
	for _, p := range backend.loaded {
		if p.path == Click.Path() {
			click = p
		}
	}
	if click == nil {
		t.Fatal("click was not preloaded")
	}
	if click.plays != 2 {
		t.Errorf("click played %d times, want 2", click.plays)
	}
	if click.volume != 0.3 {
		t.Errorf("click volume = %v, want default 0.3", click.volume)
	}
	if len(click.seeks) != 2 || click.seeks[1] != 0 {
		t.Errorf("effect should rewind before each play, seeks=%v", click.seeks)
	}
}

func TestEffectsCustomVolume(t *testing.T) {
	backend := &fakeBackend{}
	fx := NewEffects(backend, 0.3, true, zaptest.NewLogger(t))

	fx.Play(TextAdvance)
	if got := backend.last().volume; got != 0.4 {
		t.Errorf("text-advance volume = %v, want 0.4", got)
	}
}

func TestEffectsDisabled(t *testing.T) {
	backend := &fakeBackend{}
	fx := NewEffects(backend, 0.3, false, zaptest.NewLogger(t))
	fx.Preload(Click)
	fx.Play(Click)
	if len(backend.loaded) != 0 {
		t.Errorf("disabled effects loaded %d sounds", len(backend.loaded))
	}

	var none *Effects
	none.Play(Click) // nil-safe
}

func TestEffectsLoadFailure(t *testing.T) {
	backend := &fakeBackend{fail: map[string]bool{Hover.Path(): true}}
	fx := NewEffects(backend, 0.3, true, zaptest.NewLogger(t))
	fx.Play(Hover)
	if len(backend.loaded) != 0 {
		t.Errorf("failed effect should not be cached")
	}
}
