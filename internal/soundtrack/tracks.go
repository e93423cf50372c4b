// Package soundtrack plays the background music and sound effects of the story.
package soundtrack

import "time"

// TrackConfig describes a named background track.
type TrackConfig struct {
	Path    string
	Loop    bool
	Volume  float64
	FadeIn  time.Duration
	FadeOut time.Duration
}

// Music holds every background track by name.
var Music = map[string]TrackConfig{
	"main-menu": {
		Path: "/audio/music/main-menu.mp3", Loop: true, Volume: 0.4,
		FadeIn: 2000 * time.Millisecond, FadeOut: 1000 * time.Millisecond,
	},
	"main-menu-lumina": {
		Path: "/audio/music/faction-lumina.mp3", Loop: true, Volume: 0.4,
		FadeIn: 2000 * time.Millisecond, FadeOut: 1000 * time.Millisecond,
	},
	"main-menu-syndicate": {
		Path: "/audio/music/faction-syndicate.mp3", Loop: true, Volume: 0.4,
		FadeIn: 2000 * time.Millisecond, FadeOut: 1000 * time.Millisecond,
	},
	// No fades: the intro loops back onto itself without a gap.
	"story-intro": {
		Path: "/audio/music/story-intro.m4a", Loop: true, Volume: 0.5,
	},
	"story-collapse": {
		Path: "/audio/music/story-collapse.mp3", Loop: true, Volume: 0.5,
		FadeIn: 1500 * time.Millisecond, FadeOut: 1500 * time.Millisecond,
	},
	"story-emergence": {
		Path: "/audio/music/story-emergence.mp3", Loop: true, Volume: 0.5,
		FadeIn: 1500 * time.Millisecond, FadeOut: 1500 * time.Millisecond,
	},
	"faction-selection": {
		Path: "/audio/music/faction-selection.mp3", Loop: true, Volume: 0.45,
		FadeIn: 1000 * time.Millisecond, FadeOut: 1000 * time.Millisecond,
	},
}

// SlideTracks maps a 1-based slide ordinal to the track playing under it.
// Slides without an entry play no music.
var SlideTracks = map[int]string{
	1:  "story-intro",
	2:  "story-intro",
	3:  "story-intro",
	4:  "story-intro",
	5:  "story-intro",
	6:  "story-collapse",
	7:  "story-collapse",
	8:  "story-emergence",
	9:  "story-emergence",
	10: "story-emergence",
	11: "story-emergence",
	12: "story-emergence",
	13: "story-emergence",
	14: "story-emergence",
	15: "story-emergence",
	16: "story-emergence",
	17: "story-emergence",
	18: "story-emergence",
	19: "story-emergence",
	20: "story-emergence",
}

// TrackForSlide returns the track name for a 1-based slide ordinal, or "".
func TrackForSlide(ordinal int) string {
	return SlideTracks[ordinal]
}

// SFX names a one-shot sound effect.
type SFX string

const (
	Click           SFX = "click"
	TextAdvance     SFX = "text-advance"
	Hover           SFX = "hover"
	SlideTransition SFX = "slide-transition"
	FactionSelect   SFX = "faction-select"
	ProtocolStart   SFX = "protocol-start"
	Loading         SFX = "loading"
	Typing          SFX = "typing"
	EarthAmbience   SFX = "earth-ambience"
	VaultEcho       SFX = "vault-echo"
	AIGlitch        SFX = "ai-glitch"
)

type effect struct {
	path   string
	volume float64 // 0 uses the player default
}

var effects = map[SFX]effect{
	Click:           {path: "/audio/sfx/click.mp3"},
	TextAdvance:     {path: "/audio/sfx/text-advance.m4a", volume: 0.4},
	Hover:           {path: "/audio/sfx/hover.mp3", volume: 0.2},
	SlideTransition: {path: "/audio/sfx/slide-transition.mp3"},
	FactionSelect:   {path: "/audio/sfx/faction-select.mp3"},
	ProtocolStart:   {path: "/audio/sfx/protocol-start.mp3"},
	Loading:         {path: "/audio/sfx/loading.mp3"},
	Typing:          {path: "/audio/sfx/text-advance.m4a", volume: 0.2},
	EarthAmbience:   {path: "/audio/sfx/earth-ambience.mp3"},
	VaultEcho:       {path: "/audio/sfx/vault-echo.mp3"},
	AIGlitch:        {path: "/audio/sfx/ai-glitch.mp3"},
}

// CommonSFX are preloaded when the effects player starts.
var CommonSFX = []SFX{Click, TextAdvance, Hover, SlideTransition}

// Path returns the asset path of an effect.
func (s SFX) Path() string { return effects[s].path }
