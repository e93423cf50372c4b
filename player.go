package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/assets"
	"github.com/metcalfc/trustfall/internal/config"
	"github.com/metcalfc/trustfall/internal/preload"
	"github.com/metcalfc/trustfall/internal/slides"
	"github.com/metcalfc/trustfall/internal/soundtrack"
	"github.com/metcalfc/trustfall/internal/state"
	"github.com/metcalfc/trustfall/internal/subscribe"
)

// playFlags are shared by the terminal and desktop players.
type playFlags struct {
	storyFile string
	noAudio   bool
	fresh     bool
}

func (f *playFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.storyFile, "story", "s", "", "Story file (Markdown, EPUB or YAML) replacing the built-in slides")
	cmd.Flags().BoolVar(&f.noAudio, "no-audio", false, "Disable music and sound effects")
	cmd.Flags().BoolVar(&f.fresh, "fresh", false, "Forget the stored faction and story progress")
}

// player holds everything a front-end needs to present the story.
type player struct {
	cfg        *config.Config
	log        *zap.Logger
	store      state.Store
	story      []slides.Slide
	images     *preload.Preloader
	music      *soundtrack.Controller
	effects    *soundtrack.Effects
	subscriber *subscribe.Client
}

func newPlayer(cfg *config.Config, flags playFlags, log *zap.Logger) (*player, error) {
	story, err := loadStory(cfg, flags.storyFile)
	if err != nil {
		return nil, err
	}

	store, err := state.NewFileStore()
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	if flags.fresh {
		if err := state.ClearFaction(store); err != nil {
			return nil, err
		}
		if err := store.Remove(state.KeyStoryCompleted); err != nil {
			return nil, err
		}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	src := assetSource(cfg, client)

	var backend soundtrack.Backend = soundtrack.SilentBackend{}
	audio := cfg.Audio.Enabled && !flags.noAudio
	if audio {
		backend = soundtrack.NewEbitenBackend(src)
	}
	effects := soundtrack.NewEffects(backend, cfg.Audio.EffectsVolume, audio && cfg.Audio.Effects, log)
	go effects.Preload(soundtrack.CommonSFX...)

	log.Info("player ready",
		zap.Int("slides", len(story)),
		zap.Bool("audio", audio),
		zap.String("assets", describeSource(cfg)))

	return &player{
		cfg:        cfg,
		log:        log,
		store:      store,
		story:      story,
		images:     preload.New(src, log),
		music:      soundtrack.NewController(backend, soundtrack.SystemScheduler{}, soundtrack.Music, log),
		effects:    effects,
		subscriber: subscribe.NewClient(cfg.Site.URL, client),
	}, nil
}

func (p *player) Close() {
	p.music.Close()
	p.effects.Close()
}

// loadStory returns the slides from file, the configured story file or the
// built-in table, in that order.
func loadStory(cfg *config.Config, file string) ([]slides.Slide, error) {
	if file == "" {
		file = cfg.Site.StoryFile
	}
	if file == "" {
		return slides.Default(), nil
	}
	story, err := slides.Load(file)
	if err != nil {
		return nil, fmt.Errorf("load story %s: %w", file, err)
	}
	return story, nil
}

func assetSource(cfg *config.Config, client *http.Client) assets.Source {
	if cfg.Site.AssetsDir != "" {
		return assets.DirSource{Root: cfg.Site.AssetsDir}
	}
	return assets.HTTPSource{BaseURL: cfg.Site.URL, Client: client}
}

func describeSource(cfg *config.Config) string {
	if cfg.Site.AssetsDir != "" {
		return cfg.Site.AssetsDir
	}
	return cfg.Site.URL
}

// transition converts the configured pause; 0 ms disables slide transitions.
func transition(cfg *config.Config) time.Duration {
	if d := cfg.Story.Transition(); d > 0 {
		return d
	}
	return -1
}
