// Package tui is the terminal front-end: the main menu, the story and the
// faction selection rendered with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/faction"
	"github.com/metcalfc/trustfall/internal/menu"
	"github.com/metcalfc/trustfall/internal/slides"
	"github.com/metcalfc/trustfall/internal/soundtrack"
	"github.com/metcalfc/trustfall/internal/state"
	"github.com/metcalfc/trustfall/internal/story"
	"github.com/metcalfc/trustfall/internal/subscribe"
)

// compactWidth is the terminal width below which portrait backgrounds and
// the single-column faction layout are used.
const compactWidth = 60

// DefaultSubmitTimeout bounds one signup request.
const DefaultSubmitTimeout = 15 * time.Second

var errNoSubscriber = errors.New("signup is not configured")

// Music switches the background track.
type Music interface {
	SetTrack(name string)
	Interact()
}

// Effects plays sound effects.
type Effects interface {
	Play(name soundtrack.SFX)
}

// Images preloads backgrounds and hands them out once decoded.
type Images interface {
	story.Preloader
	Image(ref string) (image.Image, bool)
}

// Subscriber submits an early access signup.
type Subscriber interface {
	Subscribe(ctx context.Context, email string, f faction.Faction) (*subscribe.Response, error)
}

// Options wires the front-end to its collaborators. Music, Effects and
// Images may be nil.
type Options struct {
	Store      state.Store
	Story      []slides.Slide
	Images     Images
	Music      Music
	Effects    Effects
	Subscriber Subscriber
	// Typing is the per-character interval of the typewriter.
	Typing time.Duration
	// Transition is the pause between slides. Negative disables it.
	Transition time.Duration
	// Priority is the number of backgrounds loaded before the story starts.
	Priority int
	// RequireGesture holds music back until the first key or click.
	RequireGesture bool
	// SubmitTimeout bounds one signup request.
	SubmitTimeout time.Duration
	Logger        *zap.Logger
}

type target int

const (
	toMenu target = iota
	toStory
	toSelection
	toSignup
)

type navigateMsg struct {
	to      target
	origin  menu.Origin
	faction faction.Faction
}

func navigate(msg navigateMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// screen is one view of the application.
type screen interface {
	init() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view(width, height int) string
	close()
}

// App is the root bubbletea model. It routes messages to the active screen
// and switches screens on navigation.
type App struct {
	opts       Options
	log        *zap.Logger
	screen     screen
	width      int
	height     int
	interacted bool
	err        error
}

// New opens the main menu.
func New(opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, errors.New("tui: no state store")
	}
	if len(opts.Story) == 0 {
		return nil, slides.ErrEmptyStory
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	a := &App{opts: opts, log: opts.Logger.Named("tui"), width: 80, height: 24}
	m, err := a.newMenu(menu.Launch)
	if err != nil {
		return nil, err
	}
	a.screen = m
	return a, nil
}

// Run shows the application until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	a, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	if fa, ok := final.(*App); ok {
		fa.screen.close()
		return fa.err
	}
	return nil
}

func (a *App) Init() tea.Cmd {
	if !a.opts.RequireGesture {
		a.interact()
	}
	return a.screen.init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		a.interact()
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			a.interact()
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case navigateMsg:
		next, err := a.open(msg)
		if err != nil {
			a.err = err
			a.log.Error("navigation failed", zap.Error(err))
			return a, tea.Quit
		}
		a.screen.close()
		a.screen = next
		return a, next.init()
	}

	return a, a.screen.update(msg)
}

func (a *App) View() string {
	return a.screen.view(a.width, a.height)
}

// interact unlocks music after the first user gesture.
func (a *App) interact() {
	if a.interacted {
		return
	}
	a.interacted = true
	if a.opts.Music != nil {
		a.opts.Music.Interact()
	}
}

func (a *App) open(msg navigateMsg) (screen, error) {
	switch msg.to {
	case toStory:
		return a.newStory()
	case toSelection:
		return a.newSelection(menu.NewSelection(a.opts.Store, a.compact())), nil
	case toSignup:
		return a.newSelection(menu.ResumeSignup(a.opts.Store, msg.faction, a.compact())), nil
	}
	return a.newMenu(msg.origin)
}

func (a *App) compact() bool { return a.width < compactWidth }

func (a *App) setTrack(name string) {
	if a.opts.Music != nil {
		a.opts.Music.SetTrack(name)
	}
}

func (a *App) play(sfx soundtrack.SFX) {
	if a.opts.Effects != nil {
		a.opts.Effects.Play(sfx)
	}
}

func (a *App) image(ref string) image.Image {
	if a.opts.Images == nil || ref == "" {
		return nil
	}
	img, _ := a.opts.Images.Image(ref)
	return img
}
