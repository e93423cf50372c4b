package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/trustfall/internal/menu"
	"github.com/metcalfc/trustfall/internal/soundtrack"
	"github.com/metcalfc/trustfall/internal/story"
	"github.com/metcalfc/trustfall/internal/typewriter"
)

const (
	loadingTitle = "INITIALIZING TRUSTFALL PROTOCOL"
	skipHint     = "Click to skip..."
	continueHint = "Click to continue..."
	cursorGlyph  = "▌"
)

type (
	priorityLoadedMsg  struct{}
	remainingLoadedMsg struct{}
	typeTickMsg        struct{ session *typewriter.Session }
	transitionMsg      struct{ t *story.Transition }
	prefetchedMsg      struct{ ref string }
)

type storyScreen struct {
	app      *App
	seq      *story.Sequencer
	ctx      context.Context
	cancel   context.CancelFunc
	loading  bool
	spinner  spinner.Model
	backdrop backdrop
}

func (a *App) newStory() (*storyScreen, error) {
	seq, err := story.New(a.opts.Story, a.opts.Music, a.opts.Images, story.Options{
		Priority:   a.opts.Priority,
		Transition: a.opts.Transition,
		Typing:     a.opts.Typing,
		Tracks:     soundtrack.TrackForSlide,
		Logger:     a.log,
	})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New(spinner.WithSpinner(spinner.Points), spinner.WithStyle(loadingStyle))
	return &storyScreen{app: a, seq: seq, ctx: ctx, cancel: cancel, loading: true, spinner: sp}, nil
}

func (s *storyScreen) init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		s.seq.PreloadPriority(s.ctx)
		return priorityLoadedMsg{}
	})
}

func (s *storyScreen) close() { s.cancel() }

func (s *storyScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.loading {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case priorityLoadedMsg:
		s.loading = false
		remaining := func() tea.Msg {
			s.seq.PreloadRemaining(s.ctx)
			return remainingLoadedMsg{}
		}
		return tea.Batch(s.schedule(s.seq.Begin()), remaining)

	case typeTickMsg:
		return s.schedule(s.seq.Tick(msg.session))

	case transitionMsg:
		return s.schedule(s.seq.CompleteTransition(msg.t))

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "enter", "right", "l":
			return s.click()
		case "esc":
			return navigate(navigateMsg{to: toMenu, origin: menu.Launch})
		case "q":
			return tea.Quit
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return s.click()
		}
	}
	return nil
}

func (s *storyScreen) click() tea.Cmd {
	if s.loading {
		return nil
	}
	return s.schedule(s.seq.Click())
}

// schedule turns a sequencer result into commands.
func (s *storyScreen) schedule(r story.Result) tea.Cmd {
	var cmds []tea.Cmd

	switch {
	case r.SlideChanged && s.seq.Index() > 0:
		s.app.play(soundtrack.SlideTransition)
	case r.Outcome == typewriter.NextLine:
		s.app.play(soundtrack.TextAdvance)
	}

	if r.Exited {
		return navigate(navigateMsg{to: toSelection})
	}
	if session := r.Tick; session != nil {
		cmds = append(cmds, tea.Tick(s.seq.TickInterval(), func(time.Time) tea.Msg {
			return typeTickMsg{session: session}
		}))
	}
	if t := r.Transition; t != nil {
		cmds = append(cmds, tea.Tick(s.seq.TransitionDuration(), func(time.Time) tea.Msg {
			return transitionMsg{t: t}
		}))
	}
	if ref := r.Display; ref != "" {
		cmds = append(cmds, s.fetch(ref))
	}
	if ref := r.Prefetch; ref != "" && ref != r.Display {
		cmds = append(cmds, s.fetch(ref))
	}
	return tea.Batch(cmds...)
}

// fetch loads ref off the update loop; the resulting message redraws the
// screen.
func (s *storyScreen) fetch(ref string) tea.Cmd {
	return func() tea.Msg {
		s.seq.Prefetch(s.ctx, ref)
		return prefetchedMsg{ref: ref}
	}
}

func (s *storyScreen) view(width, height int) string {
	if s.loading {
		body := lipgloss.JoinVertical(lipgloss.Center,
			loadingStyle.Render(loadingTitle),
			"",
			s.spinner.View(),
		)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
	}

	boxWidth := min(width-4, 96)
	text := s.seq.Text()
	if s.seq.Typing() {
		text += cursorGlyph
	}
	hint := continueHint
	if s.seq.Typing() {
		hint = skipHint
	}
	box := textBoxStyle.Width(max(boxWidth-2, 10)).Render(
		lipgloss.JoinVertical(lipgloss.Center, text, "", hintStyle.Render(hint)),
	)
	counter := counterStyle.Render(s.seq.Counter())
	controls := controlsStyle.Render("SPACE/CLICK: advance  ESC: menu  Q: quit")

	// counter, box and controls lines; the backdrop takes the rest
	avail := height - lipgloss.Height(box) - 2
	var scene string
	if !s.seq.Transitioning() && avail > 0 {
		ref := s.seq.Background()
		scene = s.backdrop.render(ref, s.app.image(ref), width, avail)
	}
	if scene == "" {
		scene = strings.Repeat("\n", max(avail-1, 0))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.PlaceHorizontal(width, lipgloss.Right, counter),
		scene,
		lipgloss.PlaceHorizontal(width, lipgloss.Center, box),
		lipgloss.PlaceHorizontal(width, lipgloss.Center, controls),
	)
}
