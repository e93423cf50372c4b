package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/faction"
	"github.com/metcalfc/trustfall/internal/menu"
	"github.com/metcalfc/trustfall/internal/soundtrack"
)

const selectionTrack = "faction-selection"

type (
	showFormMsg          struct{}
	submittedMsg         struct{ err error }
	backgroundsLoadedMsg struct{}
)

type selectionScreen struct {
	app      *App
	sel      *menu.Selection
	input    textinput.Model
	spinner  spinner.Model
	cursor   int
	ctx      context.Context
	cancel   context.CancelFunc
	backdrop backdrop
}

func (a *App) newSelection(sel *menu.Selection) *selectionScreen {
	in := textinput.New()
	in.Placeholder = menu.FormPlaceholder
	in.Prompt = "> "
	in.CharLimit = 254
	in.Width = 40
	ctx, cancel := context.WithCancel(context.Background())
	return &selectionScreen{
		app:     a,
		sel:     sel,
		input:   in,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(loadingStyle)),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *selectionScreen) init() tea.Cmd {
	s.app.setTrack(selectionTrack)
	if s.sel.Phase() == menu.Form {
		return s.input.Focus()
	}
	s.sel.Hover(faction.All[s.cursor])
	return s.loadBackgrounds()
}

// loadBackgrounds fetches the neutral and hover backdrops of the choice.
func (s *selectionScreen) loadBackgrounds() tea.Cmd {
	images := s.app.opts.Images
	if images == nil {
		return nil
	}
	compact := s.app.compact()
	refs := []string{faction.Background("", compact)}
	for _, f := range faction.All {
		refs = append(refs, faction.Background(f, compact))
	}
	ctx, log := s.ctx, s.app.log
	return func() tea.Msg {
		if err := images.PreloadAll(ctx, refs); err != nil {
			log.Warn("faction backgrounds incomplete", zap.Error(err))
		}
		return backgroundsLoadedMsg{}
	}
}

func (s *selectionScreen) close() { s.cancel() }

func (s *selectionScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case showFormMsg:
		s.sel.ShowForm()
		return s.input.Focus()

	case submittedMsg:
		s.sel.FinishSubmit(msg.err)
		if msg.err != nil {
			return s.input.Focus()
		}
		s.app.play(soundtrack.ProtocolStart)
		return nil

	case spinner.TickMsg:
		if s.sel.Phase() != menu.Submitting {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return s.key(msg)
	}

	if s.sel.Phase() == menu.Form {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	return nil
}

func (s *selectionScreen) key(msg tea.KeyMsg) tea.Cmd {
	switch s.sel.Phase() {
	case menu.Choosing:
		switch msg.String() {
		case "left", "h", "up", "k":
			s.move(-1)
		case "right", "l", "down", "j", "tab":
			s.move(1)
		case "enter", " ":
			return s.choose(faction.All[s.cursor])
		case "esc":
			return s.leave()
		case "q":
			return tea.Quit
		}

	case menu.Form:
		switch msg.String() {
		case "enter":
			return s.submit()
		case "esc":
			return s.leave()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd

	case menu.Submitted:
		switch msg.String() {
		case "enter", " ", "esc":
			return s.leave()
		case "q":
			return tea.Quit
		}
	}
	return nil
}

func (s *selectionScreen) move(delta int) {
	next := (s.cursor + delta + len(faction.All)) % len(faction.All)
	if next == s.cursor {
		return
	}
	s.cursor = next
	s.sel.Hover(faction.All[next])
	s.app.play(soundtrack.Hover)
}

func (s *selectionScreen) choose(f faction.Faction) tea.Cmd {
	if err := s.sel.Choose(f); err != nil {
		s.app.log.Warn("faction selection failed", zap.Error(err))
		return nil
	}
	s.app.play(soundtrack.FactionSelect)
	return tea.Tick(menu.ConfirmDelay, func(time.Time) tea.Msg { return showFormMsg{} })
}

func (s *selectionScreen) submit() tea.Cmd {
	email, ok := s.sel.BeginSubmit(s.input.Value())
	if !ok {
		return nil
	}
	s.input.Blur()
	s.app.play(soundtrack.Click)

	chosen := s.sel.Chosen()
	sub := s.app.opts.Subscriber
	timeout := s.app.opts.SubmitTimeout
	log := s.app.log
	parent := s.ctx
	send := func() tea.Msg {
		if sub == nil {
			return submittedMsg{err: errNoSubscriber}
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		if _, err := sub.Subscribe(ctx, email, chosen); err != nil {
			log.Warn("signup failed", zap.String("faction", chosen.String()), zap.Error(err))
			return submittedMsg{err: err}
		}
		return submittedMsg{}
	}
	return tea.Batch(s.spinner.Tick, send)
}

func (s *selectionScreen) leave() tea.Cmd {
	origin, err := s.sel.Continue()
	if err != nil {
		s.app.log.Warn("could not record completion", zap.Error(err))
	}
	return navigate(navigateMsg{to: toMenu, origin: origin})
}

func (s *selectionScreen) view(width, height int) string {
	var body string
	switch s.sel.Phase() {
	case menu.Choosing, menu.Chosen:
		body = s.viewChoice(width, height)
	default:
		body = s.viewForm()
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *selectionScreen) viewChoice(width, height int) string {
	neutral := themed(faction.NeutralTheme)
	blocks := []string{neutral.title.Render(menu.SelectTitle), neutral.text.Render(menu.SelectIntro), ""}

	if s.sel.Phase() == menu.Chosen {
		p := themed(s.sel.Chosen().Theme())
		blocks = append(blocks,
			p.title.Render(s.sel.ChosenBanner()),
			"",
			p.text.Render(menu.Initializing),
		)
	} else {
		cards := make([]string, len(faction.All))
		for i, f := range faction.All {
			cards[i] = s.card(f, i == s.cursor)
		}
		if width < compactWidth {
			blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Center, cards...))
		} else {
			blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, cards[0], "  ", cards[1]))
		}
		blocks = append(blocks, "", controlsStyle.Render("←/→: choose  ENTER: join  ESC: menu"))
	}

	body := lipgloss.JoinVertical(lipgloss.Center, blocks...)
	img := s.app.image(s.sel.Background())
	if img == nil {
		return body
	}
	// the backdrop sits above the choice when the terminal has room for it
	room := height - lipgloss.Height(body) - 1
	if room < 4 {
		return body
	}
	scene := s.backdrop.render(s.sel.Background(), img, min(width, 80), room)
	return lipgloss.JoinVertical(lipgloss.Center, scene, body)
}

func (s *selectionScreen) card(f faction.Faction, hovered bool) string {
	p := themed(f.Theme())
	style := p.option
	if hovered {
		style = p.selected
	}
	lines := []string{f.Banner(), ""}
	lines = append(lines, f.Motto()...)
	lines = append(lines, "")
	for _, t := range f.Traits() {
		lines = append(lines, "• "+t)
	}
	return style.Width(34).Align(lipgloss.Center).Render(strings.Join(lines, "\n"))
}

func (s *selectionScreen) viewForm() string {
	p := themed(s.sel.Chosen().Theme())

	if s.sel.Phase() == menu.Submitted {
		return lipgloss.JoinVertical(lipgloss.Center,
			successStyle.Render(menu.SuccessTitle),
			"",
			p.text.Render(menu.SuccessWelcome),
			p.title.Render(menu.SuccessStatus),
			"",
			p.text.Render(menu.SuccessFollowUp),
			"",
			p.selected.Render(menu.ContinueLabel),
		)
	}

	submit := p.option.Render(menu.SubmitLabel)
	if s.sel.Phase() == menu.Submitting {
		submit = p.option.Render(s.spinner.View() + " " + menu.SubmittingLabel)
	}
	blocks := []string{
		p.title.Render(s.sel.WelcomeBanner()),
		"",
		p.box.Render(menu.FormHeader + "\n" + menu.FormIntro),
		"",
		p.text.Render(menu.FormLabel),
		s.input.View(),
		"",
		submit,
	}
	if msg := s.sel.Failure(); msg != "" {
		blocks = append(blocks, "", errorStyle.Render(msg))
	}
	blocks = append(blocks, "", controlsStyle.Render("ENTER: transmit  ESC: "+strings.ToLower(menu.ContinueLabel)))
	return lipgloss.JoinVertical(lipgloss.Center, blocks...)
}
