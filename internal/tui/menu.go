package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/menu"
	"github.com/metcalfc/trustfall/internal/soundtrack"
)

type menuScreen struct {
	app    *App
	menu   *menu.Menu
	cursor int
}

func (a *App) newMenu(origin menu.Origin) (*menuScreen, error) {
	m, err := menu.Open(a.opts.Store, origin, a.log)
	if err != nil {
		return nil, err
	}
	return &menuScreen{app: a, menu: m}, nil
}

func (s *menuScreen) init() tea.Cmd {
	s.app.setTrack(s.menu.Track())
	return nil
}

func (s *menuScreen) close() {}

func (s *menuScreen) update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	opts := s.menu.Options()
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
			s.app.play(soundtrack.Hover)
		}
	case "down", "j", "tab":
		if s.cursor < len(opts)-1 {
			s.cursor++
			s.app.play(soundtrack.Hover)
		}
	case "enter", " ":
		return s.choose(opts[s.cursor].Action)
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

func (s *menuScreen) choose(action menu.Action) tea.Cmd {
	dest, err := s.menu.Select(action)
	if err != nil {
		s.app.log.Warn("menu action failed", zap.Error(err))
		return nil
	}
	switch dest {
	case menu.Story:
		s.app.play(soundtrack.ProtocolStart)
		return navigate(navigateMsg{to: toStory})
	case menu.FactionSelect:
		s.app.play(soundtrack.Click)
		return navigate(navigateMsg{to: toSelection})
	case menu.Signup:
		s.app.play(soundtrack.Click)
		return navigate(navigateMsg{to: toSignup, faction: s.menu.Faction()})
	}
	return nil
}

func (s *menuScreen) view(width, height int) string {
	p := themed(s.menu.Theme())

	blocks := []string{
		p.title.Render(menu.Title),
		p.subtitle.Render(menu.Subtitle),
		"",
		p.text.Render(menu.Welcome),
		"",
	}
	for i, opt := range s.menu.Options() {
		style := p.option
		if i == s.cursor {
			style = p.selected
		}
		blocks = append(blocks, style.Render(opt.Label))
	}
	if hint := s.menu.Hint(); hint != "" {
		blocks = append(blocks, "", hintStyle.Render(hint))
	}
	if status := s.menu.Status(); status != "" {
		blocks = append(blocks, "", p.box.Render(menu.StatusHead+"\n"+status))
	}
	blocks = append(blocks, "",
		p.text.Render(menu.Credit),
		hintStyle.Render(menu.CreditURL),
		"",
		controlsStyle.Render("↑/↓: select  ENTER: confirm  Q: quit"),
	)

	body := lipgloss.JoinVertical(lipgloss.Center, blocks...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.TrimRight(body, "\n"))
}
