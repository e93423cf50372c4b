// Package menu holds the screen logic around the story: the main menu and
// the faction selection with its signup form. Rendering lives in the front
// ends; everything here is plain state over a state.Store.
package menu

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/faction"
	"github.com/metcalfc/trustfall/internal/state"
)

// Fixed copy of the main menu.
const (
	Title      = "TRUSTFALL"
	Subtitle   = "VAULT WARS"
	Credit     = "An Experience by Hoops Finance"
	CreditURL  = "https://hoops.finance"
	Welcome    = "Welcome Vault Runner. Earth-0 awaits."
	LockedHint = "Complete the protocol to unlock faction selection & early access"
	StatusHead = "FACTION STATUS:"
)

// Origin is the screen the menu was reached from.
type Origin int

const (
	Launch Origin = iota
	FromStory
	FromFactionSelect
)

// Action is a main menu entry.
type Action int

const (
	StartStory Action = iota
	ChooseFaction
	JoinEarlyAccess
)

// Destination is the screen an action leads to.
type Destination int

const (
	Stay Destination = iota
	Story
	FactionSelect
	Signup
)

func (d Destination) String() string {
	switch d {
	case Story:
		return "story"
	case FactionSelect:
		return "faction-select"
	case Signup:
		return "signup"
	}
	return "menu"
}

// Option is one rendered menu entry.
type Option struct {
	Action Action
	Label  string
}

// Menu is the main menu.
type Menu struct {
	store     state.Store
	log       *zap.Logger
	faction   faction.Faction
	completed bool
}

// Open loads the menu state. Arriving from the story marks it completed.
func Open(store state.Store, origin Origin, log *zap.Logger) (*Menu, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Menu{store: store, log: log.Named("menu")}
	if origin == FromStory {
		if err := state.MarkStoryCompleted(store); err != nil {
			return nil, fmt.Errorf("mark story completed: %w", err)
		}
	}
	m.completed = state.StoryCompleted(store)
	m.faction = state.SelectedFaction(store)
	m.log.Debug("menu opened",
		zap.Bool("story_completed", m.completed),
		zap.String("faction", m.faction.String()))
	return m, nil
}

// Options lists the entries in display order. Faction and signup entries
// stay hidden until the story has been completed once.
func (m *Menu) Options() []Option {
	start := "INITIALIZE PROTOCOL"
	if m.faction != "" {
		start = "REPLAY PROTOCOL"
	}
	opts := []Option{{Action: StartStory, Label: start}}
	if !m.completed {
		return opts
	}
	choose := "CHOOSE YOUR FACTION"
	if m.faction != "" {
		choose = "CHANGE FACTION"
	}
	return append(opts,
		Option{Action: ChooseFaction, Label: choose},
		Option{Action: JoinEarlyAccess, Label: "JOIN EARLY ACCESS"},
	)
}

// Select performs a menu action and reports where to go next.
func (m *Menu) Select(a Action) (Destination, error) {
	switch a {
	case StartStory:
		return Story, nil
	case ChooseFaction:
		if !m.completed {
			return Stay, nil
		}
		if err := state.ClearFaction(m.store); err != nil {
			return Stay, fmt.Errorf("clear faction: %w", err)
		}
		m.faction = ""
		return FactionSelect, nil
	case JoinEarlyAccess:
		if !m.completed {
			return Stay, nil
		}
		if m.faction == "" {
			return FactionSelect, nil
		}
		return Signup, nil
	}
	return Stay, fmt.Errorf("unknown menu action %d", a)
}

// Faction returns the selected faction, or "".
func (m *Menu) Faction() faction.Faction { return m.faction }

// StoryCompleted reports whether the extra entries are unlocked.
func (m *Menu) StoryCompleted() bool { return m.completed }

// Theme returns the colors for the selected faction.
func (m *Menu) Theme() faction.Theme { return m.faction.Theme() }

// Track returns the soundtrack key for the menu.
func (m *Menu) Track() string { return m.faction.MenuTrack() }

// Status returns the faction status line, or "" with no faction.
func (m *Menu) Status() string {
	if m.faction == "" {
		return ""
	}
	return m.faction.Status()
}

// Hint returns the locked-entries hint, or "" once unlocked.
func (m *Menu) Hint() string {
	if m.completed {
		return ""
	}
	return LockedHint
}
