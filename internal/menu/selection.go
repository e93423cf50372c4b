package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/metcalfc/trustfall/internal/faction"
	"github.com/metcalfc/trustfall/internal/state"
)

// ConfirmDelay is how long the chosen faction is shown before the signup
// form appears.
const ConfirmDelay = 2 * time.Second

// Fixed copy of the faction selection screen.
const (
	SelectTitle     = "CHOOSE YOUR FACTION"
	SelectIntro     = "The future of Earth-0 hangs in the balance.\nYour allegiance will shape the world to come."
	Initializing    = "Initializing communication protocols..."
	FormHeader      = "SECURE TRANSMISSION PROTOCOL"
	FormIntro       = "Join your faction's communication network"
	FormLabel       = "ENTER TRANSMISSION CODE:"
	FormPlaceholder = "runner@earth-0.net"
	SubmitLabel     = "INITIATE SECURE TRANSMISSION"
	SubmittingLabel = "TRANSMITTING..."
	SuccessTitle    = "TRANSMISSION SUCCESSFUL"
	SuccessWelcome  = "Welcome to the network, runner."
	SuccessStatus   = "STATUS: AUTHENTICATED"
	SuccessFollowUp = "Your secure channel has been established.\nCheck your communications terminal for further instructions."
	ContinueLabel   = "CONTINUE TO MAIN TERMINAL"
)

// Phase is the step of the selection screen.
type Phase int

const (
	Choosing Phase = iota
	Chosen
	Form
	Submitting
	Submitted
)

func (p Phase) String() string {
	switch p {
	case Chosen:
		return "chosen"
	case Form:
		return "form"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	}
	return "choosing"
}

// Selection is the faction selection screen.
type Selection struct {
	store   state.Store
	mobile  bool
	phase   Phase
	hovered faction.Faction
	chosen  faction.Faction
	failure string
}

// NewSelection starts a fresh selection. mobile picks the portrait
// background variants.
func NewSelection(store state.Store, mobile bool) *Selection {
	return &Selection{store: store, mobile: mobile}
}

// ResumeSignup opens the signup form directly for an already chosen faction.
func ResumeSignup(store state.Store, f faction.Faction, mobile bool) *Selection {
	return &Selection{store: store, mobile: mobile, chosen: f, phase: Form}
}

// Phase returns the current step.
func (s *Selection) Phase() Phase { return s.phase }

// Hover marks the faction under the pointer or cursor; "" clears it.
func (s *Selection) Hover(f faction.Faction) {
	if s.phase == Choosing {
		s.hovered = f
	}
}

// Hovered returns the highlighted faction.
func (s *Selection) Hovered() faction.Faction { return s.hovered }

// Chosen returns the selected faction, or "".
func (s *Selection) Chosen() faction.Faction { return s.chosen }

// Background returns the backdrop for the current step. The signup form
// is shown on plain black.
func (s *Selection) Background() string {
	if s.phase >= Form {
		return ""
	}
	return faction.Background(s.hovered, s.mobile)
}

// Choose stores f. The caller shows the form after ConfirmDelay.
func (s *Selection) Choose(f faction.Faction) error {
	if s.phase != Choosing {
		return nil
	}
	if !f.Valid() {
		return fmt.Errorf("choose faction: unknown faction %q", f)
	}
	if err := state.SetFaction(s.store, f); err != nil {
		return fmt.Errorf("choose faction: %w", err)
	}
	s.chosen = f
	s.phase = Chosen
	return nil
}

// ShowForm reveals the signup form after the confirmation pause.
func (s *Selection) ShowForm() {
	if s.phase == Chosen {
		s.phase = Form
	}
}

// ChosenBanner is the confirmation heading, e.g. "LUMINA COLLECTIVE CHOSEN".
func (s *Selection) ChosenBanner() string { return s.chosen.Banner() + " CHOSEN" }

// WelcomeBanner is the form heading, e.g. "WELCOME TO THE SHADOW SYNDICATE".
func (s *Selection) WelcomeBanner() string { return "WELCOME TO THE " + s.chosen.Banner() }

// CanSubmit reports whether email may be submitted now.
func (s *Selection) CanSubmit(email string) bool {
	return s.phase == Form && strings.TrimSpace(email) != ""
}

// BeginSubmit moves to the submitting step and returns the trimmed email.
// It reports false when submission is not possible.
func (s *Selection) BeginSubmit(email string) (string, bool) {
	if !s.CanSubmit(email) {
		return "", false
	}
	s.phase = Submitting
	s.failure = ""
	return strings.TrimSpace(email), true
}

// FinishSubmit records the outcome of a submission. A failure returns to
// the form with a message.
func (s *Selection) FinishSubmit(err error) {
	if s.phase != Submitting {
		return
	}
	if err != nil {
		s.phase = Form
		s.failure = fmt.Sprintf("Failed to join the %s. Please try again.", s.chosen.Name())
		return
	}
	s.phase = Submitted
}

// Failure returns the message of the last failed submission, or "".
func (s *Selection) Failure() string { return s.failure }

// Continue leaves for the main menu, marking the story completed.
func (s *Selection) Continue() (Origin, error) {
	if err := state.MarkStoryCompleted(s.store); err != nil {
		return FromFactionSelect, fmt.Errorf("mark story completed: %w", err)
	}
	return FromFactionSelect, nil
}
