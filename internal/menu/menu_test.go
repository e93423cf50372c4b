package menu

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/metcalfc/trustfall/internal/faction"
	"github.com/metcalfc/trustfall/internal/state"
)

func labels(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMenuOptions(t *testing.T) {
	tests := []struct {
		name      string
		completed bool
		faction   faction.Faction
		origin    Origin
		want      []string
	}{
		{
			name: "fresh launch",
			want: []string{"INITIALIZE PROTOCOL"},
		},
		{
			name:   "back from story",
			origin: FromStory,
			want:   []string{"INITIALIZE PROTOCOL", "CHOOSE YOUR FACTION", "JOIN EARLY ACCESS"},
		},
		{
			name:      "faction chosen",
			completed: true,
			faction:   faction.Syndicate,
			origin:    FromFactionSelect,
			want:      []string{"REPLAY PROTOCOL", "CHANGE FACTION", "JOIN EARLY ACCESS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := state.NewMemory()
			if tt.completed {
				state.MarkStoryCompleted(store)
			}
			if tt.faction != "" {
				state.SetFaction(store, tt.faction)
			}
			m, err := Open(store, tt.origin, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if got := labels(m.Options()); !equal(got, tt.want) {
				t.Errorf("Options() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMenuFromStoryMarksCompleted(t *testing.T) {
	store := state.NewMemory()
	m, _ := Open(store, FromStory, nil)
	if !m.StoryCompleted() || !state.StoryCompleted(store) {
		t.Error("returning from the story should persist completion")
	}
	if m.Hint() != "" {
		t.Errorf("Hint() = %q after completion", m.Hint())
	}

	fresh, _ := Open(state.NewMemory(), Launch, nil)
	if fresh.Hint() != LockedHint {
		t.Errorf("Hint() = %q, want locked hint", fresh.Hint())
	}
}

func TestMenuThemeFollowsFaction(t *testing.T) {
	store := state.NewMemory()
	state.SetFaction(store, faction.Lumina)
	m, _ := Open(store, FromFactionSelect, nil)

	if m.Theme() != faction.Lumina.Theme() {
		t.Errorf("Theme() = %+v", m.Theme())
	}
	if m.Track() != "main-menu-lumina" {
		t.Errorf("Track() = %q", m.Track())
	}
	if m.Status() != "LUMINA COLLECTIVE MEMBER" {
		t.Errorf("Status() = %q", m.Status())
	}

	none, _ := Open(state.NewMemory(), Launch, nil)
	if none.Theme() != faction.NeutralTheme || none.Track() != "main-menu" || none.Status() != "" {
		t.Error("no faction should use the neutral theme and main menu track")
	}
}

func TestMenuSelect(t *testing.T) {
	store := state.NewMemory()
	state.MarkStoryCompleted(store)
	state.SetFaction(store, faction.Syndicate)
	m, _ := Open(store, Launch, nil)

	if d, _ := m.Select(StartStory); d != Story {
		t.Errorf("StartStory -> %v", d)
	}
	if d, _ := m.Select(JoinEarlyAccess); d != Signup {
		t.Errorf("JoinEarlyAccess with faction -> %v, want signup", d)
	}
	if d, _ := m.Select(ChooseFaction); d != FactionSelect {
		t.Errorf("ChooseFaction -> %v", d)
	}
	if state.SelectedFaction(store) != "" || m.Faction() != "" {
		t.Error("ChooseFaction should clear the stored faction")
	}
	if d, _ := m.Select(JoinEarlyAccess); d != FactionSelect {
		t.Errorf("JoinEarlyAccess without faction -> %v, want faction-select", d)
	}
}

func TestMenuLockedActionsStay(t *testing.T) {
	m, _ := Open(state.NewMemory(), Launch, nil)
	for _, a := range []Action{ChooseFaction, JoinEarlyAccess} {
		if d, err := m.Select(a); d != Stay || err != nil {
			t.Errorf("locked action %d -> %v, %v", a, d, err)
		}
	}
	if _, err := m.Select(Action(42)); err == nil {
		t.Error("unknown action should fail")
	}
}

func TestSelectionFlow(t *testing.T) {
	store := state.NewMemory()
	s := NewSelection(store, false)

	if s.Background() != "/images/slide_faction.png" {
		t.Errorf("initial background = %q", s.Background())
	}
	s.Hover(faction.Lumina)
	if s.Background() != "/images/slide_hover_a.png" {
		t.Errorf("lumina hover background = %q", s.Background())
	}

	if err := s.Choose(faction.Lumina); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != Chosen || state.SelectedFaction(store) != faction.Lumina {
		t.Fatalf("Choose did not store the faction (phase %v)", s.Phase())
	}
	if s.ChosenBanner() != "LUMINA COLLECTIVE CHOSEN" {
		t.Errorf("ChosenBanner() = %q", s.ChosenBanner())
	}
	s.Hover(faction.Syndicate)
	if s.Hovered() != faction.Lumina {
		t.Error("hover must not change after choosing")
	}

	if s.CanSubmit("a@b.co") {
		t.Error("form is not shown yet")
	}
	s.ShowForm()
	if s.Phase() != Form || s.Background() != "" {
		t.Fatalf("ShowForm: phase %v background %q", s.Phase(), s.Background())
	}
	if s.WelcomeBanner() != "WELCOME TO THE LUMINA COLLECTIVE" {
		t.Errorf("WelcomeBanner() = %q", s.WelcomeBanner())
	}

	if _, ok := s.BeginSubmit("   "); ok {
		t.Error("blank email must not submit")
	}
	email, ok := s.BeginSubmit("  a@b.co ")
	if !ok || email != "a@b.co" || s.Phase() != Submitting {
		t.Fatalf("BeginSubmit = %q, %v (phase %v)", email, ok, s.Phase())
	}
	if _, ok := s.BeginSubmit("a@b.co"); ok {
		t.Error("double submit must be refused")
	}

	s.FinishSubmit(errors.New("boom"))
	if s.Phase() != Form || s.Failure() != "Failed to join the Lumina Collective. Please try again." {
		t.Errorf("failure: phase %v message %q", s.Phase(), s.Failure())
	}

	s.BeginSubmit("a@b.co")
	s.FinishSubmit(nil)
	if s.Phase() != Submitted || s.Failure() != "" {
		t.Errorf("success: phase %v message %q", s.Phase(), s.Failure())
	}

	origin, err := s.Continue()
	if err != nil || origin != FromFactionSelect || !state.StoryCompleted(store) {
		t.Errorf("Continue() = %v, %v", origin, err)
	}
}

func TestSelectionMobileAndResume(t *testing.T) {
	s := NewSelection(state.NewMemory(), true)
	s.Hover(faction.Syndicate)
	if s.Background() != "/images/slide_mobile_hover_b.png" {
		t.Errorf("mobile background = %q", s.Background())
	}
	if err := s.Choose(faction.Faction("rebels")); err == nil {
		t.Error("unknown faction must be rejected")
	}

	r := ResumeSignup(state.NewMemory(), faction.Syndicate, false)
	if r.Phase() != Form || r.Chosen() != faction.Syndicate {
		t.Errorf("ResumeSignup: phase %v chosen %q", r.Phase(), r.Chosen())
	}
}
