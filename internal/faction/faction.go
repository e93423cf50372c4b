// Package faction describes the two narrative affiliations a runner can join.
package faction

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Faction identifies one of the two orders offered after the story.
type Faction string

const (
	Lumina    Faction = "lumina"
	Syndicate Faction = "syndicate"
)

// All lists factions in display order.
var All = []Faction{Lumina, Syndicate}

// Theme holds the colors used when a faction themes the interface.
type Theme struct {
	Primary   string
	Secondary string
	Border    string
}

// NeutralTheme is used before a faction is chosen.
var NeutralTheme = Theme{Primary: "#FFFFFF", Secondary: "#D1D5DB", Border: "#9CA3AF"}

type profile struct {
	name   string
	member string
	motto  []string
	traits []string
	theme  Theme
	track  string
	hover  string
}

var profiles = map[Faction]profile{
	Lumina: {
		name:   "Lumina Collective",
		member: "Lumina Collective Member",
		motto: []string{
			"Through unity and knowledge,",
			"we shall rebuild civilization",
			"and illuminate the darkness.",
		},
		traits: []string{"Seeks to restore order", "Values collaboration", "Believes in transparency"},
		theme:  Theme{Primary: "#FACC15", Secondary: "#FDE047", Border: "#FACC15"},
		track:  "main-menu-lumina",
		hover:  "a",
	},
	Syndicate: {
		name:   "Shadow Syndicate",
		member: "Shadow Syndicate Operative",
		motto: []string{
			"Power flows to those bold",
			"enough to seize it.",
			"Strength through dominance.",
		},
		traits: []string{"Embraces pragmatism", "Values individual strength", "Believes in decisive action"},
		theme:  Theme{Primary: "#C084FC", Secondary: "#D8B4FE", Border: "#C084FC"},
		track:  "main-menu-syndicate",
		hover:  "b",
	},
}

var upper = cases.Upper(language.English)

// Parse converts a stored or submitted value into a Faction.
func Parse(s string) (Faction, error) {
	f := Faction(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[f]; !ok {
		return "", fmt.Errorf("unknown faction %q", s)
	}
	return f, nil
}

// Valid reports whether f is one of the known factions.
func (f Faction) Valid() bool {
	_, ok := profiles[f]
	return ok
}

func (f Faction) String() string { return string(f) }

// Name returns the display name, e.g. "Lumina Collective".
func (f Faction) Name() string { return profiles[f].name }

// Banner returns the upper-cased display name used in headings.
func (f Faction) Banner() string { return upper.String(f.Name()) }

// Status returns the membership line shown on the main menu.
func (f Faction) Status() string { return upper.String(profiles[f].member) }

func (f Faction) Motto() []string  { return profiles[f].motto }
func (f Faction) Traits() []string { return profiles[f].traits }

// Theme returns the faction colors, or NeutralTheme for an unknown faction.
func (f Faction) Theme() Theme {
	if p, ok := profiles[f]; ok {
		return p.theme
	}
	return NeutralTheme
}

// MenuTrack is the soundtrack key played on the main menu for this faction.
func (f Faction) MenuTrack() string {
	if p, ok := profiles[f]; ok {
		return p.track
	}
	return "main-menu"
}

// Campaign returns the UTM campaign tag for a submitted faction value.
// Anything other than lumina is tagged as the syndicate.
func Campaign(value string) string {
	if value == string(Lumina) {
		return slug.Make(Lumina.Name())
	}
	return slug.Make(Syndicate.Name())
}

// Background returns the faction-selection background for the hovered side.
// An empty hovered faction yields the neutral selection screen.
func Background(hovered Faction, mobile bool) string {
	prefix := "slide_"
	if mobile {
		prefix = "slide_mobile_"
	}
	if p, ok := profiles[hovered]; ok {
		return "/images/" + prefix + "hover_" + p.hover + ".png"
	}
	return "/images/" + prefix + "faction.png"
}
