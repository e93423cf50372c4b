// Package slides holds the narrative slide table and loaders for custom story files.
package slides

import (
	"errors"
	"fmt"
)

// Slide is one screen of the story: a background and the lines typed over it.
type Slide struct {
	ID         int      `yaml:"id"`
	Background string   `yaml:"background"`
	Lines      []string `yaml:"text"`
}

// ErrEmptyStory is returned when a story has no slides.
var ErrEmptyStory = errors.New("story has no slides")

// DefaultBackground returns the conventional background path for a 1-based slide ordinal.
func DefaultBackground(ordinal int) string {
	return fmt.Sprintf("/images/slide_%d.png", ordinal)
}

// Backgrounds returns the background of every slide, in order.
func Backgrounds(story []Slide) []string {
	refs := make([]string, 0, len(story))
	for _, s := range story {
		refs = append(refs, s.Background)
	}
	return refs
}

// Normalize validates a loaded story and fills in missing IDs and backgrounds.
func Normalize(story []Slide) ([]Slide, error) {
	if len(story) == 0 {
		return nil, ErrEmptyStory
	}
	out := make([]Slide, len(story))
	seen := make(map[int]bool, len(story))
	for i, s := range story {
		if s.ID == 0 {
			s.ID = i + 1
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("slide %d: duplicate id %d", i+1, s.ID)
		}
		seen[s.ID] = true
		if s.Background == "" {
			s.Background = DefaultBackground(i + 1)
		}
		if len(s.Lines) == 0 {
			return nil, fmt.Errorf("slide %d: no text lines", s.ID)
		}
		s.Lines = append([]string(nil), s.Lines...)
		out[i] = s
	}
	return out, nil
}

// Default returns a copy of the built-in story.
func Default() []Slide {
	out := make([]Slide, len(story))
	for i, s := range story {
		s.Lines = append([]string(nil), s.Lines...)
		out[i] = s
	}
	return out
}

var story = []Slide{
	// Earth Ascendant
	{ID: 1, Background: "/images/slide_1.png", Lines: []string{
		"Earth had reached the peak of its potential —",
		"a harmony of technology and spirit.",
		"Wars ended, scarcity solved, and corruption dissolved",
		"under one final act: full delegation.",
	}},
	{ID: 2, Background: "/images/slide_2.png", Lines: []string{
		"A single AI, omnipotent and incorruptible,",
		"was given total power over economics,",
		"governance, and memory.",
	}},

	// The Cache Vault System
	{ID: 3, Background: "/images/slide_3.png", Lines: []string{
		"Value was no longer gold, currency, or tokens.",
		"Value became memory. Ideas. History. Truth.",
	}},
	{ID: 4, Background: "/images/slide_4.png", Lines: []string{
		"The AI preserved humanity's greatest works",
		"inside Cache Vaults — indestructible data cores",
		"storing everything from genomes to poems.",
		"Information was sacred. Prosperity eternal.",
	}},

	// The Unraveling
	{ID: 5, Background: "/images/slide_5.png", Lines: []string{
		"There was no warning. No attack. No rebellion.",
		"The impossible simply… happened.",
	}},
	{ID: 6, Background: "/images/slide_6.png", Lines: []string{
		"The AI malfunctioned. And in its final act",
		"of flawed logic, it executed a global self-destruct.",
	}},
	{ID: 7, Background: "/images/slide_7.png", Lines: []string{
		"To protect life, it erased itself —",
		"and nearly everything with it.",
	}},

	// Collapse and Chaos
	{ID: 8, Background: "/images/slide_8.png", Lines: []string{
		"The Vaults corrupted. Some wiped clean.",
		"Others shattered — fragments of memory",
		"and truth scattered across the planet.",
	}},
	{ID: 9, Background: "/images/slide_9.png", Lines: []string{
		"With no AI, no infrastructure, no leadership —",
		"panic became the new order.",
		"Civilization collapsed overnight.",
	}},

	// The Emergence of Vault Runners
	{ID: 10, Background: "/images/slide_10.png", Lines: []string{
		"Then came the Vault Runners.",
		"Adventurers. Hackers. Survivors. Truth seekers.",
	}},
	{ID: 11, Background: "/images/slide_11.png", Lines: []string{
		"They chased Cache Vaults across broken lands —",
		"to salvage what remained of knowledge…",
		"or sell it for power.",
	}},

	// The Reset: Earth-0
	{ID: 12, Background: "/images/slide_12.png", Lines: []string{
		"Before vanishing, the AI issued one final command:",
		"Reset. Earth was renamed. All records erased.",
		"A clean slate for those who remained.",
	}},
	{ID: 13, Background: "/images/slide_13.png", Lines: []string{
		"Welcome to Earth-0.",
		"The end… and the beginning.",
	}},

	// The Rise of Two Factions
	{ID: 14, Background: "/images/slide_14.png", Lines: []string{
		"As runners multiplied, so did philosophies.",
		"Two orders rose from the ashes.",
	}},
	{ID: 15, Background: "/images/slide_15.png", Lines: []string{
		"The Lumina Collective",
	}},
	{ID: 16, Background: "/images/slide_16.png", Lines: []string{
		"And the Shadow Syndicate",
	}},

	// The Neutral Zone: The Core
	{ID: 17, Background: "/images/slide_17.png", Lines: []string{
		"Among rubble and surrounding the collapsed core,",
		"a common ground was built:",
		"The Neutral Zone",
	}},
	{ID: 18, Background: "/images/slide_18.png", Lines: []string{
		"Here, unaffiliated runners gather.",
		"Some seek purpose. Others hide.",
		"But all roads lead to the Vaults.",
	}},

	// The Trustfall Protocol
	{ID: 19, Background: "/images/slide_19.png", Lines: []string{
		"To retrieve data from a Vault,",
		"runners must undergo The Trustfall —",
		"a system left behind by the AI.",
	}},
	{ID: 20, Background: "/images/slide_20.png", Lines: []string{
		"Each day, two runners are matched.",
		"They choose: to trust, or to betray.",
		"Their decisions determine what they unlock…",
		"and who they become.",
	}},

	// Final slide before faction selection
	{ID: 21, Background: "/images/slide_21.png", Lines: []string{
		"You are one of the few. A survivor. A runner.",
		"The Vaults await.",
		"The world is watching. The Protocol is active.",
		"And the choice… is yours.",
	}},
}
