package report

import (
	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/log"
)

// JSON views shared by the CLI, the MCP tools and the web API.

// TurnView is one floor's deck changes.
type TurnView struct {
	Floor       int      `json:"floor"`
	Obtained    []string `json:"obtained,omitempty"`
	Removed     []string `json:"removed,omitempty"`
	Transformed []string `json:"transformed,omitempty"`
	Upgraded    []string `json:"upgraded,omitempty"`
}

// NewTurnView converts a diff to its view.
func NewTurnView(diff deck.TurnDiff) TurnView {
	return TurnView{
		Floor:       diff.Floor,
		Obtained:    changed(diff.Obtained),
		Removed:     changed(diff.Removed),
		Transformed: changed(diff.Transformed),
		Upgraded:    changed(diff.Upgraded),
	}
}

// changed formats cards, leaving an untouched category nil.
func changed(cards []deck.CardID) []string {
	if len(cards) == 0 {
		return nil
	}
	return deck.Strings(cards)
}

// NewTurnViews converts diffs, never returning nil.
func NewTurnViews(diffs []deck.TurnDiff) []TurnView {
	views := make([]TurnView, 0, len(diffs))
	for _, d := range diffs {
		views = append(views, NewTurnView(d))
	}
	return views
}

// DeckView is a deck as seen at one point of a replay.
type DeckView struct {
	Floor           int      `json:"floor"`    // -1 before the first diff
	Position        int      `json:"position"` // diffs applied
	Cards           []string `json:"cards"`
	UnknownObtained []string `json:"unknown_obtained"`
	UnknownRemoved  []string `json:"unknown_removed"`
}

// NewDeckView snapshots d.
func NewDeckView(floor, position int, d *deck.Deck) DeckView {
	return DeckView{
		Floor:           floor,
		Position:        position,
		Cards:           deck.Strings(d.Cards()),
		UnknownObtained: deck.Strings(d.UnknownObtained()),
		UnknownRemoved:  deck.Strings(d.UnknownRemoved()),
	}
}

// EventView is a deck event for clients.
type EventView struct {
	Seq     int    `json:"seq"`
	Floor   int    `json:"floor"`
	Stage   string `json:"stage,omitempty"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// NewEventViews converts logged events.
func NewEventViews(events []log.DeckEvent) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{
			Seq:     e.Seq,
			Floor:   e.Floor,
			Stage:   e.Stage,
			Type:    e.Type.String(),
			Card:    e.Card,
			Details: e.Details,
		})
	}
	return views
}

// CharacterView is a character's starting deck.
type CharacterView struct {
	Name  string   `json:"name"`
	Cards []string `json:"cards"`
}

// NewCharacterViews lists every character in reg, sorted by name.
func NewCharacterViews(reg *deck.Registry) []CharacterView {
	names := reg.Characters()
	views := make([]CharacterView, 0, len(names))
	for _, name := range names {
		views = append(views, CharacterView{
			Name:  name,
			Cards: deck.Strings(reg.StartingDeck(name)),
		})
	}
	return views
}
