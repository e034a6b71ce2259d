package history

import (
	"slices"

	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/log"
)

// Timeline steps a deck forward and back through a run's diffs.
type Timeline struct {
	diffs []deck.TurnDiff
	deck  *deck.Deck
	pos   int // number of diffs applied
}

// NewTimeline starts a cursor at start with no diffs applied.
func NewTimeline(start []deck.CardID, diffs []deck.TurnDiff, logger log.EventLogger) *Timeline {
	return &Timeline{
		diffs: slices.Clone(diffs),
		deck:  deck.NewDeck(start, logger),
	}
}

// Forward applies the next diff. It returns false at the end of the run.
func (t *Timeline) Forward() (deck.TurnDiff, bool) {
	if t.pos >= len(t.diffs) {
		return deck.TurnDiff{}, false
	}
	diff := t.diffs[t.pos]
	t.deck.ApplyForward(diff)
	t.pos++
	return diff, true
}

// Back reverses the last applied diff. It returns false at the start.
func (t *Timeline) Back() (deck.TurnDiff, bool) {
	if t.pos == 0 {
		return deck.TurnDiff{}, false
	}
	t.pos--
	diff := t.diffs[t.pos]
	t.deck.ApplyReverse(diff)
	return diff, true
}

// Seek moves until every diff on or before floor is applied and none after.
func (t *Timeline) Seek(floor int) {
	for t.pos < len(t.diffs) && t.diffs[t.pos].Floor <= floor {
		t.Forward()
	}
	for t.pos > 0 && t.diffs[t.pos-1].Floor > floor {
		t.Back()
	}
}

// Floor returns the floor of the last applied diff, or -1 before the first.
func (t *Timeline) Floor() int {
	if t.pos == 0 {
		return -1
	}
	return t.diffs[t.pos-1].Floor
}

// Position returns the number of diffs applied.
func (t *Timeline) Position() int {
	return t.pos
}

// Len returns the number of diffs in the run.
func (t *Timeline) Len() int {
	return len(t.diffs)
}

// Deck returns the deck at the current position.
func (t *Timeline) Deck() *deck.Deck {
	return t.deck
}
