package deck

import (
	"slices"

	"github.com/peterkuimelis/spiredeck/internal/log"
)

// Deck is the ordered card collection of a run, plus the anomalies found
// while rebuilding it. Cards keep acquisition order and may repeat.
// UnknownObtained and UnknownRemoved only ever grow.
type Deck struct {
	cards           []CardID
	unknownObtained []CardID
	unknownRemoved  []CardID

	logger log.EventLogger
	floor  int
	stage  string
}

// NewDeck creates a deck holding a copy of start. A nil logger gets a
// MemoryLogger.
func NewDeck(start []CardID, logger log.EventLogger) *Deck {
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	return &Deck{
		cards:  slices.Clone(start),
		logger: logger,
		floor:  -1,
		stage:  log.StageDirect,
	}
}

// Cards returns a copy of the current cards.
func (d *Deck) Cards() []CardID {
	return slices.Clone(d.cards)
}

// UnknownObtained returns cards that had to exist but were never seen being obtained.
func (d *Deck) UnknownObtained() []CardID {
	return slices.Clone(d.unknownObtained)
}

// UnknownRemoved returns cards the reconstruction held that the final deck lacks.
func (d *Deck) UnknownRemoved() []CardID {
	return slices.Clone(d.unknownRemoved)
}

// Len returns the number of cards currently held.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Logger returns the deck's event logger.
func (d *Deck) Logger() log.EventLogger {
	return d.logger
}

// Obtain appends card to the deck.
func (d *Deck) Obtain(card CardID) {
	d.cards = append(d.cards, card)
	d.logger.Log(log.NewObtainEvent(d.floor, d.stage, card.String()))
}

// Remove deletes the first entry equal to card. A card that is not held is
// recorded as obtained through some unlogged path and otherwise ignored.
func (d *Deck) Remove(card CardID) {
	i := d.index(card)
	if i < 0 {
		d.noteUnknownObtained(card, "removed but not held")
		return
	}
	d.cards = slices.Delete(d.cards, i, i+1)
	d.logger.Log(log.NewRemoveEvent(d.floor, d.stage, card.String()))
}

// Upgrade replaces the first entry equal to card with its next level. When
// the card is not held it is recorded as unknown and the upgraded form is
// obtained instead.
func (d *Deck) Upgrade(card CardID) {
	upgraded := card.Upgraded()
	i := d.index(card)
	if i < 0 {
		d.noteUnknownObtained(card, "upgraded but not held")
		d.Obtain(upgraded)
		return
	}
	d.cards[i] = upgraded
	d.logger.Log(log.NewUpgradeEvent(d.floor, d.stage, card.String(), upgraded.String()))
}

// Downgrade is the inverse of Upgrade with the same not-held handling.
func (d *Deck) Downgrade(card CardID) {
	downgraded := card.Downgraded()
	i := d.index(card)
	if i < 0 {
		d.noteUnknownObtained(card, "downgraded but not held")
		d.Obtain(downgraded)
		return
	}
	d.cards[i] = downgraded
	d.logger.Log(log.NewDowngradeEvent(d.floor, d.stage, card.String(), downgraded.String()))
}

// ApplyForward applies diff in the order obtain, upgrade, remove, then
// transformed-as-remove. Upgrades see cards obtained on the same floor and
// removals see them already upgraded.
func (d *Deck) ApplyForward(diff TurnDiff) {
	restore := d.enter(diff.Floor, log.StageForward)
	defer restore()

	for _, c := range diff.Obtained {
		d.Obtain(c)
	}
	for _, c := range diff.Upgraded {
		d.Upgrade(c)
	}
	for _, c := range diff.Removed {
		d.Remove(c)
	}
	for _, c := range diff.Transformed {
		d.Remove(c)
	}
	d.logger.Log(log.NewTurnAppliedEvent(diff.Floor, diff.Len()))
}

// ApplyReverse undoes ApplyForward by mirroring its steps. Transformed cards
// are restored; whatever they became is not tracked.
//
// An upgrade recorded as c left c's next level in the deck, so c.Upgraded()
// is the card downgraded, not c itself. Reference tools that downgrade c
// literally miss the card, record it as unknown-obtained and leave the
// upgraded copy behind; this deck restores the pre-turn state instead.
func (d *Deck) ApplyReverse(diff TurnDiff) {
	restore := d.enter(diff.Floor, log.StageReverse)
	defer restore()

	for _, c := range diff.Transformed {
		d.Obtain(c)
	}
	for _, c := range diff.Removed {
		d.Obtain(c)
	}
	for _, c := range diff.Upgraded {
		d.Downgrade(c.Upgraded())
	}
	for _, c := range diff.Obtained {
		d.Remove(c)
	}
	d.logger.Log(log.NewTurnReversedEvent(diff.Floor, diff.Len()))
}

func (d *Deck) index(card CardID) int {
	return slices.Index(d.cards, card)
}

func (d *Deck) noteUnknownObtained(card CardID, reason string) {
	d.unknownObtained = append(d.unknownObtained, card)
	d.logger.Log(log.NewUnknownObtainedEvent(d.floor, d.stage, card.String(), reason))
}

// enter tags subsequent events with floor and stage until the returned func runs.
func (d *Deck) enter(floor int, stage string) func() {
	prevFloor, prevStage := d.floor, d.stage
	d.floor, d.stage = floor, stage
	return func() {
		d.floor, d.stage = prevFloor, prevStage
	}
}
