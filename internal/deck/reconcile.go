package deck

import (
	"slices"

	"github.com/peterkuimelis/spiredeck/internal/log"
)

// ReconcileFinal folds the authoritative final deck into the reconstruction.
// Authoritative cards the deck lacks are recorded and obtained; cards the
// deck holds beyond the authoritative list are recorded and removed. The
// result holds the same multiset as authoritative, though corrected cards
// land at the end.
func (d *Deck) ReconcileFinal(authoritative []CardID) {
	d.ReconcileFinalAt(d.floor, authoritative)
}

// ReconcileFinalAt is ReconcileFinal with events tagged by floor.
func (d *Deck) ReconcileFinalAt(floor int, authoritative []CardID) {
	restore := d.enter(floor, log.StageReconcile)
	defer restore()

	obtainedBefore := len(d.unknownObtained)
	removedBefore := len(d.unknownRemoved)

	working := slices.Clone(d.cards)
	for _, card := range authoritative {
		if i := slices.Index(working, card); i >= 0 {
			working = slices.Delete(working, i, i+1)
			continue
		}
		d.noteUnknownObtained(card, "present in final deck")
		d.Obtain(card)
	}

	for _, card := range working {
		d.unknownRemoved = append(d.unknownRemoved, card)
		d.logger.Log(log.NewUnknownRemovedEvent(d.floor, d.stage, card.String()))
		d.Remove(card)
	}

	d.logger.Log(log.NewReconciledEvent(floor,
		len(d.unknownObtained)-obtainedBefore,
		len(d.unknownRemoved)-removedBefore))
}
