// Package history turns a run log into per-floor deck diffs and replays them.
package history

import (
	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/runlog"
)

// BuildTurnDiff folds one floor's records into a single diff. Sources are
// read in a fixed order: card picks, purchases, purges, campfire, event.
// The second result is false when the floor changed nothing.
func BuildTurnDiff(floor int, src runlog.Sources) (deck.TurnDiff, bool) {
	diff := deck.TurnDiff{Floor: floor}

	for _, cc := range src.CardChoices {
		if !cc.Skipped() {
			diff.Obtained = append(diff.Obtained, deck.ParseCardID(cc.Picked))
		}
	}

	for _, item := range src.Purchases {
		diff.Obtained = append(diff.Obtained, deck.ParseCardID(item))
	}

	for _, item := range src.Purges {
		diff.Removed = append(diff.Removed, deck.ParseCardID(item))
	}

	if cf := src.Campfire; cf != nil {
		switch cf.Key {
		case runlog.KeySmith:
			diff.Upgraded = append(diff.Upgraded, deck.ParseCardID(cf.Data))
		case runlog.KeyPurge:
			diff.Removed = append(diff.Removed, deck.ParseCardID(cf.Data))
		}
	}

	if ev := src.Event; ev != nil {
		diff.Obtained = appendCards(diff.Obtained, ev.CardsObtained)
		diff.Removed = appendCards(diff.Removed, ev.CardsRemoved)
		diff.Transformed = appendCards(diff.Transformed, ev.CardsTransformed)
		diff.Upgraded = appendCards(diff.Upgraded, ev.CardsUpgraded)
	}

	if diff.IsEmpty() {
		return deck.TurnDiff{}, false
	}
	return diff, true
}

// BuildDiffs builds the diffs for floors 0 through floorReached-1, in
// floor order, skipping floors that changed nothing.
func BuildDiffs(idx *runlog.Index, floorReached int) []deck.TurnDiff {
	var diffs []deck.TurnDiff
	for floor := 0; floor < floorReached; floor++ {
		if diff, ok := BuildTurnDiff(floor, idx.Floor(floor)); ok {
			diffs = append(diffs, diff)
		}
	}
	return diffs
}

func appendCards(dst []deck.CardID, names []string) []deck.CardID {
	for _, name := range names {
		dst = append(dst, deck.ParseCardID(name))
	}
	return dst
}
