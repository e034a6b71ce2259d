package history

import (
	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/log"
	"github.com/peterkuimelis/spiredeck/internal/runlog"
)

// Options configures a reconstruction.
type Options struct {
	Registry *deck.Registry  // starting decks; DefaultRegistry when nil
	Logger   log.EventLogger // deck event sink; a MemoryLogger when nil
}

// Result is a finished reconstruction.
type Result struct {
	Character    string
	FloorReached int

	Start         []deck.CardID
	Diffs         []deck.TurnDiff
	Authoritative []deck.CardID

	// Deck is the reconciled final state, including the anomaly lists.
	Deck *deck.Deck
}

// Consistent reports whether the log fully explained the final deck.
func (r *Result) Consistent() bool {
	return len(r.Deck.UnknownObtained()) == 0 && len(r.Deck.UnknownRemoved()) == 0
}

// Timeline returns a fresh cursor over the reconstruction's diffs.
func (r *Result) Timeline(logger log.EventLogger) *Timeline {
	return NewTimeline(r.Start, r.Diffs, logger)
}

// Reconstruct replays run from its character's starting deck, one floor at
// a time, then reconciles against the run's final deck.
func Reconstruct(run *runlog.RunLog, opts Options) *Result {
	reg := opts.Registry
	if reg == nil {
		reg = deck.DefaultRegistry()
	}

	start := reg.StartingDeck(run.CharacterChosen)
	diffs := BuildDiffs(runlog.NewIndex(run), run.FloorReached)
	authoritative := deck.ParseCardIDs(run.MasterDeck)

	d := deck.NewDeck(start, opts.Logger)
	for _, diff := range diffs {
		d.ApplyForward(diff)
	}
	d.ReconcileFinalAt(run.FloorReached, authoritative)

	return &Result{
		Character:     run.CharacterChosen,
		FloorReached:  run.FloorReached,
		Start:         start,
		Diffs:         diffs,
		Authoritative: authoritative,
		Deck:          d,
	}
}
