package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/spiredeck/internal/log"
)

// ids parses card text for terse test fixtures.
func ids(ss ...string) []CardID {
	return ParseCardIDs(ss)
}

func newTestDeck(cards ...string) (*Deck, *log.MemoryLogger) {
	logger := log.NewMemoryLogger()
	return NewDeck(ids(cards...), logger), logger
}

func TestNewDeckCopiesStart(t *testing.T) {
	start := ids("Strike", "Defend")
	d := NewDeck(start, nil)
	start[0] = CardID{Name: "Changed"}

	assert.Equal(t, ids("Strike", "Defend"), d.Cards())
	assert.Empty(t, d.UnknownObtained())
	assert.Empty(t, d.UnknownRemoved())
	assert.NotNil(t, d.Logger())
}

func TestObtainAppends(t *testing.T) {
	d, logger := newTestDeck("Strike")
	d.Obtain(ParseCardID("Potion"))

	assert.Equal(t, ids("Strike", "Potion"), d.Cards())
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, log.EventObtain, logger.LastEvent().Type)
	assert.Equal(t, "Potion", logger.LastEvent().Card)
}

func TestRemoveFirstMatch(t *testing.T) {
	d, _ := newTestDeck("Strike", "Defend", "Strike+1", "Strike")
	d.Remove(ParseCardID("Strike"))

	assert.Equal(t, ids("Defend", "Strike+1", "Strike"), d.Cards())
	assert.Empty(t, d.UnknownObtained())
}

func TestRemoveMissingRecordsUnknownObtained(t *testing.T) {
	d, logger := newTestDeck("Strike", "Defend")
	d.Remove(ParseCardID("Ring"))

	assert.Equal(t, ids("Strike", "Defend"), d.Cards())
	assert.Equal(t, ids("Ring"), d.UnknownObtained())
	assert.Empty(t, d.UnknownRemoved())
	require.Len(t, logger.EventsOfType(log.EventUnknownObtained), 1)
}

func TestRemoveMatchesLevel(t *testing.T) {
	d, _ := newTestDeck("Strike+1")
	d.Remove(ParseCardID("Strike"))

	assert.Equal(t, ids("Strike+1"), d.Cards(), "base removal must not take the upgraded copy")
	assert.Equal(t, ids("Strike"), d.UnknownObtained())
}

func TestUpgradeInPlace(t *testing.T) {
	d, _ := newTestDeck("Strike", "Defend", "Defend")
	d.Upgrade(ParseCardID("Defend"))

	assert.Equal(t, ids("Strike", "Defend+1", "Defend"), d.Cards())
	assert.Empty(t, d.UnknownObtained())
}

func TestUpgradeMissingObtainsUpgraded(t *testing.T) {
	d, _ := newTestDeck("Strike")
	d.Upgrade(ParseCardID("Defend"))

	assert.Equal(t, ids("Strike", "Defend+1"), d.Cards())
	assert.Equal(t, ids("Defend"), d.UnknownObtained())
}

func TestDowngrade(t *testing.T) {
	d, _ := newTestDeck("Searing Blow+3", "Bash+1")
	d.Downgrade(ParseCardID("Searing Blow+3"))
	d.Downgrade(ParseCardID("Bash+1"))

	assert.Equal(t, ids("Searing Blow+2", "Bash"), d.Cards())

	d.Downgrade(ParseCardID("Anger+1"))
	assert.Equal(t, ids("Searing Blow+2", "Bash", "Anger"), d.Cards())
	assert.Equal(t, ids("Anger+1"), d.UnknownObtained())
}

func TestApplyForwardOrder(t *testing.T) {
	// Obtained then upgraded then removed on the same floor: every step
	// must find the card produced by the previous one.
	d, _ := newTestDeck("Strike")
	d.ApplyForward(TurnDiff{
		Floor:    3,
		Obtained: ids("Anger"),
		Upgraded: ids("Anger"),
		Removed:  ids("Anger+1"),
	})

	assert.Equal(t, ids("Strike"), d.Cards())
	assert.Empty(t, d.UnknownObtained())
}

func TestApplyForwardTransformsObtainedCard(t *testing.T) {
	d, _ := newTestDeck("Strike")
	d.ApplyForward(TurnDiff{
		Floor:       5,
		Obtained:    ids("Injury"),
		Transformed: ids("Injury"),
	})

	assert.Equal(t, ids("Strike"), d.Cards())
	assert.Empty(t, d.UnknownObtained())
}

func TestApplyForwardTagsEvents(t *testing.T) {
	d, logger := newTestDeck("Strike")
	d.ApplyForward(TurnDiff{Floor: 7, Obtained: ids("Anger")})
	d.Obtain(ParseCardID("Bash"))

	events := logger.Events()
	require.Len(t, events, 3)
	assert.Equal(t, 7, events[0].Floor)
	assert.Equal(t, log.StageForward, events[0].Stage)
	assert.Equal(t, log.EventTurnApplied, events[1].Type)
	assert.Equal(t, -1, events[2].Floor, "direct calls are outside any floor")
	assert.Equal(t, log.StageDirect, events[2].Stage)
}

func TestApplyReverseRoundTrip(t *testing.T) {
	start := []string{"Strike", "Strike", "Defend", "Bash", "Shrug It Off"}
	diffs := []TurnDiff{
		{Floor: 1, Obtained: ids("Anger", "Potion")},
		{Floor: 2, Upgraded: ids("Strike", "Anger")},
		{Floor: 3, Removed: ids("Defend"), Transformed: ids("Bash")},
		{Floor: 4, Obtained: ids("Clash"), Upgraded: ids("Clash"), Removed: ids("Strike+1")},
	}

	for i, diff := range diffs {
		d, _ := newTestDeck(start...)
		for _, prev := range diffs[:i] {
			d.ApplyForward(prev)
		}
		before := d.Cards()

		d.ApplyForward(diff)
		d.ApplyReverse(diff)

		assert.ElementsMatch(t, before, d.Cards(), "floor %d", diff.Floor)
		assert.Empty(t, d.UnknownObtained(), "floor %d", diff.Floor)
	}

	// The whole sequence reverses in mirror order.
	d, _ := newTestDeck(start...)
	for _, diff := range diffs {
		d.ApplyForward(diff)
	}
	for i := len(diffs) - 1; i >= 0; i-- {
		d.ApplyReverse(diffs[i])
	}
	assert.ElementsMatch(t, ids(start...), d.Cards())
	assert.Empty(t, d.UnknownObtained())
}

func TestApplyReverseUndoesUpgrade(t *testing.T) {
	d, _ := newTestDeck("Strike", "Strike", "Searing Blow+2")
	diff := TurnDiff{Floor: 4, Upgraded: ids("Strike", "Searing Blow+2")}

	d.ApplyForward(diff)
	assert.Equal(t, ids("Strike+1", "Strike", "Searing Blow+3"), d.Cards())

	d.ApplyReverse(diff)
	assert.Equal(t, ids("Strike", "Strike", "Searing Blow+2"), d.Cards())
	assert.Empty(t, d.UnknownObtained())
}

func TestApplyReverseTaggedReverse(t *testing.T) {
	d, logger := newTestDeck("Strike")
	d.ApplyReverse(TurnDiff{Floor: 2, Removed: ids("Defend")})

	assert.Equal(t, ids("Strike", "Defend"), d.Cards())
	assert.Equal(t, log.StageReverse, logger.Events()[0].Stage)
	assert.Equal(t, log.EventTurnReversed, logger.LastEvent().Type)
}

func TestTurnDiffIsEmpty(t *testing.T) {
	assert.True(t, TurnDiff{Floor: 3}.IsEmpty())
	assert.False(t, TurnDiff{Transformed: ids("Strike")}.IsEmpty())
	assert.Equal(t, 3, TurnDiff{Obtained: ids("A"), Removed: ids("B"), Upgraded: ids("C")}.Len())
}

func TestFiresideUpgradeScenario(t *testing.T) {
	d, _ := newTestDeck("Strike", "Defend")
	d.ApplyForward(TurnDiff{Floor: 6, Upgraded: ids("Defend")})
	assert.Equal(t, ids("Strike", "Defend+1"), d.Cards())

	d2, _ := newTestDeck("Strike")
	d2.ApplyForward(TurnDiff{Floor: 6, Upgraded: ids("Defend")})
	assert.Equal(t, ids("Strike", "Defend+1"), d2.Cards())
	assert.Equal(t, ids("Defend"), d2.UnknownObtained())
}
