// Package runlog reads run files into typed, per-floor event records.
package runlog

// Sentinel values used by the game in run logs.
const (
	PickSkip = "SKIP"  // card reward declined
	KeySmith = "SMITH" // campfire upgrade
	KeyPurge = "PURGE" // campfire removal
)

// RunLog is the normalized view of one playthrough.
type RunLog struct {
	PlayID          string
	CharacterChosen string
	FloorReached    int
	AscensionLevel  int
	Victory         bool
	SeedPlayed      string
	Timestamp       int64

	// MasterDeck is the authoritative final deck in canonical card text.
	MasterDeck []string

	CardChoices     []CardChoice
	Purchases       []FloorItem // cards, relics and potions alike
	Purges          []FloorItem
	CampfireChoices []CampfireChoice
	EventChoices    []EventChoice
}

// CardChoice is one card reward screen.
type CardChoice struct {
	Floor     int
	Picked    string
	NotPicked []string
}

// Skipped reports whether the player declined the reward.
func (c CardChoice) Skipped() bool {
	return c.Picked == PickSkip
}

// FloorItem is an item tied to the floor it changed hands on.
type FloorItem struct {
	Floor int
	Item  string
}

// CampfireChoice is the single rest-site action taken on a floor.
type CampfireChoice struct {
	Floor int
	Key   string
	Data  string
}

// EventChoice is the outcome of a narrative event.
type EventChoice struct {
	Floor            int
	EventName        string
	PlayerChoice     string
	CardsObtained    []string
	CardsRemoved     []string
	CardsTransformed []string
	CardsUpgraded    []string
}
