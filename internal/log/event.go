package log

// EventType enumerates all observable deck events.
type EventType int

const (
	EventObtain EventType = iota
	EventRemove
	EventUpgrade
	EventDowngrade
	EventUnknownObtained // a card was needed but never seen being obtained
	EventUnknownRemoved  // a card was held but never seen being removed
	EventTurnApplied
	EventTurnReversed
	EventReconciled
)

func (e EventType) String() string {
	switch e {
	case EventObtain:
		return "Obtain"
	case EventRemove:
		return "Remove"
	case EventUpgrade:
		return "Upgrade"
	case EventDowngrade:
		return "Downgrade"
	case EventUnknownObtained:
		return "UnknownObtained"
	case EventUnknownRemoved:
		return "UnknownRemoved"
	case EventTurnApplied:
		return "TurnApplied"
	case EventTurnReversed:
		return "TurnReversed"
	case EventReconciled:
		return "Reconciled"
	default:
		return "Unknown"
	}
}

// IsAnomaly reports whether the event records a reconciliation failure.
func (e EventType) IsAnomaly() bool {
	return e == EventUnknownObtained || e == EventUnknownRemoved
}

// Stages a deck mutation can happen in.
const (
	StageDirect    = ""
	StageForward   = "forward"
	StageReverse   = "reverse"
	StageReconcile = "reconcile"
)

// DeckEvent represents a single observable change to a deck.
type DeckEvent struct {
	Seq     int       // monotonic sequence number
	Floor   int       // floor of the diff being applied, -1 outside a turn
	Stage   string    // forward, reverse, reconcile or empty for direct calls
	Type    EventType // event type
	Card    string    // canonical card text (if applicable)
	Details string    // human-readable detail string
}
