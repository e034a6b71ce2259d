package log

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// EventLogger is the interface for logging deck events.
type EventLogger interface {
	Log(event DeckEvent)
	Events() []DeckEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []DeckEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event DeckEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []DeckEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []DeckEvent {
	var result []DeckEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() DeckEvent {
	if len(l.events) == 0 {
		return DeckEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event DeckEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(l.LastEvent()))
}

// --- ZapLogger: forwards events to a structured process logger ---

// ZapLogger keeps events in memory and mirrors them to zap. Anomalies are
// logged at warn level, everything else at debug.
type ZapLogger struct {
	MemoryLogger
	z *zap.Logger
}

func NewZapLogger(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

func (l *ZapLogger) Log(event DeckEvent) {
	l.MemoryLogger.Log(event)
	e := l.LastEvent()
	fields := []zap.Field{
		zap.Int("seq", e.Seq),
		zap.Int("floor", e.Floor),
		zap.String("type", e.Type.String()),
	}
	if e.Stage != "" {
		fields = append(fields, zap.String("stage", e.Stage))
	}
	if e.Card != "" {
		fields = append(fields, zap.String("card", e.Card))
	}
	if e.Type.IsAnomaly() {
		l.z.Warn(e.Details, fields...)
		return
	}
	l.z.Debug(e.Details, fields...)
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e DeckEvent) string {
	floor := "  -"
	if e.Floor >= 0 {
		floor = fmt.Sprintf("%3d", e.Floor)
	}
	stage := e.Stage
	// Pad stage to 10 chars for alignment
	for len(stage) < 10 {
		stage += " "
	}

	return fmt.Sprintf("F%s %s| %s", floor, stage, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []DeckEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewObtainEvent(floor int, stage string, card string) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   stage,
		Type:    EventObtain,
		Card:    card,
		Details: fmt.Sprintf("obtain %s", card),
	}
}

func NewRemoveEvent(floor int, stage string, card string) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   stage,
		Type:    EventRemove,
		Card:    card,
		Details: fmt.Sprintf("remove %s", card),
	}
}

func NewUpgradeEvent(floor int, stage string, card, upgraded string) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   stage,
		Type:    EventUpgrade,
		Card:    card,
		Details: fmt.Sprintf("upgrade %s → %s", card, upgraded),
	}
}

func NewDowngradeEvent(floor int, stage string, card, downgraded string) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   stage,
		Type:    EventDowngrade,
		Card:    card,
		Details: fmt.Sprintf("downgrade %s → %s", card, downgraded),
	}
}

func NewUnknownObtainedEvent(floor int, stage string, card string, reason string) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   stage,
		Type:    EventUnknownObtained,
		Card:    card,
		Details: fmt.Sprintf("%s was never obtained (%s)", card, reason),
	}
}

func NewUnknownRemovedEvent(floor int, stage string, card string) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   stage,
		Type:    EventUnknownRemoved,
		Card:    card,
		Details: fmt.Sprintf("%s was never removed (missing from final deck)", card),
	}
}

func NewTurnAppliedEvent(floor int, changes int) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   StageForward,
		Type:    EventTurnApplied,
		Details: fmt.Sprintf("=== Floor %d applied (%d changes) ===", floor, changes),
	}
}

func NewTurnReversedEvent(floor int, changes int) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   StageReverse,
		Type:    EventTurnReversed,
		Details: fmt.Sprintf("=== Floor %d reversed (%d changes) ===", floor, changes),
	}
}

func NewReconciledEvent(floor int, obtained, removed int) DeckEvent {
	return DeckEvent{
		Floor:   floor,
		Stage:   StageReconcile,
		Type:    EventReconciled,
		Details: fmt.Sprintf("reconciled against final deck: %d unknown obtained, %d unknown removed", obtained, removed),
	}
}
