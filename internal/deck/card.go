package deck

import (
	"strconv"
	"strings"
)

// CardID identifies a card by base name and upgrade level.
// Level 0 is the unupgraded card.
type CardID struct {
	Name  string
	Level int
}

// ParseCardID parses the canonical text form of a card. The text is split
// on the last "+"; a non-negative integer suffix is the level, anything else
// leaves the whole string as the name at level 0.
func ParseCardID(s string) CardID {
	i := strings.LastIndex(s, "+")
	if i < 0 {
		return CardID{Name: s}
	}
	level, err := strconv.Atoi(s[i+1:])
	if err != nil || level < 0 {
		return CardID{Name: s}
	}
	return CardID{Name: s[:i], Level: level}
}

// ParseCardIDs parses every entry of ss, preserving order.
func ParseCardIDs(ss []string) []CardID {
	cards := make([]CardID, 0, len(ss))
	for _, s := range ss {
		cards = append(cards, ParseCardID(s))
	}
	return cards
}

// String returns the canonical form: "Name" at level 0, "Name+N" otherwise.
func (c CardID) String() string {
	if c.Level <= 0 {
		return c.Name
	}
	return c.Name + "+" + strconv.Itoa(c.Level)
}

// Upgraded returns the card one level higher.
func (c CardID) Upgraded() CardID {
	return CardID{Name: c.Name, Level: c.Level + 1}
}

// Downgraded returns the card one level lower. Level 1 and base cards both
// downgrade to the bare name.
func (c CardID) Downgraded() CardID {
	if c.Level > 1 {
		return CardID{Name: c.Name, Level: c.Level - 1}
	}
	return CardID{Name: c.Name}
}

// Strings formats cards in order.
func Strings(cards []CardID) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}
