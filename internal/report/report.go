// Package report renders reconstructions for people and programs.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/history"
	"github.com/peterkuimelis/spiredeck/internal/runlog"
)

// Report summarizes one reconstructed run.
type Report struct {
	ID           string `json:"id"`
	Character    string `json:"character"`
	FloorReached int    `json:"floor_reached"`
	Victory      bool   `json:"victory"`
	Ascension    int    `json:"ascension"`

	Cards           []string `json:"cards"`
	UnknownObtained []string `json:"unknown_obtained"`
	UnknownRemoved  []string `json:"unknown_removed"`

	Turns      []TurnView `json:"turns"`
	Consistent bool       `json:"consistent"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Build assembles a report. The run's play ID is reused when present.
func Build(res *history.Result, run *runlog.RunLog) *Report {
	id := run.PlayID
	if id == "" {
		id = uuid.NewString()
	}
	return &Report{
		ID:              id,
		Character:       res.Character,
		FloorReached:    res.FloorReached,
		Victory:         run.Victory,
		Ascension:       run.AscensionLevel,
		Cards:           deck.Strings(res.Deck.Cards()),
		UnknownObtained: deck.Strings(res.Deck.UnknownObtained()),
		UnknownRemoved:  deck.Strings(res.Deck.UnknownRemoved()),
		Turns:           NewTurnViews(res.Diffs),
		Consistent:      res.Consistent(),
		CreatedAt:       time.Now().UTC(),
	}
}

// WriteText prints the final deck and both anomaly lists.
func WriteText(w io.Writer, r *Report) error {
	_, err := fmt.Fprintf(w, "Character: %s\nlast: %s\nobtained?: %s\nremoved?: %s\n",
		r.Character,
		formatList(r.Cards),
		formatList(r.UnknownObtained),
		formatList(r.UnknownRemoved))
	return err
}

// WriteTurns prints one line per floor that changed the deck.
func WriteTurns(w io.Writer, r *Report) error {
	for _, t := range r.Turns {
		var parts []string
		parts = appendPart(parts, "+", t.Obtained)
		parts = appendPart(parts, "-", t.Removed)
		parts = appendPart(parts, "~", t.Transformed)
		parts = appendPart(parts, "^", t.Upgraded)
		if _, err := fmt.Fprintf(w, "F%3d | %s\n", t.Floor, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

func appendPart(parts []string, sign string, cards []string) []string {
	if len(cards) == 0 {
		return parts
	}
	return append(parts, sign+formatList(cards))
}

// formatList renders ["a", "b"].
func formatList(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
