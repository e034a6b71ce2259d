package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
)

// ErrInvalidRunLog is matched by every validation failure.
var ErrInvalidRunLog = errors.New("invalid run log")

// ValidationError describes a run log that is well-formed JSON but breaks
// a structural precondition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid run log: %s", e.Reason)
	}
	return fmt.Sprintf("invalid run log: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRunLog
}

// rawRun mirrors the on-disk JSON. Floors are decoded weakly because some
// game versions write them as floats.
type rawRun struct {
	PlayID          string `mapstructure:"play_id"`
	CharacterChosen string `mapstructure:"character_chosen"`
	FloorReached    int    `mapstructure:"floor_reached"`
	AscensionLevel  int    `mapstructure:"ascension_level"`
	Victory         bool   `mapstructure:"victory"`
	SeedPlayed      string `mapstructure:"seed_played"`
	Timestamp       int64  `mapstructure:"timestamp"`

	MasterDeck         []string            `mapstructure:"master_deck"`
	CardChoices        []rawCardChoice     `mapstructure:"card_choices"`
	EventChoices       []rawEventChoice    `mapstructure:"event_choices"`
	ItemsPurged        []string            `mapstructure:"items_purged"`
	ItemsPurgedFloors  []int               `mapstructure:"items_purged_floors"`
	ItemsPurchased     []string            `mapstructure:"items_purchased"`
	ItemPurchaseFloors []int               `mapstructure:"item_purchase_floors"`
	CampfireChoices    []rawCampfireChoice `mapstructure:"campfire_choices"`
}

type rawCardChoice struct {
	Floor     int      `mapstructure:"floor"`
	Picked    string   `mapstructure:"picked"`
	NotPicked []string `mapstructure:"not_picked"`
}

type rawEventChoice struct {
	Floor            int      `mapstructure:"floor"`
	EventName        string   `mapstructure:"event_name"`
	PlayerChoice     string   `mapstructure:"player_choice"`
	CardsObtained    []string `mapstructure:"cards_obtained"`
	CardsRemoved     []string `mapstructure:"cards_removed"`
	CardsTransformed []string `mapstructure:"cards_transformed"`
	CardsUpgraded    []string `mapstructure:"cards_upgraded"`
}

type rawCampfireChoice struct {
	Floor int     `mapstructure:"floor"`
	Key   string  `mapstructure:"key"`
	Data  *string `mapstructure:"data"`
}

// Load reads and validates the run file at path.
func Load(path string) (*RunLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	run, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return run, nil
}

// Parse decodes and validates a run log from r.
func Parse(r io.Reader) (*RunLog, error) {
	var doc map[string]any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode run JSON: %w", err)
	}
	return Decode(doc)
}

// Decode validates an already-unmarshalled run document.
func Decode(doc map[string]any) (*RunLog, error) {
	if doc == nil {
		return nil, &ValidationError{Reason: "empty document"}
	}

	var raw rawRun
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return raw.normalize()
}

func (raw *rawRun) normalize() (*RunLog, error) {
	if raw.FloorReached < 0 {
		return nil, &ValidationError{
			Field:  "floor_reached",
			Reason: fmt.Sprintf("must not be negative, got %d", raw.FloorReached),
		}
	}

	purchases, err := zipFloors("item_purchase_floors", raw.ItemsPurchased, raw.ItemPurchaseFloors)
	if err != nil {
		return nil, err
	}
	purges, err := zipFloors("items_purged_floors", raw.ItemsPurged, raw.ItemsPurgedFloors)
	if err != nil {
		return nil, err
	}

	run := &RunLog{
		PlayID:          raw.PlayID,
		CharacterChosen: raw.CharacterChosen,
		FloorReached:    raw.FloorReached,
		AscensionLevel:  raw.AscensionLevel,
		Victory:         raw.Victory,
		SeedPlayed:      raw.SeedPlayed,
		Timestamp:       raw.Timestamp,
		MasterDeck:      raw.MasterDeck,
		Purchases:       purchases,
		Purges:          purges,
	}

	for _, cc := range raw.CardChoices {
		run.CardChoices = append(run.CardChoices, CardChoice(cc))
	}

	for i, cf := range raw.CampfireChoices {
		choice := CampfireChoice{Floor: cf.Floor, Key: cf.Key}
		if cf.Data != nil {
			choice.Data = *cf.Data
		} else if cf.Key == KeySmith || cf.Key == KeyPurge {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("campfire_choices[%d].data", i),
				Reason: fmt.Sprintf("required for %s", cf.Key),
			}
		}
		run.CampfireChoices = append(run.CampfireChoices, choice)
	}

	for _, ec := range raw.EventChoices {
		run.EventChoices = append(run.EventChoices, EventChoice(ec))
	}

	return run, nil
}

// zipFloors pairs items with their parallel floor array.
func zipFloors(floorsField string, items []string, floors []int) ([]FloorItem, error) {
	if len(floors) < len(items) {
		reason := fmt.Sprintf("has %d entries for %d items", len(floors), len(items))
		if floors == nil {
			reason = fmt.Sprintf("missing for %d items", len(items))
		}
		return nil, &ValidationError{Field: floorsField, Reason: reason}
	}

	var out []FloorItem
	for i, item := range items {
		out = append(out, FloorItem{Floor: floors[i], Item: item})
	}
	return out, nil
}
