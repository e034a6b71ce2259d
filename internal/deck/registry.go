package deck

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Character names as they appear in run logs.
const (
	Ironclad  = "IRONCLAD"
	TheSilent = "THE_SILENT"
	Defect    = "DEFECT"
	Watcher   = "WATCHER"
)

// DeckFile represents the top-level YAML structure of a starting-deck table.
type DeckFile struct {
	Characters []CharacterEntry `yaml:"characters"`
}

// CharacterEntry represents a single character's starting deck in the YAML file.
type CharacterEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Registry maps character names to their starting decks.
type Registry struct {
	decks map[string][]CardID
}

// DefaultRegistry returns the starting decks of the four playable characters.
func DefaultRegistry() *Registry {
	return &Registry{decks: map[string][]CardID{
		Ironclad: expand([]CardEntry{
			{Name: "Strike_R", Count: 5},
			{Name: "Defend_R", Count: 4},
			{Name: "Bash", Count: 1},
		}),
		TheSilent: expand([]CardEntry{
			{Name: "Strike_G", Count: 5},
			{Name: "Defend_G", Count: 5},
			{Name: "Neutralize", Count: 1},
			{Name: "Survivor", Count: 1},
		}),
		Defect: expand([]CardEntry{
			{Name: "Strike_B", Count: 4},
			{Name: "Defend_B", Count: 4},
			{Name: "Zap", Count: 1},
			{Name: "Dualcast", Count: 1},
		}),
		Watcher: expand([]CardEntry{
			{Name: "Strike_P", Count: 4},
			{Name: "Defend_P", Count: 4},
			{Name: "Eruption", Count: 1},
			{Name: "Vigilance", Count: 1},
		}),
	}}
}

// LoadStartingDecks parses a YAML starting-deck table and layers it over the
// default registry. Characters in the file replace or extend the defaults.
func LoadStartingDecks(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}

	reg := DefaultRegistry()
	for _, entry := range df.Characters {
		if entry.Name == "" {
			return nil, fmt.Errorf("parse deck YAML: character without a name")
		}
		reg.decks[entry.Name] = expand(entry.Cards)
	}
	return reg, nil
}

// StartingDeck returns a copy of the character's starting deck, or an empty
// deck for an unrecognized character.
func (r *Registry) StartingDeck(character string) []CardID {
	cards, ok := r.decks[character]
	if !ok {
		return []CardID{}
	}
	return slices.Clone(cards)
}

// Characters returns the known character names, sorted.
func (r *Registry) Characters() []string {
	names := make([]string, 0, len(r.decks))
	for name := range r.decks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func expand(entries []CardEntry) []CardID {
	var cards []CardID
	for _, entry := range entries {
		for i := 0; i < entry.Count; i++ {
			cards = append(cards, ParseCardID(entry.Name))
		}
	}
	return cards
}
