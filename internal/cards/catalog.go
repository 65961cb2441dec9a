package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// ErrUnknownFormat is returned for catalog files that are neither JSON nor TOML.
var ErrUnknownFormat = errors.New("unknown catalog format")

// Catalog is an immutable set of card definitions keyed by id.
type Catalog struct {
	byID map[int]game.Card
	ids  []int
}

// NewCatalog validates cards and indexes them. Ids must be positive and unique.
func NewCatalog(cards []game.Card) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]game.Card, len(cards))}
	for _, card := range cards {
		if card.ID <= 0 {
			return nil, fmt.Errorf("card %q: id must be positive, got %d", card.Name, card.ID)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("card %q: duplicate id %d", card.Name, card.ID)
		}
		if err := Validate(card); err != nil {
			return nil, err
		}
		c.byID[card.ID] = card
		c.ids = append(c.ids, card.ID)
	}
	slices.Sort(c.ids)
	return c, nil
}

// Get returns the card with the given id.
func (c *Catalog) Get(id int) (game.Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Cards returns every card ordered by id.
func (c *Catalog) Cards() []game.Card {
	out := make([]game.Card, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// LoadCards reads and validates the cards of a catalog file. The format
// follows the extension: .json holds an array of cards, .toml holds
// [[cards]] tables. Ids are kept as written and may be zero.
func LoadCards(path string) ([]game.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var cards []game.Card
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cards); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
		}
	case ".toml":
		var file tomlCatalog
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
		}
		cards = file.gameCards()
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	for _, card := range cards {
		if err := Validate(card); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// LoadCatalog reads a catalog file whose cards carry their ids.
func LoadCatalog(path string) (*Catalog, error) {
	cards, err := LoadCards(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(cards)
}

// tomlCatalog mirrors the JSON card layout with TOML keys.
type tomlCatalog struct {
	Cards []tomlCard `toml:"cards"`
}

type tomlCard struct {
	ID         int         `toml:"id"`
	Name       string      `toml:"name"`
	ManaCost   int         `toml:"mana_cost"`
	CardType   string      `toml:"card_type"`
	Attack     *int        `toml:"attack"`
	Health     *int        `toml:"health"`
	EffectText string      `toml:"effect_text"`
	Keywords   []string    `toml:"keywords"`
	Effect     *tomlEffect `toml:"spell_effect"`
	ImageURL   string      `toml:"image_url"`
}

type tomlEffect struct {
	Type    string `toml:"type"`
	Amount  *int   `toml:"amount"`
	Attack  *int   `toml:"attack"`
	Health  *int   `toml:"health"`
	Keyword string `toml:"keyword"`
	Target  string `toml:"target"`
}

func (f tomlCatalog) gameCards() []game.Card {
	out := make([]game.Card, 0, len(f.Cards))
	for _, tc := range f.Cards {
		card := game.Card{
			ID:       tc.ID,
			Name:     tc.Name,
			ManaCost: tc.ManaCost,
			Type:     game.CardType(tc.CardType),
			Attack:   tc.Attack,
			Health:   tc.Health,
			Text:     tc.EffectText,
			Keywords: make([]game.Keyword, 0, len(tc.Keywords)),
			ImageURL: tc.ImageURL,
		}
		for _, kw := range tc.Keywords {
			card.Keywords = append(card.Keywords, game.Keyword(kw))
		}
		if tc.Effect != nil {
			card.Effect = &game.SpellEffect{
				Type:    game.EffectType(tc.Effect.Type),
				Amount:  tc.Effect.Amount,
				Attack:  tc.Effect.Attack,
				Health:  tc.Effect.Health,
				Keyword: game.Keyword(tc.Effect.Keyword),
				Target:  game.TargetSelector(tc.Effect.Target),
			}
		}
		out = append(out, card)
	}
	return out
}
