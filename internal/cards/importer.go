package cards

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// CSV column order of an import file. The first row is a header and is skipped.
const (
	colName = iota
	colManaCost
	colCardType
	colAttack
	colHealth
	colEffectText
	colKeywords
	colSpellEffect
)

// ImportError reports a row that could not be imported.
type ImportError struct {
	Line int    // 1-based line in the file
	Name string // card name, if the row had one
	Err  error
}

func (e ImportError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Name, e.Err)
}

func (e ImportError) Unwrap() error { return e.Err }

// ImportCSV parses card rows. Rows that fail to parse or validate are
// reported and skipped; the rest are returned in file order without ids.
func ImportCSV(r io.Reader) ([]game.Card, []ImportError) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		cards    []game.Card
		problems []ImportError
		header   = true
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				problems = append(problems, ImportError{Err: err})
				break
			}
			problems = append(problems, ImportError{Line: parseErr.StartLine, Err: err})
			continue
		}
		line, _ := reader.FieldPos(0)
		if header {
			header = false
			continue
		}

		card, err := parseRow(row)
		if err == nil {
			err = Validate(card)
		}
		if err != nil {
			problems = append(problems, ImportError{Line: line, Name: card.Name, Err: err})
			continue
		}
		cards = append(cards, card)
	}
	return cards, problems
}

func parseRow(row []string) (game.Card, error) {
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	card := game.Card{
		Name:     col(colName),
		Type:     game.CardType(col(colCardType)),
		Text:     col(colEffectText),
		Keywords: []game.Keyword{},
	}

	cost := col(colManaCost)
	if cost == "" {
		cost = "0"
	}
	mana, err := strconv.Atoi(cost)
	if err != nil {
		return card, fmt.Errorf("mana cost %q is not a number", cost)
	}
	card.ManaCost = mana

	if card.Attack, err = optionalInt(col(colAttack)); err != nil {
		return card, fmt.Errorf("attack: %w", err)
	}
	if card.Health, err = optionalInt(col(colHealth)); err != nil {
		return card, fmt.Errorf("health: %w", err)
	}

	for _, kw := range strings.Split(col(colKeywords), "|") {
		if kw = strings.TrimSpace(kw); kw != "" {
			card.Keywords = append(card.Keywords, game.Keyword(kw))
		}
	}

	if raw := col(colSpellEffect); raw != "" {
		card.Effect = &game.SpellEffect{}
		if err := json.Unmarshal([]byte(raw), card.Effect); err != nil {
			return card, fmt.Errorf("spell effect is not valid JSON: %w", err)
		}
	}
	return card, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return &v, nil
}
