package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ramonehamilton/spellduel/internal/game"
)

// CardRepository handles database operations for the card catalog.
type CardRepository interface {
	// Upsert inserts a card or updates the card with the same name, and sets card.ID.
	Upsert(ctx context.Context, card *game.Card) error

	// GetByID retrieves a card by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id int) (*game.Card, error)

	// List retrieves every card ordered by ID.
	List(ctx context.Context) ([]game.Card, error)

	// Delete deletes a card by its ID.
	Delete(ctx context.Context, id int) error
}

type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db DBTX) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `id, name, mana_cost, card_type, attack, health, effect_text, keywords, spell_effect, image_url`

func (r *cardRepository) Upsert(ctx context.Context, card *game.Card) error {
	keywords := card.Keywords
	if keywords == nil {
		keywords = []game.Keyword{}
	}
	kw, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	var effect sql.NullString
	if card.Effect != nil {
		data, err := json.Marshal(card.Effect)
		if err != nil {
			return fmt.Errorf("failed to encode spell effect: %w", err)
		}
		effect = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO cards (name, mana_cost, card_type, attack, health, effect_text, keywords, spell_effect, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			mana_cost = excluded.mana_cost,
			card_type = excluded.card_type,
			attack = excluded.attack,
			health = excluded.health,
			effect_text = excluded.effect_text,
			keywords = excluded.keywords,
			spell_effect = excluded.spell_effect,
			image_url = excluded.image_url,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	err = r.db.QueryRowContext(ctx, query,
		card.Name,
		card.ManaCost,
		string(card.Type),
		nullInt(card.Attack),
		nullInt(card.Health),
		card.Text,
		string(kw),
		effect,
		card.ImageURL,
	).Scan(&card.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert card %q: %w", card.Name, err)
	}
	return nil
}

func (r *cardRepository) GetByID(ctx context.Context, id int) (*game.Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (r *cardRepository) List(ctx context.Context) ([]game.Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []game.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return requireAffected(result, "card", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*game.Card, error) {
	var (
		card     game.Card
		cardType string
		attack   sql.NullInt64
		health   sql.NullInt64
		keywords string
		effect   sql.NullString
	)
	if err := s.Scan(&card.ID, &card.Name, &card.ManaCost, &cardType, &attack, &health,
		&card.Text, &keywords, &effect, &card.ImageURL); err != nil {
		return nil, err
	}

	card.Type = game.CardType(cardType)
	card.Attack = intFromNull(attack)
	card.Health = intFromNull(health)
	if err := json.Unmarshal([]byte(keywords), &card.Keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords of card %d: %w", card.ID, err)
	}
	if effect.Valid {
		card.Effect = &game.SpellEffect{}
		if err := json.Unmarshal([]byte(effect.String), card.Effect); err != nil {
			return nil, fmt.Errorf("failed to decode spell effect of card %d: %w", card.ID, err)
		}
	}
	return &card, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func requireAffected(result sql.Result, kind string, id any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
	}
	return nil
}
