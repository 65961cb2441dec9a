package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the catalog, deck and match tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE cards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			mana_cost INTEGER NOT NULL,
			card_type TEXT NOT NULL,
			attack INTEGER,
			health INTEGER,
			effect_text TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '[]',
			spell_effect TEXT,
			image_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE decks (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE deck_cards (
			deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			card_id INTEGER NOT NULL REFERENCES cards(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			PRIMARY KEY (deck_id, card_id)
		);

		CREATE TABLE matches (
			id TEXT PRIMARY KEY,
			player1_id TEXT NOT NULL,
			player2_id TEXT NOT NULL,
			player1_deck_id TEXT NOT NULL REFERENCES decks(id),
			player2_deck_id TEXT NOT NULL REFERENCES decks(id),
			status TEXT NOT NULL DEFAULT 'waiting',
			winner_id TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME,
			pools TEXT NOT NULL DEFAULT ''
		);
	`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}
