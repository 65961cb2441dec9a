package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	assert.Equal(t, "test.db", config.Path)
	assert.Equal(t, 10, config.MaxOpenConns)
	assert.Equal(t, 5, config.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, config.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, config.BusyTimeout)
	assert.Equal(t, "WAL", config.JournalMode)
	assert.Equal(t, "NORMAL", config.Synchronous)
	assert.False(t, config.AutoMigrate)
}

func TestConfigDSN(t *testing.T) {
	config := DefaultConfig("/tmp/duel.db")
	assert.Equal(t,
		"file:/tmp/duel.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)",
		config.dsn())
}

func TestOpen(t *testing.T) {
	config := DefaultConfig(filepath.Join(t.TempDir(), "nested", "duel.db"))
	db, err := Open(config)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	assert.NotNil(t, db.Conn())
}

func TestOpenWithNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

func TestOpenWithEmptyPath(t *testing.T) {
	_, err := Open(&Config{})
	assert.Error(t, err)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	svc := setupTestService(t)
	ctx := t.Context()

	err := svc.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO decks (id, owner_id, name) VALUES ('d', 'o', 'n')`); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var n int
	require.NoError(t, svc.db.Conn().QueryRow(`SELECT COUNT(*) FROM decks`).Scan(&n))
	assert.Zero(t, n)
}
