package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "nested", "records.db"),
		Name: "records",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_CreatesDirectoryAndDefaultsProfile(t *testing.T) {
	db := newTestDB(t)

	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, "records", db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
	assert.FileExists(t, db.Path())
}

func TestNew_InMemory(t *testing.T) {
	db, err := New(Config{Path: "file::memory:", Profile: ProfileCache, Name: "records"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	_, err = db.Exec(`INSERT INTO ingest_batches (id, source, layout, started_at, finished_at) VALUES ('b', 's', 'community', 1, 2)`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM ingest_batches`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestBuildConnectionString(t *testing.T) {
	standard := buildConnectionString("/data/records.db", ProfileStandard)
	assert.Contains(t, standard, "/data/records.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, standard, "synchronous(NORMAL)")
	assert.Contains(t, standard, "foreign_keys(1)")

	cache := buildConnectionString("file:x?mode=memory", ProfileCache)
	assert.Contains(t, cache, "file:x?mode=memory&_pragma=journal_mode(WAL)")
	assert.Contains(t, cache, "synchronous(OFF)")
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	for _, table := range []string{"ingest_batches", "weekly_records", "skipped_rows"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "other.db"), Name: "other"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`CREATE TABLE items (v INTEGER)`)
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
		return n
	}

	t.Run("commit", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO items VALUES (1)`)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec(`INSERT INTO items VALUES (2)`)
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec(`INSERT INTO items VALUES (3)`)
			panic("unexpected")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in transaction")
		assert.Equal(t, 1, count())
	})

	t.Run("nil connection", func(t *testing.T) {
		assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
	})
}

func TestHealthAndMaintenance(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, db.WALCheckpoint(""))
	assert.NoError(t, db.WALCheckpoint("passive"))
	assert.Error(t, db.WALCheckpoint("bogus"))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}
