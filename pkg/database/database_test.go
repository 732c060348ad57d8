package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "data", "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql":    {Data: []byte("CREATE INDEX i ON t(a);")},
		"001_create_t.sql":     {Data: []byte("CREATE TABLE t (a TEXT);")},
		"README.md":            {Data: []byte("ignored")},
		"nested/003_other.sql": {Data: []byte("SELECT 1;")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create_t", migrations[0].Name)
	assert.Equal(t, 3, migrations[2].Version)

	_, err = LoadMigrations(fstest.MapFS{"init.sql": {Data: []byte("")}})
	assert.Error(t, err)

	_, err = LoadMigrations(fstest.MapFS{
		"001_a.sql": {Data: []byte("")},
		"01_b.sql":  {Data: []byte("")},
	})
	assert.ErrorContains(t, err, "duplicate migration version 1")
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"001_create_t.sql": {Data: []byte("CREATE TABLE t (a TEXT);")},
	}

	m := NewMigrator(db, zap.NewNop())
	require.NoError(t, m.RunMigrations(ctx, fsys))
	require.NoError(t, m.RunMigrations(ctx, fsys))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRunMigrations_FailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	err := NewMigrator(db, zap.NewNop()).RunMigrations(context.Background(), fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE;")},
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Zero(t, count)
}

func TestWithTransaction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.Exec("CREATE TABLE t (a TEXT)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t VALUES ('x')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t VALUES ('y')")
		return err
	}))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}
