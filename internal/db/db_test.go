package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "./data/vocea.db", sqlitePath("./data/vocea.db?_pragma=foreign_keys(1)"))
	assert.Equal(t, "/tmp/x.db", sqlitePath("file:/tmp/x.db"))
	assert.Equal(t, "plain.db", sqlitePath("plain.db"))
}

func TestGetDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", getDialect("sqlite"))
	assert.Equal(t, "postgres", getDialect("pgx"))
	assert.Equal(t, "other", getDialect("other"))
}

func TestMigrationsUpAndDown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "test.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite"

	conn, err := Init("sqlite", dsn)
	require.NoError(t, err)
	defer Close(conn)

	require.NoError(t, RunMigrations(conn.DB, "sqlite"))

	for _, table := range []string{"users", "user_profiles", "posts", "replies", "attachments", "tokens"} {
		var n int
		err := conn.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, table)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}

	require.NoError(t, MigrateDown(conn.DB, "sqlite"))

	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'posts'`))
	assert.Equal(t, 0, n)
}
