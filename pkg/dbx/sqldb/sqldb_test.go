package sqldb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marcodd23/go-txscope/pkg/dbx/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestFactory opens a file backed sqlite pool with a single PROFILE table.
func setupTestFactory(t *testing.T) *sqldb.Factory {
	t.Helper()

	ctx := context.Background()
	factory, err := sqldb.Open(ctx, sqldb.Config{
		Driver: sqldb.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "sqldb.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = factory.Close() })

	_, err = factory.DB().ExecContext(ctx, "CREATE TABLE PROFILE (ID INTEGER PRIMARY KEY, NAME TEXT NOT NULL)")
	require.NoError(t, err)

	return factory
}

func countProfiles(t *testing.T, factory *sqldb.Factory) int {
	t.Helper()

	var count int
	require.NoError(t, factory.DB().QueryRow("SELECT COUNT(*) FROM PROFILE").Scan(&count))

	return count
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := sqldb.Open(context.Background(), sqldb.Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database/sql driver")

	_, err = sqldb.Open(context.Background(), sqldb.Config{Driver: sqldb.DriverSQLite})
	require.Error(t, err)
}

func TestAutoCommitConnection(t *testing.T) {
	ctx := context.Background()
	factory := setupTestFactory(t)

	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)
	assert.True(t, conn.AutoCommit())
	require.NoError(t, conn.Ping(ctx))

	affected, err := conn.Exec(ctx, "INSERT INTO PROFILE (ID, NAME) VALUES (?, ?)", 1, "default")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	var name string
	require.NoError(t, conn.QueryRow(ctx, "SELECT NAME FROM PROFILE WHERE ID = ?", 1).Scan(&name))
	assert.Equal(t, "default", name)

	assert.Error(t, conn.Commit(ctx), "commit without transaction")
	require.NoError(t, conn.Close(ctx))
	assert.Equal(t, 1, countProfiles(t, factory))
}

func TestTransactionCommit(t *testing.T) {
	ctx := context.Background()
	factory := setupTestFactory(t)

	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)

	require.NoError(t, conn.SetAutoCommit(ctx, false))
	assert.False(t, conn.AutoCommit())

	_, err = conn.Exec(ctx, "INSERT INTO PROFILE (ID, NAME) VALUES (?, ?)", 1, "a")
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "INSERT INTO PROFILE (ID, NAME) VALUES (?, ?)", 2, "b")
	require.NoError(t, err)

	require.NoError(t, conn.Commit(ctx))
	assert.True(t, conn.AutoCommit())
	require.NoError(t, conn.Close(ctx))

	assert.Equal(t, 2, countProfiles(t, factory))
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	factory := setupTestFactory(t)

	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)

	require.NoError(t, conn.SetAutoCommit(ctx, false))
	_, err = conn.Exec(ctx, "INSERT INTO PROFILE (ID, NAME) VALUES (?, ?)", 1, "a")
	require.NoError(t, err)

	require.NoError(t, conn.Rollback(ctx))
	require.NoError(t, conn.Close(ctx))

	assert.Equal(t, 0, countProfiles(t, factory))
}

func TestCloseRollsBackOpenTransaction(t *testing.T) {
	ctx := context.Background()
	factory := setupTestFactory(t)

	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)

	require.NoError(t, conn.SetAutoCommit(ctx, false))
	_, err = conn.Exec(ctx, "INSERT INTO PROFILE (ID, NAME) VALUES (?, ?)", 1, "a")
	require.NoError(t, err)

	require.NoError(t, conn.Close(ctx))
	require.NoError(t, conn.Close(ctx), "second close is a no-op")

	_, err = conn.Exec(ctx, "SELECT 1")
	assert.Error(t, err)
	assert.Equal(t, 0, countProfiles(t, factory))
}

func TestSetAutoCommitTrueCommits(t *testing.T) {
	ctx := context.Background()
	factory := setupTestFactory(t)

	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx)

	require.NoError(t, conn.SetAutoCommit(ctx, false))
	require.NoError(t, conn.SetAutoCommit(ctx, false), "already transactional")
	_, err = conn.Exec(ctx, "INSERT INTO PROFILE (ID, NAME) VALUES (?, ?)", 1, "a")
	require.NoError(t, err)

	require.NoError(t, conn.SetAutoCommit(ctx, true))
	assert.True(t, conn.AutoCommit())
	assert.Equal(t, 1, countProfiles(t, factory))
}

func TestQueryRows(t *testing.T) {
	ctx := context.Background()
	factory := setupTestFactory(t)

	conn, err := factory.GetConnection(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx)

	for i, name := range []string{"a", "b", "c"} {
		_, err := conn.Exec(ctx, "INSERT INTO PROFILE (ID, NAME) VALUES (?, ?)", i+1, name)
		require.NoError(t, err)
	}

	rows, err := conn.Query(ctx, "SELECT NAME FROM PROFILE WHERE ID > ? ORDER BY ID", 1)
	require.NoError(t, err)

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())

	assert.Equal(t, []string{"b", "c"}, names)
}
