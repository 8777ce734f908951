package pgxdb

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/logx/logxtest"
)

func TestCreateConnectionConfigurationLocal(t *testing.T) {
	logxtest.Install(t)

	poolConfig, err := createConnectionConfiguration(context.Background(), dbx.ConnConfig{
		IsLocalEnv: true,
		Host:       "localhost",
		Port:       5433,
		DBName:     "main-db",
		User:       "postgres",
		Password:   "password",
		MaxConn:    2,
	})

	require.NoError(t, err)
	assert.Equal(t, "localhost", poolConfig.ConnConfig.Host)
	assert.EqualValues(t, 5433, poolConfig.ConnConfig.Port)
	assert.Equal(t, "main-db", poolConfig.ConnConfig.Database)
	assert.Equal(t, int32(runtime.NumCPU())*2, poolConfig.MaxConns)
}

func TestCreateConnectionConfigurationCloudSQL(t *testing.T) {
	logxtest.Install(t)

	poolConfig, err := createConnectionConfiguration(context.Background(), dbx.ConnConfig{
		Host:     "project:region:instance",
		DBName:   "main-db",
		User:     "postgres",
		Password: "password",
	})

	require.NoError(t, err)
	assert.Equal(t, "/cloudsql/project:region:instance", poolConfig.ConnConfig.Host)
}

func TestCreateConnectionConfigurationRequiresCredentials(t *testing.T) {
	logxtest.Install(t)

	for _, conf := range []dbx.ConnConfig{
		{Host: "localhost", User: "postgres", Password: "password"},
		{Host: "localhost", DBName: "main-db", Password: "password"},
		{Host: "localhost", DBName: "main-db", User: "postgres"},
	} {
		_, err := createConnectionConfiguration(context.Background(), conf)
		assert.Error(t, err)
	}
}

func TestPostgresConnWithoutTransaction(t *testing.T) {
	conn := &PostgresConn{}

	assert.True(t, conn.AutoCommit())
	assert.Error(t, conn.Commit(context.Background()))
	assert.Error(t, conn.Rollback(context.Background()))
	assert.NoError(t, conn.SetAutoCommit(context.Background(), true))

	conn.released.Store(true)
	_, err := conn.Exec(context.Background(), "SELECT 1")
	assert.ErrorContains(t, err, "already released")
	assert.ErrorContains(t, conn.QueryRow(context.Background(), "SELECT 1").Scan(), "already released")
	assert.NoError(t, conn.Close(context.Background()), "second close is a no-op")
}
