package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/marcodd23/go-txscope/pkg/configx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgxConnConfigFromProperties(t *testing.T) {
	conf, err := pgxConnConfig(Properties{
		{Name: "host", Value: "localhost"},
		{Name: "port", Value: "5433"},
		{Name: "database", Value: "main-db"},
		{Name: "user", Value: "postgres"},
		{Name: "password", Value: "password"},
		{Name: "maxConns", Value: "2"},
	})

	require.NoError(t, err)
	assert.Equal(t, "localhost", conf.Host)
	assert.EqualValues(t, 5433, conf.Port)
	assert.Equal(t, "main-db", conf.DBName)
	assert.EqualValues(t, 2, conf.MaxConn)
	assert.True(t, conf.IsLocalEnv)
	assert.False(t, conf.VpcDirectConnection)
}

func TestPgxConnConfigRejectsMalformedProperties(t *testing.T) {
	base := Properties{
		{Name: "host", Value: "localhost"},
		{Name: "database", Value: "main-db"},
		{Name: "user", Value: "postgres"},
		{Name: "password", Value: "password"},
	}

	_, err := pgxConnConfig(append(base, Property{Name: "port", Value: "five"}))
	assert.ErrorContains(t, err, "port")

	_, err = pgxConnConfig(append(base, Property{Name: "localEnv", Value: "maybe"}))
	assert.ErrorContains(t, err, "localEnv")

	_, err = pgxConnConfig(base[:3])
	assert.ErrorContains(t, err, "invalid pgx properties")
}

func TestSQLConfigFromProperties(t *testing.T) {
	cfg, err := sqlConfig(Properties{
		{Name: "driver", Value: "postgres"},
		{Name: "dsn", Value: "postgres://localhost/main"},
		{Name: "maxOpenConns", Value: "8"},
		{Name: "maxIdleConns", Value: "2"},
		{Name: "connMaxLifetime", Value: "90s"},
	})

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, 8, cfg.MaxOpenConns)
	assert.Equal(t, 2, cfg.MaxIdleConns)
	assert.Equal(t, 90*time.Second, cfg.ConnMaxLifetime)

	_, err = sqlConfig(Properties{{Name: "driver", Value: "oracle"}, {Name: "dsn", Value: "x"}})
	assert.ErrorContains(t, err, "invalid sql properties")

	_, err = sqlConfig(Properties{{Name: "driver", Value: "sqlite"}, {Name: "dsn", Value: "x"}, {Name: "connMaxLifetime", Value: "forever"}})
	assert.ErrorContains(t, err, "connMaxLifetime")
}

func TestSQLProviderPropagatesOpenFailure(t *testing.T) {
	_, err := SQLProvider(context.Background(), Properties{{Name: "driver", Value: "sqlite"}})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	assert.Nil(t, FromConfig(nil))
	assert.Nil(t, FromConfig(&configx.DataSourceConfig{}).Lookup)

	cfg := FromConfig(&configx.DataSourceConfig{Lookup: &configx.LookupConfig{
		Name: "sql",
		Properties: []configx.PropertyConfig{
			{Name: "driver", Value: "sqlite"},
			{Name: "dsn", Value: "./app.db"},
		},
	}})

	require.NotNil(t, cfg.Lookup)
	assert.Equal(t, "sql", cfg.Lookup.Name)
	assert.Equal(t, Properties{{Name: "driver", Value: "sqlite"}, {Name: "dsn", Value: "./app.db"}}, cfg.Lookup.Properties)
	assert.Nil(t, cfg.Factory)
}
