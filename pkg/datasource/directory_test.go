package datasource_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marcodd23/go-txscope/pkg/datasource"
	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/dbx/dbxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBindAndLookup(t *testing.T) {
	ctx := context.Background()
	registry := datasource.NewRegistry()
	factory := &dbxtest.MockFactory{}

	require.NoError(t, registry.Bind("jdbc/DM_DS", factory))

	found, err := registry.Lookup(ctx, "jdbc/DM_DS")
	require.NoError(t, err)
	assert.Same(t, factory, found)

	found, err = registry.LookupWithProperties(ctx, "jdbc/DM_DS", datasource.Properties{{Name: "ignored", Value: "x"}})
	require.NoError(t, err)
	assert.Same(t, factory, found)
}

func TestRegistryRejectsInvalidBindings(t *testing.T) {
	registry := datasource.NewRegistry()

	require.NoError(t, registry.Bind("jdbc/DM_DS", &dbxtest.MockFactory{}))
	assert.Error(t, registry.Bind("jdbc/DM_DS", &dbxtest.MockFactory{}), "duplicate name")
	assert.Error(t, registry.Bind("", &dbxtest.MockFactory{}), "empty name")
	assert.Error(t, registry.Bind("jdbc/NIL", nil))
	assert.Error(t, registry.BindProvider("jdbc/NIL", nil))

	registry.Unbind("jdbc/DM_DS")
	assert.NoError(t, registry.Bind("jdbc/DM_DS", &dbxtest.MockFactory{}), "rebinding after unbind")
}

func TestRegistryUnknownName(t *testing.T) {
	_, err := datasource.NewRegistry().Lookup(context.Background(), "jdbc/MISSING")

	assert.ErrorIs(t, err, datasource.ErrNameNotFound)
	assert.Contains(t, err.Error(), "jdbc/MISSING")
}

func TestRegistryProviderReceivesProperties(t *testing.T) {
	ctx := context.Background()
	registry := datasource.NewRegistry()
	factory := &dbxtest.MockFactory{}

	var received []datasource.Properties
	require.NoError(t, registry.BindProvider("jdbc/DM_DS", func(_ context.Context, props datasource.Properties) (dbx.ConnectionFactory, error) {
		received = append(received, props)
		return factory, nil
	}))

	props := datasource.Properties{{Name: "url", Value: "a"}, {Name: "url", Value: "b"}}
	found, err := registry.LookupWithProperties(ctx, "jdbc/DM_DS", props)
	require.NoError(t, err)
	assert.Same(t, factory, found)

	_, err = registry.Lookup(ctx, "jdbc/DM_DS")
	require.NoError(t, err)

	require.Len(t, received, 2)
	assert.Equal(t, props, received[0])
	assert.Empty(t, received[1])
}

func TestRegistryProviderErrors(t *testing.T) {
	ctx := context.Background()
	registry := datasource.NewRegistry()
	cause := errors.New("bad url")

	require.NoError(t, registry.BindProvider("failing", func(context.Context, datasource.Properties) (dbx.ConnectionFactory, error) {
		return nil, cause
	}))
	require.NoError(t, registry.BindProvider("empty", func(context.Context, datasource.Properties) (dbx.ConnectionFactory, error) {
		return nil, nil
	}))

	_, err := registry.Lookup(ctx, "failing")
	assert.ErrorIs(t, err, cause)

	_, err = registry.Lookup(ctx, "empty")
	assert.Error(t, err)
}

func TestDefaultRegistryNames(t *testing.T) {
	assert.Equal(t, []string{"pgx", "sql"}, datasource.NewDefaultRegistry().Names())
}

func TestPropertiesLastValueWins(t *testing.T) {
	props := datasource.Properties{{Name: "url", Value: "a"}, {Name: "user", Value: "admin"}, {Name: "url", Value: "b"}}

	value, ok := props.Get("url")
	assert.True(t, ok)
	assert.Equal(t, "b", value)

	_, ok = props.Get("password")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"url": "b", "user": "admin"}, props.Map())
}
