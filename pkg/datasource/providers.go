package datasource

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-txscope/pkg/dbx/sqldb"
	"github.com/marcodd23/go-txscope/pkg/validator"
)

// Names of the providers bound by NewDefaultRegistry.
const (
	PgxProviderName = "pgx"
	SQLProviderName = "sql"
)

// NewDefaultRegistry - registry with the pgx pool provider and the database/sql provider bound.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.BindProvider(PgxProviderName, PgxPoolProvider)
	_ = r.BindProvider(SQLProviderName, SQLProvider)

	return r
}

// PgxPoolProvider builds a pgxpool factory.
//
// Properties: host, port, database, user, password, maxConns, localEnv, vpcDirect.
func PgxPoolProvider(ctx context.Context, props Properties) (dbx.ConnectionFactory, error) {
	conf, err := pgxConnConfig(props)
	if err != nil {
		return nil, err
	}

	factory, err := pgxdb.NewPoolFactory(ctx, conf)
	if err != nil {
		return nil, err
	}

	return factory, nil
}

func pgxConnConfig(props Properties) (dbx.ConnConfig, error) {
	values := props.Map()
	conf := dbx.ConnConfig{
		Host:       values["host"],
		DBName:     values["database"],
		User:       values["user"],
		Password:   values["password"],
		IsLocalEnv: true,
	}

	var err error
	if conf.Port, err = parseInt32(values, "port"); err != nil {
		return conf, err
	}

	if conf.MaxConn, err = parseInt32(values, "maxConns"); err != nil {
		return conf, err
	}

	if conf.IsLocalEnv, err = parseBool(values, "localEnv", true); err != nil {
		return conf, err
	}

	if conf.VpcDirectConnection, err = parseBool(values, "vpcDirect", false); err != nil {
		return conf, err
	}

	if err := validator.NewValidator().Validate(conf); err != nil {
		return conf, fmt.Errorf("invalid pgx properties: %w", err)
	}

	return conf, nil
}

// SQLProvider builds a database/sql factory.
//
// Properties: driver, dsn, maxOpenConns, maxIdleConns, connMaxLifetime (Go duration).
func SQLProvider(ctx context.Context, props Properties) (dbx.ConnectionFactory, error) {
	cfg, err := sqlConfig(props)
	if err != nil {
		return nil, err
	}

	factory, err := sqldb.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return factory, nil
}

func sqlConfig(props Properties) (sqldb.Config, error) {
	values := props.Map()
	cfg := sqldb.Config{
		Driver: values["driver"],
		DSN:    values["dsn"],
	}

	var err error
	if cfg.MaxOpenConns, err = parseInt(values, "maxOpenConns"); err != nil {
		return cfg, err
	}

	if cfg.MaxIdleConns, err = parseInt(values, "maxIdleConns"); err != nil {
		return cfg, err
	}

	if raw, ok := values["connMaxLifetime"]; ok && raw != "" {
		if cfg.ConnMaxLifetime, err = time.ParseDuration(raw); err != nil {
			return cfg, fmt.Errorf("property 'connMaxLifetime': %w", err)
		}
	}

	if err := validator.NewValidator().Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid sql properties: %w", err)
	}

	return cfg, nil
}

func parseInt(values map[string]string, name string) (int, error) {
	raw, ok := values[name]
	if !ok || raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("property '%s': %w", name, err)
	}

	return v, nil
}

func parseInt32(values map[string]string, name string) (int32, error) {
	raw, ok := values[name]
	if !ok || raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("property '%s': %w", name, err)
	}

	return int32(v), nil
}

func parseBool(values map[string]string, name string, def bool) (bool, error) {
	raw, ok := values[name]
	if !ok || raw == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("property '%s': %w", name, err)
	}

	return v, nil
}
