package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/errorx"
	"github.com/marcodd23/go-txscope/pkg/logx"

	// database/sql drivers selectable through Config.Driver
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Config holds the database/sql pool configuration.
type Config struct {
	Driver          string `validate:"required,oneof=sqlite postgres pgx"`
	DSN             string `validate:"required"`
	MaxOpenConns    int    `validate:"gte=0"`
	MaxIdleConns    int    `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// Factory - *sql.DB backed connection factory.
// It Implements dbx.ConnectionFactory, every connection is a dedicated *sql.Conn of the pool.
type Factory struct {
	db     *sql.DB
	driver string
}

// Open opens and pings the database, applying pool defaults when left empty.
func Open(ctx context.Context, cfg Config) (*Factory, error) {
	if cfg.DSN == "" {
		return nil, errorx.NewDatabaseError("database DSN is required")
	}

	switch cfg.Driver {
	case DriverSQLite, DriverPostgres, DriverPgx:
	default:
		return nil, errorx.NewDatabaseError("unsupported database/sql driver '%s'", cfg.Driver)
	}

	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "failed to open database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errorx.NewDatabaseErrorWrapper(err, "failed to ping database")
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Opened database/sql pool: driver=%s, maxOpenConns=%d", cfg.Driver, cfg.MaxOpenConns))

	return &Factory{db: db, driver: cfg.Driver}, nil
}

// NewFactory wraps an already opened *sql.DB.
func NewFactory(db *sql.DB, driver string) *Factory {
	return &Factory{db: db, driver: driver}
}

// GetConnection - reserve a dedicated connection of the pool.
func (f *Factory) GetConnection(ctx context.Context) (dbx.Connection, error) {
	if f.db == nil {
		return nil, errorx.NewDatabaseError("database not initialized")
	}

	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Error acquiring connection from pool")
	}

	return &Conn{conn: conn}, nil
}

// DB - the underlying *sql.DB.
func (f *Factory) DB() *sql.DB {
	return f.db
}

// Driver - the database/sql driver name.
func (f *Factory) Driver() string {
	return f.driver
}

// Close closes the pool.
func (f *Factory) Close() error {
	if f.db != nil {
		return f.db.Close()
	}

	return nil
}
