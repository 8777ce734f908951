package pgxdb

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/errorx"
)

//###################################
//#     Postgres pooled connection  #
//###################################

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresConn - a *pgxpool.Conn borrowed from a PoolFactory.
// Implements dbx.Connection. While auto-commit is disabled statements run inside tx.
type PostgresConn struct {
	conn     *pgxpool.Conn
	tx       pgx.Tx
	released atomic.Bool
}

func newPostgresConn(conn *pgxpool.Conn) *PostgresConn {
	return &PostgresConn{conn: conn}
}

func (c *PostgresConn) target() querier {
	if c.tx != nil {
		return c.tx
	}

	return c.conn
}

func (c *PostgresConn) checkReleased() error {
	if c.released.Load() {
		return errorx.NewDatabaseError("connection already released to the pool")
	}

	return nil
}

// SetAutoCommit - false begins a transaction on the connection, true commits the open one.
func (c *PostgresConn) SetAutoCommit(ctx context.Context, autoCommit bool) error {
	if err := c.checkReleased(); err != nil {
		return err
	}

	if !autoCommit {
		if c.tx != nil {
			return nil
		}

		tx, err := c.conn.Begin(ctx)
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "error starting transaction")
		}

		c.tx = tx

		return nil
	}

	if c.tx == nil {
		return nil
	}

	return c.Commit(ctx)
}

// AutoCommit - true when no transaction is open.
func (c *PostgresConn) AutoCommit() bool {
	return c.tx == nil
}

// Commit - commits the open transaction.
func (c *PostgresConn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("commit requested while auto-commit is enabled")
	}

	tx := c.tx
	c.tx = nil

	if err := tx.Commit(ctx); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	return nil
}

// Rollback - rolls back the open transaction.
func (c *PostgresConn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("rollback requested while auto-commit is enabled")
	}

	tx := c.tx
	c.tx = nil

	if err := tx.Rollback(ctx); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error Rolling Back transaction")
	}

	return nil
}

// Exec - Executes a command query and returns the number of rows affected.
func (c *PostgresConn) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	if err := c.checkReleased(); err != nil {
		return 0, err
	}

	result, err := c.target().Exec(ctx, execQuery, args...)
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}

// Query - executes a query, the returned rows must be closed by the caller.
func (c *PostgresConn) Query(ctx context.Context, query string, args ...any) (dbx.Rows, error) {
	if err := c.checkReleased(); err != nil {
		return nil, err
	}

	rows, err := c.target().Query(ctx, query, args...)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return &pgxRows{Rows: rows}, nil
}

// QueryRow - executes a query returning at most one row, errors are deferred to Scan.
func (c *PostgresConn) QueryRow(ctx context.Context, query string, args ...any) dbx.RowScan {
	if err := c.checkReleased(); err != nil {
		return errRow{err: err}
	}

	return c.target().QueryRow(ctx, query, args...)
}

// Ping - checks the server round trip.
func (c *PostgresConn) Ping(ctx context.Context) error {
	if err := c.checkReleased(); err != nil {
		return err
	}

	return c.conn.Ping(ctx)
}

// Close - rolls back an open transaction and releases the connection to the pool.
func (c *PostgresConn) Close(ctx context.Context) error {
	if !c.released.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if c.tx != nil {
		err = c.Rollback(ctx)
	}

	c.conn.Release()

	return err
}

// GetConn - the underlying *pgxpool.Conn.
func (c *PostgresConn) GetConn() any {
	return c.conn
}

type pgxRows struct {
	pgx.Rows
}

// Close - pgx reports iteration errors through Err after Close.
func (r *pgxRows) Close() error {
	r.Rows.Close()
	return r.Rows.Err()
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
