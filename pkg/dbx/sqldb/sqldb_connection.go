package sqldb

import (
	"context"
	"database/sql"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/errorx"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn - a *sql.Conn reserved from a Factory. Implements dbx.Connection.
type Conn struct {
	conn     *sql.Conn
	tx       *sql.Tx
	released bool
}

func (c *Conn) target() querier {
	if c.tx != nil {
		return c.tx
	}

	return c.conn
}

// SetAutoCommit - false begins a transaction on the connection, true commits the open one.
func (c *Conn) SetAutoCommit(ctx context.Context, autoCommit bool) error {
	if c.released {
		return errorx.NewDatabaseError("connection already released to the pool")
	}

	if !autoCommit {
		if c.tx != nil {
			return nil
		}

		tx, err := c.conn.BeginTx(ctx, nil)
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
func (c *Conn) AutoCommit() bool {
	return c.tx == nil
}

// Commit - commits the open transaction.
func (c *Conn) Commit(_ context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("commit requested while auto-commit is enabled")
	}

	tx := c.tx
	c.tx = nil

	if err := tx.Commit(); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	return nil
}

// Rollback - rolls back the open transaction.
func (c *Conn) Rollback(_ context.Context) error {
	if c.tx == nil {
		return errorx.NewDatabaseError("rollback requested while auto-commit is enabled")
	}

	tx := c.tx
	c.tx = nil

	if err := tx.Rollback(); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error Rolling Back transaction")
	}

	return nil
}

// Exec - Executes a command query and returns the number of rows affected.
func (c *Conn) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	if c.released {
		return 0, errorx.NewDatabaseError("connection already released to the pool")
	}

	result, err := c.target().ExecContext(ctx, execQuery, args...)
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error reading rows affected by '%s'", execQuery)
	}

	return affected, nil
}

// Query - executes a query, the returned rows must be closed by the caller.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (dbx.Rows, error) {
	if c.released {
		return nil, errorx.NewDatabaseError("connection already released to the pool")
	}

	rows, err := c.target().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return rows, nil
}

// QueryRow - executes a query returning at most one row, errors are deferred to Scan.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) dbx.RowScan {
	if c.released {
		return errRow{err: errorx.NewDatabaseError("connection already released to the pool")}
	}

	return c.target().QueryRowContext(ctx, query, args...)
}

// Ping - checks the connection.
func (c *Conn) Ping(ctx context.Context) error {
	if c.released {
		return errorx.NewDatabaseError("connection already released to the pool")
	}

	return c.conn.PingContext(ctx)
}

// Close - rolls back an open transaction and returns the connection to the pool.
// The transaction must end first, database/sql keeps the connection locked while a Tx is alive.
func (c *Conn) Close(ctx context.Context) error {
	if c.released {
		return nil
	}

	c.released = true

	var rbErr error
	if c.tx != nil {
		rbErr = c.Rollback(ctx)
	}

	if err := c.conn.Close(); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error releasing connection")
	}

	return rbErr
}

// GetConn - the underlying *sql.Conn.
func (c *Conn) GetConn() any {
	return c.conn
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
