package dbx

import (
	"context"
)

// Connection is a live connection borrowed from a ConnectionFactory.
//
// A Connection is exclusively owned by the unit of work that borrowed it and must be released exactly once
// through Close. Statements run in auto-commit mode until SetAutoCommit(ctx, false) is called, after which
// every Exec/Query/QueryRow joins the open transaction until Commit or Rollback.
//
// Implementations are not safe for concurrent use.
type Connection interface {
	// SetAutoCommit switches between auto-commit mode and an explicit transaction.
	// Disabling auto-commit opens a transaction, enabling it commits the open one.
	SetAutoCommit(ctx context.Context, autoCommit bool) error
	// AutoCommit reports whether the connection is in auto-commit mode.
	AutoCommit() bool
	// Commit commits the open transaction, it fails when the connection is in auto-commit mode.
	Commit(ctx context.Context) error
	// Rollback discards the open transaction, it fails when the connection is in auto-commit mode.
	Rollback(ctx context.Context) error
	// Exec runs a statement with positional arguments and returns the number of rows affected.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// Query runs a statement with positional arguments, the caller must Close the returned Rows.
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	// QueryRow runs a statement expected to return at most one row.
	QueryRow(ctx context.Context, query string, args ...any) RowScan
	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error
	// Close rolls back any open transaction and returns the connection to its factory.
	// Calling Close more than once is a no-op.
	Close(ctx context.Context) error
	// GetConn exposes the underlying driver connection.
	GetConn() any
}

// ConnectionFactory produces live connections on demand. Pooling is up to the implementation.
type ConnectionFactory interface {
	GetConnection(ctx context.Context) (Connection, error)
}

// ConnectionFactoryFunc adapts a function to the ConnectionFactory interface.
type ConnectionFactoryFunc func(ctx context.Context) (Connection, error)

// GetConnection calls f(ctx).
func (f ConnectionFactoryFunc) GetConnection(ctx context.Context) (Connection, error) {
	return f(ctx)
}

// RowScan represents a row that can be mapped to dest fields trough Scan function.
type RowScan interface {
	Scan(dest ...any) error
}

// Rows is a forward only cursor over a query result.
type Rows interface {
	RowScan
	Next() bool
	Err() error
	Close() error
}
