// Package txscope binds one borrowed database connection to one unit of work.
//
// The unit of work is identified by a Scope carried in a context.Context (see NewContext). A Manager
// borrows connections from an injected dbx.ConnectionFactory and enforces the protocol
//
//	OpenConnection | BeginTransaction  ->  Connection ...  ->  CommitTransaction | RollbackTransaction | CloseConnection
//
// Ending operations always release the connection and clear the scope, so a context reused for a later
// unit of work never sees a stale binding. Commit, rollback and release failures are logged, never returned.
package txscope

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/errorx"
	"github.com/marcodd23/go-txscope/pkg/logx"
)

// Operation names used in logs and metrics.
const (
	opCommit   = "commit"
	opRollback = "rollback"
	opClose    = "close"
	opBegin    = "begin"
	opEndScope = "end_scope"
)

var errNoFactory = errors.New("no connection factory configured")

// Manager - scoped transactional connection manager.
//
// The factory is installed once by NewManager and never changed afterwards, a Manager can therefore be
// shared by every request of the process. All per unit of work state lives in the Scope of the ctx.
type Manager struct {
	factory dbx.ConnectionFactory
	metrics *Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records the connection lifecycle on m.
func WithMetrics(m *Metrics) Option {
	return func(manager *Manager) {
		manager.metrics = m
	}
}

// NewManager - create a Manager borrowing from factory.
// A nil factory is accepted: every borrow then fails with an acquisition failure.
func NewManager(factory dbx.ConnectionFactory, opts ...Option) *Manager {
	m := &Manager{factory: factory}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Metrics returns the metrics installed with WithMetrics, possibly nil.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// OpenConnection borrows a connection in auto-commit mode and binds it to the scope of ctx.
//
// Fails with errorx.ProtocolViolation, without borrowing, when a connection is already bound.
// A failed borrow records the not-borrowed state and returns errorx.AcquisitionFailure.
func (m *Manager) OpenConnection(ctx context.Context) error {
	scope, err := m.unboundScope(ctx, "open connection")
	if err != nil {
		return err
	}

	conn, err := m.borrow(ctx)
	if err != nil {
		scope.set(notBorrowed{})
		return errorx.NewConnectionErrorWrapper(err, errorx.AcquisitionFailure, "error borrowing connection for scope %s", scope.ID())
	}

	m.metrics.recordBorrow(false)
	scope.set(borrowed{conn: conn})
	logx.GetLogger().LogDebug(ctx, "connection opened")

	return nil
}

// BeginTransaction borrows a connection, disables auto-commit on it and binds it to the scope of ctx.
//
// Fails with errorx.ProtocolViolation, without borrowing, when a connection is already bound.
// A failed borrow returns errorx.AcquisitionFailure and records nothing. When auto-commit cannot be
// disabled the connection is released at once, the scope is marked closed and
// errorx.TransactionSetupFailure is returned.
func (m *Manager) BeginTransaction(ctx context.Context) error {
	scope, err := m.unboundScope(ctx, "begin transaction")
	if err != nil {
		return err
	}

	conn, err := m.borrow(ctx)
	if err != nil {
		return errorx.NewConnectionErrorWrapper(err, errorx.AcquisitionFailure, "error borrowing connection for scope %s", scope.ID())
	}

	m.metrics.recordBorrow(true)

	if err := conn.SetAutoCommit(ctx, false); err != nil {
		m.metrics.recordSetupFailure()
		m.release(ctx, conn, opBegin)
		scope.set(closed{})

		return errorx.NewConnectionErrorWrapper(err, errorx.TransactionSetupFailure, "error starting transaction for scope %s", scope.ID())
	}

	scope.set(borrowed{conn: conn, transactional: true})
	logx.GetLogger().LogDebug(ctx, "transaction started")

	return nil
}

// CommitTransaction commits the bound connection, releases it and clears the scope.
//
// A commit failure is logged and cleanup still happens. Without a bound connection it fails with
// errorx.ProtocolViolation and the scope is cleared.
func (m *Manager) CommitTransaction(ctx context.Context) error {
	scope, b, err := m.boundScope(ctx, "commit transaction", true)
	if err != nil {
		return err
	}

	if b.transactional {
		if err := b.conn.Commit(ctx); err != nil {
			m.metrics.recordReleaseError(opCommit)
			logx.GetLogger().LogError(ctx, "error committing transaction", err)
		}
	} else {
		logx.GetLogger().LogWarning(ctx, "commit requested on an auto-commit connection, nothing to commit")
	}

	m.release(ctx, b.conn, opCommit)
	scope.clear()

	return nil
}

// RollbackTransaction rolls back the bound connection, releases it and clears the scope.
//
// A rollback failure is logged and cleanup still happens. Without a bound connection it fails with
// errorx.ProtocolViolation and the scope is cleared.
func (m *Manager) RollbackTransaction(ctx context.Context) error {
	scope, b, err := m.boundScope(ctx, "rollback transaction", true)
	if err != nil {
		return err
	}

	if b.transactional {
		if err := b.conn.Rollback(ctx); err != nil {
			m.metrics.recordReleaseError(opRollback)
			logx.GetLogger().LogWarning(ctx, "error rolling back transaction", err)
		}
	} else {
		logx.GetLogger().LogWarning(ctx, "rollback requested on an auto-commit connection, nothing to roll back")
	}

	m.release(ctx, b.conn, opRollback)
	scope.clear()

	return nil
}

// CloseConnection releases the bound connection and clears the scope.
//
// After a failed borrow (not-borrowed state) it only clears the scope, so a defensive close is safe.
// With nothing recorded, or after a failed transaction setup, it fails with errorx.ProtocolViolation;
// the scope is cleared in every case.
func (m *Manager) CloseConnection(ctx context.Context) error {
	scope, err := m.scope(ctx, "close connection")
	if err != nil {
		return err
	}

	defer scope.clear()

	switch st := scope.current.(type) {
	case notBorrowed:
		return nil
	case borrowed:
		if st.transactional {
			logx.GetLogger().LogDebug(ctx, "closing connection with an open transaction, pending changes are discarded")
		}

		m.release(ctx, st.conn, opClose)

		return nil
	default:
		return errorx.NewConnectionError(errorx.ProtocolViolation,
			"close connection: no connection bound to scope %s (state %s)", scope.ID(), scope.State())
	}
}

// Connection returns the connection bound to the scope of ctx.
func (m *Manager) Connection(ctx context.Context) (dbx.Connection, error) {
	_, b, err := m.boundScope(ctx, "get connection", false)
	if err != nil {
		return nil, err
	}

	return b.conn, nil
}

// EndScope is the host level safety net run when a unit of work finishes.
//
// A connection still bound is rolled back when transactional, released, and a warning is logged.
// Any other recorded state is cleared. A ctx without scope is ignored.
func (m *Manager) EndScope(ctx context.Context) {
	scope, ok := FromContext(ctx)
	if !ok {
		return
	}

	defer scope.clear()

	b, ok := scope.bound()
	if !ok {
		return
	}

	logx.GetLogger().LogWarning(ctx, fmt.Sprintf("scope %s ended with a bound connection, releasing it", scope.ID()))

	if b.transactional {
		if err := b.conn.Rollback(ctx); err != nil {
			m.metrics.recordReleaseError(opEndScope)
			logx.GetLogger().LogWarning(ctx, "error rolling back abandoned transaction", err)
		}
	}

	m.release(ctx, b.conn, opEndScope)
}

func (m *Manager) borrow(ctx context.Context) (dbx.Connection, error) {
	if m.factory == nil {
		m.metrics.recordAcquisitionFailure()
		return nil, errNoFactory
	}

	conn, err := m.factory.GetConnection(ctx)
	if err == nil && conn == nil {
		err = errors.New("connection factory returned no connection")
	}

	if err != nil {
		m.metrics.recordAcquisitionFailure()
		logx.GetLogger().LogError(ctx, "error borrowing connection", err)

		return nil, err
	}

	return conn, nil
}

// release returns conn to its factory, errors are logged and swallowed.
func (m *Manager) release(ctx context.Context, conn dbx.Connection, operation string) {
	m.metrics.recordRelease(operation)

	if err := conn.Close(ctx); err != nil {
		m.metrics.recordReleaseError(operation)
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error releasing connection after %s", operation), err)
	}
}

func (m *Manager) scope(ctx context.Context, operation string) (*Scope, error) {
	scope, ok := FromContext(ctx)
	if !ok {
		return nil, errorx.NewConnectionError(errorx.ProtocolViolation, "%s: context carries no scope", operation)
	}

	return scope, nil
}

func (m *Manager) unboundScope(ctx context.Context, operation string) (*Scope, error) {
	scope, err := m.scope(ctx, operation)
	if err != nil {
		return nil, err
	}

	if _, ok := scope.bound(); ok {
		return nil, errorx.NewConnectionError(errorx.ProtocolViolation, "%s: connection already bound to scope %s", operation, scope.ID())
	}

	return scope, nil
}

// boundScope returns the borrowed binding of ctx.
// Ending operations also clear a leftover not-borrowed or closed marker, so the context is reusable
// by the next unit of work even when the caller ends it out of order. Connection never clears.
func (m *Manager) boundScope(ctx context.Context, operation string, ending bool) (*Scope, borrowed, error) {
	scope, err := m.scope(ctx, operation)
	if err != nil {
		return nil, borrowed{}, err
	}

	b, ok := scope.bound()
	if !ok {
		state := scope.State()
		if ending {
			// a failed borrow or an earlier close must not leave its marker behind for the next unit of work
			scope.clear()
		}

		return nil, borrowed{}, errorx.NewConnectionError(errorx.ProtocolViolation,
			"%s: no connection bound to scope %s (state %s)", operation, scope.ID(), state)
	}

	return scope, b, nil
}
