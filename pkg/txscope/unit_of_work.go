package txscope

import (
	"context"
	"errors"

	"github.com/marcodd23/go-txscope/pkg/dbx"
	"github.com/marcodd23/go-txscope/pkg/errorx"
	"github.com/marcodd23/go-txscope/pkg/logx"
)

// TaskFunc is a unit of work running on the connection bound to ctx.
type TaskFunc func(ctx context.Context, conn dbx.Connection) error

// RunInTransaction runs task inside a transaction bound to the scope of ctx.
//
// The transaction is committed when task returns nil and rolled back when it returns an error or panics,
// the panic is then propagated. A ctx without scope gets a fresh one for the duration of the call.
// As with CommitTransaction, a failing commit is logged and not returned.
//
// Example Usage:
//
//	err := manager.RunInTransaction(ctx, func(ctx context.Context, conn dbx.Connection) error {
//	    _, err := conn.Exec(ctx, "UPDATE profile SET name = $1 WHERE id = $2", name, id)
//	    return err
//	})
func (m *Manager) RunInTransaction(ctx context.Context, task TaskFunc) error {
	if _, ok := FromContext(ctx); !ok {
		ctx = NewContext(ctx)
	}

	if err := m.BeginTransaction(ctx); err != nil {
		return err
	}

	conn, err := m.Connection(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			logx.GetLogger().LogError(ctx, "unit of work panicked, rolling back")
			_ = m.RollbackTransaction(ctx)
			panic(r)
		}
	}()

	if err := task(ctx, conn); err != nil {
		if rbErr := m.RollbackTransaction(ctx); rbErr != nil {
			logx.GetLogger().LogWarning(ctx, "transaction already ended by the unit of work", rbErr)
		}

		return err
	}

	return m.CommitTransaction(ctx)
}

// WithConnection runs task on an auto-commit connection bound to the scope of ctx and always closes it.
// It is the read path counterpart of RunInTransaction. When a connection is already bound to the scope
// it fails with errorx.ProtocolViolation and leaves that binding untouched.
func (m *Manager) WithConnection(ctx context.Context, task TaskFunc) (err error) {
	if _, ok := FromContext(ctx); !ok {
		ctx = NewContext(ctx)
	}

	if err := m.OpenConnection(ctx); err != nil {
		if errors.Is(err, errorx.ErrAcquisitionFailure) {
			_ = m.CloseConnection(ctx)
		}
		return err
	}

	conn, err := m.Connection(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := m.CloseConnection(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return task(ctx, conn)
}
