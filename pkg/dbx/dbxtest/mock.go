// Package dbxtest provides in-memory dbx.Connection and dbx.ConnectionFactory mocks that record
// how often each lifecycle call happened, for tests of code built on the dbx contracts.
package dbxtest

import (
	"context"
	"errors"
	"sync"

	"github.com/marcodd23/go-txscope/pkg/dbx"
)

// ErrNotSupported is returned by MockConnection for statement execution without a configured func.
var ErrNotSupported = errors.New("dbxtest: operation not configured")

// MockConnection - mock a dbx.Connection.
// Each *Err field makes the matching call fail, the *Calls counters record every invocation.
type MockConnection struct {
	mu sync.Mutex

	SetAutoCommitErr error
	CommitErr        error
	RollbackErr      error
	CloseErr         error
	PingErr          error

	ExecFunc     func(ctx context.Context, query string, args ...any) (int64, error)
	QueryFunc    func(ctx context.Context, query string, args ...any) (dbx.Rows, error)
	QueryRowFunc func(ctx context.Context, query string, args ...any) dbx.RowScan

	SetAutoCommitCalls int
	CommitCalls        int
	RollbackCalls      int
	CloseCalls         int
	ExecCalls          int

	autoCommit    bool
	autoCommitSet bool
}

// NewMockConnection - a connection in auto-commit mode where every lifecycle call succeeds.
func NewMockConnection() *MockConnection {
	return &MockConnection{autoCommit: true, autoCommitSet: true}
}

func (c *MockConnection) SetAutoCommit(_ context.Context, autoCommit bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SetAutoCommitCalls++
	if c.SetAutoCommitErr != nil {
		return c.SetAutoCommitErr
	}

	c.autoCommit = autoCommit
	c.autoCommitSet = true

	return nil
}

func (c *MockConnection) AutoCommit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.autoCommitSet || c.autoCommit
}

func (c *MockConnection) Commit(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CommitCalls++

	return c.CommitErr
}

func (c *MockConnection) Rollback(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.RollbackCalls++

	return c.RollbackErr
}

func (c *MockConnection) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	c.mu.Lock()
	c.ExecCalls++
	execFunc := c.ExecFunc
	c.mu.Unlock()

	if execFunc == nil {
		return 0, ErrNotSupported
	}

	return execFunc(ctx, query, args...)
}

func (c *MockConnection) Query(ctx context.Context, query string, args ...any) (dbx.Rows, error) {
	if c.QueryFunc == nil {
		return nil, ErrNotSupported
	}

	return c.QueryFunc(ctx, query, args...)
}

func (c *MockConnection) QueryRow(ctx context.Context, query string, args ...any) dbx.RowScan {
	if c.QueryRowFunc == nil {
		return &MockRows{ScanErr: ErrNotSupported}
	}

	return c.QueryRowFunc(ctx, query, args...)
}

func (c *MockConnection) Ping(_ context.Context) error {
	return c.PingErr
}

func (c *MockConnection) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CloseCalls++

	return c.CloseErr
}

func (c *MockConnection) GetConn() any {
	return c
}

// Counts returns commit, rollback and close invocations.
func (c *MockConnection) Counts() (commits, rollbacks, closes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.CommitCalls, c.RollbackCalls, c.CloseCalls
}

// MockFactory - mock a dbx.ConnectionFactory.
// Connections are served from Conns in order, then freshly created; Err makes every call fail.
type MockFactory struct {
	mu sync.Mutex

	Err   error
	Conns []*MockConnection
	Calls int

	served []*MockConnection
}

func (f *MockFactory) GetConnection(_ context.Context) (dbx.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}

	var conn *MockConnection
	if len(f.Conns) > 0 {
		conn, f.Conns = f.Conns[0], f.Conns[1:]
	} else {
		conn = NewMockConnection()
	}

	f.served = append(f.served, conn)

	return conn, nil
}

// Served returns the connections handed out so far.
func (f *MockFactory) Served() []*MockConnection {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*MockConnection(nil), f.served...)
}

// MockRows - mock dbx.Rows over in-memory values, each row is scanned positionally.
type MockRows struct {
	Values   [][]any
	ScanErr  error
	IterErr  error
	CloseErr error
	Closed   bool

	cursor int
}

func (r *MockRows) Next() bool {
	if r.cursor >= len(r.Values) {
		return false
	}

	r.cursor++

	return true
}

// Scan supports *string, *int, *int64, *bool and *any destinations.
func (r *MockRows) Scan(dest ...any) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}

	if r.cursor == 0 || r.cursor > len(r.Values) {
		return errors.New("dbxtest: Scan called without a current row")
	}

	row := r.Values[r.cursor-1]
	if len(dest) != len(row) {
		return errors.New("dbxtest: destination count mismatch")
	}

	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return err
		}
	}

	return nil
}

func (r *MockRows) Err() error {
	return r.IterErr
}

func (r *MockRows) Close() error {
	r.Closed = true
	return r.CloseErr
}

func assign(dest, value any) error {
	switch d := dest.(type) {
	case *string:
		v, ok := value.(string)
		if !ok {
			return errors.New("dbxtest: cannot convert value to string")
		}
		*d = v
	case *int:
		v, ok := value.(int)
		if !ok {
			return errors.New("dbxtest: cannot convert value to int")
		}
		*d = v
	case *int64:
		v, ok := value.(int64)
		if !ok {
			return errors.New("dbxtest: cannot convert value to int64")
		}
		*d = v
	case *bool:
		v, ok := value.(bool)
		if !ok {
			return errors.New("dbxtest: cannot convert value to bool")
		}
		*d = v
	case *any:
		*d = value
	default:
		return errors.New("dbxtest: unsupported destination type")
	}

	return nil
}
