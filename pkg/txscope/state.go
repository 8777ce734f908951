package txscope

import (
	"fmt"

	"github.com/marcodd23/go-txscope/pkg/dbx"
)

// TransactionState is the externally visible state of a Scope.
type TransactionState int

const (
	// StateNone - nothing recorded, the scope is fresh or was cleaned up.
	StateNone TransactionState = iota
	// StateNotBorrowed - a borrow attempt failed before a connection existed.
	StateNotBorrowed
	// StateBorrowed - a connection is bound to the scope.
	StateBorrowed
	// StateClosed - transaction setup failed and the connection was already released.
	StateClosed
)

func (s TransactionState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateNotBorrowed:
		return "not borrowed"
	case StateBorrowed:
		return "borrowed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// state is the binding recorded in a Scope, a nil state means no binding.
// Only borrowed carries a connection, so a borrowed state without one cannot be built.
type state interface {
	tag() TransactionState
}

type notBorrowed struct{}

type borrowed struct {
	conn          dbx.Connection
	transactional bool
}

type closed struct{}

func (notBorrowed) tag() TransactionState { return StateNotBorrowed }
func (borrowed) tag() TransactionState    { return StateBorrowed }
func (closed) tag() TransactionState      { return StateClosed }
