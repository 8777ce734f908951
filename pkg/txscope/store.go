package txscope

import (
	"context"

	"github.com/google/uuid"

	"github.com/marcodd23/go-txscope/pkg/logx"
)

// Scope - the binding slot of one unit of work.
//
// A Scope holds at most one borrowed connection together with its state. It is reachable only through the
// context.Context returned by NewContext, so two requests never see each other's binding.
// A Scope is driven sequentially by its unit of work and is not safe for concurrent use.
type Scope struct {
	id      string
	current state
}

type scopeKey struct{}

// NewContext returns a copy of ctx carrying a fresh empty Scope.
// The scope id is also added to the log fields of ctx.
func NewContext(ctx context.Context) context.Context {
	scope := &Scope{id: uuid.NewString()}
	ctx = logx.ContextWithField(ctx, "scope", scope.id)

	return context.WithValue(ctx, scopeKey{}, scope)
}

// FromContext returns the Scope carried by ctx.
func FromContext(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}

	scope, ok := ctx.Value(scopeKey{}).(*Scope)

	return scope, ok && scope != nil
}

// ID - unique scope identifier, used in logs.
func (s *Scope) ID() string {
	return s.id
}

// State reports the recorded state, StateNone when nothing is recorded.
func (s *Scope) State() TransactionState {
	if s.current == nil {
		return StateNone
	}

	return s.current.tag()
}

// bound returns the borrowed binding, if any.
func (s *Scope) bound() (borrowed, bool) {
	b, ok := s.current.(borrowed)
	return b, ok
}

func (s *Scope) set(st state) {
	s.current = st
}

func (s *Scope) clear() {
	s.current = nil
}
