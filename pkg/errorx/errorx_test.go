package errorx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/marcodd23/go-txscope/pkg/errorx"
	"github.com/stretchr/testify/assert"
)

func TestConnectionErrorMatchesSentinelByKind(t *testing.T) {
	err := errorx.NewConnectionError(errorx.ProtocolViolation, "connection already bound to scope %s", "abc")

	assert.ErrorIs(t, err, errorx.ErrProtocolViolation)
	assert.NotErrorIs(t, err, errorx.ErrAcquisitionFailure)
	assert.Equal(t, errorx.ProtocolViolation, errorx.KindOf(err))
	assert.Equal(t, "protocol violation: connection already bound to scope abc", err.Error())
}

func TestConnectionErrorWrapperKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := errorx.NewConnectionErrorWrapper(cause, errorx.AcquisitionFailure, "error borrowing connection")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, errorx.ErrAcquisitionFailure)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOfWrappedError(t *testing.T) {
	inner := errorx.NewConnectionError(errorx.ResolutionError, "name not found")
	outer := fmt.Errorf("startup: %w", inner)

	assert.Equal(t, errorx.ResolutionError, errorx.KindOf(outer))
	assert.Equal(t, errorx.KindUnknown, errorx.KindOf(errors.New("plain")))
	assert.Equal(t, errorx.KindUnknown, errorx.KindOf(nil))
}

func TestDatabaseErrorUnwrap(t *testing.T) {
	cause := errors.New("syntax error")
	err := errorx.NewDatabaseErrorWrapper(cause, "Error executing query '%s'", "SELECT")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Error executing query 'SELECT': syntax error", err.Error())
	assert.Equal(t, "no rows", errorx.NewDatabaseError("no rows").Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "transaction setup failure", errorx.TransactionSetupFailure.String())
	assert.Equal(t, "kind(42)", errorx.Kind(42).String())
}
