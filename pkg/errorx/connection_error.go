package errorx

import (
	"errors"
	"fmt"
)

// Kind - closed set of failures surfaced by the connection manager and the data source resolver.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that are not a *ConnectionError.
	KindUnknown Kind = iota
	// ProtocolViolation - operation invoked in an illegal state (double open, commit without binding...).
	ProtocolViolation
	// AcquisitionFailure - the connection factory could not produce a connection.
	AcquisitionFailure
	// TransactionSetupFailure - a connection was borrowed but could not enter transactional mode.
	TransactionSetupFailure
	// ResolutionError - a named data source lookup failed.
	ResolutionError
	// ConfigurationError - the data source configuration is missing or unusable.
	ConfigurationError
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	ProtocolViolation:       "protocol violation",
	AcquisitionFailure:      "acquisition failure",
	TransactionSetupFailure: "transaction setup failure",
	ResolutionError:         "resolution error",
	ConfigurationError:      "configuration error",
}

// Sentinels to be used with errors.Is, they match any *ConnectionError of the same Kind.
var (
	ErrProtocolViolation       = &ConnectionError{kind: ProtocolViolation, message: kindNames[ProtocolViolation]}
	ErrAcquisitionFailure      = &ConnectionError{kind: AcquisitionFailure, message: kindNames[AcquisitionFailure]}
	ErrTransactionSetupFailure = &ConnectionError{kind: TransactionSetupFailure, message: kindNames[TransactionSetupFailure]}
	ErrResolution              = &ConnectionError{kind: ResolutionError, message: kindNames[ResolutionError]}
	ErrConfiguration           = &ConnectionError{kind: ConfigurationError, message: kindNames[ConfigurationError]}
)

// String - human readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// ConnectionError - error returned by the connection manager and the data source resolver.
type ConnectionError struct {
	kind    Kind
	message string
	err     error
}

// NewConnectionError - ConnectionError constructor.
func NewConnectionError(kind Kind, msg string, args ...any) *ConnectionError {
	return &ConnectionError{kind: kind, message: fmt.Sprintf(msg, args...)}
}

// NewConnectionErrorWrapper - ConnectionError constructor for wrapper of another error.
func NewConnectionErrorWrapper(err error, kind Kind, msg string, args ...any) *ConnectionError {
	return &ConnectionError{kind: kind, message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ce *ConnectionError) Error() string {
	if ce.err != nil {
		return fmt.Sprintf("%s: %s: %v", ce.kind, ce.message, ce.err)
	}

	return fmt.Sprintf("%s: %s", ce.kind, ce.message)
}

// Kind - the failure kind.
func (ce *ConnectionError) Kind() Kind {
	return ce.kind
}

// Unwrap - the low level cause, if any.
func (ce *ConnectionError) Unwrap() error {
	return ce.err
}

// Is - two connection errors are equivalent when they share the same Kind.
func (ce *ConnectionError) Is(target error) bool {
	var other *ConnectionError
	if !errors.As(target, &other) {
		return false
	}

	return other.kind == ce.kind
}

// KindOf returns the Kind of the first *ConnectionError in the err chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return ce.kind
	}

	return KindUnknown
}
