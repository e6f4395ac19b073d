package controllino

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors reported by the client. Errors carrying a reply from the device
// are *ProtocolError and match these sentinels with errors.Is.
var (
	// ErrPoolExhausted is returned by Submit if all job ids are in use
	ErrPoolExhausted = errors.New("maximum number of jobs exceeded")
	// ErrMissingCommand is returned for a reply without a command field
	ErrMissingCommand = errors.New("reply has no command field")
	// ErrProtocol matches every error reply from the device
	ErrProtocol = errors.New("controllino error")
	// ErrUnsolicited is a general error sent by the device without a job
	ErrUnsolicited = errors.New("received error msg")
	// ErrOutOfTurn is a reply without a job that is not an error
	ErrOutOfTurn = errors.New("received out-of-turn reply that is not an error")
	// ErrUnknownJob is a reply whose job id has no pending command
	ErrUnknownJob = errors.New("received reply with invalid job id")
	// ErrNotDone is returned by Future.Result before the future resolves
	ErrNotDone = errors.New("future not resolved")
	// ErrStopped is returned by Submit and Open once the session stopped
	ErrStopped = errors.New("session stopped")
)

// ProtocolError is a device reply that reports a failure, or a reply
// that does not fit the protocol. Kind is one of ErrProtocol,
// ErrUnsolicited, ErrOutOfTurn or ErrUnknownJob.
type ProtocolError struct {
	Kind  error
	Reply Reply
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("controllino: %v: %v", e.Kind, e.Reply)
}

// Unwrap returns Kind
func (e *ProtocolError) Unwrap() error {
	return e.Kind
}

// Is reports true for ErrProtocol, whatever the kind
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// DecodeError is returned for a frame that is not a JSON object
type DecodeError struct {
	Frame []byte
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("controllino: error decoding frame %q: %v", e.Frame, e.Err)
}

// Unwrap returns the JSON error
func (e *DecodeError) Unwrap() error {
	return e.Err
}
