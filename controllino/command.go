package controllino

import (
	"log"

	"github.com/pkg/errors"
	"github.com/simpleiot/controllino/frame"
)

// Reply naming: request X is answered with RX_X on success and ERR_X on
// failure. ERR_COMMAND_INVALID rejects any request. Frames without a job
// are either general errors (ERROR...) or debug output (DEBUG).
const (
	prefixRx       = "RX_"
	prefixErr      = "ERR_"
	replyInvalid   = "ERR_COMMAND_INVALID"
	prefixErrorMsg = "ERROR"
	replyDebug     = "DEBUG"
)

type replyClass int

const (
	replyOther replyClass = iota
	replySuccess
	replyFailure
)

// kind is the reply dispatch table for one request name
type kind struct {
	name    string
	replies map[string]replyClass
}

func newKind(name string) *kind {
	return &kind{
		name: name,
		replies: map[string]replyClass{
			prefixRx + name:  replySuccess,
			prefixErr + name: replyFailure,
			replyInvalid:     replyFailure,
		},
	}
}

func (k *kind) classify(r Reply) replyClass {
	return k.replies[r.Command]
}

// request names
var (
	kindReady         = newKind("READY")
	kindGetInput      = newKind("GET_INPUT")
	kindSetOutput     = newKind("SET_OUTPUT")
	kindSetPinMode    = newKind("SET_PIN_MODE")
	kindGetPinMode    = newKind("GET_PIN_MODE")
	kindLoadPinModes  = newKind("LOAD_PIN_MODES")
	kindSavePinModes  = newKind("SAVE_PIN_MODES")
	kindResetPinModes = newKind("RESET_PIN_MODES")
	kindTriggerPulse  = newKind("TRIGGER_PULSE")
	kindLogSignal     = newKind("LOG_SIGNAL")
	kindEndLogSignal  = newKind("END_LOG_SIGNAL")
)

// Command is a request to the device. The set of commands is closed; use
// the New* constructors. A command is submitted once, to one Session.
type Command interface {
	// Name is the request name on the wire, for example GET_INPUT
	Name() string
	// Job returns the job id, ok is false until the command is submitted
	Job() (id JobID, ok bool)
	// Encode returns the wire form of the request including delimiter
	Encode() ([]byte, error)
	// Update feeds a reply for this command's job. done is true once the
	// command expects no further replies. A reply that cannot be
	// interpreted fails the command's future; it is not returned as err.
	Update(r Reply) (done bool, err error)

	base() *cmdBase
}

type cmdBase struct {
	kind   *kind
	fields []frame.Field
	job    JobID
	hasJob bool
}

func (c *cmdBase) base() *cmdBase {
	return c
}

func (c *cmdBase) Name() string {
	return c.kind.name
}

func (c *cmdBase) Job() (JobID, bool) {
	return c.job, c.hasJob
}

func (c *cmdBase) Encode() ([]byte, error) {
	if !c.hasJob {
		return nil, errors.Errorf("%v: no job id assigned", c.kind.name)
	}

	fields := make([]frame.Field, 0, len(c.fields)+2)
	fields = append(fields, frame.Field{Key: "command", Value: c.kind.name})
	fields = append(fields, c.fields...)
	fields = append(fields, frame.Field{Key: "job", Value: c.job})

	return frame.Encode(fields...)
}

func (c *cmdBase) failed(r Reply) error {
	return &ProtocolError{Kind: ErrProtocol, Reply: r}
}

// invalid logs a reply whose fields could not be decoded
func (c *cmdBase) invalid(r Reply, err error) {
	log.Printf("Controllino: %v job %v: invalid reply %v: %v\n", c.kind.name, c.job, r, err)
}

func (c *cmdBase) ignore(r Reply) {
	log.Printf("Controllino: %v job %v: ignoring reply %v\n", c.kind.name, c.job, r)
}

// result is a command answered by a single reply. On success the future
// resolves with the reply's field (or the zero value if field is empty).
// decode, if set, replaces the default JSON decoding of field.
type result[T any] struct {
	cmdBase
	field  string
	decode func(r Reply, key string) (T, error)
	future *Future[T]
}

func newResult[T any](k *kind, field string, fields ...frame.Field) result[T] {
	return result[T]{
		cmdBase: cmdBase{kind: k, fields: fields},
		field:   field,
		future:  NewFuture[T](),
	}
}

// Future returns the future that resolves when the device answers
func (c *result[T]) Future() *Future[T] {
	return c.future
}

func (c *result[T]) Update(r Reply) (bool, error) {
	switch c.kind.classify(r) {
	case replyFailure:
		c.future.SetError(c.failed(r))
		return true, nil

	case replySuccess:
		v, err := c.value(r)
		if err != nil {
			c.invalid(r, err)
			c.future.SetError(err)
			return true, nil
		}
		c.future.SetResult(v)
		return true, nil
	}

	c.ignore(r)
	return false, nil
}

func (c *result[T]) value(r Reply) (T, error) {
	var v T
	switch {
	case c.field == "":
		return v, nil
	case c.decode != nil:
		return c.decode(r, c.field)
	}
	err := r.Field(c.field, &v)
	return v, err
}
