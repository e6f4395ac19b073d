package controllino

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Reply is one decoded frame sent by the device. Command is always set,
// Job is nil for frames that are not bound to a job.
type Reply struct {
	Command string
	Job     *JobID
	raw     []byte
	fields  map[string]json.RawMessage
}

// DecodeReply decodes one frame (without delimiter). Frames that are not a
// JSON object return a *DecodeError, objects without a string command
// field return an error wrapping ErrMissingCommand.
func DecodeReply(frame []byte) (Reply, error) {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(frame, &fields); err != nil {
		return Reply{}, &DecodeError{Frame: frame, Err: err}
	}

	r := Reply{
		raw:    bytes.TrimSpace(frame),
		fields: fields,
	}

	c, ok := fields["command"]
	if !ok {
		return Reply{}, errors.Wrapf(ErrMissingCommand, "%s", frame)
	}

	if err := json.Unmarshal(c, &r.Command); err != nil {
		return Reply{}, errors.Wrapf(ErrMissingCommand, "command is not a string: %s", frame)
	}

	if j, ok := fields["job"]; ok && string(j) != "null" {
		var job JobID
		if err := json.Unmarshal(j, &job); err != nil {
			return Reply{}, errors.Wrapf(err, "invalid job field: %s", frame)
		}
		r.Job = &job
	}

	return r, nil
}

// NewReply builds a reply from field values, mostly useful in tests and
// simulators
func NewReply(fields map[string]interface{}) (Reply, error) {
	d, err := json.Marshal(fields)
	if err != nil {
		return Reply{}, err
	}
	return DecodeReply(d)
}

func (r Reply) String() string {
	return string(r.raw)
}

// Has reports whether the reply contains key
func (r Reply) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Field decodes the value of key into v
func (r Reply) Field(key string, v interface{}) error {
	raw, ok := r.fields[key]
	if !ok {
		return fmt.Errorf("reply %v has no %q field", r.Command, key)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "reply %v: field %q", r.Command, key)
	}

	return nil
}

// Float returns the numeric value of key
func (r Reply) Float(key string) (float64, error) {
	var v float64
	err := r.Field(key, &v)
	return v, err
}

// Level returns the value of key as a number. Booleans read as 1 and 0.
func (r Reply) Level(key string) (float64, error) {
	var v interface{}
	if err := r.Field(key, &v); err != nil {
		return 0, err
	}

	switch l := v.(type) {
	case float64:
		return l, nil
	case bool:
		if l {
			return 1, nil
		}
		return 0, nil
	}

	return 0, errors.Errorf("reply %v: field %q is not a level: %v", r.Command, key, v)
}

// Text returns the string value of key
func (r Reply) Text(key string) (string, error) {
	var v string
	err := r.Field(key, &v)
	return v, err
}

// Bool returns the boolean value of key
func (r Reply) Bool(key string) (bool, error) {
	var v bool
	err := r.Field(key, &v)
	return v, err
}

// Values returns all fields decoded into generic Go values
func (r Reply) Values() (map[string]interface{}, error) {
	ret := make(map[string]interface{}, len(r.fields))
	for k, raw := range r.fields {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		ret[k] = v
	}
	return ret, nil
}
