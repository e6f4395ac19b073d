// Package frame implements the line framing used by the Controllino
// protocol.
//
// Frame format is:
//   - a compact JSON object (UTF-8)
//   - delimiter: CR LF (2 bytes)
//
// The same format is used in both directions.
package frame

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Delim terminates every frame on the wire
var Delim = []byte("\r\n")

// Field is one key/value pair of an encoded object. Fields are encoded in
// the order given so the wire output is stable.
type Field struct {
	Key   string
	Value interface{}
}

// Encode writes fields as a compact JSON object and appends the delimiter.
func Encode(fields ...Field) ([]byte, error) {
	var ret bytes.Buffer
	ret.WriteByte('{')

	for i, f := range fields {
		if i != 0 {
			ret.WriteByte(',')
		}

		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "frame: error encoding key %q", f.Key)
		}
		ret.Write(k)
		ret.WriteByte(':')

		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "frame: error encoding value of %q", f.Key)
		}
		ret.Write(v)
	}

	ret.WriteByte('}')
	ret.Write(Delim)

	return ret.Bytes(), nil
}

// Splitter accumulates a byte stream and cuts it into frames. Bytes that
// are not yet terminated by a delimiter are held until a later Feed.
type Splitter struct {
	buf []byte
}

// Feed appends data to the buffer and returns every complete frame with
// the delimiter stripped. Returned slices do not alias the internal buffer.
func (s *Splitter) Feed(data []byte) [][]byte {
	s.buf = append(s.buf, data...)

	var ret [][]byte

	for {
		i := bytes.Index(s.buf, Delim)
		if i < 0 {
			break
		}

		f := make([]byte, i)
		copy(f, s.buf[:i])
		ret = append(ret, f)

		s.buf = s.buf[i+len(Delim):]
	}

	// release the consumed prefix of the backing array
	if len(s.buf) == 0 {
		s.buf = nil
	}

	return ret
}

// Buffered returns the number of bytes waiting for a delimiter
func (s *Splitter) Buffered() int {
	return len(s.buf)
}

// Reset drops any partial frame
func (s *Splitter) Reset() {
	s.buf = nil
}

// TrimGarbage drops any bytes before the first '{' of f, as left behind by
// line noise or a partial frame after the port was opened. n is the number
// of bytes dropped; f is returned as is if it holds no '{'.
func TrimGarbage(f []byte) (trimmed []byte, n int) {
	i := bytes.IndexByte(f, '{')
	if i <= 0 {
		return f, 0
	}
	return f[i:], i
}
