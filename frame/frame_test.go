package frame

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode(t *testing.T) {
	d, err := Encode(
		Field{"command", "SET_OUTPUT"},
		Field{"pin", "DAC0"},
		Field{"level", 12},
		Field{"job", 1},
	)
	if err != nil {
		t.Fatal("Error encoding: ", err)
	}

	exp := `{"command":"SET_OUTPUT","pin":"DAC0","level":12,"job":1}` + "\r\n"

	if string(d) != exp {
		t.Errorf("encoded frame mismatch, got %q, exp %q", d, exp)
	}
}

func TestEncodeNoFields(t *testing.T) {
	d, err := Encode()
	if err != nil {
		t.Fatal("Error encoding: ", err)
	}

	if string(d) != "{}\r\n" {
		t.Errorf("got %q", d)
	}
}

func TestEncodeBadValue(t *testing.T) {
	_, err := Encode(Field{"ch", make(chan int)})
	if err == nil {
		t.Fatal("expected error encoding channel")
	}
}

func TestSplitter(t *testing.T) {
	var s Splitter

	frames := s.Feed([]byte(`{"a":1}` + "\r\n" + `{"b":`))
	if diff := cmp.Diff([]string{`{"a":1}`}, toStrings(frames)); diff != "" {
		t.Error("first feed mismatch (-exp +got):\n", diff)
	}

	if s.Buffered() != 5 {
		t.Error("expected partial frame to be buffered, got: ", s.Buffered())
	}

	frames = s.Feed([]byte("2}\r"))
	if len(frames) != 0 {
		t.Error("frame returned before delimiter complete: ", toStrings(frames))
	}

	frames = s.Feed([]byte("\n" + `{"c":3}` + "\r\n"))
	if diff := cmp.Diff([]string{`{"b":2}`, `{"c":3}`}, toStrings(frames)); diff != "" {
		t.Error("second feed mismatch (-exp +got):\n", diff)
	}

	if s.Buffered() != 0 {
		t.Error("buffer should be empty")
	}
}

func TestSplitterGarbagePrefix(t *testing.T) {
	var s Splitter

	good, _ := Encode(Field{"command", "RX_GET_INPUT"}, Field{"job", 1})

	in := append([]byte("_"), good...)
	in = append(in, good...)

	frames := s.Feed(in)
	if len(frames) != 2 {
		t.Fatal("expected 2 frames, got: ", len(frames))
	}

	var v map[string]interface{}
	if json.Unmarshal(frames[0], &v) == nil {
		t.Error("prefixed frame should not parse")
	}

	if err := json.Unmarshal(frames[1], &v); err != nil {
		t.Error("frame after bad frame should parse: ", err)
	}
}

func TestRoundTrip(t *testing.T) {
	d, err := Encode(
		Field{"command", "LOG_SIGNAL"},
		Field{"pin", "A0"},
		Field{"period", 1000},
		Field{"job", 7},
	)
	if err != nil {
		t.Fatal(err)
	}

	var s Splitter
	frames := s.Feed(d)
	if len(frames) != 1 {
		t.Fatal("expected one frame")
	}

	var got map[string]interface{}
	if err := json.Unmarshal(frames[0], &got); err != nil {
		t.Fatal("decode error: ", err)
	}

	exp := map[string]interface{}{
		"command": "LOG_SIGNAL",
		"pin":     "A0",
		"period":  float64(1000),
		"job":     float64(7),
	}

	if diff := cmp.Diff(exp, got); diff != "" {
		t.Error("round trip mismatch (-exp +got):\n", diff)
	}
}

func toStrings(frames [][]byte) []string {
	ret := make([]string, len(frames))
	for i, f := range frames {
		ret[i] = string(f)
	}
	return ret
}

func TestTrimGarbage(t *testing.T) {
	tests := []struct {
		in  string
		exp string
		n   int
	}{
		{`{"a":1}`, `{"a":1}`, 0},
		{`_{"a":1}`, `{"a":1}`, 1},
		{"\x00\xff{}", "{}", 2},
		{"garbage", "garbage", 0},
		{"", "", 0},
	}

	for _, test := range tests {
		got, n := TrimGarbage([]byte(test.in))
		if string(got) != test.exp || n != test.n {
			t.Errorf("TrimGarbage(%q) = %q, %v, exp %q, %v", test.in, got, n, test.exp, test.n)
		}
	}
}
