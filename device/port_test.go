package device

import (
	"errors"
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/simpleiot/controllino/test"
)

func waitAvailable(t *testing.T, p *Port, n int) {
	t.Helper()
	start := time.Now()
	for {
		c, err := p.Available()
		if err != nil {
			t.Fatal("Available error: ", err)
		}
		if c >= n {
			return
		}
		if time.Since(start) > time.Second {
			t.Fatalf("timeout waiting for %v bytes, have %v", n, c)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPort(t *testing.T) {
	a, b := test.NewIoSim()
	p := NewPort(a)
	defer p.Close()

	if c, err := p.Available(); c != 0 || err != nil {
		t.Fatal("new port should be empty, got: ", c, err)
	}

	testString := "RX_READY\r\n"
	b.Write([]byte(testString))

	waitAvailable(t, p, len(testString))

	buf := make([]byte, 4)
	c, err := p.Read(buf)
	if err != nil || c != 4 {
		t.Fatal("short read: ", c, err)
	}

	rest := make([]byte, 100)
	c, _ = p.Read(rest)

	if string(buf)+string(rest[:c]) != testString {
		t.Error("read data mismatch")
	}

	// empty port reads return immediately
	c, err = p.Read(rest)
	if c != 0 || err != nil {
		t.Error("read on empty port should return 0, nil: ", c, err)
	}

	if _, err := p.Write([]byte("hi")); err != nil {
		t.Fatal("write error: ", err)
	}

	if string(b.Drain()) != "hi" {
		t.Error("write did not reach peer")
	}
}

func TestPortClose(t *testing.T) {
	a, _ := test.NewIoSim()
	p := NewPort(a)

	p.Close()
	p.Close()

	if a.CloseCount() != 1 {
		t.Error("underlying stream should be closed once, got: ", a.CloseCount())
	}

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("reader goroutine did not exit")
	}

	if _, err := p.Available(); err != io.EOF {
		t.Error("expected EOF after close, got: ", err)
	}
}

type eofReader struct {
	data []byte
}

func (r *eofReader) Read(b []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := copy(b, r.data)
	r.data = r.data[n:]
	return n, nil
}

func (r *eofReader) Write(b []byte) (int, error) { return len(b), nil }
func (r *eofReader) Close() error                { return nil }

func TestPortDrainsBeforeError(t *testing.T) {
	p := NewPort(&eofReader{data: []byte("abc")})

	<-p.Done()

	c, err := p.Available()
	if c != 3 || err != nil {
		t.Fatal("buffered data should be reported before the error: ", c, err)
	}

	buf := make([]byte, 10)
	c, _ = p.Read(buf)
	if string(buf[:c]) != "abc" {
		t.Error("wrong data")
	}

	if _, err := p.Available(); err != io.EOF {
		t.Error("expected EOF once drained, got: ", err)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Error("expected ErrNotConfigured, got: ", err)
	}

	if _, err := Open(Config{Port: "/dev/ttyNotThere", Driver: "foo"}); err == nil {
		t.Error("expected unknown driver error")
	}
}

func TestOpenFifo(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no fifos on windows")
	}

	name := t.TempDir() + "/" + FifoPort

	a, err := test.NewFifoA(name)
	if err != nil {
		t.Fatal("error creating fifo: ", err)
	}
	defer a.Close()

	p, err := Open(Config{Port: name})
	if err != nil {
		t.Fatal("error opening fifo port: ", err)
	}
	defer p.Close()

	a.Write([]byte("hello"))

	waitAvailable(t, p, 5)
}
