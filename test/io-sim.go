package test

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// IoSim is used to simulate an io channel -- provides both sides so you can easily
// test code that uses an io.ReadWriter interface, etc. Each side also reports
// how many bytes are waiting (Available), so the A side can stand in for a
// serial device that is polled.
type IoSim struct {
	out      *bytes.Buffer
	in       *bytes.Buffer
	m        *sync.Mutex
	stop     chan struct{}
	stopOnce sync.Once
	closed   int
	writeErr error
}

// NewIoSim creates a new IO sim and returns the A and B side of an IO simulator
// that implements a ReadWriteCloser
func NewIoSim() (*IoSim, *IoSim) {
	var a2b bytes.Buffer
	var b2a bytes.Buffer
	var m sync.Mutex

	a := IoSim{out: &a2b, in: &b2a, m: &m, stop: make(chan struct{})}
	b := IoSim{out: &b2a, in: &a2b, m: &m, stop: make(chan struct{})}

	return &a, &b
}

func (ios *IoSim) Write(d []byte) (int, error) {
	ios.m.Lock()
	defer ios.m.Unlock()
	if ios.writeErr != nil {
		return 0, ios.writeErr
	}
	return ios.in.Write(d)
}

// Read blocks until there is some data in the out buffer or the ioSim is closed.
func (ios *IoSim) Read(d []byte) (int, error) {
	ret := make(chan struct{})

	go func() {
		for {
			ios.m.Lock()
			if ios.out.Len() > 0 {
				close(ret)
				ios.m.Unlock()
				return
			}
			ios.m.Unlock()
			select {
			case <-time.After(time.Millisecond):
				// continue
			case <-ios.stop:
				close(ret)
				return
			}
		}
	}()

	// block until we have data
	<-ret
	ios.m.Lock()
	defer ios.m.Unlock()
	return ios.out.Read(d)
}

// ErrClosed is returned by Available once this side is closed
var ErrClosed = errors.New("io sim closed")

// Available returns the number of bytes that can be read without blocking
func (ios *IoSim) Available() (int, error) {
	select {
	case <-ios.stop:
		return 0, ErrClosed
	default:
	}

	ios.m.Lock()
	defer ios.m.Unlock()
	return ios.out.Len(), nil
}

// Close simulator. Close may be called more than once, CloseCount reports
// how often it was.
func (ios *IoSim) Close() error {
	ios.m.Lock()
	ios.closed++
	ios.m.Unlock()
	ios.stopOnce.Do(func() { close(ios.stop) })
	return nil
}

// CloseCount returns the number of Close calls on this side
func (ios *IoSim) CloseCount() int {
	ios.m.Lock()
	defer ios.m.Unlock()
	return ios.closed
}

// SetWriteError makes every following Write on this side fail with err.
// Pass nil to restore normal operation.
func (ios *IoSim) SetWriteError(err error) {
	ios.m.Lock()
	defer ios.m.Unlock()
	ios.writeErr = err
}

// Drain returns everything the peer has written so far without blocking
func (ios *IoSim) Drain() []byte {
	ios.m.Lock()
	defer ios.m.Unlock()
	ret, _ := io.ReadAll(ios.out)
	return ret
}
