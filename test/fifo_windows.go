//go:build windows

package test

import "errors"

// Fifo is not available on windows, the constructors fail so callers can
// report that the serialfifo test port is unsupported.
type Fifo struct {
}

var errNoFifo = errors.New("fifos are not supported on windows")

// NewFifoA creates the A side interface.
func NewFifoA(name string) (*Fifo, error) {
	return nil, errNoFifo
}

// NewFifoB creates the B side interface.
func NewFifoB(name string) (*Fifo, error) {
	return nil, errNoFifo
}

func (f *Fifo) Read(b []byte) (int, error) {
	return 0, errNoFifo
}

func (f *Fifo) Write(b []byte) (int, error) {
	return 0, errNoFifo
}

// Close is a no-op
func (f *Fifo) Close() error {
	return nil
}
