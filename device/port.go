package device

import (
	"bytes"
	"io"
	"sync"
)

// Port turns a blocking io.ReadWriteCloser (serial port, fifo, ...) into a
// polled Device. A goroutine reads the underlying stream for the life of
// the Port and buffers what arrives.
type Port struct {
	rwc       io.ReadWriteCloser
	size      int
	m         sync.Mutex
	buf       bytes.Buffer
	err       error
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewPort wraps rwc. The Port owns rwc from now on; call Close on the Port.
func NewPort(rwc io.ReadWriteCloser) *Port {
	p := &Port{
		rwc:  rwc,
		size: 128,
		done: make(chan struct{}),
	}
	// we have to start a reader goroutine here that lives for the life
	// of the port because there is no way to stop a blocked read other
	// than closing the underlying stream
	go p.readInput()
	return p
}

// readInput is used by a goroutine to read data from the underlying io.Reader
func (p *Port) readInput() {
	defer close(p.done)
	for {
		tmp := make([]byte, p.size)
		length, err := p.rwc.Read(tmp)

		p.m.Lock()
		p.buf.Write(tmp[:length])
		if err != nil {
			p.err = err
			p.m.Unlock()
			return
		}
		p.m.Unlock()
	}
}

// Available returns the number of buffered bytes. Once the buffer is empty
// and the reader has stopped, the read error (often io.EOF) is returned.
func (p *Port) Available() (int, error) {
	p.m.Lock()
	defer p.m.Unlock()

	if p.buf.Len() > 0 {
		return p.buf.Len(), nil
	}

	return 0, p.err
}

// Read copies buffered bytes into b and never blocks
func (p *Port) Read(b []byte) (int, error) {
	p.m.Lock()
	defer p.m.Unlock()

	if p.buf.Len() == 0 {
		return 0, p.err
	}

	return p.buf.Read(b)
}

// Write is a passthrough call
func (p *Port) Write(b []byte) (int, error) {
	return p.rwc.Write(b)
}

// Close closes the underlying stream. Later calls return the first result.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.rwc.Close()
	})
	return p.closeErr
}

// Done is closed when the reader goroutine has exited
func (p *Port) Done() <-chan struct{} {
	return p.done
}
