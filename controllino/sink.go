package controllino

import "log"

// ErrorSink receives the errors that end a Session goroutine, and the
// protocol findings reported by the receive goroutine. Report must not
// block for long, it is called from the I/O goroutines.
type ErrorSink interface {
	Report(err error)
}

// ErrorSinkFunc adapts a function to ErrorSink
type ErrorSinkFunc func(err error)

// Report calls f(err)
func (f ErrorSinkFunc) Report(err error) {
	f(err)
}

// DefaultErrorQueueSize is the capacity of the error queue of a Session
// that has no ErrorSink configured
const DefaultErrorQueueSize = 16

// errorQueue is the default sink, drained by Session.ProcessErrors
type errorQueue struct {
	name string
	c    chan error
}

func newErrorQueue(name string, size int) *errorQueue {
	return &errorQueue{name: name, c: make(chan error, size)}
}

func (q *errorQueue) Report(err error) {
	select {
	case q.c <- err:
	default:
		log.Printf("Controllino %v: error queue full, dropping: %v\n", q.name, err)
	}
}

// next returns a queued error or nil, without blocking
func (q *errorQueue) next() error {
	select {
	case err := <-q.c:
		return err
	default:
		return nil
	}
}
