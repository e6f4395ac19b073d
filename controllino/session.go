package controllino

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/simpleiot/controllino/device"
)

// DefaultGrain is how long the receive goroutine sleeps when no data is
// waiting
const DefaultGrain = time.Millisecond

// Options configure a Session. The zero value is usable.
type Options struct {
	// Name is used in log messages, defaults to a short random id
	Name string
	// PoolSize is the number of job ids, defaults to DefaultPoolSize
	PoolSize int
	// Grain is the receive poll interval, defaults to DefaultGrain
	Grain time.Duration
	// ErrorSink receives goroutine errors. If nil, errors are queued and
	// drained with ProcessErrors.
	ErrorSink ErrorSink
	// ErrorQueueSize is the capacity of the default error queue
	ErrorQueueSize int
	// DebugFrames logs the info field of DEBUG frames from the device
	// instead of treating them as out-of-turn replies
	DebugFrames bool
	// StrictDecode makes a frame that is not valid JSON fatal to the
	// receive goroutine. By default the session does not fail fast: a
	// frame with leading noise is retried from its first '{', and a frame
	// that still does not decode is reported and skipped.
	StrictDecode bool
	// Debug level: 1 logs every frame, 9 also dumps received bytes
	Debug int
}

// State of a Session
type State int

// Session states
const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Session correlates requests and replies on one device. New starts a
// goroutine that writes submitted commands and one that reads replies;
// both run until Kill, an aborting ProcessErrors, or a fatal error in
// either goroutine.
type Session struct {
	opts Options

	dev     device.Device
	devLock sync.Mutex

	// submitLock serializes job id allocation, release and queueing
	submitLock sync.Mutex
	pool       *JobIDPool
	pending    *PendingTable
	queue      chan Command

	sink   ErrorSink
	errors *errorQueue

	stop      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup

	errLock  sync.Mutex
	firstErr error
}

// New creates a session on dev and starts its goroutines
func New(dev device.Device, opts Options) *Session {
	if opts.Name == "" {
		opts.Name = uuid.New().String()[:8]
	}

	if opts.PoolSize <= 0 {
		opts.PoolSize = DefaultPoolSize
	}

	if opts.Grain <= 0 {
		opts.Grain = DefaultGrain
	}

	if opts.ErrorQueueSize <= 0 {
		opts.ErrorQueueSize = DefaultErrorQueueSize
	}

	s := &Session{
		opts:    opts,
		dev:     dev,
		pool:    NewJobIDPool(opts.PoolSize),
		pending: NewPendingTable(),
		// every queued command holds a job id, so this never fills up
		queue: make(chan Command, opts.PoolSize),
		stop:  make(chan struct{}),
	}

	if opts.ErrorSink != nil {
		s.sink = opts.ErrorSink
	} else {
		s.errors = newErrorQueue(opts.Name, opts.ErrorQueueSize)
		s.sink = s.errors
	}

	log.Printf("Controllino %v: starting session\n", opts.Name)

	s.wg.Add(2)
	go s.receive()
	go s.send()

	return s
}

// Name returns the session name used in logs
func (s *Session) Name() string {
	return s.opts.Name
}

// Submit assigns cmd a job id, registers it as pending and queues it for
// sending. Results are delivered through the command's futures.
// ErrPoolExhausted is returned, and nothing is queued, if all job ids are
// in use.
func (s *Session) Submit(cmd Command) error {
	if err := s.register(cmd); err != nil {
		return err
	}

	select {
	case s.queue <- cmd:
	case <-s.stop:
		s.unregister(cmd)
		return ErrStopped
	}

	return nil
}

// Open registers a readiness probe. Nothing is sent, the device announces
// readiness on its own with RX_READY for job 0 of a fresh session.
func (s *Session) Open() (*Future[struct{}], error) {
	cmd := NewReady()
	if err := s.register(cmd); err != nil {
		return nil, err
	}
	return cmd.Future(), nil
}

func (s *Session) register(cmd Command) error {
	if s.State() == StateStopped {
		return ErrStopped
	}

	b := cmd.base()

	s.submitLock.Lock()
	defer s.submitLock.Unlock()

	if b.hasJob {
		return errors.Errorf("%v already submitted as job %v", cmd.Name(), b.job)
	}

	id, err := s.pool.Acquire()
	if err != nil {
		return err
	}

	b.job = id
	b.hasJob = true
	s.pending.Insert(cmd)

	if s.opts.Debug > 0 {
		log.Printf("Controllino %v: submit %v job %v\n", s.opts.Name, cmd.Name(), id)
	}

	return nil
}

func (s *Session) unregister(cmd Command) {
	id, _ := cmd.Job()
	if _, ok := s.pending.RemoveJob(id); ok {
		s.releaseJob(id)
	}
}

func (s *Session) releaseJob(id JobID) {
	s.submitLock.Lock()
	defer s.submitLock.Unlock()
	s.pool.Release(id)
}

// ProcessErrors returns one queued goroutine error, or nil if there is
// none. If abort is set and an error was queued, both goroutines are
// stopped. Pending futures are left unresolved. With a custom ErrorSink
// there is no queue and nil is always returned.
func (s *Session) ProcessErrors(abort bool) error {
	if s.errors == nil {
		return nil
	}

	err := s.errors.next()
	if err == nil {
		return nil
	}

	if abort {
		s.signalStop(err)
	}

	return err
}

// Kill stops both goroutines and closes the device without waiting for
// pending commands, whose futures stay unresolved.
func (s *Session) Kill() error {
	s.signalStop(nil)

	s.closeOnce.Do(func() {
		log.Printf("Controllino %v: closing device\n", s.opts.Name)
		s.devLock.Lock()
		s.closeErr = s.dev.Close()
		s.devLock.Unlock()
	})

	return s.closeErr
}

// Run blocks until the session is stopped and both goroutines have
// exited. It returns the error that stopped the session, nil after Kill.
// Run and Stop let a Session be used as an actor in a run.Group.
func (s *Session) Run() error {
	<-s.stop
	s.wg.Wait()
	return s.err()
}

// Stop kills the session
func (s *Session) Stop(_ error) {
	if err := s.Kill(); err != nil {
		log.Printf("Controllino %v: error closing device: %v\n", s.opts.Name, err)
	}
}

// State returns the session state
func (s *Session) State() State {
	select {
	case <-s.stop:
		return StateStopped
	default:
		return StateRunning
	}
}

// Stopped returns a channel that is closed when the session stops
func (s *Session) Stopped() <-chan struct{} {
	return s.stop
}

// Pending returns the number of commands waiting for replies
func (s *Session) Pending() int {
	return s.pending.Len()
}

// WithDevice calls fn with the device while holding the device lock, so
// fn does not interleave with the session goroutines
func (s *Session) WithDevice(fn func(dev device.Device)) {
	s.devLock.Lock()
	defer s.devLock.Unlock()
	fn(s.dev)
}

func (s *Session) signalStop(err error) {
	s.errLock.Lock()
	if s.firstErr == nil {
		s.firstErr = err
	}
	s.errLock.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) err() error {
	s.errLock.Lock()
	defer s.errLock.Unlock()
	return s.firstErr
}

func (s *Session) stopping() bool {
	return s.State() == StateStopped
}

// fatal ends a goroutine: the error is reported and the session stops.
// Errors caused by the session being stopped (closed device) are dropped.
func (s *Session) fatal(loop string, err error) {
	if s.stopping() {
		if s.opts.Debug > 0 {
			log.Printf("Controllino %v: %v stopped: %v\n", s.opts.Name, loop, err)
		}
		return
	}

	log.Printf("Controllino %v: %v stopped: %v\n", s.opts.Name, loop, err)
	s.sink.Report(err)
	s.signalStop(err)
}
