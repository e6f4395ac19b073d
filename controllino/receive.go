package controllino

import (
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/simpleiot/controllino/frame"
	"github.com/simpleiot/controllino/test"
)

// receive polls the device, splits the input into frames and routes each
// reply to the pending command holding its job id
func (s *Session) receive() {
	defer s.wg.Done()

	var splitter frame.Splitter

	for {
		if s.stopping() {
			return
		}

		data, err := s.readAvailable()
		if err != nil {
			s.fatal("receive", err)
			return
		}

		if len(data) == 0 {
			time.Sleep(s.opts.Grain)
			continue
		}

		if s.opts.Debug >= 9 {
			log.Printf("Controllino %v: RX: %v\n", s.opts.Name, test.HexDump(data))
		}

		for _, f := range splitter.Feed(data) {
			if err := s.dispatch(f); err != nil {
				s.fatal("receive", err)
				return
			}
		}
	}
}

func (s *Session) readAvailable() ([]byte, error) {
	s.devLock.Lock()
	defer s.devLock.Unlock()

	n, err := s.dev.Available()
	if err != nil {
		return nil, errors.Wrap(err, "error checking for input")
	}

	if n <= 0 {
		return nil, nil
	}

	buf := make([]byte, n)
	c, err := s.dev.Read(buf)
	if err != nil {
		return nil, errors.Wrap(err, "error reading device")
	}

	return buf[:c], nil
}

// dispatch handles one frame. A returned error ends the receive goroutine.
func (s *Session) dispatch(f []byte) error {
	if s.opts.Debug > 0 {
		log.Printf("Controllino %v: rx frame: %s\n", s.opts.Name, f)
	}

	r, err := DecodeReply(f)
	if err != nil {
		var de *DecodeError
		if !errors.As(err, &de) || s.opts.StrictDecode {
			return err
		}

		// a frame with leading noise is still usable
		trimmed, n := frame.TrimGarbage(f)
		if n == 0 {
			log.Printf("Controllino %v: skipping frame: %v\n", s.opts.Name, err)
			s.sink.Report(err)
			return nil
		}

		r, err = DecodeReply(trimmed)
		if err != nil {
			if errors.As(err, &de) {
				log.Printf("Controllino %v: skipping frame: %v\n", s.opts.Name, err)
				s.sink.Report(err)
				return nil
			}
			return err
		}

		log.Printf("Controllino %v: dropped %v bytes of noise before frame\n", s.opts.Name, n)
	}

	if r.Job == nil {
		return s.dispatchUnbound(r)
	}

	id := *r.Job

	cmd, found, done, err := s.pending.Complete(id, r)
	if !found {
		return &ProtocolError{Kind: ErrUnknownJob, Reply: r}
	}

	if done {
		s.releaseJob(id)
	}

	// job-scoped errors already failed the command's future
	if err != nil {
		s.sink.Report(errors.Wrapf(err, "%v job %v", cmd.Name(), id))
	}

	return nil
}

// dispatchUnbound handles frames without a job id
func (s *Session) dispatchUnbound(r Reply) error {
	switch {
	case strings.HasPrefix(r.Command, prefixErrorMsg):
		return &ProtocolError{Kind: ErrUnsolicited, Reply: r}

	case r.Command == replyDebug && s.opts.DebugFrames:
		var info interface{}
		if err := r.Field("info", &info); err != nil {
			log.Printf("Controllino %v: DEBUG: %v\n", s.opts.Name, r)
		} else {
			log.Printf("Controllino %v: DEBUG: %v\n", s.opts.Name, info)
		}
		return nil
	}

	return &ProtocolError{Kind: ErrOutOfTurn, Reply: r}
}
