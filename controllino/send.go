package controllino

import (
	"log"

	"github.com/pkg/errors"
)

// send writes queued commands to the device in submission order
func (s *Session) send() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stop:
			return
		case cmd := <-s.queue:
			if s.stopping() {
				return
			}

			if err := s.write(cmd); err != nil {
				s.fatal("send", err)
				return
			}
		}
	}
}

func (s *Session) write(cmd Command) error {
	d, err := cmd.Encode()
	if err != nil {
		return err
	}

	if s.opts.Debug > 0 {
		log.Printf("Controllino %v: tx frame: %s\n", s.opts.Name, d[:len(d)-2])
	}

	s.devLock.Lock()
	defer s.devLock.Unlock()

	_, err = s.dev.Write(d)
	if err != nil {
		id, _ := cmd.Job()
		return errors.Wrapf(err, "error writing %v job %v", cmd.Name(), id)
	}

	return nil
}
