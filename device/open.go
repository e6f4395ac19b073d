package device

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	jserial "github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/simpleiot/controllino/test"
	"go.bug.st/serial"
)

// Serial drivers supported by Open
const (
	DriverBugSt   = "bugst"
	DriverJacobsa = "jacobsa"
)

// FifoPort is the port name that selects unix fifos instead of a real
// serial port. The fifos must already be created by the A side (see
// test.NewFifoA), normally by the controllino-sim command.
const FifoPort = "serialfifo"

// DefaultBaud is used when Config.Baud is not set
const DefaultBaud = 115200

// Config describes how to open a serial device
type Config struct {
	Port   string `yaml:"port"`
	Baud   int    `yaml:"baud"`
	Driver string `yaml:"driver"`
}

// ErrNotConfigured is returned by Open if no port name is given
var ErrNotConfigured = errors.New("serial port not configured")

// Open opens the port described by cfg and wraps it in a Port
func Open(cfg Config) (*Port, error) {
	rwc, err := openStream(cfg)
	if err != nil {
		return nil, err
	}

	return NewPort(rwc), nil
}

func openStream(cfg Config) (io.ReadWriteCloser, error) {
	if cfg.Port == "" {
		return nil, ErrNotConfigured
	}

	if filepath.Base(cfg.Port) == FifoPort {
		// we are in test mode and using unix fifos instead of
		// real serial ports. The fifo must already by started
		// by the test harness
		f, err := test.NewFifoB(cfg.Port)
		if err != nil {
			return nil, errors.Wrap(err, "error opening fifo")
		}
		return f, nil
	}

	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultBaud
	}

	switch cfg.Driver {
	case "", DriverBugSt:
		mode := &serial.Mode{
			BaudRate: baud,
		}

		port, err := serial.Open(cfg.Port, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "error opening serial port %v", cfg.Port)
		}

		return port, nil

	case DriverJacobsa:
		options := jserial.OpenOptions{
			PortName:        cfg.Port,
			BaudRate:        uint(baud),
			DataBits:        8,
			StopBits:        1,
			MinimumReadSize: 1,
		}

		port, err := jserial.Open(options)
		if err != nil {
			return nil, errors.Wrapf(err, "error opening serial port %v", cfg.Port)
		}

		return port, nil
	}

	return nil, fmt.Errorf("unknown serial driver: %v", cfg.Driver)
}

// List returns the serial ports found on this system
func List() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "error listing serial ports")
	}

	if len(ports) == 0 {
		log.Println("No serial ports found")
	}

	return ports, nil
}
