// Package sim simulates devices for tests and demos. Controllino plays the
// firmware side of the Controllino protocol on any io.ReadWriter.
package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/simpleiot/controllino/frame"
	"github.com/simpleiot/controllino/test"
)

// Pin modes understood by the simulator
const (
	ModeInput       = "INPUT"
	ModeOutput      = "OUTPUT"
	ModeInputPullup = "INPUT_PULLUP"
)

type pin struct {
	mode   string
	level  float64
	signal *Signal
	pulses int
}

// request is the union of all request fields
type request struct {
	Command string      `json:"command"`
	Job     *int        `json:"job"`
	Pin     string      `json:"pin"`
	Level   interface{} `json:"level"`
	Mode    string      `json:"mode"`
	Period  int         `json:"period"`
}

type logRun struct {
	job  int
	stop chan struct{}
	done chan struct{}
}

// Controllino simulates Controllino firmware. Analog inputs (A*) follow a
// triangle wave, digital inputs (D*) read back whatever was last set,
// relays (R*) and DACs start as outputs.
type Controllino struct {
	rw    io.ReadWriter
	debug int

	// lock guards pin state and writes to rw
	lock  sync.Mutex
	pins  map[string]*pin
	saved map[string]string
	logs  map[string]*logRun

	stop     chan struct{}
	stopOnce sync.Once
}

// DefaultPins are the pins of a simulated device
var DefaultPins = []string{
	"A0", "A1", "A2", "A3",
	"D0", "D1", "D2", "D3",
	"R0", "R1", "R2", "R3",
	"DAC0", "DAC1",
}

// NewControllino creates a simulator talking over rw. If pins is empty,
// DefaultPins is used. debug > 0 logs every frame, debug >= 9 also dumps
// the raw bytes.
func NewControllino(rw io.ReadWriter, pins []string, debug int) *Controllino {
	if len(pins) == 0 {
		pins = DefaultPins
	}

	c := &Controllino{
		rw:    rw,
		debug: debug,
		pins:  make(map[string]*pin),
		logs:  make(map[string]*logRun),
		stop:  make(chan struct{}),
	}

	for _, name := range pins {
		if name != "" {
			c.pins[name] = &pin{}
		}
	}

	c.reset()

	return c
}

func defaultMode(name string) string {
	switch name[0] {
	case 'R':
		return ModeOutput
	case 'D':
		if len(name) > 1 && name[1] == 'A' {
			return ModeOutput
		}
	}
	return ModeInput
}

func (c *Controllino) reset() {
	for name, p := range c.pins {
		p.mode = defaultMode(name)
		if name[0] == 'A' && p.signal == nil {
			s := NewSignal(512, 8, 0, 1023)
			p.signal = &s
		}
	}
}

// Run announces readiness, then answers requests until rw returns an
// error or Stop is called. io.EOF and errors after Stop return nil.
func (c *Controllino) Run() error {
	log.Println("Controllino sim: starting")

	if err := c.write(reply("RX_READY", 0)...); err != nil {
		return err
	}

	var sp frame.Splitter
	buf := make([]byte, 512)

	for {
		n, err := c.rw.Read(buf)
		if n > 0 {
			if c.debug >= 9 {
				log.Println("Controllino sim: RX: ", test.HexDump(buf[:n]))
			}

			for _, f := range sp.Feed(buf[:n]) {
				c.handle(f)
			}
		}

		if err != nil {
			select {
			case <-c.stop:
				return nil
			default:
			}

			if err == io.EOF {
				return nil
			}

			return errors.Wrap(err, "sim read error")
		}
	}
}

// Stop ends Run and any running signal logs. If rw is an io.Closer it is
// closed to unblock the pending read.
func (c *Controllino) Stop(_ error) {
	c.stopOnce.Do(func() {
		close(c.stop)
		if cl, ok := c.rw.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				log.Println("Controllino sim: error closing: ", err)
			}
		}
	})
}

// Level returns the current level of an output or digital pin
func (c *Controllino) Level(name string) (float64, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	p, ok := c.pins[name]
	if !ok {
		return 0, false
	}
	return p.level, true
}

// Pulses returns how many pulses were triggered on a pin
func (c *Controllino) Pulses(name string) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	p, ok := c.pins[name]
	if !ok {
		return 0
	}
	return p.pulses
}

func reply(command string, job int, fields ...frame.Field) []frame.Field {
	ret := make([]frame.Field, 0, len(fields)+2)
	ret = append(ret, frame.Field{Key: "command", Value: command})
	ret = append(ret, fields...)
	return append(ret, frame.Field{Key: "job", Value: job})
}

func (c *Controllino) write(fields ...frame.Field) error {
	d, err := frame.Encode(fields...)
	if err != nil {
		return err
	}

	if c.debug > 0 {
		log.Printf("Controllino sim: tx: %s", d)
	}

	_, err = c.rw.Write(d)
	return errors.Wrap(err, "sim write error")
}

func (c *Controllino) send(fields ...frame.Field) {
	if err := c.write(fields...); err != nil {
		log.Println(err)
	}
}

func (c *Controllino) handle(f []byte) {
	if c.debug > 0 {
		log.Printf("Controllino sim: rx: %s\n", f)
	}

	var req request
	if err := json.Unmarshal(f, &req); err != nil {
		log.Printf("Controllino sim: invalid frame %q: %v\n", f, err)
		return
	}

	if req.Job == nil {
		log.Printf("Controllino sim: request without job: %s\n", f)
		return
	}

	job := *req.Job

	c.lock.Lock()
	defer c.lock.Unlock()

	switch req.Command {
	case "GET_INPUT":
		p, ok := c.pins[req.Pin]
		if !ok {
			c.send(reply("ERR_GET_INPUT", job, frame.Field{Key: "pin", Value: req.Pin})...)
			return
		}
		c.send(reply("RX_GET_INPUT", job,
			frame.Field{Key: "pin", Value: req.Pin},
			frame.Field{Key: "level", Value: p.read()})...)

	case "SET_OUTPUT":
		p, ok := c.pins[req.Pin]
		level, err := toLevel(req.Level)
		if !ok || err != nil || p.mode != ModeOutput {
			c.send(reply("ERR_SET_OUTPUT", job, frame.Field{Key: "pin", Value: req.Pin})...)
			return
		}
		p.level = level
		c.send(reply("RX_SET_OUTPUT", job,
			frame.Field{Key: "pin", Value: req.Pin},
			frame.Field{Key: "level", Value: req.Level})...)

	case "SET_PIN_MODE":
		p, ok := c.pins[req.Pin]
		if !ok || !validMode(req.Mode) {
			c.send(reply("ERR_SET_PIN_MODE", job, frame.Field{Key: "pin", Value: req.Pin})...)
			return
		}
		p.mode = req.Mode
		c.send(reply("RX_SET_PIN_MODE", job,
			frame.Field{Key: "pin", Value: req.Pin},
			frame.Field{Key: "mode", Value: req.Mode})...)

	case "GET_PIN_MODE":
		p, ok := c.pins[req.Pin]
		if !ok {
			c.send(reply("ERR_GET_PIN_MODE", job, frame.Field{Key: "pin", Value: req.Pin})...)
			return
		}
		c.send(reply("RX_GET_PIN_MODE", job,
			frame.Field{Key: "pin", Value: req.Pin},
			frame.Field{Key: "mode", Value: p.mode})...)

	case "SAVE_PIN_MODES":
		c.saved = make(map[string]string, len(c.pins))
		for name, p := range c.pins {
			c.saved[name] = p.mode
		}
		c.send(reply("RX_SAVE_PIN_MODES", job)...)

	case "LOAD_PIN_MODES":
		if c.saved == nil {
			c.send(reply("ERR_LOAD_PIN_MODES", job)...)
			return
		}
		for name, mode := range c.saved {
			c.pins[name].mode = mode
		}
		c.send(reply("RX_LOAD_PIN_MODES", job)...)

	case "RESET_PIN_MODES":
		c.reset()
		c.send(reply("RX_RESET_PIN_MODES", job)...)

	case "TRIGGER_PULSE":
		p, ok := c.pins[req.Pin]
		if !ok {
			c.send(reply("ERR_TRIGGER_PULSE", job, frame.Field{Key: "pin", Value: req.Pin})...)
			return
		}
		p.pulses++
		c.send(reply("RX_TRIGGER_PULSE", job, frame.Field{Key: "pin", Value: req.Pin})...)

	case "LOG_SIGNAL":
		_, ok := c.pins[req.Pin]
		_, running := c.logs[req.Pin]
		if !ok || running || req.Period <= 0 {
			c.send(reply("ERR_LOG_SIGNAL", job, frame.Field{Key: "pin", Value: req.Pin})...)
			return
		}
		run := &logRun{job: job, stop: make(chan struct{}), done: make(chan struct{})}
		c.logs[req.Pin] = run
		start := time.Now()
		c.sample(req.Pin, run.job, start, false)
		go c.stream(req.Pin, run, start, time.Duration(req.Period)*time.Millisecond)

	case "END_LOG_SIGNAL":
		run, ok := c.logs[req.Pin]
		if !ok {
			c.send(reply("ERR_END_LOG_SIGNAL", job, frame.Field{Key: "pin", Value: req.Pin})...)
			return
		}
		delete(c.logs, req.Pin)
		c.send(reply("RX_END_LOG_SIGNAL", job, frame.Field{Key: "pin", Value: req.Pin})...)
		close(run.stop)

	default:
		c.send(reply("ERR_COMMAND_INVALID", job)...)
	}
}

// stream sends a sample every period until the run is stopped, then a
// final sample with done set
func (c *Controllino) stream(name string, run *logRun, start time.Time, period time.Duration) {
	defer close(run.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-run.stop:
			c.lock.Lock()
			c.sample(name, run.job, start, true)
			c.lock.Unlock()
			return
		case <-c.stop:
			return
		case <-ticker.C:
			c.lock.Lock()
			c.sample(name, run.job, start, false)
			c.lock.Unlock()
		}
	}
}

// sample must be called with lock held
func (c *Controllino) sample(name string, job int, start time.Time, done bool) {
	c.send(reply("RX_LOG_SIGNAL", job,
		frame.Field{Key: "pin", Value: name},
		frame.Field{Key: "time", Value: time.Since(start).Seconds()},
		frame.Field{Key: "value", Value: c.pins[name].read()},
		frame.Field{Key: "done", Value: done})...)
}

func (p *pin) read() float64 {
	if p.signal != nil && p.mode != ModeOutput {
		return p.signal.Next()
	}
	return p.level
}

func validMode(m string) bool {
	switch m {
	case ModeInput, ModeOutput, ModeInputPullup:
		return true
	}
	return false
}

func toLevel(v interface{}) (float64, error) {
	switch l := v.(type) {
	case float64:
		return l, nil
	case bool:
		if l {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("invalid level: %v", v)
}
