package controllino

import (
	"github.com/simpleiot/controllino/frame"
	"golang.org/x/exp/slices"
)

// TimeSeries is the result of a signal logging run. Time[i] is the device
// time of Values[i], in the order the samples were received.
type TimeSeries struct {
	Time   []float64
	Values []float64
}

type logPhase int

const (
	phaseAwaiting logPhase = iota
	phaseStreaming
	phaseFinished
)

func (p logPhase) String() string {
	switch p {
	case phaseAwaiting:
		return "awaiting"
	case phaseStreaming:
		return "streaming"
	case phaseFinished:
		return "finished"
	}
	return "unknown"
}

// LogSignal samples a pin every period milliseconds until it is stopped
// with EndLogSignal. It has two futures:
//
//   - Request resolves with the first reply: success if the device accepted
//     the request, an error if it declined.
//   - Recording resolves with the collected TimeSeries once a reply with
//     done set to true arrives, or with an error if the device fails the
//     run after accepting it.
//
// If the request is declined, Recording is resolved with the same error so
// callers waiting on it do not block forever.
//
// Every reply carries time, value and done fields, including the first.
type LogSignal struct {
	cmdBase
	pin       string
	period    int
	phase     logPhase
	request   *Future[struct{}]
	recording *Future[TimeSeries]
	time      []float64
	values    []float64
}

// NewLogSignal creates a LOG_SIGNAL request, period is in milliseconds
func NewLogSignal(pin string, period int) *LogSignal {
	return &LogSignal{
		cmdBase: cmdBase{
			kind: kindLogSignal,
			fields: []frame.Field{
				{Key: "pin", Value: pin},
				{Key: "period", Value: period},
			},
		},
		pin:       pin,
		period:    period,
		request:   NewFuture[struct{}](),
		recording: NewFuture[TimeSeries](),
	}
}

// Pin returns the logged pin
func (c *LogSignal) Pin() string { return c.pin }

// Period returns the sample period in milliseconds
func (c *LogSignal) Period() int { return c.period }

// Request resolves once the device accepted or declined the request
func (c *LogSignal) Request() *Future[struct{}] {
	return c.request
}

// Recording resolves with the samples when logging is done
func (c *LogSignal) Recording() *Future[TimeSeries] {
	return c.recording
}

// Update implements Command
func (c *LogSignal) Update(r Reply) (bool, error) {
	class := c.kind.classify(r)

	switch c.phase {
	case phaseAwaiting:
		switch class {
		case replyFailure:
			err := c.failed(r)
			c.phase = phaseFinished
			c.request.SetError(err)
			c.recording.SetError(err)
			return true, nil
		case replySuccess:
			c.phase = phaseStreaming
			c.request.SetResult(struct{}{})
		default:
			c.ignore(r)
			return false, nil
		}

	case phaseStreaming:
		switch class {
		case replyFailure:
			c.phase = phaseFinished
			c.recording.SetError(c.failed(r))
			return true, nil
		case replySuccess:
		default:
			c.ignore(r)
			return false, nil
		}

	case phaseFinished:
		return true, nil
	}

	return c.record(r)
}

func (c *LogSignal) record(r Reply) (bool, error) {
	t, err := r.Float("time")
	if err != nil {
		return c.abort(r, err)
	}

	v, err := r.Float("value")
	if err != nil {
		return c.abort(r, err)
	}

	done, err := r.Bool("done")
	if err != nil {
		return c.abort(r, err)
	}

	c.time = append(c.time, t)
	c.values = append(c.values, v)

	if !done {
		return false, nil
	}

	c.phase = phaseFinished
	c.recording.SetResult(TimeSeries{
		Time:   slices.Clone(c.time),
		Values: slices.Clone(c.values),
	})

	return true, nil
}

func (c *LogSignal) abort(r Reply, err error) (bool, error) {
	c.invalid(r, err)
	c.phase = phaseFinished
	c.recording.SetError(err)
	return true, nil
}
