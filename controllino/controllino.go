package controllino

import "github.com/simpleiot/controllino/device"

// Controllino wraps a Session with one method per request. Each method
// submits the request and returns its future; the error return is only
// set if the request could not be submitted.
type Controllino struct {
	*Session
}

// NewControllino starts a session on dev
func NewControllino(dev device.Device, opts Options) *Controllino {
	return &Controllino{Session: New(dev, opts)}
}

func submit[T any](s *Session, cmd *result[T], c Command) (*Future[T], error) {
	if err := s.Submit(c); err != nil {
		return nil, err
	}
	return cmd.Future(), nil
}

// GetSignal reads the level of pin
func (c *Controllino) GetSignal(pin string) (*Future[float64], error) {
	cmd := NewGetSignal(pin)
	return submit(c.Session, &cmd.result, cmd)
}

// SetSignal sets the level of pin
func (c *Controllino) SetSignal(pin string, level interface{}) (*Future[struct{}], error) {
	cmd := NewSetSignal(pin, level)
	return submit(c.Session, &cmd.result, cmd)
}

// SetPinMode configures the mode of pin
func (c *Controllino) SetPinMode(pin, mode string) (*Future[struct{}], error) {
	cmd := NewSetPinMode(pin, mode)
	return submit(c.Session, &cmd.result, cmd)
}

// GetPinMode reads the mode of pin
func (c *Controllino) GetPinMode(pin string) (*Future[string], error) {
	cmd := NewGetPinMode(pin)
	return submit(c.Session, &cmd.result, cmd)
}

// LoadPinModes restores the stored pin modes
func (c *Controllino) LoadPinModes() (*Future[struct{}], error) {
	cmd := NewLoadPinModes()
	return submit(c.Session, &cmd.result, cmd)
}

// SavePinModes stores the current pin modes
func (c *Controllino) SavePinModes() (*Future[struct{}], error) {
	cmd := NewSavePinModes()
	return submit(c.Session, &cmd.result, cmd)
}

// ResetPinModes resets all pin modes
func (c *Controllino) ResetPinModes() (*Future[struct{}], error) {
	cmd := NewResetPinModes()
	return submit(c.Session, &cmd.result, cmd)
}

// TriggerPulse fires a pulse on pin
func (c *Controllino) TriggerPulse(pin string) (*Future[struct{}], error) {
	cmd := NewTriggerPulse(pin)
	return submit(c.Session, &cmd.result, cmd)
}

// LogSignal starts sampling pin every period milliseconds. The first
// future resolves when the device accepts the request, the second with
// the samples after EndLogSignal.
func (c *Controllino) LogSignal(pin string, period int) (*Future[struct{}], *Future[TimeSeries], error) {
	cmd := NewLogSignal(pin, period)
	if err := c.Submit(cmd); err != nil {
		return nil, nil, err
	}
	return cmd.Request(), cmd.Recording(), nil
}

// EndLogSignal stops sampling pin
func (c *Controllino) EndLogSignal(pin string) (*Future[struct{}], error) {
	cmd := NewEndLogSignal(pin)
	return submit(c.Session, &cmd.result, cmd)
}
