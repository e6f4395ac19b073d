package controllino

import "github.com/simpleiot/controllino/frame"

// Ready waits for the device to announce it is ready. It is not sent; see
// Session.Open.
type Ready struct {
	result[struct{}]
}

// NewReady creates a readiness probe
func NewReady() *Ready {
	return &Ready{newResult[struct{}](kindReady, "")}
}

// GetSignal reads the level of an input pin. Digital pins may answer with
// true or false, which read as 1 and 0.
type GetSignal struct {
	result[float64]
	pin string
}

// NewGetSignal creates a GET_INPUT request for pin
func NewGetSignal(pin string) *GetSignal {
	r := newResult[float64](kindGetInput, "level",
		frame.Field{Key: "pin", Value: pin})
	r.decode = Reply.Level

	return &GetSignal{result: r, pin: pin}
}

// Pin returns the pin this request reads
func (c *GetSignal) Pin() string { return c.pin }

// SetSignal sets the level of an output pin. level is encoded as is, so
// it may be a number or a bool depending on the pin.
type SetSignal struct {
	result[struct{}]
	pin   string
	level interface{}
}

// NewSetSignal creates a SET_OUTPUT request
func NewSetSignal(pin string, level interface{}) *SetSignal {
	return &SetSignal{
		result: newResult[struct{}](kindSetOutput, "",
			frame.Field{Key: "pin", Value: pin},
			frame.Field{Key: "level", Value: level}),
		pin:   pin,
		level: level,
	}
}

// Pin returns the pin this request writes
func (c *SetSignal) Pin() string { return c.pin }

// Level returns the level this request writes
func (c *SetSignal) Level() interface{} { return c.level }

// SetPinMode configures a pin, mode is a device mode name such as INPUT
type SetPinMode struct {
	result[struct{}]
	pin  string
	mode string
}

// NewSetPinMode creates a SET_PIN_MODE request
func NewSetPinMode(pin, mode string) *SetPinMode {
	return &SetPinMode{
		result: newResult[struct{}](kindSetPinMode, "",
			frame.Field{Key: "pin", Value: pin},
			frame.Field{Key: "mode", Value: mode}),
		pin:  pin,
		mode: mode,
	}
}

// Pin returns the pin this request configures
func (c *SetPinMode) Pin() string { return c.pin }

// Mode returns the requested mode
func (c *SetPinMode) Mode() string { return c.mode }

// GetPinMode reads the configured mode of a pin
type GetPinMode struct {
	result[string]
	pin string
}

// NewGetPinMode creates a GET_PIN_MODE request
func NewGetPinMode(pin string) *GetPinMode {
	return &GetPinMode{
		result: newResult[string](kindGetPinMode, "mode",
			frame.Field{Key: "pin", Value: pin}),
		pin: pin,
	}
}

// Pin returns the pin this request reads
func (c *GetPinMode) Pin() string { return c.pin }

// LoadPinModes restores the pin modes stored on the device
type LoadPinModes struct {
	result[struct{}]
}

// NewLoadPinModes creates a LOAD_PIN_MODES request
func NewLoadPinModes() *LoadPinModes {
	return &LoadPinModes{newResult[struct{}](kindLoadPinModes, "")}
}

// SavePinModes stores the current pin modes on the device
type SavePinModes struct {
	result[struct{}]
}

// NewSavePinModes creates a SAVE_PIN_MODES request
func NewSavePinModes() *SavePinModes {
	return &SavePinModes{newResult[struct{}](kindSavePinModes, "")}
}

// ResetPinModes resets all pins to their default mode
type ResetPinModes struct {
	result[struct{}]
}

// NewResetPinModes creates a RESET_PIN_MODES request
func NewResetPinModes() *ResetPinModes {
	return &ResetPinModes{newResult[struct{}](kindResetPinModes, "")}
}

// TriggerPulse fires a pulse on a pin
type TriggerPulse struct {
	result[struct{}]
	pin string
}

// NewTriggerPulse creates a TRIGGER_PULSE request
func NewTriggerPulse(pin string) *TriggerPulse {
	return &TriggerPulse{
		result: newResult[struct{}](kindTriggerPulse, "",
			frame.Field{Key: "pin", Value: pin}),
		pin: pin,
	}
}

// Pin returns the pulsed pin
func (c *TriggerPulse) Pin() string { return c.pin }

// EndLogSignal stops a running LogSignal on the same pin
type EndLogSignal struct {
	result[struct{}]
	pin string
}

// NewEndLogSignal creates an END_LOG_SIGNAL request
func NewEndLogSignal(pin string) *EndLogSignal {
	return &EndLogSignal{
		result: newResult[struct{}](kindEndLogSignal, "",
			frame.Field{Key: "pin", Value: pin}),
		pin: pin,
	}
}

// Pin returns the pin whose logging is stopped
func (c *EndLogSignal) Pin() string { return c.pin }
