package sim

// Signal is a triangle wave that bounces between min and max, used to
// simulate the level of analog inputs.
type Signal struct {
	currentValue float64
	step         float64
	max          float64
	min          float64
	up           bool
}

// NewSignal creates a signal starting at start
func NewSignal(start, step, minVal, maxVal float64) Signal {
	return Signal{
		currentValue: start,
		step:         step,
		min:          minVal,
		max:          maxVal,
	}
}

// Next advances the signal one step and returns the new level
func (s *Signal) Next() float64 {
	if s.up {
		s.currentValue += s.step
		if s.currentValue > s.max {
			s.currentValue = s.max
			s.up = false
		}
	} else {
		s.currentValue -= s.step
		if s.currentValue < s.min {
			s.currentValue = s.min
			s.up = true
		}
	}

	return s.currentValue
}
