package controllino

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/simpleiot/controllino/test"
)

func TestControllino(t *testing.T) {
	a, b := test.NewIoSim()

	c := NewControllino(a, Options{Name: "facade", Debug: 9})
	defer c.Kill()

	ready, err := c.Open()
	if err != nil {
		t.Fatal("Error opening: ", err)
	}

	put(t, b, `{"command":"RX_READY","job":0}`)

	if !ready.Wait(wait) {
		t.Fatal("timeout waiting for ready")
	}

	mode, err := c.GetPinMode("A0")
	if err != nil {
		t.Fatal("Error getting pin mode: ", err)
	}

	set, err := c.SetSignal("DAC0", 12)
	if err != nil {
		t.Fatal("Error setting signal: ", err)
	}

	request, recording, err := c.LogSignal("A1", 10)
	if err != nil {
		t.Fatal("Error logging: ", err)
	}

	exp := []string{
		`{"command":"GET_PIN_MODE","pin":"A0","job":1}`,
		`{"command":"SET_OUTPUT","pin":"DAC0","level":12,"job":2}`,
		`{"command":"LOG_SIGNAL","pin":"A1","period":10,"job":3}`,
	}

	if diff := cmp.Diff(exp, sent(t, b, 3)); diff != "" {
		t.Fatal("sent mismatch (-exp +got):\n", diff)
	}

	put(t, b, `{"command":"RX_LOG_SIGNAL","pin":"A1","job":3,"time":0,"value":0.5,"done":false}`)
	put(t, b, `{"command":"RX_SET_OUTPUT","pin":"DAC0","level":12,"job":2}`)
	put(t, b, `{"command":"RX_GET_PIN_MODE","pin":"A0","mode":"INPUT","job":1}`)

	if !mode.Wait(wait) || !set.Wait(wait) || !request.Wait(wait) {
		t.Fatal("timeout waiting for replies")
	}

	if m, err := mode.Result(); err != nil || m != "INPUT" {
		t.Fatalf("mode: %v, %v", m, err)
	}

	end, err := c.EndLogSignal("A1")
	if err != nil {
		t.Fatal("Error ending log: ", err)
	}

	if f := sent(t, b, 1); f[0] != `{"command":"END_LOG_SIGNAL","pin":"A1","job":4}` {
		t.Fatal("sent: ", f[0])
	}

	put(t, b, `{"command":"RX_END_LOG_SIGNAL","pin":"A1","job":4}`)
	put(t, b, `{"command":"RX_LOG_SIGNAL","pin":"A1","job":3,"time":10,"value":0.25,"done":true}`)

	if !end.Wait(wait) || !recording.Wait(wait) {
		t.Fatal("timeout waiting for end of log")
	}

	ts, err := recording.Result()
	if err != nil {
		t.Fatal("recording error: ", err)
	}

	if diff := cmp.Diff(TimeSeries{Time: []float64{0, 10}, Values: []float64{0.5, 0.25}}, ts); diff != "" {
		t.Error("recording mismatch (-exp +got):\n", diff)
	}

	if err := c.ProcessErrors(false); err != nil {
		t.Fatal("session error: ", err)
	}
}

func TestControllinoStopped(t *testing.T) {
	a, _ := test.NewIoSim()

	c := NewControllino(a, Options{})
	c.Kill()

	calls := map[string]func() error{
		"GetSignal":     func() error { _, err := c.GetSignal("A0"); return err },
		"SetPinMode":    func() error { _, err := c.SetPinMode("A0", "OUTPUT"); return err },
		"LoadPinModes":  func() error { _, err := c.LoadPinModes(); return err },
		"SavePinModes":  func() error { _, err := c.SavePinModes(); return err },
		"ResetPinModes": func() error { _, err := c.ResetPinModes(); return err },
		"TriggerPulse":  func() error { _, err := c.TriggerPulse("D0"); return err },
		"LogSignal":     func() error { _, _, err := c.LogSignal("A0", 10); return err },
	}

	for name, call := range calls {
		if err := call(); err != ErrStopped {
			t.Errorf("%v: expected ErrStopped, got %v", name, err)
		}
	}
}
