package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/simpleiot/controllino/device"
)

func newFlags() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestArgsDefaults(t *testing.T) {
	o, err := Args([]string{"-port", "/dev/ttyACM0", "get", "A0"}, newFlags())
	if err != nil {
		t.Fatal("Error parsing args: ", err)
	}

	exp := device.Config{Port: "/dev/ttyACM0", Baud: device.DefaultBaud, Driver: device.DriverBugSt}
	if diff := cmp.Diff(exp, o.Device); diff != "" {
		t.Error("device mismatch (-exp +got):\n", diff)
	}

	if diff := cmp.Diff([]string{"get", "A0"}, o.Command); diff != "" {
		t.Error("command mismatch (-exp +got):\n", diff)
	}

	if o.Timeout != 5*time.Second {
		t.Error("timeout: ", o.Timeout)
	}
}

const testConfig = `
device:
  port: /dev/ttyUSB3
  baud: 9600
  driver: jacobsa
name: bench
timeout: 2s
debug: 1
debugFrames: true
`

func TestArgsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controllino.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatal("Error writing config: ", err)
	}

	// flags win over the config file
	o, err := Args([]string{"-config", path, "-baud", "57600", "pulse", "D1"}, newFlags())
	if err != nil {
		t.Fatal("Error parsing args: ", err)
	}

	exp := device.Config{Port: "/dev/ttyUSB3", Baud: 57600, Driver: device.DriverJacobsa}
	if diff := cmp.Diff(exp, o.Device); diff != "" {
		t.Error("device mismatch (-exp +got):\n", diff)
	}

	if o.Session.Name != "bench" || o.Session.Debug != 1 || !o.Session.DebugFrames {
		t.Errorf("session options: %+v", o.Session)
	}

	if o.Timeout != 2*time.Second {
		t.Error("timeout: ", o.Timeout)
	}
}

func TestArgsEnv(t *testing.T) {
	t.Setenv("CONTROLLINO_PORT", "/tmp/serialfifo")
	t.Setenv("CONTROLLINO_BAUD", "19200")

	o, err := Args([]string{"load-modes"}, newFlags())
	if err != nil {
		t.Fatal("Error parsing args: ", err)
	}

	if o.Device.Port != "/tmp/serialfifo" || o.Device.Baud != 19200 {
		t.Errorf("device: %+v", o.Device)
	}

	t.Setenv("CONTROLLINO_BAUD", "fast")

	if _, err := Args(nil, newFlags()); err == nil {
		t.Error("expected error for bad baud")
	}
}

func TestArgsBadConfig(t *testing.T) {
	if _, err := Args([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, newFlags()); err == nil {
		t.Error("expected error for missing config")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("timeout: soon\n"), 0644); err != nil {
		t.Fatal("Error writing config: ", err)
	}

	if _, err := Args([]string{"-config", path}, newFlags()); err == nil {
		t.Error("expected error for bad timeout")
	}
}
