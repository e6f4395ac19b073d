package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/simpleiot/controllino/controllino"
	"github.com/simpleiot/controllino/device"
	"github.com/simpleiot/controllino/system"
)

// goreleaser will replace version with Git version. You can also pass version
// into the version into the go build:
//
//	go build -ldflags="-X main.version=1.2.3"
var version = "Development"

func usage(flags *flag.FlagSet) func() {
	return func() {
		fmt.Println("usage: controllino [OPTION]... COMMAND [ARG]...")
		fmt.Println("Options:")
		flags.PrintDefaults()
		fmt.Println()
		fmt.Println("Available commands:")
		fmt.Println("  - get PIN (read input level)")
		fmt.Println("  - set PIN LEVEL (set output level, number or true/false)")
		fmt.Println("  - mode PIN [MODE] (read or set pin mode)")
		fmt.Println("  - load-modes, save-modes, reset-modes")
		fmt.Println("  - pulse PIN (trigger a pulse)")
		fmt.Println("  - log PIN PERIOD_MS [DURATION] (record a pin until DURATION or Ctrl-C)")
		fmt.Println()
		fmt.Println("Environment: CONTROLLINO_PORT, CONTROLLINO_BAUD, CONTROLLINO_DRIVER, CONTROLLINO_DEBUG")
	}
}

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flags.Usage = usage(flags)

	opts, err := Args(os.Args[1:], flags)
	if err != nil {
		log.Fatal("Error parsing args: ", err)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if opts.Syslog {
		if err := system.EnableSyslog("controllino"); err != nil {
			log.Fatal("Error enabling syslog: ", err)
		}
	}

	if opts.List {
		ports, err := device.List()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		os.Exit(0)
	}

	if len(opts.Command) < 1 {
		flags.Usage()
		os.Exit(-1)
	}

	log.Printf("Controllino client %v\n", version)

	if err := runCommand(opts); err != nil {
		log.Println("controllino stopped, reason: ", err)
		os.Exit(-1)
	}
}

func runCommand(opts Options) error {
	port, err := device.Open(opts.Device)
	if err != nil {
		return err
	}

	c := controllino.NewControllino(port, opts.Session)

	if !opts.SkipReady {
		ready, err := c.Open()
		if err != nil {
			c.Kill()
			return err
		}

		if !ready.Wait(opts.Timeout) {
			c.Kill()
			return errors.Errorf("timeout waiting for device on %v", opts.Device.Port)
		}
	}

	var g run.Group

	g.Add(c.Run, c.Stop)

	// log handles signals itself so it can end the recording
	if opts.Command[0] != "log" {
		g.Add(run.SignalHandler(context.Background(),
			syscall.SIGINT, syscall.SIGTERM))
	}

	stop := make(chan struct{})
	g.Add(func() error {
		return execute(c, opts, stop)
	}, func(error) {
		close(stop)
	})

	return g.Run()
}

var errInterrupted = errors.New("interrupted")

func await[T any](f *controllino.Future[T], err error, timeout time.Duration, stop <-chan struct{}) (T, error) {
	var zero T

	if err != nil {
		return zero, err
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-f.Resolved():
		return f.Result()
	case <-t.C:
		return zero, errors.New("timeout waiting for reply")
	case <-stop:
		return zero, errInterrupted
	}
}

func parseLevel(s string) (interface{}, error) {
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Errorf("invalid level: %v", s)
	}

	return v, nil
}

func needArgs(cmd []string, n int) error {
	if len(cmd) < n+1 {
		return errors.Errorf("%v needs %v argument(s)", cmd[0], n)
	}
	return nil
}

// execute runs one command and returns nil when done, so the run group
// shuts the session down
func execute(c *controllino.Controllino, opts Options, stop <-chan struct{}) error {
	cmd := opts.Command
	timeout := opts.Timeout

	switch cmd[0] {
	case "get":
		if err := needArgs(cmd, 1); err != nil {
			return err
		}
		f, err := c.GetSignal(cmd[1])
		v, err := await(f, err, timeout, stop)
		if err != nil {
			return err
		}
		fmt.Printf("%v: %v\n", cmd[1], v)

	case "set":
		if err := needArgs(cmd, 2); err != nil {
			return err
		}
		level, err := parseLevel(cmd[2])
		if err != nil {
			return err
		}
		f, err := c.SetSignal(cmd[1], level)
		if _, err := await(f, err, timeout, stop); err != nil {
			return err
		}

	case "mode":
		if err := needArgs(cmd, 1); err != nil {
			return err
		}
		if len(cmd) > 2 {
			f, err := c.SetPinMode(cmd[1], cmd[2])
			if _, err := await(f, err, timeout, stop); err != nil {
				return err
			}
			break
		}
		f, err := c.GetPinMode(cmd[1])
		m, err := await(f, err, timeout, stop)
		if err != nil {
			return err
		}
		fmt.Printf("%v: %v\n", cmd[1], m)

	case "load-modes":
		f, err := c.LoadPinModes()
		if _, err := await(f, err, timeout, stop); err != nil {
			return err
		}

	case "save-modes":
		f, err := c.SavePinModes()
		if _, err := await(f, err, timeout, stop); err != nil {
			return err
		}

	case "reset-modes":
		f, err := c.ResetPinModes()
		if _, err := await(f, err, timeout, stop); err != nil {
			return err
		}

	case "pulse":
		if err := needArgs(cmd, 1); err != nil {
			return err
		}
		f, err := c.TriggerPulse(cmd[1])
		if _, err := await(f, err, timeout, stop); err != nil {
			return err
		}

	case "log":
		return logSignal(c, opts, stop)

	default:
		return errors.Errorf("unknown command %v", cmd[0])
	}

	return nil
}

func logSignal(c *controllino.Controllino, opts Options, stop <-chan struct{}) error {
	cmd := opts.Command

	if err := needArgs(cmd, 2); err != nil {
		return err
	}

	pin := cmd[1]

	period, err := strconv.Atoi(cmd[2])
	if err != nil {
		return errors.Wrap(err, "invalid period")
	}

	// without a duration, log until interrupted
	var until <-chan time.Time
	if len(cmd) > 3 {
		d, err := time.ParseDuration(cmd[3])
		if err != nil {
			return errors.Wrap(err, "invalid duration")
		}
		until = time.After(d)
	}

	request, recording, err := c.LogSignal(pin, period)
	if _, err := await(request, err, opts.Timeout, stop); err != nil {
		return err
	}

	log.Printf("logging %v every %vms\n", pin, period)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-until:
	case <-sig:
	case <-stop:
		// the session is shutting down, nothing more can be sent
		return errInterrupted
	}

	end, err := c.EndLogSignal(pin)
	if _, err := await(end, err, opts.Timeout, stop); err != nil {
		return err
	}

	ts, err := await(recording, nil, opts.Timeout, stop)
	if err != nil {
		return err
	}

	for i := range ts.Time {
		fmt.Printf("%.3f\t%v\n", ts.Time[i], ts.Values[i])
	}

	return nil
}
