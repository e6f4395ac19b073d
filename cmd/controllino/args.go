package main

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/simpleiot/controllino/controllino"
	"github.com/simpleiot/controllino/device"
)

// Options for the controllino command
type Options struct {
	Device  device.Config
	Session controllino.Options
	// Timeout for READY and for each reply
	Timeout time.Duration
	// SkipReady does not wait for RX_READY, for devices that are not reset
	// when the port opens
	SkipReady bool
	Syslog    bool
	List      bool
	Version   bool
	// Command and its arguments
	Command []string
}

// fileConfig is the layout of the -config file
type fileConfig struct {
	Device       device.Config `yaml:"device"`
	Name         string        `yaml:"name"`
	Timeout      string        `yaml:"timeout"`
	Debug        int           `yaml:"debug"`
	DebugFrames  bool          `yaml:"debugFrames"`
	StrictDecode bool          `yaml:"strictDecode"`
}

func loadConfig(path string) (fileConfig, error) {
	var ret fileConfig

	d, err := os.ReadFile(path)
	if err != nil {
		return ret, errors.Wrap(err, "error reading config")
	}

	if err := yaml.Unmarshal(d, &ret); err != nil {
		return ret, errors.Wrapf(err, "error parsing config %v", path)
	}

	return ret, nil
}

// Args parses command line options. Settings are taken from, in order of
// increasing priority: defaults, the -config file, CONTROLLINO_*
// environment variables, and flags given on the command line.
func Args(args []string, flags *flag.FlagSet) (Options, error) {
	if flags == nil {
		flags = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	}

	flagConfig := flags.String("config", "", "YAML config file")
	flagPort := flags.String("port", "", "serial port, for example /dev/ttyACM0")
	flagBaud := flags.Int("baud", device.DefaultBaud, "baud rate")
	flagDriver := flags.String("driver", device.DriverBugSt, "serial driver: bugst or jacobsa")
	flagName := flags.String("name", "", "session name used in logs")
	flagTimeout := flags.Duration("timeout", 5*time.Second, "timeout for device replies")
	flagDebug := flags.Int("debug", 0, "debug level (0-9)")
	flagDebugFrames := flags.Bool("debugFrames", false, "log DEBUG frames sent by the device")
	flagStrict := flags.Bool("strict", false, "stop on frames that are not valid JSON")
	flagSkipReady := flags.Bool("skipReady", false, "do not wait for the device to announce itself")
	flagSyslog := flags.Bool("syslog", false, "log to syslog instead of stdout")
	flagList := flags.Bool("list", false, "list serial ports and exit")
	flagVersion := flags.Bool("version", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		return Options{}, err
	}

	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	ret := Options{
		Device: device.Config{
			Port:   *flagPort,
			Baud:   *flagBaud,
			Driver: *flagDriver,
		},
		Session: controllino.Options{
			Name:         *flagName,
			Debug:        *flagDebug,
			DebugFrames:  *flagDebugFrames,
			StrictDecode: *flagStrict,
		},
		Timeout:   *flagTimeout,
		SkipReady: *flagSkipReady,
		Syslog:    *flagSyslog,
		List:      *flagList,
		Version:   *flagVersion,
		Command:   flags.Args(),
	}

	// config file
	if *flagConfig != "" {
		cfg, err := loadConfig(*flagConfig)
		if err != nil {
			return Options{}, err
		}

		if cfg.Device.Port != "" && !set["port"] {
			ret.Device.Port = cfg.Device.Port
		}

		if cfg.Device.Baud != 0 && !set["baud"] {
			ret.Device.Baud = cfg.Device.Baud
		}

		if cfg.Device.Driver != "" && !set["driver"] {
			ret.Device.Driver = cfg.Device.Driver
		}

		if cfg.Name != "" && !set["name"] {
			ret.Session.Name = cfg.Name
		}

		if cfg.Timeout != "" && !set["timeout"] {
			t, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				return Options{}, errors.Wrap(err, "error parsing config timeout")
			}
			ret.Timeout = t
		}

		if cfg.Debug != 0 && !set["debug"] {
			ret.Session.Debug = cfg.Debug
		}

		if !set["debugFrames"] {
			ret.Session.DebugFrames = cfg.DebugFrames
		}

		if !set["strict"] {
			ret.Session.StrictDecode = cfg.StrictDecode
		}
	}

	// environment
	if port := os.Getenv("CONTROLLINO_PORT"); port != "" && !set["port"] {
		ret.Device.Port = port
	}

	if baudE := os.Getenv("CONTROLLINO_BAUD"); baudE != "" && !set["baud"] {
		baud, err := strconv.Atoi(baudE)
		if err != nil {
			return Options{}, errors.Wrap(err, "error parsing CONTROLLINO_BAUD")
		}
		ret.Device.Baud = baud
	}

	if driver := os.Getenv("CONTROLLINO_DRIVER"); driver != "" && !set["driver"] {
		ret.Device.Driver = driver
	}

	if debugE := os.Getenv("CONTROLLINO_DEBUG"); debugE != "" && !set["debug"] {
		debug, err := strconv.Atoi(debugE)
		if err != nil {
			return Options{}, errors.Wrap(err, "error parsing CONTROLLINO_DEBUG")
		}
		ret.Session.Debug = debug
	}

	return ret, nil
}
