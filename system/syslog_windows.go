//go:build windows

// Package system holds OS integration for the command line tools
package system

import "errors"

// EnableSyslog is not supported on windows
func EnableSyslog(_ string) error {
	return errors.New("syslog not supported on windows")
}
