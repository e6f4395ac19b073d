//go:build !windows

// Package system holds OS integration for the command line tools
package system

import (
	"log"
	"log/syslog"
)

// EnableSyslog sends the standard logger to syslog, tagged with tag.
// Timestamps are left to syslog.
func EnableSyslog(tag string) error {
	lgr, err := syslog.New(syslog.LOG_NOTICE|syslog.LOG_DAEMON, tag)
	if err != nil {
		return err
	}

	log.SetFlags(0)
	log.SetOutput(lgr)

	return nil
}
