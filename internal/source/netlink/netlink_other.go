// internal/source/netlink/netlink_other.go

//go:build !linux

package netlink

import (
	"fmt"
	"runtime"
)

// Start is unsupported outside Linux; the watcher reports it as an
// activation failure. Reading still works against a sysfs-shaped tree.
func (s *Source) Start(onChange func()) error {
	return fmt.Errorf("netlink source: unsupported on %s", runtime.GOOS)
}

// Stop is a no-op outside Linux.
func (s *Source) Stop() error { return nil }
