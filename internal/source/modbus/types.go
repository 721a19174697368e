// internal/source/modbus/types.go
package modbus

import "time"

// Registers abstracts the Modbus reads the source needs.
// The source depends on holding-register geometry only.
type Registers interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
}

// ClientFactory creates a connected client: ONE attempt per call.
type ClientFactory func() (Registers, error)

// Map is the router's register layout.
//
//	Interface: one register, 0 = none, 1 = wifi, 2 = cellular
//	RAT:       RATLength registers, ASCII, two chars per register (big-endian),
//	           NUL or space padded. Empty means no access technology reported.
type Map struct {
	Interface uint16
	RAT       uint16
	RATLength uint16
}

// MaxRATRegisters bounds the RAT span (16 ASCII characters).
const MaxRATRegisters = 8

// Config is the minimal runtime config the source needs.
type Config struct {
	Interval time.Duration
	Map      Map
}
