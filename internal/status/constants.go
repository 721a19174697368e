// internal/status/constants.go
package status

// Network status block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotClassCode holds the current network class code (0..6).
const SlotClassCode = 0

// SlotChangeCount counts class changes since start. Saturates.
const SlotChangeCount = 1

// SlotSecondsInClass holds how long the current class has been held. Saturates.
const SlotSecondsInClass = 2

// ---- RESERVED RANGE ----

// Slots 3-10 are reserved for future use.
const SlotReservedStart = 3
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// CounterMax is where counters stop instead of wrapping.
const CounterMax = 65535
