// internal/config/validate.go
package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// maxRATRegisters bounds the RAT span (16 ASCII characters).
const maxRATRegisters = 8

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// SOURCE
	// ------------------------------------------------------------

	switch cfg.Source.Kind {
	case SourceModbus:
		if err := validateModbusSource(cfg.Source.Modbus); err != nil {
			return err
		}
	case SourceNetlink:
		// all fields optional
	case "":
		return fmt.Errorf("source.kind is required (%q or %q)", SourceModbus, SourceNetlink)
	default:
		return fmt.Errorf("source.kind %q: must be %q or %q", cfg.Source.Kind, SourceModbus, SourceNetlink)
	}

	// ------------------------------------------------------------
	// WATCHER
	// ------------------------------------------------------------

	if cfg.Watcher.Buffer < 0 {
		return fmt.Errorf("watcher.buffer must be >= 0, got %d", cfg.Watcher.Buffer)
	}

	// ------------------------------------------------------------
	// PUBLISH (OPT-IN)
	// ------------------------------------------------------------

	if p := cfg.Publish; p.Enabled() {
		if p.Endpoint == "" {
			return fmt.Errorf("publish: status_slot is set but endpoint is empty")
		}
		// device_name sanity (ASCII only)
		for i := 0; i < len(p.DeviceName); i++ {
			if p.DeviceName[i] > 0x7F {
				return fmt.Errorf("publish: device_name must contain ASCII characters only")
			}
		}
		if p.TimeoutMs < 0 {
			return fmt.Errorf("publish: timeout_ms must be >= 0")
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.Level != "" {
		if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch cfg.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.encoding %q: must be json or console", cfg.Log.Encoding)
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log: rotation limits must be >= 0")
	}

	return nil
}

func validateModbusSource(m ModbusSource) error {
	switch m.Mode {
	case "", "tcp":
		if m.Endpoint == "" {
			return fmt.Errorf("source.modbus: endpoint is required in tcp mode")
		}
	case "rtu":
		if m.Device == "" {
			return fmt.Errorf("source.modbus: device is required in rtu mode")
		}
		switch m.Parity {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("source.modbus: parity %q: must be N, E or O", m.Parity)
		}
	default:
		return fmt.Errorf("source.modbus: mode %q: must be tcp or rtu", m.Mode)
	}

	if m.TimeoutMs < 0 || m.IntervalMs < 0 {
		return fmt.Errorf("source.modbus: timeout_ms and interval_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// REGISTER GEOMETRY
	// ------------------------------------------------------------

	r := m.Registers
	if r.RATLength > maxRATRegisters {
		return fmt.Errorf("source.modbus: rat_length %d exceeds %d registers", r.RATLength, maxRATRegisters)
	}
	if r.RATLength > 0 {
		start := uint32(r.RAT)
		end := start + uint32(r.RATLength) - 1
		if end > 0xFFFF {
			return fmt.Errorf("source.modbus: rat registers %d-%d exceed address space", start, end)
		}
		// overlap check (inclusive)
		if iface := uint32(r.Interface); iface >= start && iface <= end {
			return fmt.Errorf(
				"source.modbus: interface register %d overlaps rat registers %d-%d",
				iface, start, end,
			)
		}
	}

	return nil
}
