// internal/source/builder.go
package source

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/config"
	"github.com/tamzrod/netclass/internal/source/modbus"
	"github.com/tamzrod/netclass/internal/source/netlink"
	"github.com/tamzrod/netclass/internal/watcher"
)

// Build returns a factory for the configured platform source.
// Nothing is opened here; the watcher calls the factory lazily.
// Assumes config has already passed validation and normalization.
func Build(c config.SourceConfig, log *zap.Logger) (watcher.Factory, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch c.Kind {
	case config.SourceModbus:
		return modbusFactory(c.Modbus, log.With(zap.String("source", config.SourceModbus))), nil

	case config.SourceNetlink:
		n := c.Netlink
		cfg := netlink.Config{
			SysfsRoot:   n.SysfsRoot,
			RATFile:     n.RATFile,
			WiredAsWiFi: n.WiredAsWiFi == nil || *n.WiredAsWiFi,
		}
		l := log.With(zap.String("source", config.SourceNetlink))
		return func() (watcher.Source, error) {
			return netlink.New(cfg, l), nil
		}, nil

	default:
		return nil, fmt.Errorf("source: unknown kind %q", c.Kind)
	}
}

func modbusFactory(m config.ModbusSource, log *zap.Logger) watcher.Factory {
	// client factory: ONE attempt per call
	clients := func() (modbus.Registers, error) {
		c, err := modbus.Dial(modbus.ClientConfig{
			Mode:     m.Mode,
			Endpoint: m.Endpoint,
			Device:   m.Device,
			BaudRate: m.BaudRate,
			DataBits: m.DataBits,
			Parity:   m.Parity,
			StopBits: m.StopBits,
			UnitID:   m.UnitID,
			Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	cfg := modbus.Config{
		Interval: time.Duration(m.IntervalMs) * time.Millisecond,
		Map: modbus.Map{
			Interface: m.Registers.Interface,
			RAT:       m.Registers.RAT,
			RATLength: m.Registers.RATLength,
		},
	}

	return func() (watcher.Source, error) {
		// initial client (fail fast on first use)
		client, err := clients()
		if err != nil {
			return nil, fmt.Errorf("source: connect %s: %w", m.Mode, err)
		}
		src, err := modbus.New(cfg, client, clients, log)
		if err != nil {
			if c, ok := client.(io.Closer); ok {
				_ = c.Close()
			}
			return nil, err
		}
		return src, nil
	}
}
