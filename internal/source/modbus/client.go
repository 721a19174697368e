// internal/source/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// ClientConfig is minimal transport config.
type ClientConfig struct {
	Mode     string // "tcp" (default) or "rtu"
	Endpoint string // tcp: host:port
	Device   string // rtu: serial device path
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
	UnitID   uint8
	Timeout  time.Duration
}

// handler is what both goburrow handlers provide.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Client implements Registers on top of goburrow/modbus.
// It serializes requests; goburrow handlers are not safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	handler handler
	client  modbus.Client
}

// Dial creates a connected client.
func Dial(cfg ClientConfig) (*Client, error) {
	var h handler

	switch cfg.Mode {
	case "", "tcp":
		if cfg.Endpoint == "" {
			return nil, errors.New("modbus client: endpoint required")
		}
		t := modbus.NewTCPClientHandler(cfg.Endpoint)
		t.Timeout = cfg.Timeout
		t.SlaveId = cfg.UnitID
		h = t

	case "rtu":
		if cfg.Device == "" {
			return nil, errors.New("modbus client: device required")
		}
		r := modbus.NewRTUClientHandler(cfg.Device)
		r.BaudRate = cfg.BaudRate
		r.DataBits = cfg.DataBits
		r.Parity = cfg.Parity
		r.StopBits = cfg.StopBits
		r.SlaveId = cfg.UnitID
		r.Timeout = cfg.Timeout
		h = r

	default:
		return nil, fmt.Errorf("modbus client: unknown mode %q", cfg.Mode)
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus client: connect: %w", err)
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ReadHoldingRegisters implements Registers.
func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	if len(raw)%2 != 0 {
		return nil, errors.New("modbus: read-registers byte count not even")
	}
	return unpackRegisters(raw), nil
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
