// internal/source/modbus/source.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/netclass"
)

// Source reads connectivity from a cellular router over Modbus.
//
// The client is reused while healthy. On any read failure it is discarded
// and the factory is used on a future poll. No retries inside a poll.
type Source struct {
	cfg     Config
	factory ClientFactory
	log     *zap.Logger

	mu     sync.Mutex // guards client
	client Registers

	runMu  sync.Mutex // guards cancel, done
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a source with immutable config.
// client may be nil, in which case the factory connects on first use.
func New(cfg Config, client Registers, factory ClientFactory, log *zap.Logger) (*Source, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("modbus source: interval must be > 0")
	}
	if cfg.Map.RATLength > MaxRATRegisters {
		return nil, fmt.Errorf("modbus source: rat length %d exceeds %d registers", cfg.Map.RATLength, MaxRATRegisters)
	}
	if client == nil && factory == nil {
		return nil, errors.New("modbus source: client or factory required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{cfg: cfg, client: client, factory: factory, log: log}, nil
}

// Reading performs exactly one poll.
// All-or-nothing: any failure aborts the poll and drops the client.
func (s *Source) Reading() (netclass.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cli, err := s.clientLocked()
	if err != nil {
		return netclass.Reading{}, err
	}

	r, err := s.poll(cli)
	if err != nil {
		s.discardLocked()
		return netclass.Reading{}, err
	}
	return r, nil
}

// Close stops notifications and releases the client.
func (s *Source) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Source) poll(cli Registers) (netclass.Reading, error) {
	m := s.cfg.Map

	regs, err := cli.ReadHoldingRegisters(m.Interface, 1)
	if err != nil {
		return netclass.Reading{}, fmt.Errorf("modbus source: read interface register %d: %w", m.Interface, err)
	}
	if len(regs) < 1 {
		return netclass.Reading{}, errors.New("modbus source: short interface read")
	}

	r := netclass.Reading{Interface: netclass.InterfaceKind(regs[0])}
	if r.Interface != netclass.KindCellular || m.RATLength == 0 {
		return r, nil
	}

	regs, err = cli.ReadHoldingRegisters(m.RAT, m.RATLength)
	if err != nil {
		return netclass.Reading{}, fmt.Errorf("modbus source: read rat registers %d+%d: %w", m.RAT, m.RATLength, err)
	}
	if len(regs) < int(m.RATLength) {
		return netclass.Reading{}, errors.New("modbus source: short rat read")
	}
	r.RAT = decodeASCII(regs)
	return r, nil
}

// ---- client lifecycle (caller holds mu) ----

func (s *Source) clientLocked() (Registers, error) {
	if s.client != nil {
		return s.client, nil
	}
	if s.factory == nil {
		return nil, errors.New("modbus source: not connected")
	}
	cli, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("modbus source: connect: %w", err)
	}
	s.client = cli
	return cli, nil
}

func (s *Source) discardLocked() {
	if err := s.closeLocked(); err != nil {
		s.log.Debug("modbus source: close dead client", zap.Error(err))
	}
}

func (s *Source) closeLocked() error {
	cli := s.client
	s.client = nil
	if c, ok := cli.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// decodeASCII unpacks two characters per register, big-endian,
// stopping at the first NUL.
func decodeASCII(regs []uint16) string {
	b := make([]byte, 0, len(regs)*2)
	for _, r := range regs {
		hi, lo := byte(r>>8), byte(r)
		if hi == 0 {
			break
		}
		b = append(b, hi)
		if lo == 0 {
			break
		}
		b = append(b, lo)
	}
	return netclass.NormalizeRAT(string(b))
}
