// internal/source/modbus/runner.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/netclass"
)

// observation is what change detection compares between polls.
type observation struct {
	reading netclass.Reading
	failed  bool
}

// Start begins the poll loop. onChange fires whenever a poll differs
// from the previous one, including transitions into and out of failure.
// Start fails if no client can be connected.
func (s *Source) Start(onChange func()) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.cancel != nil {
		return errors.New("modbus source: already started")
	}

	s.mu.Lock()
	_, err := s.clientLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, onChange, s.done)
	return nil
}

// Stop ends the poll loop and closes the client.
// It waits for an in-flight poll and onChange call to return.
func (s *Source) Stop() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closeLocked(); err != nil {
		return fmt.Errorf("modbus source: close: %w", err)
	}
	return nil
}

// run is the ticker loop. One goroutine per activation. No overlap.
func (s *Source) run(ctx context.Context, onChange func(), done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	prev := s.observe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := s.observe()
			if cur == prev {
				continue
			}
			s.log.Debug("modbus source: change",
				zap.Stringer("from", prev.reading),
				zap.Stringer("to", cur.reading),
				zap.Bool("failed", cur.failed),
			)
			prev = cur
			if ctx.Err() != nil {
				return
			}
			onChange()
		}
	}
}

func (s *Source) observe() observation {
	r, err := s.Reading()
	if err != nil {
		s.log.Debug("modbus source: poll failed", zap.Error(err))
		return observation{failed: true}
	}
	return observation{reading: r}
}
