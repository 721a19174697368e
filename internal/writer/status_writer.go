// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/netclass/internal/status"
)

// statusWriter is the concrete StatusWriter backed by holding registers.
type statusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
}

// NewStatusWriter builds a status writer for plan.
// The first successful write re-asserts the full block.
func NewStatusWriter(plan StatusPlan, cli endpointClient) (*statusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if (uint32(plan.BaseSlot)+1)*status.SlotsPerDevice > 0x10000 {
		return nil, fmt.Errorf("status writer: status_slot %d exceeds address space", plan.BaseSlot)
	}
	return &statusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true,
	}, nil
}

// WriteStatus delivers a network status snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *statusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.cli == nil {
		return errors.New("status writer: disabled")
	}

	baseAddr := sw.baseAddr()
	unitID := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.Encode(s, sw.plan.DeviceName)

		if err := sw.cli.WriteRegisters(unitID, baseAddr, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	// Slot 0: class_code
	if sw.last.Class != s.Class {
		if err := sw.cli.WriteRegisters(unitID, baseAddr+status.SlotClassCode, []uint16{s.Class}); err != nil {
			errs = append(errs, fmt.Sprintf("slot0 class write failed: %v", err))
		} else {
			sw.last.Class = s.Class
		}
	}

	// Slot 1: change_count
	if sw.last.Changes != s.Changes {
		if err := sw.cli.WriteRegisters(unitID, baseAddr+status.SlotChangeCount, []uint16{s.Changes}); err != nil {
			errs = append(errs, fmt.Sprintf("slot1 change_count write failed: %v", err))
		} else {
			sw.last.Changes = s.Changes
		}
	}

	// Slot 2: seconds_in_class
	if sw.last.SecondsInClass != s.SecondsInClass {
		if err := sw.cli.WriteRegisters(unitID, baseAddr+status.SlotSecondsInClass, []uint16{s.SecondsInClass}); err != nil {
			errs = append(errs, fmt.Sprintf("slot2 seconds write failed: %v", err))
		} else {
			sw.last.SecondsInClass = s.SecondsInClass
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *statusWriter) baseAddr() uint16 {
	// The block owns a fixed SlotsPerDevice range.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}
