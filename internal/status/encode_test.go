// internal/status/encode_test.go
package status

import (
	"testing"

	"github.com/tamzrod/netclass/internal/netclass"
)

func TestEncode_Layout(t *testing.T) {
	regs := Encode(Snapshot{Class: 4, Changes: 7, SecondsInClass: 42}, "RUT-955")

	if len(regs) != SlotsPerDevice {
		t.Fatalf("expected %d regs, got %d", SlotsPerDevice, len(regs))
	}
	if regs[SlotClassCode] != 4 || regs[SlotChangeCount] != 7 || regs[SlotSecondsInClass] != 42 {
		t.Fatalf("live slots mismatch: %v", regs[:3])
	}
	for i := SlotReservedStart; i <= SlotReservedEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("reserved slot %d not zero: %d", i, regs[i])
		}
	}

	// "RU" "T-" "95" "5\0"
	want := []uint16{0x5255, 0x542D, 0x3935, 0x3500, 0, 0, 0, 0}
	for i, w := range want {
		if got := regs[SlotDeviceNameStart+i]; got != w {
			t.Fatalf("name slot %d: got=%#04x want=%#04x", i, got, w)
		}
	}
}

func TestEncodeDeviceName_TruncateAndSanitize(t *testing.T) {
	regs := EncodeDeviceName("ABCDEFGHIJKLMNOPQRST")
	if regs[SlotDeviceNameSlots-1] != uint16('O')<<8|uint16('P') {
		t.Fatalf("expected truncation at 16 chars, last=%#04x", regs[SlotDeviceNameSlots-1])
	}

	regs = EncodeDeviceName("A\tB")
	if regs[0] != uint16('A')<<8|uint16('?') {
		t.Fatalf("control char not sanitized: %#04x", regs[0])
	}
}

func TestSnapshot_ObserveAndTick(t *testing.T) {
	s := Initial(netclass.WiFi)
	if s.Class != 3 || s.Changes != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", s)
	}

	if s.Observe(netclass.WiFi) {
		t.Fatalf("same class must not change snapshot")
	}

	s.Tick()
	s.Tick()
	if s.SecondsInClass != 2 {
		t.Fatalf("seconds: got=%d want=2", s.SecondsInClass)
	}

	if !s.Observe(netclass.Mobile4G) {
		t.Fatalf("class change not observed")
	}
	if s.Class != 4 || s.Changes != 1 || s.SecondsInClass != 0 {
		t.Fatalf("unexpected snapshot after change: %+v", s)
	}
}

func TestSnapshot_Saturates(t *testing.T) {
	s := Snapshot{Changes: CounterMax, SecondsInClass: CounterMax}
	if s.Tick() {
		t.Fatalf("tick must not wrap")
	}
	s.Observe(netclass.Mobile5G)
	if s.Changes != CounterMax {
		t.Fatalf("changes wrapped: %d", s.Changes)
	}
}
