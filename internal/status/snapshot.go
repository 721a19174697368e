// internal/status/snapshot.go
package status

import "github.com/tamzrod/netclass/internal/netclass"

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Class          uint16
	Changes        uint16
	SecondsInClass uint16
}

// Initial is the snapshot published at start for the given class.
func Initial(c netclass.Class) Snapshot {
	return Snapshot{Class: c.Code()}
}

// Observe applies a delivered class. A different class bumps the change
// counter and resets the seconds; the same class leaves s untouched.
// Reports whether s changed.
func (s *Snapshot) Observe(c netclass.Class) bool {
	code := c.Code()
	if code == s.Class {
		return false
	}
	s.Class = code
	if s.Changes < CounterMax {
		s.Changes++
	}
	s.SecondsInClass = 0
	return true
}

// Tick advances the seconds counter. Reports whether s changed.
func (s *Snapshot) Tick() bool {
	if s.SecondsInClass >= CounterMax {
		return false
	}
	s.SecondsInClass++
	return true
}
