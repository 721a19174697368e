// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	"github.com/tamzrod/netclass/internal/config"
	wmodbus "github.com/tamzrod/netclass/internal/writer/modbus"
)

// BuildPlan converts the publish config into a StatusPlan.
// Assumes config has already passed validation and normalization.
func BuildPlan(p config.PublishConfig) (StatusPlan, error) {
	if !p.Enabled() {
		return StatusPlan{}, errors.New("writer: publish disabled")
	}
	return StatusPlan{
		Endpoint:   p.Endpoint,
		UnitID:     p.UnitID,
		BaseSlot:   *p.StatusSlot,
		DeviceName: p.DeviceName,
	}, nil
}

// BuildStatusWriter dials the publish endpoint and returns a ready
// writer and its closer.
func BuildStatusWriter(p config.PublishConfig) (StatusWriter, func() error, error) {
	plan, err := BuildPlan(p)
	if err != nil {
		return nil, nil, err
	}

	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: plan.Endpoint,
		Timeout:  time.Duration(p.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	sw, err := NewStatusWriter(plan, c)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return sw, c.Close, nil
}
