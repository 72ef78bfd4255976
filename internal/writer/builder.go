// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/combat-controller/internal/config"
	wmodbus "github.com/tamzrod/combat-controller/internal/writer/modbus"
)

// BuildStatusWriter dials the telemetry endpoint and returns a status writer
// plus the function that closes its connection.
// Config MUST already be validated and normalized.
func BuildStatusWriter(s cfg.StatusConfig, bootID string) (*StatusWriter, func() error, error) {
	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: s.Endpoint,
		Timeout:  time.Duration(s.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	sw, err := NewStatusWriter(StatusPlan{
		Endpoint: s.Endpoint,
		UnitID:   s.UnitID,
		BaseSlot: s.BaseSlot,
		BootID:   bootID,
	}, c)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	return sw, c.Close, nil
}
