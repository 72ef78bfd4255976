// internal/radio/builder.go
package radio

import (
	"fmt"
	"time"

	"github.com/tamzrod/combat-controller/internal/clock"
	cfg "github.com/tamzrod/combat-controller/internal/config"
)

// Build opens the receiver named by the radio config.
// Fail fast at startup; the caller owns Close.
func Build(r cfg.RadioConfig, clk clock.Source) (Source, error) {
	switch r.Protocol {
	case cfg.ProtocolSBUS:
		return OpenSBUS(r.Device, r.FullScale, clk)

	case cfg.ProtocolModbus:
		return DialModbusBridge(
			r.Endpoint,
			r.UnitID,
			time.Duration(r.TimeoutMs)*time.Millisecond,
			BridgeConfig{
				Address:   r.Address,
				Count:     r.Count,
				Interval:  time.Duration(r.PollIntervalMs) * time.Millisecond,
				FullScale: r.FullScale,
			},
			clk,
		)

	default:
		return nil, fmt.Errorf("radio: unsupported protocol %q", r.Protocol)
	}
}
