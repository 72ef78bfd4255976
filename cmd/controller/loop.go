// cmd/controller/loop.go
package main

import (
	"context"
	"time"

	"github.com/tamzrod/combat-controller/internal/control"
	"github.com/tamzrod/combat-controller/internal/encoder"
	"github.com/tamzrod/combat-controller/internal/failsafe"
	"github.com/tamzrod/combat-controller/internal/logger"
	"github.com/tamzrod/combat-controller/internal/motor"
	"github.com/tamzrod/combat-controller/internal/radio"
)

const (
	logKey       = "main"
	drainPerTick = 16
)

// throttle binds one driver to the radio channel commanding it.
type throttle struct {
	drv     *motor.Driver
	channel int
	// speed loop for the weapon; nil means open loop
	speed *control.Loop[int32, int16]
}

// controller is the main-loop state. Every method runs on the loop goroutine.
type controller struct {
	log       *logger.Logger
	reg       *failsafe.Registry
	boot      *failsafe.Owner
	mon       *radio.Monitor
	enc       *encoder.Encoder // nil when not configured
	group     *motor.Group
	throttles []throttle

	armChannel    int
	prearmChannel int
	fullScale     uint16
	maxRPM        int32

	booted  bool
	lastErr string
}

// tick is one main-loop iteration.
func (c *controller) tick() {
	frame := c.mon.Poll()
	c.reg.Tick(frame.Channels[c.armChannel], frame.Channels[c.prearmChannel])

	if c.enc != nil {
		c.enc.Update()
	}

	inhibited := c.reg.Active()
	for _, t := range c.throttles {
		ch := frame.Channels[t.channel]

		if t.speed == nil {
			t.drv.SetSpeed(ch.Scale(c.fullScale, motor.MinSpeed, motor.MaxSpeed))
			continue
		}

		// closed loop: stick maps onto [0, maxRPM], invalid means stop
		if inhibited || !ch.Valid {
			t.speed.Reset(0)
			t.drv.SetSpeed(0)
			continue
		}
		stick := ch.Scale(c.fullScale, 0, motor.MaxSpeed)
		t.speed.SetSetpoint(int32(int64(stick) * int64(c.maxRPM) / int64(motor.MaxSpeed)))
		t.drv.SetSpeed(t.speed.Step(c.enc.RPM()))
	}

	if err := c.group.Loop(); err != nil {
		if msg := err.Error(); msg != c.lastErr {
			c.log.Error(logKey, "%s", msg)
			c.lastErr = msg
		}
	} else {
		c.lastErr = ""
	}

	// startup completes with the first full pass
	if !c.booted {
		c.boot.Clear()
		c.booted = true
		c.log.Info(logKey, "boot complete")
	}

	c.log.Drain(drainPerTick)
}

// run ticks until ctx is done, then leaves every motor disabled.
func (c *controller) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := c.group.DisableAll()
			c.log.Warn(logKey, "shutdown, motors disabled")
			c.log.Drain(0)
			return err
		case <-ticker.C:
			c.tick()
		}
	}
}
