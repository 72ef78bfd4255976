// cmd/controller/loop_test.go
package main

import (
	"context"
	"testing"
	"time"

	"github.com/tamzrod/combat-controller/internal/clock"
	"github.com/tamzrod/combat-controller/internal/failsafe"
	"github.com/tamzrod/combat-controller/internal/motor"
	"github.com/tamzrod/combat-controller/internal/radio"
)

// ---- fakes ----

type fakeSource struct {
	f  radio.Frame
	ok bool
}

func (s *fakeSource) Run(ctx context.Context) error { return nil }
func (s *fakeSource) Latest() (radio.Frame, bool)   { return s.f, s.ok }
func (s *fakeSource) Close() error                  { return nil }

type fakeBackend struct {
	speed    int16
	disabled bool
	fault    motor.FaultStatus
}

func (b *fakeBackend) Disable() error {
	b.disabled = true
	return nil
}

func (b *fakeBackend) Command(s int16) error {
	b.disabled = false
	b.speed = s
	return nil
}

func (b *fakeBackend) FaultStatus() motor.FaultStatus { return b.fault }

const (
	armCh      = 4
	prearmCh   = 5
	throttleCh = 1
)

type rig struct {
	ctl     *controller
	src     *fakeSource
	clk     *clock.Manual
	backend *fakeBackend
	reg     *failsafe.Registry
}

func newRig(t *testing.T) *rig {
	t.Helper()
	clk := &clock.Manual{}
	reg, err := failsafe.New(failsafe.Config{
		FullScale:           2047,
		ArmThresholdPercent: 90,
		RearmTimeout:        time.Second,
		RepeatThreshold:     3,
	}, clk, nil)
	if err != nil {
		t.Fatal(err)
	}
	boot, _ := reg.Claim(failsafe.Boot)
	link, _ := reg.Claim(failsafe.RadioLink)
	fault, _ := reg.Claim(failsafe.MotorFault)

	src := &fakeSource{}
	mon, err := radio.NewMonitor(src, link, clk, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	b := &fakeBackend{fault: motor.FaultNone}
	drv, err := motor.NewDriver("drive", b, reg, false, nil)
	if err != nil {
		t.Fatal(err)
	}

	return &rig{
		ctl: &controller{
			reg:           reg,
			boot:          boot,
			mon:           mon,
			group:         motor.NewGroup(fault, drv),
			throttles:     []throttle{{drv: drv, channel: throttleCh}},
			armChannel:    armCh,
			prearmChannel: prearmCh,
			fullScale:     2047,
		},
		src:     src,
		clk:     clk,
		backend: b,
		reg:     reg,
	}
}

// step delivers a fresh frame and runs one tick.
func (r *rig) step(arm, prearm bool, throttle uint16) {
	var f radio.Frame
	for i := range f.Channels {
		f.Channels[i] = radio.Channel{Value: 1024, Valid: true}
	}
	f.Channels[armCh] = sw(arm)
	f.Channels[prearmCh] = sw(prearm)
	f.Channels[throttleCh] = radio.Channel{Value: throttle, Valid: true}
	f.Millis = r.clk.Millis()

	r.src.f, r.src.ok = f, true
	r.ctl.tick()
	r.clk.Advance(5 * time.Millisecond)
}

func sw(on bool) radio.Channel {
	if on {
		return radio.Channel{Value: 2047, Valid: true}
	}
	return radio.Channel{Value: 0, Valid: true}
}

// ---- tests ----

func TestTick_BootThenArmThenDrive(t *testing.T) {
	r := newRig(t)

	r.step(false, false, 2047)
	if !r.backend.disabled {
		t.Fatalf("motor powered before arming")
	}
	if r.reg.IsSet(failsafe.Boot) {
		t.Fatalf("boot not cleared after first pass")
	}

	r.step(false, true, 2047)
	r.step(true, true, 2047)
	// arming takes effect on the tick's registry update, so the same tick drives
	if r.backend.disabled || r.backend.speed != motor.MaxSpeed {
		t.Fatalf("armed motor: disabled=%v speed=%d", r.backend.disabled, r.backend.speed)
	}
}

func TestTick_RadioLossNeutralizes(t *testing.T) {
	r := newRig(t)
	r.step(false, false, 1024)
	r.step(false, true, 1024)
	r.step(true, true, 2047)
	if r.backend.disabled {
		t.Fatalf("expected armed")
	}

	// frames stop arriving
	r.clk.Advance(500 * time.Millisecond)
	r.ctl.tick()
	if !r.backend.disabled {
		t.Fatalf("stale radio must disable the motor")
	}
	if !r.reg.IsSet(failsafe.RadioLink) {
		t.Fatalf("radio link reason not raised")
	}

	// link back with the switches still on: needs a full re-arm
	r.step(true, true, 2047)
	if !r.backend.disabled {
		t.Fatalf("re-armed without releasing switches")
	}
	r.step(false, false, 1024)
	r.step(false, true, 1024)
	r.step(true, true, 1024)
	if r.backend.disabled {
		t.Fatalf("expected re-arm, mask %s", r.reg.Mask())
	}
}

func TestTick_MotorFaultNeutralizes(t *testing.T) {
	r := newRig(t)
	r.step(false, false, 1024)
	r.step(false, true, 1024)
	r.step(true, true, 2047)

	r.backend.fault = motor.FaultActive
	r.step(true, true, 2047)
	if !r.backend.disabled || !r.reg.IsSet(failsafe.MotorFault) {
		t.Fatalf("fault must neutralize on the same tick")
	}

	r.backend.fault = motor.FaultNone
	r.step(true, true, 2047)
	if r.backend.disabled {
		t.Fatalf("transient fault should recover while armed, mask %s", r.reg.Mask())
	}
}

func TestRun_DisablesOnShutdown(t *testing.T) {
	r := newRig(t)
	r.step(false, false, 1024)
	r.step(false, true, 1024)
	r.step(true, true, 2047)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.ctl.run(ctx, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if !r.backend.disabled {
		t.Fatalf("shutdown must disable motors")
	}
}
