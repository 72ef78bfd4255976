// cmd/controller/main.go
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"periph.io/x/host/v3"

	"github.com/tamzrod/combat-controller/internal/clock"
	"github.com/tamzrod/combat-controller/internal/config"
	"github.com/tamzrod/combat-controller/internal/control"
	"github.com/tamzrod/combat-controller/internal/encoder"
	"github.com/tamzrod/combat-controller/internal/failsafe"
	"github.com/tamzrod/combat-controller/internal/logger"
	"github.com/tamzrod/combat-controller/internal/motor"
	"github.com/tamzrod/combat-controller/internal/radio"
	"github.com/tamzrod/combat-controller/internal/status"
	"github.com/tamzrod/combat-controller/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: controller <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)
	c := cfg.Controller

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System()
	bootID := strings.ReplaceAll(uuid.New().String(), "-", "")[:status.BootIDChars]

	// --------------------
	// Logger
	// --------------------

	var sink io.Writer = os.Stderr
	if c.Log.SerialPort != "" {
		port, err := logger.OpenSerial(c.Log.SerialPort, c.Log.Baud)
		if err != nil {
			log.Fatalf("log sink failed: %v", err)
		}
		defer port.Close()
		sink = port
	}

	level, _ := logger.ParseLevel(c.Log.Level) // checked by Validate
	lg, err := logger.New(c.Log.Capacity, level, clk, sink, "["+bootID[:8]+"] ")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	lg.Info(logKey, "%s starting, boot %s", c.Name, bootID)

	// --------------------
	// Failsafe registry (Boot held until the first loop pass)
	// --------------------

	reg, err := failsafe.New(failsafe.Config{
		FullScale:           c.Radio.FullScale,
		ArmThresholdPercent: c.Failsafe.ArmThresholdPercent,
		RearmTimeout:        time.Duration(c.Failsafe.RearmTimeoutMs) * time.Millisecond,
		RepeatThreshold:     c.Failsafe.RepeatThreshold,
	}, clk, lg)
	if err != nil {
		log.Fatalf("failsafe init failed: %v", err)
	}
	boot := mustClaim(reg, failsafe.Boot)
	link := mustClaim(reg, failsafe.RadioLink)
	fault := mustClaim(reg, failsafe.MotorFault)

	// --------------------
	// Hardware registry
	// --------------------

	if _, err := host.Init(); err != nil {
		log.Fatalf("periph init failed: %v", err)
	}

	// --------------------
	// Radio
	// --------------------

	src, err := radio.Build(c.Radio, clk)
	if err != nil {
		log.Fatalf("radio build failed: %v", err)
	}
	defer src.Close()

	mon, err := radio.NewMonitor(src, link, clk, time.Duration(c.Radio.StaleMs)*time.Millisecond)
	if err != nil {
		log.Fatalf("radio monitor failed: %v", err)
	}

	go func() {
		if err := src.Run(ctx); err != nil {
			lg.Error("radio", "receiver stopped: %v", err)
		}
	}()

	// --------------------
	// Encoder (optional)
	// --------------------

	var enc *encoder.Encoder
	var encView status.EncoderView
	if c.Encoder != nil {
		enc, err = encoder.Build(*c.Encoder, clk)
		if err != nil {
			log.Fatalf("encoder build failed: %v", err)
		}
		encView = enc

		go func() {
			if err := enc.Watch(ctx); err != nil {
				lg.Error("encoder", "watch stopped: %v", err)
			}
		}()
	}

	// --------------------
	// Motors (+ weapon speed loop)
	// --------------------

	drivers, err := motor.Build(c.Motors, reg, lg, nil)
	if err != nil {
		log.Fatalf("motor build failed: %v", err)
	}
	group := motor.NewGroup(fault, drivers...)

	ctl := &controller{
		log:           lg,
		reg:           reg,
		boot:          boot,
		mon:           mon,
		enc:           enc,
		group:         group,
		armChannel:    c.Radio.ArmChannel,
		prearmChannel: c.Radio.PrearmChannel,
		fullScale:     c.Radio.FullScale,
	}

	for i, m := range c.Motors {
		t := throttle{drv: drivers[i], channel: m.ThrottleChannel}

		if c.Weapon != nil && c.Weapon.Motor == m.Name {
			w := c.Weapon
			loop, err := control.NewLoop[int32, int16](0, w.MaxRPM, 0, motor.MaxSpeed, control.Proportional{
				FFNum: int64(motor.MaxSpeed),
				FFDen: int64(w.MaxRPM),
				KpNum: int64(w.GainNumerator),
				KpDen: int64(w.GainDenominator),
			}, lg, "weapon")
			if err != nil {
				log.Fatalf("weapon loop failed: %v", err)
			}
			t.speed = loop
			ctl.maxRPM = w.MaxRPM
		}
		ctl.throttles = append(ctl.throttles, t)
	}

	// --------------------
	// Status telemetry (optional)
	// --------------------

	if c.Status != nil {
		sw, closeWriter, err := writer.BuildStatusWriter(*c.Status, bootID)
		if err != nil {
			log.Fatalf("status writer failed: %v", err)
		}
		defer closeWriter()

		collector := status.NewCollector(reg, encView, lg)
		go publishStatus(ctx, sw, collector, time.Duration(c.Status.IntervalMs)*time.Millisecond, lg)
	}

	// --------------------
	// Main loop (blocks until signal)
	// --------------------

	if err := ctl.run(ctx, time.Duration(c.Loop.IntervalMs)*time.Millisecond); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func mustClaim(reg *failsafe.Registry, r failsafe.Reason) *failsafe.Owner {
	o, err := reg.Claim(r)
	if err != nil {
		log.Fatalf("failsafe claim failed: %v", err)
	}
	return o
}

// publishStatus writes a snapshot every interval and keeps the 1 Hz
// failsafe duration counter.
func publishStatus(ctx context.Context, sw *writer.StatusWriter, col *status.Collector, interval time.Duration, lg *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	var lastErr string
	write := func() {
		if err := sw.WriteStatus(col.Snapshot()); err != nil {
			if err.Error() != lastErr {
				lg.Warn("status", "%v", err)
			}
			lastErr = err.Error()
			return
		}
		lastErr = ""
	}

	// Full block write on start (identity re-assert).
	write()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			write()
		case <-secTicker.C:
			col.TickSecond()
		}
	}
}
