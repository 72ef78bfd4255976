// internal/failsafe/registry.go
package failsafe

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tamzrod/combat-controller/internal/clock"
	"github.com/tamzrod/combat-controller/internal/logger"
)

const logKey = "failsafe"

// Config is the arming policy. Immutable after New.
type Config struct {
	// FullScale is the maximum raw channel value.
	FullScale uint16
	// ArmThresholdPercent of FullScale a switch must exceed to count as on.
	ArmThresholdPercent uint8
	// RearmTimeout forces a re-arm when a failsafe is held longer than this.
	RearmTimeout time.Duration
	// RepeatThreshold forces a re-arm after more failsafe entries than this.
	RepeatThreshold uint32
}

// Registry is the single arbiter of whether actuators may be powered.
//
// Every collaborator shares one Registry. A collaborator owning a reason gets
// an Owner from Claim and touches only that bit. The two arm-switch reasons
// belong to Tick.
type Registry struct {
	mu  sync.Mutex
	clk clock.Source
	log *logger.Logger
	cfg Config

	threshold uint16
	timeoutMs int64

	mask    Mask
	claimed Mask

	rearmStart    int64
	rearmExpired  bool
	repeatCount   uint32
	repeatLockout bool

	prearmFirst   bool
	releasedFirst bool
}

// New creates a registry with Boot and ArmSwitchDisarm active, so nothing can
// energize before startup completes and the arm switch has been released.
func New(cfg Config, clk clock.Source, log *logger.Logger) (*Registry, error) {
	if clk == nil {
		return nil, errors.New("failsafe: clock required")
	}
	if cfg.FullScale == 0 {
		return nil, errors.New("failsafe: full scale must be > 0")
	}
	if cfg.ArmThresholdPercent == 0 || cfg.ArmThresholdPercent > 100 {
		return nil, fmt.Errorf("failsafe: arm threshold %d%% out of range", cfg.ArmThresholdPercent)
	}
	if cfg.RearmTimeout <= 0 {
		return nil, errors.New("failsafe: rearm timeout must be > 0")
	}

	return &Registry{
		clk:        clk,
		log:        log,
		cfg:        cfg,
		threshold:  uint16(uint32(cfg.FullScale) * uint32(cfg.ArmThresholdPercent) / 100),
		timeoutMs:  cfg.RearmTimeout.Milliseconds(),
		mask:       Bit(Boot) | Bit(ArmSwitchDisarm),
		claimed:    Bit(ArmSwitch) | Bit(ArmSwitchDisarm),
		rearmStart: clk.Millis(),
	}, nil
}

// Threshold is the raw value a switch channel must exceed.
func (r *Registry) Threshold() uint16 { return r.threshold }

// Set activates reason. Entering failsafe from an empty mask restarts the
// rearm timeout and counts one failsafe event.
func (r *Registry) Set(reason Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set(reason)
}

// Clear deactivates reason.
func (r *Registry) Clear(reason Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clear(reason)
}

// SetValue dispatches to Set or Clear.
func (r *Registry) SetValue(reason Reason, active bool) {
	if active {
		r.Set(reason)
	} else {
		r.Clear(reason)
	}
}

func (r *Registry) set(reason Reason) {
	old := r.mask
	r.mask |= Bit(reason)
	if old.Has(reason) {
		return
	}

	r.log.Info(logKey, "set %s, mask %s", reason, r.mask)
	if old == 0 {
		r.log.Warn(logKey, "FAILSAFE SET")
		r.rearmStart = r.clk.Millis()
		r.rearmExpired = false
		r.repeatCount++
	}
}

func (r *Registry) clear(reason Reason) {
	old := r.mask
	r.mask &^= Bit(reason)
	if !old.Has(reason) {
		return
	}

	r.log.Info(logKey, "cleared %s, mask %s", reason, r.mask)
	if r.mask == 0 {
		r.log.Warn(logKey, "ARMED")
	}
}

// Mask returns the active reasons.
func (r *Registry) Mask() Mask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mask
}

// Active reports whether any reason is set. Actuators must be neutral while
// this is true.
func (r *Registry) Active() bool {
	return r.Mask() != 0
}

// IsSet reports whether reason is active.
func (r *Registry) IsSet(reason Reason) bool {
	return r.Mask().Has(reason)
}

// Armed reports whether actuators may be powered.
func (r *Registry) Armed() bool {
	return r.Mask() == 0
}

// Expired reports whether the rearm timeout fired in the current episode.
func (r *Registry) Expired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rearmExpired
}

// LockedOut reports whether the repeat-failsafe lockout fired.
func (r *Registry) LockedOut() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repeatLockout
}

// RepeatCount returns failsafe entries since the last clean release.
func (r *Registry) RepeatCount() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repeatCount
}

// ---- ownership ----

// Owner is a collaborator's handle on exactly one reason.
type Owner struct {
	r      *Registry
	reason Reason
}

// Claim hands out the only Owner for reason.
// Arm-switch reasons are never claimable.
func (r *Registry) Claim(reason Reason) (*Owner, error) {
	if reason >= MaxReasons {
		return nil, fmt.Errorf("failsafe: reason %d out of range", uint8(reason))
	}
	if reason.reserved() {
		return nil, fmt.Errorf("failsafe: reason %s is managed by the arm switch policy", reason)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.claimed.Has(reason) {
		return nil, fmt.Errorf("failsafe: reason %s already claimed", reason)
	}
	r.claimed |= Bit(reason)
	return &Owner{r: r, reason: reason}, nil
}

func (o *Owner) Reason() Reason { return o.reason }

func (o *Owner) Set() { o.r.Set(o.reason) }

func (o *Owner) Clear() { o.r.Clear(o.reason) }

func (o *Owner) SetValue(active bool) { o.r.SetValue(o.reason, active) }

func (o *Owner) Active() bool { return o.r.IsSet(o.reason) }
