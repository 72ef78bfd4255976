// internal/failsafe/armswitch.go
package failsafe

import "github.com/tamzrod/combat-controller/internal/radio"

func (r *Registry) on(ch radio.Channel) bool {
	return ch.Valid && ch.Value > r.threshold
}

// Tick runs the arm-switch policy once. Call it once per main-loop iteration
// with the latest arm and pre-arm channel readings.
//
// Arming needs three things at once: both switches released since the last
// arm, pre-arm turned on strictly before arm, and both on now.
// Forced disarm (timeout or repeat lockout) is cleared only by a valid,
// released arm switch.
func (r *Registry) Tick(arm, prearm radio.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clk.Millis()
	armOn := r.on(arm)
	prearmOn := r.on(prearm)

	if r.releasedFirst && r.prearmFirst && prearmOn && armOn {
		r.clear(ArmSwitch)
		// no re-arm until both switches are released again
		r.releasedFirst = false
	} else if !armOn {
		r.set(ArmSwitch)
	}

	// ------------------------------------------------------------
	// Forced re-arm: one shot per failsafe episode
	// ------------------------------------------------------------

	if !r.rearmExpired && r.mask != 0 && now-r.rearmStart > r.timeoutMs {
		r.log.Warn(logKey, "failsafe held > %dms, forcing re-arm", r.timeoutMs)
		r.set(ArmSwitchDisarm)
		r.rearmExpired = true
	}

	if !r.repeatLockout && r.mask != 0 && r.repeatCount > r.cfg.RepeatThreshold {
		r.log.Warn(logKey, "%d failsafe entries, forcing re-arm", r.repeatCount)
		r.set(ArmSwitchDisarm)
		r.repeatLockout = true
	}

	// clean release recovers forced disarm
	if arm.Valid && !armOn {
		r.clear(ArmSwitchDisarm)
		r.repeatCount = 0
		r.repeatLockout = false
	}

	r.prearmFirst = prearmOn && !armOn
	if !prearmOn && !armOn {
		r.releasedFirst = true
	}
}
