package domain

import "time"

// DefaultCooldownWindow is the minimum pause between repeated
// low-stock alerts for the same product.
const DefaultCooldownWindow = 24 * time.Hour

// An AlertDecision pairs a low-stock finding with the cooldown verdict.
// NewLastAlertTime is set only when the decision is eligible; the caller
// persists it before or atomically with sending the notification.
type AlertDecision struct {
	Finding          ChangeFinding
	Eligible         bool
	NewLastAlertTime time.Time
}

// DecideAlert applies the cooldown rule to a low-stock finding.
// Eligible when no alert was ever sent, or when at least the full
// window elapsed since the last one (boundary inclusive).
//
// NewLastAlertTime is UTC at second precision, the same resolution the
// store round-trips; a wall-clock now with sub-second digits would
// otherwise never compare equal to its own stored value again.
//
// The gate only suppresses, never transforms a finding. Now is injected
// so the rule stays deterministic.
func DecideAlert(f ChangeFinding, lastAlert, now time.Time, window time.Duration) AlertDecision {
	d := AlertDecision{Finding: f}
	if lastAlert.IsZero() || now.Sub(lastAlert) >= window {
		d.Eligible = true
		d.NewLastAlertTime = now.UTC().Truncate(time.Second)
	}
	return d
}
