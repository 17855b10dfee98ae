// FILE: protection/margin.go
// Package protection – the margin monitor (C4 step 2). Tracks the account's
// usage ratio, computes its tier, and gates opening orders that would push
// the account into an unacceptable tier or below the minimum available
// margin. Also raises a cooldown-gated alert whenever the tier changes.
package protection

import (
	"math"
	"time"

	"github.com/chidi150c/futures-kernel/kernel"
)

// MarginThresholds are the increasing tier boundaries (usage ratio); danger
// may equal critical.
type MarginThresholds struct {
	SafeThreshold     float64 // default 0.50
	WarningThreshold  float64 // default 0.70
	DangerThreshold   float64 // default 0.85
	CriticalThreshold float64 // default 1.00
	MinAvailableMargin float64
	AlertCooldown      time.Duration // default 300s
}

// DefaultMarginThresholds mirrors the commonly used defaults.
func DefaultMarginThresholds() MarginThresholds {
	return MarginThresholds{
		SafeThreshold:      0.50,
		WarningThreshold:   0.70,
		DangerThreshold:    0.85,
		CriticalThreshold:  1.00,
		MinAvailableMargin: 0,
		AlertCooldown:      300 * time.Second,
	}
}

// Validate enforces safe < warning < danger <= critical; this is a programmer
// error (fail fast at construction), not a runtime reject.
func (t MarginThresholds) Validate() error {
	if !(t.SafeThreshold < t.WarningThreshold && t.WarningThreshold < t.DangerThreshold && t.DangerThreshold <= t.CriticalThreshold) {
		return errInvertedThresholds
	}
	return nil
}

var errInvertedThresholds = marginConfigError("protection: margin thresholds must be strictly increasing (safe < warning < danger <= critical)")

type marginConfigError string

func (e marginConfigError) Error() string { return string(e) }

// TierFor computes the margin level for a usage ratio under the given
// thresholds. Monotonic in usageRatio by construction.
func TierFor(usageRatio float64, t MarginThresholds) kernel.MarginLevel {
	switch {
	case usageRatio >= t.CriticalThreshold:
		return kernel.MarginCritical
	case usageRatio >= t.DangerThreshold:
		return kernel.MarginDanger
	case usageRatio >= t.WarningThreshold:
		return kernel.MarginWarning
	case usageRatio >= t.SafeThreshold:
		return kernel.MarginNormal
	default:
		return kernel.MarginSafe
	}
}

// MarginAlert is emitted whenever the tier strictly changes and the cooldown
// has elapsed.
type MarginAlert struct {
	From, To kernel.MarginLevel
	At       time.Time
}

// MarginMonitor is stateful: it remembers the last observed tier and the
// last alert time so repeated identical updates don't spam alerts.
type MarginMonitor struct {
	Thresholds MarginThresholds
	Now        func() time.Time

	lastTier     kernel.MarginLevel
	haveLastTier bool
	lastAlertAt  time.Time
}

// NewMarginMonitor validates thresholds and wires the clock.
func NewMarginMonitor(t MarginThresholds, now func() time.Time) (*MarginMonitor, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &MarginMonitor{Thresholds: t, Now: now}, nil
}

// Update recomputes the tier for the given snapshot and returns it, plus an
// alert if the tier changed and the cooldown allows it.
func (m *MarginMonitor) Update(snap kernel.AccountSnapshot) (kernel.MarginLevel, *MarginAlert) {
	tier := TierFor(snap.UsageRatio(), m.Thresholds)
	now := m.Now()

	var alert *MarginAlert
	if m.haveLastTier && tier != m.lastTier {
		if m.lastAlertAt.IsZero() || now.Sub(m.lastAlertAt) >= m.Thresholds.AlertCooldown {
			alert = &MarginAlert{From: m.lastTier, To: tier, At: now}
			m.lastAlertAt = now
		}
	}
	m.lastTier = tier
	m.haveLastTier = true
	return tier, alert
}

// CanOpenPosition evaluates the admission rule for a margin_req-sized
// opening order against the current snapshot, per §4.2 item 2.
func (m *MarginMonitor) CanOpenPosition(snap kernel.AccountSnapshot, marginReq float64, allowWarning bool) GateResult {
	const name = "margin_monitor"
	currentTier := TierFor(snap.UsageRatio(), m.Thresholds)
	if currentTier >= kernel.MarginDanger {
		return rejectResult(name, "CURRENT_TIER_"+currentTier.String(), "account margin tier already at or above DANGER")
	}

	newUsed := snap.MarginUsed + marginReq
	var newRatio float64
	if snap.Equity > 0 {
		newRatio = newUsed / snap.Equity
	} else if newUsed > 0 {
		newRatio = math.Inf(1)
	}
	newTier := TierFor(newRatio, m.Thresholds)

	if newTier == kernel.MarginDanger || newTier == kernel.MarginCritical {
		return rejectResult(name, "NEW_TIER_"+newTier.String(), "opening this order would push margin usage to "+newTier.String())
	}

	newAvailable := snap.Equity - newUsed
	if newAvailable < 0 {
		newAvailable = 0
	}
	if newAvailable < m.Thresholds.MinAvailableMargin {
		return rejectResult(name, "BELOW_MIN_AVAILABLE", "available margin after the trade would fall below the configured minimum")
	}

	if !allowWarning && (currentTier == kernel.MarginWarning || newTier == kernel.MarginWarning) {
		return rejectResult(name, "WARNING_NOT_ALLOWED", "margin tier WARNING and allow_warning=false")
	}

	return passResult(name)
}
