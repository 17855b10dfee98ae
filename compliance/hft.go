// FILE: compliance/hft.go
// Package compliance – HFTDetector: a narrower rolling-window detector
// dedicated to the HFT flag, independent of the throttle's pass/reject
// decision. An account, once flagged, stays flagged until an operator clears
// it explicitly (HFT status is a latch, not a rolling condition).
package compliance

import (
	"sync"
	"time"
)

// HFTConfig configures the detector.
type HFTConfig struct {
	ThresholdPerSec float64 // default 300
	WindowSeconds   float64 // default 5
}

func DefaultHFTConfig() HFTConfig {
	return HFTConfig{ThresholdPerSec: 300, WindowSeconds: 5}
}

// HFTDetectionResult is what Detect returns for one account.
type HFTDetectionResult struct {
	IsHFT        bool
	OrdersPerSec float64
	CancelRatio  float64
}

// HFTDetector owns its own per-account windows, separate from the throttle
// manager's, since the detector may be configured with a different window.
type HFTDetector struct {
	mu      sync.Mutex
	config  HFTConfig
	windows map[string]*accountWindow
	flagged map[string]bool
}

func NewHFTDetector(cfg HFTConfig) *HFTDetector {
	return &HFTDetector{config: cfg, windows: map[string]*accountWindow{}, flagged: map[string]bool{}}
}

// RecordOrder records one event for account_id's detection window.
func (d *HFTDetector) RecordOrder(e OrderEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[e.AccountID]
	if !ok {
		w = newAccountWindow()
		d.windows[e.AccountID] = w
	}
	w.evictBefore(e.TS.Add(-time.Duration(d.config.WindowSeconds * float64(time.Second))))
	w.record(e, WindowConfig{WindowSeconds: d.config.WindowSeconds, CancelRateWindowSeconds: d.config.WindowSeconds, MaxEvents: 100_000})
}

// Detect evaluates the current window for account_id at time now, latching
// the HFT flag the first time the threshold is crossed.
func (d *HFTDetector) Detect(accountID string, now time.Time) HFTDetectionResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[accountID]
	if !ok {
		return HFTDetectionResult{}
	}
	m := w.metrics(now, WindowConfig{WindowSeconds: d.config.WindowSeconds, CancelRateWindowSeconds: d.config.WindowSeconds})
	isHFT := m.OrdersPerSec >= d.config.ThresholdPerSec
	if isHFT {
		d.flagged[accountID] = true
	}
	return HFTDetectionResult{IsHFT: isHFT, OrdersPerSec: m.OrdersPerSec, CancelRatio: m.CancelRatio}
}

// IsHFTAccount reports the latched flag (does not recompute).
func (d *HFTDetector) IsHFTAccount(accountID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flagged[accountID]
}

// ClearHFTFlag is the only way to unlatch an account; operator action only.
func (d *HFTDetector) ClearHFTFlag(accountID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.flagged, accountID)
}

// Statistics returns a small on-demand summary, mirroring get_statistics().
func (d *HFTDetector) Statistics() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]interface{}{
		"tracked_accounts": len(d.windows),
		"flagged_accounts": len(d.flagged),
		"threshold_per_sec": d.config.ThresholdPerSec,
	}
}

// Reset clears every account's detection window; used by tests and day-boundary rollover
// callers that want a clean detector (the flag latch itself is NOT reset by
// day rollover — only an explicit operator ClearHFTFlag call does that).
func (d *HFTDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows = map[string]*accountWindow{}
}
