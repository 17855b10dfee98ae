// FILE: compliance/throttle.go
// Package compliance – ThrottleManager computes the five-level throttle
// decision per incoming submit/cancel and latches HFT flags, per §4.3.
package compliance

import (
	"sync"
	"time"

	"github.com/chidi150c/futures-kernel/kernel"
)

// ThrottleConfig are the tunable caps and bands, all with the documented
// regulatory defaults.
type ThrottleConfig struct {
	MaxCancelRatio       float64 // default 0.50
	MaxCancelFreqPerSec  float64 // default 500
	MinOrderIntervalMS   float64 // default 100
	MaxAuditDelaySec     float64 // default 1.0
	WarningRatio         float64 // default 0.80
	Window               WindowConfig
	HFT                  HFTConfig
}

func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxCancelRatio:      0.50,
		MaxCancelFreqPerSec: 500,
		MinOrderIntervalMS:  100,
		MaxAuditDelaySec:    1.0,
		WarningRatio:        0.80,
		Window:              DefaultWindowConfig(),
		HFT:                 DefaultHFTConfig(),
	}
}

// ThrottleResult is the per-event decision.
type ThrottleResult struct {
	Level     kernel.ThrottleLevel
	Reason    string
	DelayMS   float64
	Metrics   Metrics
}

// ThrottleManager owns every account's rolling window, the HFT detector, and
// the audit logger. One per shard.
type ThrottleManager struct {
	mu       sync.Mutex
	config   ThrottleConfig
	now      func() time.Time
	windows  map[string]*accountWindow
	detector *HFTDetector
	audit    *AuditLogger

	pending map[string]kernel.ThrottleLevel // accountID|strategyID -> last decision level
}

// NewThrottleManager wires a manager with an injected clock and an audit
// logger (construct one with NewAuditLogger).
func NewThrottleManager(cfg ThrottleConfig, now func() time.Time, audit *AuditLogger) *ThrottleManager {
	if now == nil {
		now = time.Now
	}
	return &ThrottleManager{
		config:   cfg,
		now:      now,
		windows:  map[string]*accountWindow{},
		detector: NewHFTDetector(cfg.HFT),
		audit:    audit,
		pending:  map[string]kernel.ThrottleLevel{},
	}
}

func pendingKey(accountID, strategyID string) string { return accountID + "|" + strategyID }

// CheckAndThrottle evaluates one incoming order event and returns the
// decision, recording the event into the rolling window and emitting an
// audit entry.
func (m *ThrottleManager) CheckAndThrottle(e OrderEvent) ThrottleResult {
	m.mu.Lock()
	w, ok := m.windows[e.AccountID]
	if !ok {
		w = newAccountWindow()
		m.windows[e.AccountID] = w
	}
	now := e.TS
	w.evictBefore(now.Add(-time.Duration(m.config.Window.WindowSeconds * float64(time.Second))))
	metricsBefore := w.metrics(now, m.config.Window)
	w.record(e, m.config.Window)
	m.mu.Unlock()

	m.detector.RecordOrder(e)
	hft := m.detector.Detect(e.AccountID, now)

	result := decide(metricsBefore, m.config, hft)

	m.mu.Lock()
	m.pending[pendingKey(e.AccountID, e.StrategyID)] = result.Level
	m.mu.Unlock()

	if m.audit != nil {
		m.audit.LogOrderSubmit(e, result)
	}
	return result
}

// decide implements the decision function in §4.3, evaluated against the
// window state as of just before the incoming event.
func decide(metrics Metrics, cfg ThrottleConfig, hft HFTDetectionResult) ThrottleResult {
	if metrics.LastIntervalMS > 0 && metrics.LastIntervalMS < cfg.MinOrderIntervalMS {
		return ThrottleResult{
			Level:   kernel.ThrottleDelay,
			Reason:  "MIN_ORDER_INTERVAL",
			DelayMS: cfg.MinOrderIntervalMS - metrics.LastIntervalMS,
			Metrics: metrics,
		}
	}
	if metrics.CancelFreqPerSec >= cfg.MaxCancelFreqPerSec {
		return ThrottleResult{Level: kernel.ThrottleReject, Reason: "MAX_CANCEL_FREQ_CRITICAL", Metrics: metrics}
	}
	if metrics.CancelRatio >= cfg.MaxCancelRatio {
		return ThrottleResult{Level: kernel.ThrottleReject, Reason: "MAX_CANCEL_RATIO_VIOLATION", Metrics: metrics}
	}
	if metrics.MaxAuditDelaySec > cfg.MaxAuditDelaySec {
		return ThrottleResult{Level: kernel.ThrottleReject, Reason: "M3_AUDIT_DELAY_VIOLATION", Metrics: metrics}
	}
	if hft.IsHFT {
		return ThrottleResult{Level: kernel.ThrottleWarn, Reason: "HFT_DETECTED", Metrics: metrics}
	}
	if metrics.CancelFreqPerSec >= cfg.WarningRatio*cfg.MaxCancelFreqPerSec ||
		metrics.CancelRatio >= cfg.WarningRatio*cfg.MaxCancelRatio ||
		metrics.MaxAuditDelaySec >= cfg.WarningRatio*cfg.MaxAuditDelaySec {
		return ThrottleResult{Level: kernel.ThrottleWarn, Reason: "WARNING_BAND", Metrics: metrics}
	}
	return ThrottleResult{Level: kernel.ThrottleAllow, Reason: "OK", Metrics: metrics}
}

// PendingLevel implements protection.ThrottleChecker: the last computed
// decision level for this account/strategy pair, or ALLOW if none yet.
func (m *ThrottleManager) PendingLevel(accountID, strategyID string) kernel.ThrottleLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[pendingKey(accountID, strategyID)]
}

// IsHFTAccount exposes the detector's latch.
func (m *ThrottleManager) IsHFTAccount(accountID string) bool { return m.detector.IsHFTAccount(accountID) }

// ClearHFTFlag clears the latch for an account (operator action only).
func (m *ThrottleManager) ClearHFTFlag(accountID string) { m.detector.ClearHFTFlag(accountID) }

// CanSubmit is a convenience boolean view over PendingLevel, mirroring the
// source's can_submit().
func (m *ThrottleManager) CanSubmit(accountID, strategyID string) (bool, string) {
	level := m.PendingLevel(accountID, strategyID)
	if level >= kernel.ThrottleReject {
		return false, level.String()
	}
	return true, level.String()
}

// Statistics mirrors get_statistics().
func (m *ThrottleManager) Statistics() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]interface{}{
		"tracked_accounts": len(m.windows),
		"hft":              m.detector.Statistics(),
	}
}
