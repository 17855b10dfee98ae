// FILE: risk/thresholds.go
package risk

// TriggerThresholds are the limits checked against a Metrics snapshot; any
// one crossed is enough to trip the breaker.
type TriggerThresholds struct {
	DailyLossPct       float64 // default 0.03
	PositionLossPct    float64 // default 0.05
	MarginUsagePct     float64 // default 0.85
	ConsecutiveLosses  int     // default 5
}

func DefaultTriggerThresholds() TriggerThresholds {
	return TriggerThresholds{
		DailyLossPct:      0.03,
		PositionLossPct:   0.05,
		MarginUsagePct:    0.85,
		ConsecutiveLosses: 5,
	}
}

// RecoveryConfig controls how the breaker steps position size back up after
// cooling, and how long each phase lasts.
type RecoveryConfig struct {
	PositionRatioSteps      []float64 // default [0.25, 0.5, 0.75, 1.0]
	StepIntervalSeconds     float64   // default 60
	CoolingDurationSeconds  float64   // default 30, TRIGGERED -> COOLING
	FullCoolingDurationSeconds float64 // default 300, COOLING -> RECOVERY
}

func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		PositionRatioSteps:         []float64{0.25, 0.5, 0.75, 1.0},
		StepIntervalSeconds:        60,
		CoolingDurationSeconds:     30,
		FullCoolingDurationSeconds: 300,
	}
}

// Metrics is the account-level input checked against TriggerThresholds.
type Metrics struct {
	DailyLossPct      float64
	PositionLossPct   float64
	MarginUsagePct    float64
	ConsecutiveLosses int
}

// TriggerCheck evaluates metrics against thresholds and lists every breached
// condition in a stable, human-readable order.
func TriggerCheck(m Metrics, t TriggerThresholds) (shouldTrigger bool, reasons []string) {
	if m.DailyLossPct > t.DailyLossPct {
		reasons = append(reasons, "daily_loss_pct exceeds threshold")
	}
	if m.PositionLossPct > t.PositionLossPct {
		reasons = append(reasons, "position_loss_pct exceeds threshold")
	}
	if m.MarginUsagePct > t.MarginUsagePct {
		reasons = append(reasons, "margin_usage_pct exceeds threshold")
	}
	if m.ConsecutiveLosses >= t.ConsecutiveLosses {
		reasons = append(reasons, "consecutive_losses reached threshold")
	}
	return len(reasons) > 0, reasons
}
