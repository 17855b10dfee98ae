// FILE: risk/manager.go
package risk

import "time"

// DailyBaseline captures the equity used to compute daily_loss_pct; reset
// once per trading day by OnDayStart0900.
type DailyBaseline struct {
	Equity float64
	SetAt  time.Time
}

// Manager wires one Breaker per account plus the day-start baseline and
// consecutive-loss counter that feed Metrics into it. It is the component
// the tick orchestrator calls Update/OnDayStart0900 against.
type Manager struct {
	thresholds TriggerThresholds
	recovery   RecoveryConfig
	now        func() time.Time

	breakers          map[string]*Breaker
	baselines         map[string]DailyBaseline
	consecutiveLosses map[string]int
}

func NewManager(t TriggerThresholds, r RecoveryConfig, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		thresholds:        t,
		recovery:          r,
		now:               now,
		breakers:          map[string]*Breaker{},
		baselines:         map[string]DailyBaseline{},
		consecutiveLosses: map[string]int{},
	}
}

func (m *Manager) breaker(accountID string) *Breaker {
	b, ok := m.breakers[accountID]
	if !ok {
		b = NewBreaker(m.thresholds, m.recovery, m.now)
		m.breakers[accountID] = b
	}
	return b
}

// OnDayStart0900 records the baseline equity for daily_loss_pct and resets
// the consecutive-loss counter for a fresh trading day. Callers invoke this
// exactly once per trading day; a tick timestamped at or after the night
// session cutover (see TradingCalendar) belongs to the next trading day and
// must be preceded by a fresh OnDayStart0900 call.
func (m *Manager) OnDayStart0900(accountID string, equity float64, at time.Time) {
	m.baselines[accountID] = DailyBaseline{Equity: equity, SetAt: at}
	m.consecutiveLosses[accountID] = 0
}

// RecordLossOutcome updates the consecutive-loss counter: increments on a
// losing close, resets to zero on a winning (or breakeven) close.
func (m *Manager) RecordLossOutcome(accountID string, wasLoss bool) {
	if wasLoss {
		m.consecutiveLosses[accountID]++
	} else {
		m.consecutiveLosses[accountID] = 0
	}
}

// UpdateResult is what Update returns: the breaker's post-update state plus
// whether this call newly fired the kill switch.
type UpdateResult struct {
	State             State
	KillSwitchFired   bool
	TriggerReasons    []string
	TransitionRecords []TransitionRecord
}

// Update computes Metrics from the current equity/margin snapshot and the
// tracked baseline/consecutive-loss state, checks trigger conditions, ticks
// the time-driven transitions, and drains any events produced.
func (m *Manager) Update(accountID string, equity, marginUsagePct, positionLossPct float64) UpdateResult {
	b := m.breaker(accountID)

	baseline, ok := m.baselines[accountID]
	dailyLossPct := 0.0
	if ok && baseline.Equity > 0 {
		dailyLossPct = (baseline.Equity - equity) / baseline.Equity
	}

	metrics := Metrics{
		DailyLossPct:      dailyLossPct,
		PositionLossPct:   positionLossPct,
		MarginUsagePct:    marginUsagePct,
		ConsecutiveLosses: m.consecutiveLosses[accountID],
	}

	fired := b.Trigger(metrics)
	b.Tick()
	events := b.DrainEvents()

	var reasons []string
	if fired {
		reasons = b.LastTriggerReasons()
	}

	return UpdateResult{State: b.State(), KillSwitchFired: fired, TriggerReasons: reasons, TransitionRecords: events}
}

// AllowedPositionRatio exposes the breaker's current ratio for an account.
func (m *Manager) AllowedPositionRatio(accountID string) float64 {
	return m.breaker(accountID).CurrentPositionRatio()
}

// IsNewPositionAllowed exposes the breaker's gating boolean for an account.
func (m *Manager) IsNewPositionAllowed(accountID string) bool {
	return m.breaker(accountID).IsNewPositionAllowed()
}

// State exposes the breaker's current state for an account.
func (m *Manager) State(accountID string) State {
	return m.breaker(accountID).State()
}

// ManualOverride/ManualRelease proxy directly to the named account's breaker.
func (m *Manager) ManualOverride(accountID, reason string) bool {
	return m.breaker(accountID).ManualOverride(reason)
}

func (m *Manager) ManualRelease(accountID string, toNormal bool) bool {
	return m.breaker(accountID).ManualRelease(toNormal)
}
