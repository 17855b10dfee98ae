// FILE: risk/breaker.go
package risk

import (
	"fmt"
	"sync"
	"time"
)

// RecoveryProgress tracks the current position within the graduated
// recovery ladder.
type RecoveryProgress struct {
	CurrentStep          int
	CurrentPositionRatio float64
	StepStartTime        time.Time
	TotalSteps           int
}

// TransitionRecord is one completed state change, queued for the caller to
// drain and re-emit onto the shared audit bus with a correlation ID.
type TransitionRecord struct {
	TS            time.Time
	EventType     string
	FromState     State
	ToState       State
	TriggerReason string
	Details       map[string]interface{}
}

// Breaker is the per-account (or global) kill-switch state machine. All
// timestamps are driven by an injected clock so tests and replay runs are
// deterministic.
type Breaker struct {
	mu sync.Mutex

	thresholds TriggerThresholds
	recovery   RecoveryConfig
	now        func() time.Time

	state             State
	stateEnterTime    time.Time
	triggeredTime     *time.Time
	coolingStartTime  *time.Time
	recoveryProgress  RecoveryProgress
	transitionCount   int
	lastTriggerReasons []string

	pending []TransitionRecord
}

// NewBreaker wires a breaker starting in NORMAL.
func NewBreaker(t TriggerThresholds, r RecoveryConfig, now func() time.Time) *Breaker {
	if now == nil {
		now = time.Now
	}
	return &Breaker{
		thresholds: t,
		recovery:   r,
		now:        now,
		state:      StateNormal,
		stateEnterTime: now(),
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// CurrentPositionRatio is the fraction of normal position size allowed right
// now: 1.0 in NORMAL, 0.0 while TRIGGERED/COOLING/MANUAL_OVERRIDE, and the
// current recovery step's ratio while RECOVERY.
func (b *Breaker) CurrentPositionRatio() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateNormal:
		return 1.0
	case StateRecovery:
		return b.recoveryProgress.CurrentPositionRatio
	default:
		return 0.0
	}
}

// IsTradingAllowed reports whether any trading (including reducing) is
// permitted: NORMAL and RECOVERY only.
func (b *Breaker) IsTradingAllowed() bool {
	s := b.State()
	return s == StateNormal || s == StateRecovery
}

// IsNewPositionAllowed mirrors IsTradingAllowed; recovery-step sizing is
// applied by the caller via CurrentPositionRatio, not by this boolean.
func (b *Breaker) IsNewPositionAllowed() bool {
	return b.IsTradingAllowed()
}

// Trigger checks metrics against the configured thresholds and, if any are
// breached, transitions NORMAL -> TRIGGERED. No-op (returns false) if the
// breaker is not currently NORMAL or if nothing is breached.
func (b *Breaker) Trigger(metrics Metrics) bool {
	b.mu.Lock()
	if b.state != StateNormal {
		b.mu.Unlock()
		return false
	}
	should, reasons := TriggerCheck(metrics, b.thresholds)
	if !should {
		b.mu.Unlock()
		return false
	}
	b.lastTriggerReasons = reasons
	b.mu.Unlock()

	b.transition(EventTrigger, joinReasons(reasons), map[string]interface{}{"reasons": reasons})

	b.mu.Lock()
	now := b.now()
	b.triggeredTime = &now
	b.mu.Unlock()
	return true
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}

// Tick advances time-driven transitions: TRIGGERED -> COOLING after the
// cooling duration, COOLING -> RECOVERY after the full cooling duration, and
// recovery-step advancement while in RECOVERY. Call this once per orchestrator
// tick; it is a no-op if no timer has elapsed.
func (b *Breaker) Tick() State {
	b.mu.Lock()
	state := b.state
	now := b.now()

	switch state {
	case StateTriggered:
		if b.triggeredTime != nil && now.Sub(*b.triggeredTime).Seconds() >= b.recovery.CoolingDurationSeconds {
			b.mu.Unlock()
			b.startCooling()
			return b.State()
		}
	case StateCooling:
		if b.coolingStartTime != nil && now.Sub(*b.coolingStartTime).Seconds() >= b.recovery.FullCoolingDurationSeconds {
			b.mu.Unlock()
			b.startRecovery()
			return b.State()
		}
	case StateRecovery:
		b.mu.Unlock()
		b.advanceRecovery()
		return b.State()
	}
	b.mu.Unlock()
	return state
}

func (b *Breaker) startCooling() {
	elapsed := 0.0
	b.mu.Lock()
	if b.triggeredTime != nil {
		elapsed = b.now().Sub(*b.triggeredTime).Seconds()
	}
	b.mu.Unlock()
	b.transition(EventCoolingStart, "auto cooling after trigger timeout", map[string]interface{}{"triggered_duration_seconds": elapsed})
	b.mu.Lock()
	now := b.now()
	b.coolingStartTime = &now
	b.mu.Unlock()
}

func (b *Breaker) startRecovery() {
	elapsed := 0.0
	b.mu.Lock()
	if b.coolingStartTime != nil {
		elapsed = b.now().Sub(*b.coolingStartTime).Seconds()
	}
	b.mu.Unlock()
	b.transition(EventCoolingComplete, "cooling period completed", map[string]interface{}{"cooling_duration_seconds": elapsed})

	b.mu.Lock()
	b.resetRecoveryProgressLocked()
	b.recoveryProgress.CurrentStep = 0
	if len(b.recovery.PositionRatioSteps) > 0 {
		b.recoveryProgress.CurrentPositionRatio = b.recovery.PositionRatioSteps[0]
	}
	b.recoveryProgress.StepStartTime = b.now()
	b.recoveryProgress.TotalSteps = len(b.recovery.PositionRatioSteps)
	b.mu.Unlock()
}

func (b *Breaker) advanceRecovery() {
	b.mu.Lock()
	if b.state != StateRecovery {
		b.mu.Unlock()
		return
	}
	now := b.now()
	elapsed := now.Sub(b.recoveryProgress.StepStartTime).Seconds()
	if elapsed < b.recovery.StepIntervalSeconds {
		b.mu.Unlock()
		return
	}
	nextStep := b.recoveryProgress.CurrentStep + 1
	totalSteps := len(b.recovery.PositionRatioSteps)
	b.mu.Unlock()

	if nextStep >= totalSteps {
		stateEnter := b.stateEnterTimeSnapshot()
		b.transition(EventRecoveryComplete, "recovery completed", map[string]interface{}{
			"total_recovery_time_seconds": now.Sub(stateEnter).Seconds(),
			"final_step":                  nextStep,
		})
		b.mu.Lock()
		b.resetRecoveryProgressLocked()
		b.mu.Unlock()
		return
	}

	b.mu.Lock()
	b.recoveryProgress.CurrentStep = nextStep
	b.recoveryProgress.CurrentPositionRatio = b.recovery.PositionRatioSteps[nextStep]
	b.recoveryProgress.StepStartTime = now
	b.transitionCount++ // recovery steps count as progress but aren't a state change
	rec := TransitionRecord{
		TS: now, EventType: "risk_recovery_step", FromState: b.state, ToState: b.state,
		TriggerReason: fmt.Sprintf("recovery step %d", nextStep),
		Details:       map[string]interface{}{"step": nextStep, "position_ratio": b.recoveryProgress.CurrentPositionRatio},
	}
	b.pending = append(b.pending, rec)
	b.mu.Unlock()
}

func (b *Breaker) stateEnterTimeSnapshot() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateEnterTime
}

func (b *Breaker) resetRecoveryProgressLocked() {
	b.recoveryProgress = RecoveryProgress{}
	b.triggeredTime = nil
	b.coolingStartTime = nil
	b.lastTriggerReasons = nil
}

// ManualOverride moves any state into MANUAL_OVERRIDE; used for operator
// kill-switch activation independent of metric thresholds.
func (b *Breaker) ManualOverride(reason string) bool {
	if b.State() == StateManualOverride {
		return false
	}
	prev := b.State()
	b.transition(EventManualOverride, reason, map[string]interface{}{"previous_state": prev.String()})
	return true
}

// ManualRelease exits MANUAL_OVERRIDE, either straight to NORMAL or down into
// COOLING depending on the operator's judgment of residual risk.
func (b *Breaker) ManualRelease(toNormal bool) bool {
	if b.State() != StateManualOverride {
		return false
	}
	if toNormal {
		b.transition(EventManualRelease, "manual release to normal", map[string]interface{}{"target_state": "NORMAL"})
		b.mu.Lock()
		b.resetRecoveryProgressLocked()
		b.mu.Unlock()
	} else {
		b.transition(EventManualToCooling, "manual release to cooling", map[string]interface{}{"target_state": "COOLING"})
		b.mu.Lock()
		now := b.now()
		b.coolingStartTime = &now
		b.mu.Unlock()
	}
	return true
}

func (b *Breaker) transition(event Event, reason string, details map[string]interface{}) {
	b.mu.Lock()
	from := b.state
	to, ok := transitions[transitionKey{from, event}]
	if !ok {
		b.mu.Unlock()
		return
	}
	b.state = to
	b.stateEnterTime = b.now()
	b.transitionCount++
	rec := TransitionRecord{
		TS: b.stateEnterTime, EventType: "risk_transition", FromState: from, ToState: to,
		TriggerReason: reason, Details: details,
	}
	b.pending = append(b.pending, rec)
	b.mu.Unlock()
}

// DrainEvents returns and clears every TransitionRecord queued since the
// last drain; callers (the orchestrator) re-emit these onto the shared audit
// bus with a correlation ID attached.
func (b *Breaker) DrainEvents() []TransitionRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// StateDuration is how long the breaker has held its current state.
func (b *Breaker) StateDuration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now().Sub(b.stateEnterTime)
}

// RecoveryProgressSnapshot is a read-only copy of the current recovery state.
func (b *Breaker) RecoveryProgressSnapshot() RecoveryProgress {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recoveryProgress
}

// LastTriggerReasons is the reason list from the most recent trigger.
func (b *Breaker) LastTriggerReasons() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lastTriggerReasons))
	copy(out, b.lastTriggerReasons)
	return out
}

// TransitionCount is the lifetime count of completed state transitions plus
// recovery-step advances.
func (b *Breaker) TransitionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transitionCount
}
