// FILE: risk/breaker_test.go
package risk

import (
	"testing"
	"time"
)

func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	cur := start
	now := func() time.Time { return cur }
	advance := func(d time.Duration) { cur = cur.Add(d) }
	return now, advance
}

func TestBreakerTriggerAndFullCycle(t *testing.T) {
	now, advance := fixedClock(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))
	b := NewBreaker(DefaultTriggerThresholds(), DefaultRecoveryConfig(), now)

	if b.State() != StateNormal {
		t.Fatalf("expected NORMAL, got %s", b.State())
	}
	if !b.Trigger(Metrics{DailyLossPct: 0.05}) {
		t.Fatalf("expected trigger to fire")
	}
	if b.State() != StateTriggered {
		t.Fatalf("expected TRIGGERED, got %s", b.State())
	}
	if b.CurrentPositionRatio() != 0 {
		t.Fatalf("expected 0 position ratio while TRIGGERED")
	}

	advance(31 * time.Second)
	if s := b.Tick(); s != StateCooling {
		t.Fatalf("expected COOLING after 31s, got %s", s)
	}

	advance(301 * time.Second)
	if s := b.Tick(); s != StateRecovery {
		t.Fatalf("expected RECOVERY after 301s, got %s", s)
	}
	if r := b.CurrentPositionRatio(); r != 0.25 {
		t.Fatalf("expected first recovery step 0.25, got %v", r)
	}

	for _, want := range []float64{0.5, 0.75, 1.0} {
		advance(61 * time.Second)
		b.Tick()
		if b.State() == StateRecovery && b.CurrentPositionRatio() != want {
			t.Fatalf("expected recovery step %v, got %v (state=%s)", want, b.CurrentPositionRatio(), b.State())
		}
	}

	advance(61 * time.Second)
	if s := b.Tick(); s != StateNormal {
		t.Fatalf("expected recovery to complete back to NORMAL, got %s", s)
	}
}

func TestBreakerManualOverrideAndRelease(t *testing.T) {
	now, _ := fixedClock(time.Now())
	b := NewBreaker(DefaultTriggerThresholds(), DefaultRecoveryConfig(), now)

	if !b.ManualOverride("operator halt") {
		t.Fatalf("expected manual override to succeed")
	}
	if b.State() != StateManualOverride {
		t.Fatalf("expected MANUAL_OVERRIDE, got %s", b.State())
	}
	if b.IsTradingAllowed() {
		t.Fatalf("trading must not be allowed under MANUAL_OVERRIDE")
	}
	if !b.ManualRelease(true) {
		t.Fatalf("expected manual release to succeed")
	}
	if b.State() != StateNormal {
		t.Fatalf("expected NORMAL after release, got %s", b.State())
	}
}

func TestBreakerTriggerOnlyFromNormal(t *testing.T) {
	now, _ := fixedClock(time.Now())
	b := NewBreaker(DefaultTriggerThresholds(), DefaultRecoveryConfig(), now)
	b.ManualOverride("halt")
	if b.Trigger(Metrics{DailyLossPct: 1}) {
		t.Fatalf("trigger must be a no-op outside NORMAL")
	}
}

func TestManagerDailyLossUsesBaseline(t *testing.T) {
	now, _ := fixedClock(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))
	m := NewManager(DefaultTriggerThresholds(), DefaultRecoveryConfig(), now)
	m.OnDayStart0900("acct1", 100000, now())

	res := m.Update("acct1", 96000, 0.1, 0) // 4% daily loss > 3% threshold
	if !res.KillSwitchFired {
		t.Fatalf("expected kill switch to fire on 4%% daily loss")
	}
	if m.State("acct1") != StateTriggered {
		t.Fatalf("expected account to be TRIGGERED, got %s", m.State("acct1"))
	}
}

func TestManagerConsecutiveLossesResetOnWin(t *testing.T) {
	now, _ := fixedClock(time.Now())
	m := NewManager(DefaultTriggerThresholds(), DefaultRecoveryConfig(), now)
	m.OnDayStart0900("acct1", 100000, now())

	for i := 0; i < 4; i++ {
		m.RecordLossOutcome("acct1", true)
	}
	res := m.Update("acct1", 100000, 0.1, 0)
	if res.KillSwitchFired {
		t.Fatalf("4 consecutive losses must not fire (threshold is 5)")
	}
	m.RecordLossOutcome("acct1", false)
	m.RecordLossOutcome("acct1", true)
	res = m.Update("acct1", 100000, 0.1, 0)
	if res.KillSwitchFired {
		t.Fatalf("counter reset by a win must not immediately refire at 1 loss")
	}
}
