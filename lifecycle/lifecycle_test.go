// FILE: lifecycle/lifecycle_test.go
package lifecycle

import (
	"testing"
	"time"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPromotionLadderAppliesAutomaticallyBelowApprovalThreshold(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(ManagerConfig{RequireApprovalForProduction: false, ManualApprovalTierSteps: 2}, fixedNow(at), nil)
	m.RegisterStrategy("s1")

	ev, err := m.UpdateMaturity("s1", 0.85, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev == nil || ev.ToStage != StageDevelopment {
		t.Fatalf("expected promotion to DEVELOPMENT, got %+v", ev)
	}
	s, _ := m.GetStrategy("s1")
	if s.Stage != StageDevelopment || s.Tier != TierZero {
		t.Fatalf("unexpected state after promotion: %+v", s)
	}
}

func TestProductionEntryRequiresApprovalByDefault(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(DefaultManagerConfig(), fixedNow(at), nil)
	m.RegisterStrategy("s1")
	s, _ := m.GetStrategy("s1")
	s.Stage = StageValidation
	s.Tier = TierTrial
	s.Maturity = 0.85
	s.Performance = Performance{Sharpe: 1.2, MaxDrawdown: 0.10, WinRate: 0.50}
	m.states["s1"] = &s

	ev, err := m.UpdateMaturity("s1", 0.85, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev == nil || !ev.NeedsApproval || ev.ToStage != StageProduction {
		t.Fatalf("expected pending PRODUCTION transition, got %+v", ev)
	}

	cur, _ := m.GetStrategy("s1")
	if cur.Stage != StageValidation {
		t.Fatalf("expected stage unchanged while pending, got %s", cur.Stage)
	}

	if err := m.ApproveTransition(ev.EventID, "reviewer1", at); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	cur, _ = m.GetStrategy("s1")
	if cur.Stage != StageProduction || cur.Tier != TierNormal {
		t.Fatalf("expected PRODUCTION/NORMAL after approval, got %+v", cur)
	}
}

func TestDemotionOnDrawdownBreach(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(ManagerConfig{RequireApprovalForProduction: false, ManualApprovalTierSteps: 2}, fixedNow(at), nil)
	m.RegisterStrategy("s1")
	s, _ := m.GetStrategy("s1")
	s.Stage = StageProduction
	s.Tier = TierNormal
	m.states["s1"] = &s

	ev, err := m.UpdatePerformance("s1", Performance{Sharpe: 0.8, MaxDrawdown: 0.30, WinRate: 0.5}, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev == nil || ev.ToStage != StageSuspended {
		t.Fatalf("expected SUSPENDED demotion, got %+v", ev)
	}
}

func TestRejectTransitionLeavesStateUnchanged(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(DefaultManagerConfig(), fixedNow(at), nil)
	m.RegisterStrategy("s1")
	s, _ := m.GetStrategy("s1")
	s.Stage = StageValidation
	s.Tier = TierTrial
	s.Performance = Performance{Sharpe: 1.2, MaxDrawdown: 0.10, WinRate: 0.50}
	m.states["s1"] = &s

	ev, _ := m.UpdateMaturity("s1", 0.85, at)
	if ev == nil {
		t.Fatalf("expected a transition event")
	}
	if err := m.RejectTransition(ev.EventID, "reviewer1", "insufficient sharpe", at); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	cur, _ := m.GetStrategy("s1")
	if cur.Stage != StageValidation {
		t.Fatalf("expected stage unchanged after reject, got %s", cur.Stage)
	}
	if len(m.GetPendingTransitions()) != 0 {
		t.Fatalf("expected no pending transitions after reject")
	}
}

func TestMaturityEvaluatorMatureRequiresAllDimensions(t *testing.T) {
	good := MaturityInput{
		Sharpe: 2.1, ReturnCV: 0.2, PositiveMonthFraction: 0.8,
		MaxDrawdown: 0.08, CalmarRatio: 3.2, PostDDRecoveryRatio: 0.9,
		RegimesCovered: 5, PositiveRegimeFraction: 0.9,
		TrainingDays: 200, TradeCount: 600,
		WinRate: 0.58, ProfitFactor: 2.2, PositiveRollingSharpeFraction: 0.8, SignalReturnCorrelation: 0.3,
	}
	a := Evaluate(good)
	if !a.IsMature {
		t.Fatalf("expected mature assessment, got %+v", a)
	}

	thin := good
	thin.TrainingDays = 30
	a2 := Evaluate(thin)
	if a2.IsMature {
		t.Fatalf("expected not mature when training_days below floor, got %+v", a2)
	}
}
