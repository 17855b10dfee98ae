// FILE: orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/chidi150c/futures-kernel/broker"
	"github.com/chidi150c/futures-kernel/flatten"
	"github.com/chidi150c/futures-kernel/kernel"
	"github.com/chidi150c/futures-kernel/risk"
)

func TestHandleRiskUpdateFlattensOnKillSwitch(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC) }
	riskMgr := risk.NewManager(risk.DefaultTriggerThresholds(), risk.DefaultRecoveryConfig(), now)
	riskMgr.OnDayStart0900("acct1", 100000, now())

	b := broker.NewPaperBroker()
	executor := flatten.NewExecutor(b, flatten.DefaultExecutorConfig(), flatten.Policy{Stage2Requotes: 0, Stage3MaxCrossLevels: 0, TickSize: 1}, now, nil)

	snap, _ := kernel.NewAccountSnapshot(96000, 1000)
	positions := []kernel.Position{{Symbol: "AO", NetQty: 1, TodayQty: 1}}
	books := map[string]kernel.BookTop{"AO": {BestBid: 100, BestAsk: 101}}

	update := AccountUpdate{AccountID: "acct1", Equity: 96000, MarginUsagePct: 0.1, PositionLossPct: 0}
	res := HandleRiskUpdate(context.Background(), riskMgr, executor, update, snap, positions, books, now)

	if res.CorrelationID == "" {
		t.Fatalf("expected a non-empty correlation id")
	}
	if res.SnapshotHash == "" {
		t.Fatalf("expected a non-empty snapshot hash")
	}
	if len(res.RiskEvents) == 0 || res.RiskEvents[0].Type != "AUDIT_SNAPSHOT" {
		t.Fatalf("expected AUDIT_SNAPSHOT as first event, got %+v", res.RiskEvents)
	}
	if len(res.ExecutionRecords) == 0 {
		t.Fatalf("expected kill-switch fire to produce execution records")
	}
	for _, e := range res.RiskEvents {
		if e.CorrelationID != res.CorrelationID {
			t.Fatalf("every risk event must carry the same correlation id")
		}
	}
}

func TestHandleRiskUpdateNoFlattenWhenHealthy(t *testing.T) {
	now := func() time.Time { return time.Now() }
	riskMgr := risk.NewManager(risk.DefaultTriggerThresholds(), risk.DefaultRecoveryConfig(), now)
	riskMgr.OnDayStart0900("acct1", 100000, now())

	b := broker.NewPaperBroker()
	executor := flatten.NewExecutor(b, flatten.DefaultExecutorConfig(), flatten.DefaultPolicy(), now, nil)

	snap, _ := kernel.NewAccountSnapshot(99000, 1000)
	update := AccountUpdate{AccountID: "acct1", Equity: 99000, MarginUsagePct: 0.1, PositionLossPct: 0}
	res := HandleRiskUpdate(context.Background(), riskMgr, executor, update, snap, nil, nil, now)

	if len(res.ExecutionRecords) != 0 {
		t.Fatalf("expected no execution records when kill switch does not fire")
	}
}
