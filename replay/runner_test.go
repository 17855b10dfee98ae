// FILE: replay/runner_test.go
package replay

import (
	"context"
	"testing"
	"time"

	"github.com/chidi150c/futures-kernel/flatten"
	"github.com/chidi150c/futures-kernel/kernel"
	"github.com/chidi150c/futures-kernel/orchestrator"
	"github.com/chidi150c/futures-kernel/risk"
)

func baseInput() Input {
	ts := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	snap, _ := kernel.NewAccountSnapshot(969000, 0)
	return Input{
		RiskThresholds: risk.DefaultTriggerThresholds(),
		RecoveryConfig: risk.DefaultRecoveryConfig(),
		BaselineEquity: 1000000,
		AccountID:      "acct1",
		Update:         orchestrator.AccountUpdate{AccountID: "acct1", Equity: 969000, MarginUsagePct: 0, PositionLossPct: 0},
		Snapshot:       snap,
		Positions: []kernel.Position{
			{Symbol: "AO", NetQty: 1, TodayQty: 1},
		},
		Books: map[string]kernel.BookTop{
			"AO": {BestBid: 100, BestAsk: 101},
		},
		FlattenPolicy:  flatten.Policy{Stage2Requotes: 0, Stage3MaxCrossLevels: 0, TickSize: 1},
		ExecutorConfig: flatten.DefaultExecutorConfig(),
		NowTS:          ts,
	}
}

func TestRunIsDeterministicModuloCorrelationID(t *testing.T) {
	res1 := Run(context.Background(), baseInput())
	res2 := Run(context.Background(), baseInput())

	if res1.SnapshotHash != res2.SnapshotHash {
		t.Fatalf("expected identical snapshot hash across runs, got %s vs %s", res1.SnapshotHash, res2.SnapshotHash)
	}
	if len(res1.RiskEvents) != len(res2.RiskEvents) {
		t.Fatalf("expected identical event counts, got %d vs %d", len(res1.RiskEvents), len(res2.RiskEvents))
	}
	for i := range res1.RiskEvents {
		if res1.RiskEvents[i].Type != res2.RiskEvents[i].Type {
			t.Fatalf("event %d type mismatch: %s vs %s", i, res1.RiskEvents[i].Type, res2.RiskEvents[i].Type)
		}
	}
}

func TestRunMissingBookFault(t *testing.T) {
	in := baseInput()
	in.Positions = append(in.Positions, kernel.Position{Symbol: "MISS", NetQty: 1, TodayQty: 1})
	in.Books["MISS"] = kernel.BookTop{BestBid: 1, BestAsk: 2}
	in.Fault = FaultConfig{MissingBookSymbols: map[string]bool{"MISS": true}}

	res := Run(context.Background(), in)
	found := false
	for _, e := range res.FlattenEvents {
		if e.Type == flatten.EventDataQualityMissingBook && e.Symbol == "MISS" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DATA_QUALITY_MISSING_BOOK for MISS symbol, got %+v", res.FlattenEvents)
	}
}

func TestRunRejectAllFault(t *testing.T) {
	in := baseInput()
	in.ExecutorConfig = flatten.ExecutorConfig{MaxRejections: 1}
	in.FlattenPolicy = flatten.Policy{Stage2Requotes: 2, Stage3MaxCrossLevels: 0, TickSize: 1}
	in.Fault = FaultConfig{RejectAll: true}

	res := Run(context.Background(), in)
	found := false
	for _, e := range res.FlattenEvents {
		if e.Type == flatten.EventAbortedTooManyRejections {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected FLATTEN_ABORTED_TOO_MANY_REJECTIONS, got %+v", res.FlattenEvents)
	}
}
