// FILE: replay/runner.go
// Package replay provides a deterministic single-tick replay harness over
// the orchestrator, with fault injection for testing the flatten executor's
// missing-book and rejection-budget paths without a live broker.
package replay

import (
	"context"
	"time"

	"github.com/chidi150c/futures-kernel/broker"
	"github.com/chidi150c/futures-kernel/flatten"
	"github.com/chidi150c/futures-kernel/kernel"
	"github.com/chidi150c/futures-kernel/orchestrator"
	"github.com/chidi150c/futures-kernel/risk"
)

// FaultConfig injects faults into a single replay tick.
type FaultConfig struct {
	MissingBookSymbols map[string]bool
	RejectAll          bool
}

// rejectAllBroker fails every placement, for reject_all fault injection.
type rejectAllBroker struct{}

func (rejectAllBroker) Name() string { return "reject-all" }
func (rejectAllBroker) PlaceOrder(ctx context.Context, intent kernel.OrderIntent) (broker.OrderAck, error) {
	return broker.OrderAck{}, &broker.OrderRejected{Reason: "fault-injection: reject_all for " + intent.Symbol}
}

// Input is the full, serializable payload for one deterministic replay tick.
type Input struct {
	RiskThresholds  risk.TriggerThresholds
	RecoveryConfig  risk.RecoveryConfig
	BaselineEquity  float64
	AccountID       string
	Update          orchestrator.AccountUpdate
	Snapshot        kernel.AccountSnapshot
	Positions       []kernel.Position
	Books           map[string]kernel.BookTop
	FlattenPolicy   flatten.Policy
	ExecutorConfig  flatten.ExecutorConfig
	Fault           FaultConfig
	NowTS           time.Time
}

// Run executes one deterministic tick: same Input always yields the same
// snapshot hash and the same sequence of event types (correlation_id aside).
// The broker used is always an in-memory one — PAPER semantics are forced
// regardless of what a caller might otherwise request, since replay must
// never place a real order.
func Run(ctx context.Context, in Input) orchestrator.Result {
	now := func() time.Time { return in.NowTS }

	effectiveBooks := map[string]kernel.BookTop{}
	for sym, book := range in.Books {
		if in.Fault.MissingBookSymbols[sym] {
			continue
		}
		effectiveBooks[sym] = book
	}

	var b broker.Broker
	if in.Fault.RejectAll {
		b = rejectAllBroker{}
	} else {
		b = broker.NewPaperBroker()
	}

	riskMgr := risk.NewManager(in.RiskThresholds, in.RecoveryConfig, now)
	riskMgr.OnDayStart0900(in.AccountID, in.BaselineEquity, now())

	executor := flatten.NewExecutor(b, in.ExecutorConfig, in.FlattenPolicy, now, nil)

	return orchestrator.HandleRiskUpdate(ctx, riskMgr, executor, in.Update, in.Snapshot, in.Positions, effectiveBooks, now)
}
