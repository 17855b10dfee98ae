// FILE: orchestrator/orchestrator.go
// Package orchestrator wires the risk manager and flatten executor together
// behind one entry point, HandleRiskUpdate, run once per tick. It owns
// nothing: no clock, no broker, no storage — every dependency is passed in.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chidi150c/futures-kernel/flatten"
	"github.com/chidi150c/futures-kernel/kernel"
	"github.com/chidi150c/futures-kernel/risk"
)

// RiskEvent is a risk transition tagged with a correlation ID, ready for the
// caller to re-emit onto the shared audit bus.
type RiskEvent struct {
	Type          string
	TS            time.Time
	CorrelationID string
	Data          map[string]interface{}
}

// Result is everything one HandleRiskUpdate call produced.
type Result struct {
	RiskEvents       []RiskEvent
	FlattenEvents    []flatten.Event
	ExecutionRecords []flatten.ExecutionRecord
	CorrelationID    string
	SnapshotHash     string
}

// AccountUpdate is the tick input for one account.
type AccountUpdate struct {
	AccountID       string
	Equity          float64
	MarginUsagePct  float64
	PositionLossPct float64
}

// HandleRiskUpdate is the sole public entry point for C9. It computes a
// snapshot hash, updates the risk manager, and — if the kill switch fires —
// flattens every position with an available book.
func HandleRiskUpdate(
	ctx context.Context,
	riskMgr *risk.Manager,
	executor *flatten.Executor,
	update AccountUpdate,
	snap kernel.AccountSnapshot,
	positions []kernel.Position,
	books map[string]kernel.BookTop,
	now func() time.Time,
) Result {
	if now == nil {
		now = time.Now
	}
	correlationID := uuid.New().String()
	snapshotHash := kernel.HashSnapshot(snap, positions, books)

	riskEvents := []RiskEvent{{
		Type: "AUDIT_SNAPSHOT", TS: now(), CorrelationID: correlationID,
		Data: map[string]interface{}{"snapshot_hash": snapshotHash},
	}}

	updateResult := riskMgr.Update(update.AccountID, update.Equity, update.MarginUsagePct, update.PositionLossPct)
	for _, rec := range updateResult.TransitionRecords {
		riskEvents = append(riskEvents, RiskEvent{
			Type: rec.EventType, TS: rec.TS, CorrelationID: correlationID,
			Data: map[string]interface{}{
				"from_state":     rec.FromState.String(),
				"to_state":       rec.ToState.String(),
				"trigger_reason": rec.TriggerReason,
				"details":        rec.Details,
			},
		})
	}

	var flattenEvents []flatten.Event
	var execRecords []flatten.ExecutionRecord

	if updateResult.KillSwitchFired {
		riskEvents = append(riskEvents, RiskEvent{
			Type: "KILL_SWITCH_FIRED", TS: now(), CorrelationID: correlationID,
			Data: map[string]interface{}{"account_id": update.AccountID, "reasons": updateResult.TriggerReasons},
		})
		riskEvents = append(riskEvents, RiskEvent{
			Type: "FORCE_FLATTEN_REQUESTED", TS: now(), CorrelationID: correlationID,
			Data: map[string]interface{}{"account_id": update.AccountID},
		})

		toClose := make([]flatten.PositionToClose, 0, len(positions))
		for _, pos := range positions {
			book, ok := books[pos.Symbol]
			toClose = append(toClose, flatten.PositionToClose{Position: pos, Book: book, HasBook: ok})
		}
		flattenEvents, execRecords = executor.Run(ctx, correlationID, toClose)
	}

	return Result{
		RiskEvents:       riskEvents,
		FlattenEvents:    flattenEvents,
		ExecutionRecords: execRecords,
		CorrelationID:    correlationID,
		SnapshotHash:     snapshotHash,
	}
}
