// FILE: flatten/executor_test.go
package flatten

import (
	"context"
	"testing"
	"time"

	"github.com/chidi150c/futures-kernel/broker"
	"github.com/chidi150c/futures-kernel/kernel"
)

type countingBroker struct {
	calls     int
	rejectAll bool
}

func (c *countingBroker) Name() string { return "counting" }

func (c *countingBroker) PlaceOrder(ctx context.Context, intent kernel.OrderIntent) (broker.OrderAck, error) {
	c.calls++
	if c.rejectAll {
		return broker.OrderAck{}, &broker.OrderRejected{Reason: "injected"}
	}
	return broker.OrderAck{OrderID: "oid"}, nil
}

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestExecutorRunsOncePerDay(t *testing.T) {
	b := &countingBroker{}
	ex := NewExecutor(b, DefaultExecutorConfig(), Policy{Stage2Requotes: 0, Stage3MaxCrossLevels: 0, TickSize: 1}, fixedNow(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)), nil)

	positions := []PositionToClose{{
		Position: kernel.Position{Symbol: "AO", NetQty: 1, TodayQty: 1, YesterdayQty: 0},
		Book:     kernel.BookTop{BestBid: 100, BestAsk: 101},
		HasBook:  true,
	}}

	events1, records1 := ex.Run(context.Background(), "corr-1", positions)
	if !hasEvent(events1, EventFlattenStarted) || !hasEvent(events1, EventFlattenCompleted) {
		t.Fatalf("expected started+completed events, got %+v", events1)
	}
	if len(records1) == 0 {
		t.Fatalf("expected at least one execution record")
	}
	callsAfterFirst := b.calls

	events2, records2 := ex.Run(context.Background(), "corr-2", positions)
	if !hasEvent(events2, EventSkippedAlreadyInProgress) {
		t.Fatalf("expected second same-day call to be skipped, got %+v", events2)
	}
	if len(records2) != 0 {
		t.Fatalf("expected no new execution records on skipped run")
	}
	if b.calls != callsAfterFirst {
		t.Fatalf("broker must not be called again on a skipped run")
	}
}

func TestExecutorMissingBookEmitsDataQualityEvent(t *testing.T) {
	b := &countingBroker{}
	ex := NewExecutor(b, DefaultExecutorConfig(), DefaultPolicy(), fixedNow(time.Now()), nil)

	positions := []PositionToClose{{
		Position: kernel.Position{Symbol: "MISS", NetQty: 1, TodayQty: 1},
		HasBook:  false,
	}}

	events, _ := ex.Run(context.Background(), "corr-1", positions)
	if !hasEvent(events, EventDataQualityMissingBook) {
		t.Fatalf("expected DATA_QUALITY_MISSING_BOOK event, got %+v", events)
	}
}

func TestExecutorAbortsAfterTooManyRejections(t *testing.T) {
	b := &countingBroker{rejectAll: true}
	ex := NewExecutor(b, ExecutorConfig{MaxRejections: 1}, Policy{Stage2Requotes: 2, Stage3MaxCrossLevels: 0, TickSize: 1}, fixedNow(time.Now()), nil)

	positions := []PositionToClose{{
		Position: kernel.Position{Symbol: "AO", NetQty: 1, TodayQty: 1},
		Book:     kernel.BookTop{BestBid: 100, BestAsk: 101},
		HasBook:  true,
	}}

	events, _ := ex.Run(context.Background(), "corr-1", positions)
	if !hasEvent(events, EventAbortedTooManyRejections) {
		t.Fatalf("expected FLATTEN_ABORTED_TOO_MANY_REJECTIONS, got %+v", events)
	}
}

func TestExecutorPlacesBothCloseTodayAndCloseLegs(t *testing.T) {
	b := &countingBroker{}
	ex := NewExecutor(b, DefaultExecutorConfig(), Policy{Stage2Requotes: 0, Stage3MaxCrossLevels: 0, TickSize: 1}, fixedNow(time.Now()), nil)

	positions := []PositionToClose{{
		Position: kernel.Position{Symbol: "AO", NetQty: 2, TodayQty: 1, YesterdayQty: 1},
		Book:     kernel.BookTop{BestBid: 100, BestAsk: 101},
		HasBook:  true,
	}}

	_, records := ex.Run(context.Background(), "corr-1", positions)

	var totalQty int64
	sawCloseToday, sawClose := false, false
	for _, r := range records {
		if r.Rejected {
			continue
		}
		totalQty += r.Intent.Qty
		switch r.Intent.Offset {
		case kernel.OffsetCloseToday:
			sawCloseToday = true
		case kernel.OffsetClose:
			sawClose = true
		}
	}
	if !sawCloseToday || !sawClose {
		t.Fatalf("expected both CLOSE_TODAY and CLOSE legs placed, got %+v", records)
	}
	if totalQty != 2 {
		t.Fatalf("expected total executed qty to equal |net_qty|=2, got %d", totalQty)
	}
}

func hasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
