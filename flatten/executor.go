// FILE: flatten/executor.go
package flatten

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chidi150c/futures-kernel/broker"
	"github.com/chidi150c/futures-kernel/kernel"
)

// EventType is one executor-emitted event kind.
type EventType string

const (
	EventFlattenStarted          EventType = "FLATTEN_STARTED"
	EventFlattenCompleted        EventType = "FLATTEN_COMPLETED"
	EventSkippedAlreadyInProgress EventType = "FLATTEN_SKIPPED_ALREADY_IN_PROGRESS"
	EventAbortedTooManyRejections EventType = "FLATTEN_ABORTED_TOO_MANY_REJECTIONS"
	EventDataQualityMissingBook  EventType = "DATA_QUALITY_MISSING_BOOK"
)

// Event is one executor-level audit event, returned for the caller to
// re-emit onto the shared bus with a correlation ID.
type Event struct {
	Type    EventType
	Symbol  string
	TS      time.Time
	Details map[string]interface{}
}

// ExecutionRecord is the outcome of one order placement attempt.
type ExecutionRecord struct {
	Intent        kernel.OrderIntent
	OrderID       string
	Rejected      bool
	RejectReason  string
	TS            time.Time
	CorrelationID string
}

// ExecutorConfig tunes the rejection budget.
type ExecutorConfig struct {
	MaxRejections int // default 10, across the whole batch
}

func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{MaxRejections: 10}
}

// Executor is stateful within a single correlation_id batch and across a
// trading day: it latches a per-day "already flattened" marker after a
// completed (not aborted) run, so a later risk update in the same day is a
// safe no-op.
type Executor struct {
	mu sync.Mutex

	broker   broker.Broker
	config   ExecutorConfig
	policy   Policy
	now      func() time.Time
	calendar dayKeyer

	lastRunDayKey string
	hasRun        bool
}

// dayKeyer reduces a timestamp to a comparable trading-day key; kept as a
// narrow function type so the executor has no dependency on the risk
// package's TradingCalendar interface.
type dayKeyer func(time.Time) string

func defaultDayKeyer(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NewExecutor wires an executor against one broker. calendar may be nil to
// use the default UTC calendar day as the idempotency key.
func NewExecutor(b broker.Broker, cfg ExecutorConfig, policy Policy, now func() time.Time, calendar func(time.Time) string) *Executor {
	if now == nil {
		now = time.Now
	}
	if calendar == nil {
		calendar = defaultDayKeyer
	}
	return &Executor{broker: b, config: cfg, policy: policy, now: now, calendar: calendar}
}

// groupByOffset splits intents into contiguous runs sharing the same
// Offset, preserving order. Plan emits CLOSE_TODAY rungs before CLOSE
// rungs, so this yields at most two groups per position.
func groupByOffset(intents []kernel.OrderIntent) [][]kernel.OrderIntent {
	var groups [][]kernel.OrderIntent
	var cur []kernel.OrderIntent
	var curOffset kernel.Offset
	for i, intent := range intents {
		if i == 0 || intent.Offset != curOffset {
			if len(cur) > 0 {
				groups = append(groups, cur)
			}
			cur = nil
			curOffset = intent.Offset
		}
		cur = append(cur, intent)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// PositionToClose is one account's closeable position along with its book.
type PositionToClose struct {
	Position kernel.Position
	Book     kernel.BookTop
	HasBook  bool
}

// Run flattens every position in positions, in order, under one correlation
// ID. It is idempotent per trading day: once a run has completed, a later
// call on the same day emits EventSkippedAlreadyInProgress and does nothing
// else. An aborted run does not set the latch, so a same-day call runs again.
func (ex *Executor) Run(ctx context.Context, correlationID string, positions []PositionToClose) ([]Event, []ExecutionRecord) {
	now := ex.now()
	dayKey := ex.calendar(now)

	ex.mu.Lock()
	if ex.hasRun && ex.lastRunDayKey == dayKey {
		ex.mu.Unlock()
		return []Event{{Type: EventSkippedAlreadyInProgress, TS: now}}, nil
	}
	ex.mu.Unlock()

	var events []Event
	var records []ExecutionRecord
	events = append(events, Event{Type: EventFlattenStarted, TS: now, Details: map[string]interface{}{"correlation_id": correlationID}})

	rejections := 0
	aborted := false

outer:
	for _, pos := range positions {
		if !pos.HasBook {
			events = append(events, Event{Type: EventDataQualityMissingBook, Symbol: pos.Position.Symbol, TS: ex.now(),
				Details: map[string]interface{}{"symbol": pos.Position.Symbol}})
			continue
		}

		intents, err := Plan(pos.Position.Symbol, pos.Book, pos.Position.NetQty, pos.Position.TodayQty, ex.policy)
		if err != nil {
			events = append(events, Event{Type: EventDataQualityMissingBook, Symbol: pos.Position.Symbol, TS: ex.now(),
				Details: map[string]interface{}{"symbol": pos.Position.Symbol, "plan_error": err.Error()}})
			continue
		}

		// CLOSE_TODAY and CLOSE are independent ladders: one successful
		// placement retires a ladder, but the next offset class's ladder
		// still needs its own attempt.
		for _, class := range groupByOffset(intents) {
			for _, intent := range class {
				ack, err := ex.broker.PlaceOrder(ctx, intent)
				ts := ex.now()
				if err != nil {
					rejections++
					reason := err.Error()
					if errors.Is(err, context.DeadlineExceeded) {
						reason = "timeout"
					}
					records = append(records, ExecutionRecord{Intent: intent, Rejected: true, RejectReason: reason, TS: ts, CorrelationID: correlationID})
					if rejections > ex.config.MaxRejections {
						aborted = true
						break outer
					}
					continue
				}
				records = append(records, ExecutionRecord{Intent: intent, OrderID: ack.OrderID, TS: ts, CorrelationID: correlationID})
				break
			}
		}
	}

	if aborted {
		events = append(events, Event{Type: EventAbortedTooManyRejections, TS: ex.now(),
			Details: map[string]interface{}{"rejections": rejections, "max_rejections": ex.config.MaxRejections}})
	} else {
		events = append(events, Event{Type: EventFlattenCompleted, TS: ex.now(), Details: map[string]interface{}{"correlation_id": correlationID}})
		ex.mu.Lock()
		ex.hasRun = true
		ex.lastRunDayKey = dayKey
		ex.mu.Unlock()
	}

	return events, records
}
