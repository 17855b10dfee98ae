// FILE: compliance/events.go
// Package compliance implements C5: the programmatic-trading compliance
// throttle and HFT detector. Everything here is keyed by account_id; one
// shard owns one Manager and therefore one set of per-account rolling
// windows, matching the single-threaded-per-shard concurrency model.
package compliance

import "time"

// EventType enumerates the order-lifecycle events the throttle observes.
type EventType string

const (
	EventSubmit EventType = "submit"
	EventCancel EventType = "cancel"
	EventAmend  EventType = "amend"
	EventFill   EventType = "fill"
)

// OrderEvent is one observed order-lifecycle event.
type OrderEvent struct {
	AccountID        string
	StrategyID       string
	OrderID          string
	EventType        EventType
	Symbol           string
	TS               time.Time
	AuditRecordedTS  *time.Time // nil if not yet audited
}

// auditDelaySeconds returns recorded - ts in seconds, or 0 if not yet recorded.
func (e OrderEvent) auditDelaySeconds() float64 {
	if e.AuditRecordedTS == nil {
		return 0
	}
	return e.AuditRecordedTS.Sub(e.TS).Seconds()
}
