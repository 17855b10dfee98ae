// FILE: auditbus/event.go
// Package auditbus implements C1: a correlated, ordered event stream with
// tamper-evident hashing and a pluggable sink. Every other component emits
// through the Bus this package constructs; none of them knows what kind of
// sink is behind it.
package auditbus

import "time"

// EventType enumerates every record type a tick can emit. Keeping this a
// closed set (rather than a free string) lets callers switch on it
// exhaustively.
type EventType string

const (
	EventAuditSnapshot              EventType = "AUDIT_SNAPSHOT"
	EventKillSwitchFired            EventType = "KILL_SWITCH_FIRED"
	EventForceFlattenRequested      EventType = "FORCE_FLATTEN_REQUESTED"
	EventRiskTransition             EventType = "RISK_STATE_TRANSITION"
	EventFlattenStarted             EventType = "FLATTEN_STARTED"
	EventFlattenCompleted           EventType = "FLATTEN_COMPLETED"
	EventFlattenSkippedInProgress   EventType = "FLATTEN_SKIPPED_ALREADY_IN_PROGRESS"
	EventFlattenAbortedRejections   EventType = "FLATTEN_ABORTED_TOO_MANY_REJECTIONS"
	EventDataQualityMissingBook     EventType = "DATA_QUALITY_MISSING_BOOK"
	EventGateResult                 EventType = "GATE_RESULT"
	EventThrottleDecision           EventType = "THROTTLE_DECISION"
	EventHFTDetected                EventType = "HFT_DETECTED"
	EventMarginAlert                EventType = "MARGIN_ALERT"
	EventRegistrationChange         EventType = "REGISTRATION_CHANGE"
	EventReportStatusChange         EventType = "REPORT_STATUS_CHANGE"
	EventLifecycleTransitionPending EventType = "LIFECYCLE_TRANSITION_PENDING"
	EventLifecycleTransitionApplied EventType = "LIFECYCLE_TRANSITION_APPLIED"
)

// Record is one audit-wire entry. Field order matches the documented wire
// schema; MarshalCanonical (see record_json.go) writes the keys in that
// order and omits the optional identifiers when they are empty.
type Record struct {
	TS            time.Time
	CorrelationID string
	EventType     EventType
	AccountID     string
	StrategyID    string
	Symbol        string
	Payload       map[string]interface{}
	SnapshotHash  string
	SequenceID    int64
	IntegrityHash string
}
