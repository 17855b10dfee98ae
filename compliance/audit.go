// FILE: compliance/audit.go
// Package compliance – AuditLogger writes M3 audit entries for every
// throttle decision and compliance-relevant event, independent of the main
// kernel audit bus (C1) so the compliance package has no dependency on
// auditbus; a caller can re-emit these onto the shared bus by calling
// Entries() or by wiring a Sink via NewAuditLoggerWithSink (the orchestrator
// does neither).
package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/chidi150c/futures-kernel/kernel"
)

// AuditLogEntry mirrors the §4.3 M3 schema.
type AuditLogEntry struct {
	TS            time.Time
	EventType     string
	Operator      string // account/strategy
	Target        string // order_id
	Action        string
	Result        string
	Context       map[string]interface{}
	MilitaryRule  string
	SequenceID    int64
	IntegrityHash string
}

// AuditSink receives entries as they are written; optional.
type AuditSink interface {
	Write(e AuditLogEntry)
}

// AuditLogger is append-only and thread-safe.
type AuditLogger struct {
	mu      sync.Mutex
	seq     int64
	entries []AuditLogEntry
	sink    AuditSink
}

func NewAuditLogger() *AuditLogger { return &AuditLogger{} }

func NewAuditLoggerWithSink(sink AuditSink) *AuditLogger { return &AuditLogger{sink: sink} }

func (l *AuditLogger) log(ts time.Time, eventType, operator, target, action, result string, ctx map[string]interface{}, rule string) AuditLogEntry {
	l.mu.Lock()
	l.seq++
	e := AuditLogEntry{
		TS: ts, EventType: eventType, Operator: operator, Target: target,
		Action: action, Result: result, Context: ctx, MilitaryRule: rule, SequenceID: l.seq,
	}
	payload := map[string]interface{}{
		"event_type": eventType, "operator": operator, "target": target,
		"action": action, "result": result, "sequence_id": l.seq,
	}
	sum := sha256.Sum256([]byte(kernel.CanonicalJSON(payload)))
	e.IntegrityHash = hex.EncodeToString(sum[:])
	l.entries = append(l.entries, e)
	sink := l.sink
	l.mu.Unlock()
	if sink != nil {
		sink.Write(e)
	}
	return e
}

// LogOrderSubmit records a throttle decision for one order event.
func (l *AuditLogger) LogOrderSubmit(e OrderEvent, result ThrottleResult) AuditLogEntry {
	return l.log(e.TS, "ORDER_SUBMIT", e.AccountID+"/"+e.StrategyID, e.OrderID, string(e.EventType), result.Level.String(),
		map[string]interface{}{"reason": result.Reason}, "M3")
}

// LogComplianceViolation records a throttle-level REJECT/BLOCK specifically.
func (l *AuditLogger) LogComplianceViolation(accountID, reason string, ts time.Time) AuditLogEntry {
	return l.log(ts, "COMPLIANCE_VIOLATION", accountID, "", "REJECT", "VIOLATION",
		map[string]interface{}{"reason": reason}, "M17")
}

// LogHFTDetected records a new HFT latch.
func (l *AuditLogger) LogHFTDetected(accountID string, ts time.Time, ordersPerSec float64) AuditLogEntry {
	return l.log(ts, "HFT_DETECTED", accountID, "", "FLAG", "HFT",
		map[string]interface{}{"orders_per_sec": ordersPerSec}, "M17")
}

// Entries returns a copy of every entry logged so far, in order.
func (l *AuditLogger) Entries() []AuditLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// VerifyIntegrity recomputes each entry's hash and reports the index of the
// first mismatch, or -1 if all entries verify.
func (l *AuditLogger) VerifyIntegrity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		payload := map[string]interface{}{
			"event_type": e.EventType, "operator": e.Operator, "target": e.Target,
			"action": e.Action, "result": e.Result, "sequence_id": e.SequenceID,
		}
		sum := sha256.Sum256([]byte(kernel.CanonicalJSON(payload)))
		if hex.EncodeToString(sum[:]) != e.IntegrityHash {
			return i
		}
	}
	return -1
}
