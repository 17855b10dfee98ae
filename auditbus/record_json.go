// FILE: auditbus/record_json.go
// Package auditbus – wire encoding for Record, matching the documented key
// order: ts, correlation_id, event_type, account_id?, strategy_id?, symbol?,
// payload, snapshot_hash?, sequence_id, integrity_hash.
package auditbus

import (
	"strconv"
	"strings"

	"github.com/chidi150c/futures-kernel/kernel"
)

// MarshalCanonical renders r in the documented wire key order, omitting the
// optional identifier fields when empty. This is what gets hashed into
// IntegrityHash and what a file sink writes as one JSON line.
func (r Record) MarshalCanonical() string {
	type kv struct {
		key   string
		value string // pre-rendered JSON value (already quoted/escaped as needed)
	}
	fields := []kv{
		{"ts", jsonString(r.TS.UTC().Format("2006-01-02T15:04:05.000000Z"))},
		{"correlation_id", jsonString(r.CorrelationID)},
		{"event_type", jsonString(string(r.EventType))},
	}
	if r.AccountID != "" {
		fields = append(fields, kv{"account_id", jsonString(r.AccountID)})
	}
	if r.StrategyID != "" {
		fields = append(fields, kv{"strategy_id", jsonString(r.StrategyID)})
	}
	if r.Symbol != "" {
		fields = append(fields, kv{"symbol", jsonString(r.Symbol)})
	}
	fields = append(fields, kv{"payload", kernel.CanonicalJSON(toGeneric(r.Payload))})
	if r.SnapshotHash != "" {
		fields = append(fields, kv{"snapshot_hash", jsonString(r.SnapshotHash)})
	}
	fields = append(fields, kv{"sequence_id", strconv.FormatInt(r.SequenceID, 10)})
	if r.IntegrityHash != "" {
		fields = append(fields, kv{"integrity_hash", jsonString(r.IntegrityHash)})
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(jsonString(f.key))
		b.WriteByte(':')
		b.WriteString(f.value)
	}
	b.WriteByte('}')
	return b.String()
}

func jsonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func toGeneric(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
