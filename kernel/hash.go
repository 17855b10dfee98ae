// FILE: kernel/hash.go
// Package kernel – canonical serialization and snapshot hashing.
//
// snapshot_hash must be a pure function of (snapshot, positions, books) that
// is stable under reordering of the positions/books collections. We get that
// by building our own sorted, minimal-whitespace JSON representation rather
// than relying on encoding/json map ordering (which already sorts map keys,
// but we still sort slices explicitly for clarity and to pin float formatting).
package kernel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
)

// CanonicalJSON renders v (built only from the primitives in this package, or
// maps/slices/strings/numbers thereof) as a stable, sorted-key, separatorless
// JSON string suitable for hashing. It intentionally supports only the shapes
// this kernel needs, not arbitrary Go values.
func CanonicalJSON(v interface{}) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

func writeCanonical(b *strings.Builder, v interface{}) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		writeJSONString(b, t)
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case int:
		fmt.Fprintf(b, "%d", t)
	case int64:
		fmt.Fprintf(b, "%d", t)
	case float64:
		writeCanonicalFloat(b, t)
	case map[string]interface{}:
		writeCanonicalMap(b, t)
	case []interface{}:
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, e)
		}
		b.WriteByte(']')
	default:
		// Unsupported shape: fail loudly rather than silently hash the wrong thing.
		panic(fmt.Sprintf("kernel: CanonicalJSON: unsupported type %T", v))
	}
}

func writeCanonicalMap(b *strings.Builder, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(b, k)
		b.WriteByte(':')
		writeCanonical(b, m[k])
	}
	b.WriteByte('}')
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// writeCanonicalFloat formats f with %g (shortest representation, no
// trailing ".0"); it does not round, so any rounding (see RoundHalfEven) is
// the caller's to apply before this point.
func writeCanonicalFloat(b *strings.Builder, f float64) {
	s := fmt.Sprintf("%g", f)
	b.WriteString(s)
}

// HashSnapshot computes SHA-256 over the canonical form of the
// (snapshot, positions, books) triple, sorted by symbol so that input
// ordering never affects the result. correlation_id is never part of this
// payload.
func HashSnapshot(snap AccountSnapshot, positions []Position, books map[string]BookTop) string {
	posOut := make([]interface{}, 0, len(positions))
	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })
	for _, p := range sorted {
		posOut = append(posOut, map[string]interface{}{
			"symbol":        p.Symbol,
			"net_qty":       p.NetQty,
			"today_qty":     p.TodayQty,
			"yesterday_qty": p.YesterdayQty,
		})
	}

	symbols := make([]string, 0, len(books))
	for sym := range books {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	bookOut := map[string]interface{}{}
	for _, sym := range symbols {
		bk := books[sym]
		bookOut[sym] = map[string]interface{}{
			"best_bid": bk.BestBid,
			"best_ask": bk.BestAsk,
			"tick":     bk.TickSize,
		}
	}

	payload := map[string]interface{}{
		"snap": map[string]interface{}{
			"equity":      snap.Equity,
			"margin_used": snap.MarginUsed,
		},
		"positions": posOut,
		"books":     bookOut,
	}

	sum := sha256.Sum256([]byte(CanonicalJSON(payload)))
	return hex.EncodeToString(sum[:])
}

// ChainHash computes h_i = SHA-256(prev || canonical(record)) for the
// tamper-evident audit chain (C1).
func ChainHash(prev string, canonicalRecord string) string {
	sum := sha256.Sum256([]byte(prev + canonicalRecord))
	return hex.EncodeToString(sum[:])
}

// RoundHalfEven rounds f to the given number of decimal places using
// round-half-to-even (banker's rounding), per the wire schema's numeric
// semantics (6 digits for ratios, 2 for currency).
func RoundHalfEven(f float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	scaled := f * scale
	floor := math.Floor(scaled)
	diff := scaled - floor
	var rounded float64
	switch {
	case diff < 0.5:
		rounded = floor
	case diff > 0.5:
		rounded = floor + 1
	default:
		// Exactly .5: round to even.
		if math.Mod(floor, 2) == 0 {
			rounded = floor
		} else {
			rounded = floor + 1
		}
	}
	return rounded / scale
}
