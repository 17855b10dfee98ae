// FILE: auditbus/bus.go
// Package auditbus – Bus wires a sequence counter and a chained tamper-evident
// hash in front of a pluggable Sink. The bus guarantees ordering within a
// single correlation_id and is FIFO across correlation_ids on a single
// writer; callers needing a shared sink across shards must supply a
// thread-safe Sink implementation.
package auditbus

import (
	"sync"

	"github.com/chidi150c/futures-kernel/kernel"
)

// Sink receives records in emission order. Implementations must not block
// the calling tick for long; a slow remote sink should be wrapped by a
// bounded queue and a dedicated drainer (see Drainer in drainer.go).
type Sink interface {
	Write(r Record) error
}

// Bus is the emit(record) entry point every component writes through.
type Bus struct {
	mu       sync.Mutex
	sink     Sink
	seq      int64
	lastHash string
	tamperEvident bool
}

// NewBus constructs a bus writing to sink. When tamperEvident is true, every
// record's IntegrityHash chains off the previous one (h_i =
// SHA256(h_{i-1} || canonical(record_i))); when false, IntegrityHash is a
// plain hash of the record's own canonical payload.
func NewBus(sink Sink, tamperEvident bool) *Bus {
	return &Bus{sink: sink, tamperEvident: tamperEvident}
}

// Emit stamps r with the next sequence number and integrity hash, then
// writes it to the sink. The caller supplies everything else (ts,
// correlation_id, event_type, payload, ...).
func (b *Bus) Emit(r Record) error {
	b.mu.Lock()
	b.seq++
	r.SequenceID = b.seq

	unsigned := r
	unsigned.IntegrityHash = ""
	canon := unsigned.MarshalCanonical()

	if b.tamperEvident {
		r.IntegrityHash = kernel.ChainHash(b.lastHash, canon)
	} else {
		r.IntegrityHash = kernel.ChainHash("", canon)
	}
	b.lastHash = r.IntegrityHash
	sink := b.sink
	b.mu.Unlock()

	if sink == nil {
		return nil
	}
	return sink.Write(r)
}
