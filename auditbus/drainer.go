// FILE: auditbus/drainer.go
// Package auditbus – Drainer turns a remote or otherwise slow Sink into a
// fire-and-forget background writer, per the "async" audit/backup callbacks
// this kernel's design intentionally keeps out of the synchronous tick path.
// The kernel itself never constructs a Drainer; the host binary does, if and
// only if it wires a remote sink.
package auditbus

import "log"

// Drainer buffers records onto a bounded channel and writes them to an
// underlying Sink on a dedicated goroutine. If the channel is full, Write
// drops the record and logs it rather than blocking the caller's tick.
type Drainer struct {
	sink Sink
	ch   chan Record
	done chan struct{}
}

// NewDrainer starts the background goroutine immediately. Call Stop to drain
// and shut it down.
func NewDrainer(sink Sink, bufferSize int) *Drainer {
	d := &Drainer{
		sink: sink,
		ch:   make(chan Record, bufferSize),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Drainer) run() {
	defer close(d.done)
	for r := range d.ch {
		if err := d.sink.Write(r); err != nil {
			log.Printf("auditbus: background sink write failed: %v", err)
		}
	}
}

// Write implements Sink by enqueueing r. Never blocks.
func (d *Drainer) Write(r Record) error {
	select {
	case d.ch <- r:
	default:
		log.Printf("auditbus: drainer buffer full, dropping record seq=%d type=%s", r.SequenceID, r.EventType)
	}
	return nil
}

// Stop closes the input channel and waits for the goroutine to drain it.
func (d *Drainer) Stop() {
	close(d.ch)
	<-d.done
}
