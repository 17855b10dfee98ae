// FILE: broker/paper.go
// Package broker – PaperBroker, an in-memory always-ack (or, with RejectAll
// set, always-reject) implementation. This is the default broker for
// tests and for C10 replay, which forces PAPER regardless of caller request.
package broker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/chidi150c/futures-kernel/kernel"
)

// PaperBroker never touches the network. RejectAll, when set, makes every
// placement fail. (The replay runner's reject_all fault uses its own
// rejectAllBroker, not this switch.)
type PaperBroker struct {
	mu       sync.Mutex
	RejectAll bool
	fills     []kernel.OrderIntent
}

// NewPaperBroker constructs a fresh paper broker.
func NewPaperBroker() *PaperBroker { return &PaperBroker{} }

func (p *PaperBroker) Name() string { return "paper" }

func (p *PaperBroker) PlaceOrder(ctx context.Context, intent kernel.OrderIntent) (OrderAck, error) {
	select {
	case <-ctx.Done():
		return OrderAck{}, &OrderRejected{Reason: "timeout"}
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.RejectAll {
		return OrderAck{}, &OrderRejected{Reason: "paper_reject_all"}
	}
	p.fills = append(p.fills, intent)
	return OrderAck{OrderID: uuid.New().String()}, nil
}

// Fills returns every intent this broker has acked, in placement order. Used
// by tests to assert on what the executor actually sent.
func (p *PaperBroker) Fills() []kernel.OrderIntent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kernel.OrderIntent, len(p.fills))
	copy(out, p.fills)
	return out
}
