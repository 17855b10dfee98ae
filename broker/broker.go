// FILE: broker/broker.go
// Package broker – the submit-order contract the executor (C8) calls
// through. The core never interprets OrderID beyond logging it, and never
// retries internally: retry policy belongs to the caller or the transport
// implementation behind this interface.
package broker

import (
	"context"
	"fmt"

	"github.com/chidi150c/futures-kernel/kernel"
)

// OrderAck is returned on a successful placement.
type OrderAck struct {
	OrderID string
}

// OrderRejected is a typed rejection, distinct from a transport error. Check
// for it with errors.As.
type OrderRejected struct {
	Reason string
}

func (e *OrderRejected) Error() string { return fmt.Sprintf("order rejected: %s", e.Reason) }

// Broker is the contract every execution venue implements. PlaceOrder either
// returns an OrderAck, or a non-nil error — an *OrderRejected for a policy
// rejection, or any other error for a transport failure (the caller's
// enclosing context deadline governs timeouts). The executor counts every
// non-nil error, a context.DeadlineExceeded included, as a rejection against
// its budget and records err.Error() as the reason ("timeout" for a
// context.DeadlineExceeded).
type Broker interface {
	Name() string
	PlaceOrder(ctx context.Context, intent kernel.OrderIntent) (OrderAck, error)
}
