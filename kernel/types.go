// FILE: kernel/types.go
// Package kernel holds the immutable value types shared by every component of
// the decision kernel: order intents, book tops, account snapshots, and
// positions to close. Nothing in this package touches the clock, the network,
// or a mutex — nothing here owns state.
package kernel

import (
	"fmt"
	"math"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Offset distinguishes an opening trade from the two closing variants the
// Chinese futures exchanges settle differently.
type Offset string

const (
	OffsetOpen        Offset = "OPEN"
	OffsetClose       Offset = "CLOSE"
	OffsetCloseToday  Offset = "CLOSE_TODAY"
)

// OrderIntent is an immutable candidate order. Construct with NewOrderIntent
// so the validity invariant is checked once, at the boundary.
type OrderIntent struct {
	Symbol string
	Side   Side
	Offset Offset
	Price  float64
	Qty    int64
	Reason string
}

// NewOrderIntent validates qty>0, price>0, and — for CLOSE/CLOSE_TODAY — that
// the side opposes the current net position. netQty is the signed net
// position for Symbol; pass 0 for OPEN intents where it is not applicable.
func NewOrderIntent(symbol string, side Side, offset Offset, price float64, qty int64, reason string, netQty int64) (OrderIntent, error) {
	if qty <= 0 {
		return OrderIntent{}, fmt.Errorf("kernel: qty must be > 0, got %d", qty)
	}
	if price <= 0 {
		return OrderIntent{}, fmt.Errorf("kernel: price must be > 0, got %f", price)
	}
	if offset == OffsetClose || offset == OffsetCloseToday {
		if netQty == 0 {
			return OrderIntent{}, fmt.Errorf("kernel: %s intent requires a non-zero net position to close", offset)
		}
		// Closing a long position sells; closing a short position buys.
		wantSide := SideSell
		if netQty < 0 {
			wantSide = SideBuy
		}
		if side != wantSide {
			return OrderIntent{}, fmt.Errorf("kernel: %s intent on net_qty=%d must be %s, got %s", offset, netQty, wantSide, side)
		}
	}
	return OrderIntent{Symbol: symbol, Side: side, Offset: offset, Price: price, Qty: qty, Reason: reason}, nil
}

// BookTop is the best bid/ask and the product's tick size.
type BookTop struct {
	BestBid  float64
	BestAsk  float64
	TickSize float64
}

// Valid reports whether the invariant best_bid <= best_ask holds when both
// sides are present (zero is treated as "absent" for this check).
func (b BookTop) Valid() bool {
	if b.BestBid > 0 && b.BestAsk > 0 {
		return b.BestBid <= b.BestAsk
	}
	return true
}

// AccountSnapshot is the account-level equity/margin view for one tick.
type AccountSnapshot struct {
	Equity     float64
	MarginUsed float64
}

// NewAccountSnapshot rejects negative inputs at the perimeter.
func NewAccountSnapshot(equity, marginUsed float64) (AccountSnapshot, error) {
	if equity < 0 || marginUsed < 0 {
		return AccountSnapshot{}, fmt.Errorf("kernel: snapshot fields must be non-negative (equity=%f, margin_used=%f)", equity, marginUsed)
	}
	return AccountSnapshot{Equity: equity, MarginUsed: marginUsed}, nil
}

// MarginAvailable is max(0, equity - margin_used).
func (s AccountSnapshot) MarginAvailable() float64 {
	a := s.Equity - s.MarginUsed
	if a < 0 {
		return 0
	}
	return a
}

// UsageRatio is margin_used/equity, +Inf if equity<=0 and margin_used>0, else 0.
func (s AccountSnapshot) UsageRatio() float64 {
	if s.Equity <= 0 {
		if s.MarginUsed > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return s.MarginUsed / s.Equity
}

// Position describes a symbol's closeable position.
type Position struct {
	Symbol        string
	NetQty        int64 // signed: >0 long, <0 short
	TodayQty      int64
	YesterdayQty  int64
}

// Valid checks TodayQty + YesterdayQty == |NetQty|, both >= 0.
func (p Position) Valid() bool {
	if p.TodayQty < 0 || p.YesterdayQty < 0 {
		return false
	}
	abs := p.NetQty
	if abs < 0 {
		abs = -abs
	}
	return p.TodayQty+p.YesterdayQty == abs
}
