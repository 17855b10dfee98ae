// FILE: flatten/plan.go
// Package flatten implements force-flatten planning (C7) and execution (C8):
// given a position the risk manager wants closed immediately, build an
// aggressive price ladder and place orders against it until the position is
// flat or the rejection budget is exhausted.
package flatten

import (
	"errors"
	"fmt"

	"github.com/chidi150c/futures-kernel/kernel"
)

// Policy controls the price ladder's shape.
type Policy struct {
	Stage2Requotes     int     // number of 1-tick requotes after the initial quote
	Stage3MaxCrossLevels int   // additional, more aggressive rungs beyond stage2
	TickSize           float64
}

func DefaultPolicy() Policy {
	return Policy{Stage2Requotes: 12, Stage3MaxCrossLevels: 12, TickSize: 1.0}
}

var ErrCloseTodayExceedsPosition = errors.New("close_today_qty cannot exceed abs(net_pos)")

// Plan builds the ordered list of order intents a flatten executor will try
// sequentially. It is a pure function: no state, no I/O, no clock.
func Plan(symbol string, book kernel.BookTop, netPos int64, closeTodayQty int64, policy Policy) ([]kernel.OrderIntent, error) {
	if netPos == 0 {
		return nil, nil
	}
	absPos := netPos
	if absPos < 0 {
		absPos = -absPos
	}
	if closeTodayQty > absPos {
		return nil, ErrCloseTodayExceedsPosition
	}

	side := kernel.SideSell
	if netPos < 0 {
		side = kernel.SideBuy
	}

	start := book.BestBid
	step := -policy.TickSize
	if side == kernel.SideBuy {
		start = book.BestAsk
		step = policy.TickSize
	}

	totalRungs := 1 + policy.Stage2Requotes + policy.Stage3MaxCrossLevels
	prices := make([]float64, 0, totalRungs)
	prices = append(prices, start)
	for i := 1; i <= policy.Stage2Requotes+policy.Stage3MaxCrossLevels; i++ {
		prices = append(prices, start+step*float64(i))
	}

	var intents []kernel.OrderIntent
	emit := func(offset kernel.Offset, qty int64, reason string) {
		if qty <= 0 {
			return
		}
		for _, p := range prices {
			intent, err := kernel.NewOrderIntent(symbol, side, offset, p, qty, reason, netPos)
			if err != nil {
				// A negative price on a deep ladder rung is a planning input
				// error, not a runtime one; skip rather than panic so the
				// remaining rungs and the other offset class still plan.
				continue
			}
			intents = append(intents, intent)
		}
	}

	remaining := absPos
	closeToday := closeTodayQty
	if closeToday > remaining {
		closeToday = remaining
	}
	emit(kernel.OffsetCloseToday, closeToday, fmt.Sprintf("force_flatten:prefer_closetoday:%s", symbol))
	remaining -= closeToday
	emit(kernel.OffsetClose, remaining, fmt.Sprintf("force_flatten:fallback_close:%s", symbol))

	return intents, nil
}
