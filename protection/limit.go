// FILE: protection/limit.go
// Package protection – the limit-price gate (C4 step 1). Computes the
// product's daily up/down limit from the previous settlement price and a
// percentage, rounds each limit to a legal tick, and passes/rejects/adjusts
// the candidate order price against it.
package protection

import (
	"math"

	"github.com/chidi150c/futures-kernel/kernel"
)

// LimitConfig is the per-product configuration the limit-price gate needs.
// Callers supply one per product; this package has no built-in product table,
// only DefaultLimitConfig.
type LimitConfig struct {
	LimitPct             float64 // e.g. 0.05 for 5%
	TickSize             float64
	Epsilon              float64 // price-equality tolerance, default 1e-6
	AutoAdjust           bool
	AllowLimitPriceOrder bool
}

// DefaultLimitConfig mirrors the commonly published default: 5% band, tick 1.0.
func DefaultLimitConfig() LimitConfig {
	return LimitConfig{LimitPct: 0.05, TickSize: 1.0, Epsilon: 1e-6, AutoAdjust: true, AllowLimitPriceOrder: true}
}

// LimitPrices returns the day's (limit_up, limit_down) given the previous
// settlement price, rounded so each bound is itself a legal quote: limit_up
// rounds down to the tick, limit_down rounds up.
func LimitPrices(lastSettle float64, cfg LimitConfig) (limitUp, limitDown float64) {
	limitUp = kernel.RoundDownToTick(lastSettle*(1+cfg.LimitPct), cfg.TickSize)
	limitDown = kernel.RoundUpToTick(lastSettle*(1-cfg.LimitPct), cfg.TickSize)
	return limitUp, limitDown
}

// LimitPriceGate evaluates the candidate price against the limit band.
type LimitPriceGate struct {
	Config LimitConfig
}

func NewLimitPriceGate(cfg LimitConfig) *LimitPriceGate { return &LimitPriceGate{Config: cfg} }

// Evaluate runs the gate per §4.2 item 1. last_settle<=0 or price<=0 reject
// before anything else is computed.
func (g *LimitPriceGate) Evaluate(price, lastSettle float64) GateResult {
	const name = "limit_price"
	if price <= 0 {
		return rejectResult(name, "INVALID_PRICE", "order price must be positive")
	}
	if lastSettle <= 0 {
		return rejectResult(name, "INVALID_SETTLE", "last settlement price must be positive")
	}

	limitUp, limitDown := LimitPrices(lastSettle, g.Config)
	eps := g.Config.Epsilon
	if eps <= 0 {
		eps = 1e-6
	}

	// auto_adjust dominates allow_limit_price_order per the resolved open
	// question: if both apply and price exceeds a bound, PASS adjusted.
	if price > limitUp+eps {
		if g.Config.AutoAdjust {
			return adjustedResult(name, "ABOVE_LIMIT_UP", limitUp)
		}
		return rejectResult(name, "ABOVE_LIMIT_UP", "price exceeds the daily up-limit")
	}
	if price < limitDown-eps {
		if g.Config.AutoAdjust {
			return adjustedResult(name, "BELOW_LIMIT_DOWN", limitDown)
		}
		return rejectResult(name, "BELOW_LIMIT_DOWN", "price is below the daily down-limit")
	}
	if math.Abs(price-limitUp) < eps || math.Abs(price-limitDown) < eps {
		if g.Config.AllowLimitPriceOrder {
			return passResult(name)
		}
		return rejectResult(name, "AT_LIMIT", "orders exactly at the daily limit are disallowed")
	}
	return passResult(name)
}
