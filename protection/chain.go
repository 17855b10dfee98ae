// FILE: protection/chain.go
// Package protection – Chain composes the six gates in the documented order
// and short-circuits on the first reject. All gate results are returned (and
// expected to be emitted to the audit bus by the caller) regardless of
// pass/reject, per §4.2.
package protection

import "github.com/chidi150c/futures-kernel/kernel"

// Candidate bundles everything a tick's protection chain needs to evaluate
// one order intent. Fields the caller cannot supply (e.g. no depth data) may
// be left zero; individual gates treat a zero depth conservatively.
type Candidate struct {
	Intent      kernel.OrderIntent
	LastSettle  float64
	Snapshot    kernel.AccountSnapshot
	MarginReq   float64
	AllowWarning bool
	Depth       Depth
	Reference   float64
	AvgQty      float64
	TickSize    float64
	CostDepth   MarketDepth
	ExpectedProfit float64
	ExpectedLoss   float64
	AccountID   string
	StrategyID  string
}

// Chain holds the configured gates. A nil gate is skipped (useful when a
// caller has not wired liquidity/fat-finger/cost data for a given deployment).
type Chain struct {
	Limit    *LimitPriceGate
	Margin   *MarginMonitor
	Liquidity *LiquidityGate
	FatFinger *FatFingerGate
	Throttle *ThrottleGate
	Cost     *CostFirstGate
}

// Evaluate runs every configured gate in order, stopping at the first
// Reject. It returns every result produced up to and including the
// terminating one (or one per gate that ran on an all-pass run: nil gates
// are skipped, and the margin gate runs only for OPEN intents), plus the
// possibly adjusted price to actually submit.
func (c *Chain) Evaluate(cand Candidate) ([]GateResult, float64) {
	results := make([]GateResult, 0, 6)
	price := cand.Intent.Price

	if c.Limit != nil {
		r := c.Limit.Evaluate(price, cand.LastSettle)
		results = append(results, r)
		if r.Outcome == Reject {
			return results, price
		}
		if r.Outcome == Adjusted {
			price = r.AdjustedPrice
		}
	}

	if c.Margin != nil && cand.Intent.Offset == kernel.OffsetOpen {
		r := c.Margin.CanOpenPosition(cand.Snapshot, cand.MarginReq, cand.AllowWarning)
		results = append(results, r)
		if r.Outcome == Reject {
			return results, price
		}
	}

	if c.Liquidity != nil {
		r := c.Liquidity.Evaluate(cand.Intent.Side, cand.Intent.Qty, cand.Depth)
		results = append(results, r)
		if r.Outcome == Reject {
			return results, price
		}
	}

	if c.FatFinger != nil {
		r := c.FatFinger.Evaluate(price, cand.Reference, cand.Intent.Qty, cand.AvgQty)
		results = append(results, r)
		if r.Outcome == Reject {
			return results, price
		}
	}

	if c.Throttle != nil {
		r := c.Throttle.Evaluate(cand.AccountID, cand.StrategyID)
		results = append(results, r)
		if r.Outcome == Reject {
			return results, price
		}
	}

	if c.Cost != nil {
		r, _ := c.Cost.Evaluate(cand.Intent, cand.TickSize, cand.CostDepth, cand.ExpectedProfit, cand.ExpectedLoss)
		results = append(results, r)
		if r.Outcome == Reject {
			return results, price
		}
	}

	return results, price
}
