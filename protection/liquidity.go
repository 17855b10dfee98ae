// FILE: protection/liquidity.go
// Package protection – the liquidity gate (C4 step 3). Rejects an order
// whose size would consume too much of the book it is crossing, or whose
// opposing-side depth is too thin to support it.
package protection

import "github.com/chidi150c/futures-kernel/kernel"

// LiquidityConfig bounds order size against observed book depth.
type LiquidityConfig struct {
	MaxImpactRatio float64 // max qty / depth-on-the-side-consumed
	MinDepth       float64 // minimum required depth on the opposing side
}

func DefaultLiquidityConfig() LiquidityConfig {
	return LiquidityConfig{MaxImpactRatio: 0.20, MinDepth: 1}
}

// LiquidityGate evaluates qty against a caller-supplied depth snapshot, since
// BookTop alone carries no volume.
type LiquidityGate struct {
	Config LiquidityConfig
}

func NewLiquidityGate(cfg LiquidityConfig) *LiquidityGate { return &LiquidityGate{Config: cfg} }

// Depth is the volume available on each side, supplied alongside BookTop by
// the caller (the kernel's BookTop itself carries only price/tick).
type Depth struct {
	BidVolume float64
	AskVolume float64
}

func (g *LiquidityGate) Evaluate(side kernel.Side, qty int64, depth Depth) GateResult {
	const name = "liquidity"
	consumedSide := depth.AskVolume // a BUY crosses the ask
	opposingSide := depth.BidVolume
	if side == kernel.SideSell {
		consumedSide = depth.BidVolume
		opposingSide = depth.AskVolume
	}

	if opposingSide < g.Config.MinDepth {
		return rejectResult(name, "MIN_DEPTH", "opposing book depth is below the configured minimum")
	}
	if consumedSide <= 0 {
		return rejectResult(name, "NO_DEPTH", "no depth available on the side being consumed")
	}
	if float64(qty)/consumedSide > g.Config.MaxImpactRatio {
		return rejectResult(name, "MAX_IMPACT", "order size exceeds the configured market-impact bound")
	}
	return passResult(name)
}
