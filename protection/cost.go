// FILE: protection/cost.go
// Package protection – the cost-first gate (C4 step 6). Estimates fee,
// slippage, and market-impact ratios for a candidate order and rejects it
// if any individual ratio or their sum exceeds a configured cap, or if the
// caller-supplied reward/risk pair fails the minimum reward:cost ratio.
package protection

import "github.com/chidi150c/futures-kernel/kernel"

// CostThresholds bounds the cost-first gate's ratios (all expressed as a
// fraction of order notional).
type CostThresholds struct {
	MaxFeeRatio    float64
	MaxSlippageRatio float64
	MaxImpactRatio float64
	MaxTotalRatio  float64
	MinRRRatio     float64
}

func DefaultCostThresholds() CostThresholds {
	return CostThresholds{
		MaxFeeRatio:      0.001,
		MaxSlippageRatio: 0.002,
		MaxImpactRatio:   0.005,
		MaxTotalRatio:    0.01,
		MinRRRatio:       2.0,
	}
}

// MarketDepth is the caller-observed book depth used for slippage/impact
// estimation; zero values fall back to the gate's default multipliers.
type MarketDepth struct {
	OpponentVolume float64 // volume on the side the order crosses
	TotalDepth     float64 // total visible depth both sides
}

// CostEstimate is the breakdown the gate computed, useful for audit payloads.
type CostEstimate struct {
	FeeRatio      float64
	SlippageRatio float64
	ImpactRatio   float64
	TotalRatio    float64
	RRRatio       float64 // 0 if profit/loss were not supplied
}

// FeeSchedule maps symbol to a fee rate (fraction of notional); Default is
// used for symbols with no specific entry.
type FeeSchedule struct {
	Default float64
	PerSymbol map[string]float64
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{Default: 0.00023} // a representative CFFEX/SHFE commission-rate order of magnitude
}

func (s FeeSchedule) rateFor(symbol string) float64 {
	if r, ok := s.PerSymbol[symbol]; ok {
		return r
	}
	return s.Default
}

type CostFirstGate struct {
	Thresholds CostThresholds
	Fees       FeeSchedule
}

func NewCostFirstGate(t CostThresholds, fees FeeSchedule) *CostFirstGate {
	return &CostFirstGate{Thresholds: t, Fees: fees}
}

// EstimateSlippageRatio scales tick count by the ratio of order size to
// opposing-book volume into coarse bands, then converts to a price ratio.
func EstimateSlippageRatio(qty int64, price, tick float64, depth MarketDepth) float64 {
	if price <= 0 {
		return 0
	}
	ticks := 4.0
	if depth.OpponentVolume > 0 {
		volumeRatio := float64(qty) / depth.OpponentVolume
		switch {
		case volumeRatio <= 0.5:
			ticks = 1
		case volumeRatio <= 1.0:
			ticks = 2
		case volumeRatio <= 2.0:
			ticks = 3
		default:
			ticks = 4
		}
	}
	if depth.TotalDepth > 0 && float64(qty) > depth.TotalDepth {
		ticks += 2
	}
	return (ticks * tick) / price
}

// EstimateImpactRatio scales a base impact ratio by the order's share of
// total visible depth, in coarse bands.
func EstimateImpactRatio(qty int64, depth MarketDepth) float64 {
	const baseImpactRatio = 0.0001
	if depth.TotalDepth <= 0 {
		return baseImpactRatio * 5 // no depth info: assume a cautious multiplier
	}
	depthRatio := float64(qty) / depth.TotalDepth
	var mult float64
	switch {
	case depthRatio <= 0.05:
		mult = 0.5
	case depthRatio <= 0.2:
		mult = 1
	case depthRatio <= 0.5:
		mult = 2
	case depthRatio <= 1.0:
		mult = 5
	default:
		mult = 10
	}
	return baseImpactRatio * mult
}

// Evaluate runs the full cost-first check. profit/loss are both zero when the
// caller has no reward/risk estimate to supply, in which case the rr_ratio
// check is skipped.
func (g *CostFirstGate) Evaluate(intent kernel.OrderIntent, tick float64, depth MarketDepth, profit, loss float64) (GateResult, CostEstimate) {
	const name = "cost_first"

	est := CostEstimate{
		FeeRatio:      g.Fees.rateFor(intent.Symbol),
		SlippageRatio: EstimateSlippageRatio(intent.Qty, intent.Price, tick, depth),
		ImpactRatio:   EstimateImpactRatio(intent.Qty, depth),
	}
	est.TotalRatio = est.FeeRatio + est.SlippageRatio + est.ImpactRatio

	if est.FeeRatio > g.Thresholds.MaxFeeRatio {
		return rejectResult(name, "FEE_RATIO", "estimated fee ratio exceeds the configured cap"), est
	}
	if est.SlippageRatio > g.Thresholds.MaxSlippageRatio {
		return rejectResult(name, "SLIPPAGE_RATIO", "estimated slippage ratio exceeds the configured cap"), est
	}
	if est.ImpactRatio > g.Thresholds.MaxImpactRatio {
		return rejectResult(name, "IMPACT_RATIO", "estimated impact ratio exceeds the configured cap"), est
	}
	if est.TotalRatio > g.Thresholds.MaxTotalRatio {
		return rejectResult(name, "TOTAL_RATIO", "estimated total cost ratio exceeds the configured cap"), est
	}

	if profit > 0 || loss > 0 {
		notional := intent.Price * float64(intent.Qty)
		totalCost := est.TotalRatio * notional
		denom := loss + totalCost
		if denom <= 0 {
			return rejectResult(name, "RR_RATIO", "reward/risk denominator is non-positive"), est
		}
		est.RRRatio = profit / denom
		if est.RRRatio < g.Thresholds.MinRRRatio {
			return rejectResult(name, "RR_RATIO", "reward:cost ratio is below the configured minimum"), est
		}
	}

	return passResult(name), est
}
