// FILE: protection/fatfinger.go
// Package protection – the fat-finger gate (C4 step 4). Rejects orders whose
// price deviates too far from a reference price, or whose size is an
// outsized multiple of the account/strategy's average order size.
package protection

import "math"

type FatFingerConfig struct {
	MaxPriceDeviation float64 // |price-reference|/reference cap
	MaxQtyMultiple    float64 // qty/avg_qty cap
}

func DefaultFatFingerConfig() FatFingerConfig {
	return FatFingerConfig{MaxPriceDeviation: 0.10, MaxQtyMultiple: 10}
}

type FatFingerGate struct {
	Config FatFingerConfig
}

func NewFatFingerGate(cfg FatFingerConfig) *FatFingerGate { return &FatFingerGate{Config: cfg} }

func (g *FatFingerGate) Evaluate(price, reference float64, qty int64, avgQty float64) GateResult {
	const name = "fat_finger"
	if reference > 0 {
		dev := math.Abs(price-reference) / reference
		if dev > g.Config.MaxPriceDeviation {
			return rejectResult(name, "PRICE_DEVIATION", "price deviates too far from the reference price")
		}
	}
	if avgQty > 0 {
		mult := float64(qty) / avgQty
		if mult > g.Config.MaxQtyMultiple {
			return rejectResult(name, "QTY_MULTIPLE", "order size is an outsized multiple of average order size")
		}
	}
	return passResult(name)
}
