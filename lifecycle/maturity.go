// FILE: lifecycle/maturity.go
// Maturity scoring: a weighted blend of five dimensions, each a blend of
// piecewise-linear band scores, ported from the evaluator this gate reads
// its activation decision from.
package lifecycle

// DimensionWeights are the fixed weights the overall score blends with.
var DimensionWeights = map[string]float64{
	"return_stability":    0.25,
	"risk_control":        0.25,
	"market_adaptability": 0.20,
	"training_sufficiency": 0.20,
	"consistency":         0.10,
}

const (
	minDimensionScore = 0.60
	minTotalScore     = 0.80
	minTrainingDays   = 90
)

// MaturityInput is the raw performance/training evidence the evaluator
// scores.
type MaturityInput struct {
	Sharpe                  float64
	ReturnCV                float64 // coefficient of variation of returns
	PositiveMonthFraction   float64 // fraction of 20-day buckets with positive summed return

	MaxDrawdown       float64
	CalmarRatio       float64
	PostDDRecoveryRatio float64

	RegimesCovered       int // count of {bull,bear,sideways,high_vol,low_vol} observed
	PositiveRegimeFraction float64

	TrainingDays int
	TradeCount   int

	WinRate            float64
	ProfitFactor       float64
	PositiveRollingSharpeFraction float64
	SignalReturnCorrelation       float64
}

// DimensionScores is the per-dimension [0,1] breakdown behind a Score.
type DimensionScores struct {
	ReturnStability     float64
	RiskControl         float64
	MarketAdaptability  float64
	TrainingSufficiency float64
	Consistency         float64
}

// Assessment is the full maturity verdict for a strategy.
type Assessment struct {
	Dimensions DimensionScores
	Total      float64
	IsMature   bool
}

// bandLinear scores a metric against descending named thresholds, each
// mapped to a fixed score; below the lowest threshold it scales linearly
// down to 0 at floor.
func bandLinear(value float64, bands []struct {
	Threshold float64
	Score     float64
}, floor float64) float64 {
	for _, b := range bands {
		if value >= b.Threshold {
			return b.Score
		}
	}
	lowest := bands[len(bands)-1]
	if value <= floor {
		return 0
	}
	return lowest.Score * (value - floor) / (lowest.Threshold - floor)
}

func sharpeBand(sharpe float64) float64 {
	return bandLinear(sharpe, []struct {
		Threshold float64
		Score     float64
	}{{2.0, 1.0}, {1.5, 0.8}, {1.0, 0.6}, {0.5, 0.4}}, 0)
}

func cvScore(cv float64) float64 {
	// Lower CV is better; invert and clamp to [0,1].
	score := 1.0 - cv
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func returnStability(in MaturityInput) float64 {
	s := sharpeBand(in.Sharpe)
	cv := cvScore(in.ReturnCV)
	blend := 0.5*s + 0.3*cv + 0.2*in.PositiveMonthFraction
	return clamp01(blend)
}

func maxDrawdownScore(dd float64) float64 {
	switch {
	case dd <= 0.10:
		return 1.0
	case dd <= 0.15:
		return 0.8
	case dd <= 0.20:
		return 0.6
	default:
		floor := 0.40
		if dd >= floor {
			return 0
		}
		return 0.6 * (floor - dd) / (floor - 0.20)
	}
}

func calmarScore(calmar float64) float64 {
	return bandLinear(calmar, []struct {
		Threshold float64
		Score     float64
	}{{3, 1.0}, {2, 0.8}, {1, 0.6}}, 0)
}

func riskControl(in MaturityInput) float64 {
	dd := maxDrawdownScore(in.MaxDrawdown)
	calmar := calmarScore(in.CalmarRatio)
	blend := 0.45*dd + 0.35*calmar + 0.20*in.PostDDRecoveryRatio
	return clamp01(blend)
}

func marketAdaptability(in MaturityInput) float64 {
	coverage := float64(in.RegimesCovered) / 5.0
	if coverage > 1 {
		coverage = 1
	}
	blend := 0.5*coverage + 0.5*in.PositiveRegimeFraction
	return clamp01(blend)
}

func trainingDaysScore(days int) float64 {
	d := float64(days)
	return bandLinear(d, []struct {
		Threshold float64
		Score     float64
	}{{180, 1.0}, {120, 0.8}, {90, 0.6}}, 0)
}

func tradeCountScore(count int) float64 {
	c := float64(count)
	return bandLinear(c, []struct {
		Threshold float64
		Score     float64
	}{{500, 1.0}, {300, 0.8}, {100, 0.6}}, 0)
}

func trainingSufficiency(in MaturityInput) float64 {
	blend := 0.6*trainingDaysScore(in.TrainingDays) + 0.4*tradeCountScore(in.TradeCount)
	return clamp01(blend)
}

func winRateScore(wr float64) float64 {
	return bandLinear(wr, []struct {
		Threshold float64
		Score     float64
	}{{0.55, 1.0}, {0.50, 0.8}, {0.45, 0.6}}, 0)
}

func profitFactorScore(pf float64) float64 {
	return bandLinear(pf, []struct {
		Threshold float64
		Score     float64
	}{{2.0, 1.0}, {1.5, 0.8}, {1.2, 0.6}}, 0)
}

func consistency(in MaturityInput) float64 {
	wr := winRateScore(in.WinRate)
	pf := profitFactorScore(in.ProfitFactor)
	corr := in.SignalReturnCorrelation
	if corr < 0 {
		corr = 0
	}
	if corr > 1 {
		corr = 1
	}
	blend := 0.35*wr + 0.30*pf + 0.20*in.PositiveRollingSharpeFraction + 0.15*corr
	return clamp01(blend)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Evaluate scores a strategy's maturity across all five dimensions and
// decides whether it clears the activation bar.
func Evaluate(in MaturityInput) Assessment {
	dims := DimensionScores{
		ReturnStability:     returnStability(in),
		RiskControl:         riskControl(in),
		MarketAdaptability:  marketAdaptability(in),
		TrainingSufficiency: trainingSufficiency(in),
		Consistency:         consistency(in),
	}
	total := dims.ReturnStability*DimensionWeights["return_stability"] +
		dims.RiskControl*DimensionWeights["risk_control"] +
		dims.MarketAdaptability*DimensionWeights["market_adaptability"] +
		dims.TrainingSufficiency*DimensionWeights["training_sufficiency"] +
		dims.Consistency*DimensionWeights["consistency"]

	isMature := total >= minTotalScore &&
		dims.ReturnStability >= minDimensionScore &&
		dims.RiskControl >= minDimensionScore &&
		dims.MarketAdaptability >= minDimensionScore &&
		dims.TrainingSufficiency >= minDimensionScore &&
		dims.Consistency >= minDimensionScore &&
		in.TrainingDays >= minTrainingDays

	return Assessment{Dimensions: dims, Total: total, IsMature: isMature}
}
