// FILE: compliance/analyzer.go
// Package compliance – HFTPatternAnalyzer computes an on-demand behavioral
// profile from an account's recent order flow. It never runs on the hot
// throttle-decision path; callers invoke it out-of-band (e.g. from a
// periodic job or an exception-report generator) to explain WHY an account
// looks like HFT, not just THAT it crossed a threshold.
package compliance

import "time"

type TradingPattern string

const (
	PatternUnknown      TradingPattern = "UNKNOWN"
	PatternMarketMaking TradingPattern = "MARKET_MAKING"
	PatternMomentum     TradingPattern = "MOMENTUM"
	PatternArbitrage    TradingPattern = "ARBITRAGE"
	PatternLayering     TradingPattern = "LAYERING"
	PatternScalping     TradingPattern = "SCALPING"
	PatternNormal       TradingPattern = "NORMAL"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// PatternIndicator is one detected signal with a confidence and a short
// human-readable explanation.
type PatternIndicator struct {
	Pattern    TradingPattern
	Confidence float64
	Evidence   string
}

// BehaviorProfile is the analyzer's output.
type BehaviorProfile struct {
	AccountID        string
	AnalysisTime     time.Time
	PrimaryPattern   TradingPattern
	Indicators       []PatternIndicator
	RiskLevel        RiskLevel
	OrderFrequencyAvg float64
	CancelRatioAvg    float64
	AvgHoldingTimeMS  float64
	BuySellRatio      float64
	SymbolDiversity   int
	RiskFactors       []string
	Recommendation    string
}

// OrderFlow is one historical order-flow sample the analyzer consumes;
// distinct from OrderEvent because it additionally carries the completed
// round-trip time and direction needed for pattern scoring.
type OrderFlow struct {
	Symbol       string
	EventType    EventType
	Direction    kernelSide // "buy" or "sell"
	Timestamp    time.Time
	RoundTripMS  float64
}

type kernelSide string

const (
	FlowBuy  kernelSide = "buy"
	FlowSell kernelSide = "sell"
)

// AnalyzerConfig tunes the pattern-identification thresholds.
type AnalyzerConfig struct {
	MinOrdersForAnalysis int
	HighFreqThreshold    float64
	HighCancelRatio      float64
	ShortHoldingMS       float64
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{MinOrdersForAnalysis: 10, HighFreqThreshold: 100, HighCancelRatio: 0.4, ShortHoldingMS: 1000}
}

type HFTPatternAnalyzer struct {
	Config AnalyzerConfig
}

func NewHFTPatternAnalyzer(cfg AnalyzerConfig) *HFTPatternAnalyzer { return &HFTPatternAnalyzer{Config: cfg} }

// AnalyzeAccount builds a BehaviorProfile from the given flows, evaluated at
// analysisTime (injected, not wall-clock).
func (a *HFTPatternAnalyzer) AnalyzeAccount(accountID string, flows []OrderFlow, analysisTime time.Time) BehaviorProfile {
	if len(flows) < a.Config.MinOrdersForAnalysis {
		return BehaviorProfile{AccountID: accountID, AnalysisTime: analysisTime, PrimaryPattern: PatternUnknown,
			Recommendation: "insufficient order history for a reliable analysis"}
	}

	m := a.metrics(flows)
	indicators := a.identifyPatterns(m)
	primary := PatternUnknown
	best := -1.0
	for _, ind := range indicators {
		if ind.Confidence > best {
			best = ind.Confidence
			primary = ind.Pattern
		}
	}
	risk, factors := a.assessRisk(m, indicators)

	return BehaviorProfile{
		AccountID: accountID, AnalysisTime: analysisTime, PrimaryPattern: primary,
		Indicators: indicators, RiskLevel: risk,
		OrderFrequencyAvg: m.orderFrequency, CancelRatioAvg: m.cancelRatio,
		AvgHoldingTimeMS: m.avgHoldingTime, BuySellRatio: m.buySellRatio,
		SymbolDiversity: m.symbolCount, RiskFactors: factors,
		Recommendation: recommendationFor(risk),
	}
}

type behaviorMetrics struct {
	orderFrequency float64
	cancelRatio    float64
	buySellRatio   float64
	symbolCount    int
	avgHoldingTime float64
}

func (a *HFTPatternAnalyzer) metrics(flows []OrderFlow) behaviorMetrics {
	total := len(flows)
	cancels, buys := 0, 0
	symbols := map[string]struct{}{}
	var minTS, maxTS time.Time
	var rttSum float64
	rttCount := 0

	for i, f := range flows {
		if f.EventType == EventCancel {
			cancels++
		}
		if f.Direction == FlowBuy {
			buys++
		}
		if f.Symbol != "" {
			symbols[f.Symbol] = struct{}{}
		}
		if i == 0 || f.Timestamp.Before(minTS) {
			minTS = f.Timestamp
		}
		if i == 0 || f.Timestamp.After(maxTS) {
			maxTS = f.Timestamp
		}
		if f.RoundTripMS > 0 {
			rttSum += f.RoundTripMS
			rttCount++
		}
	}

	timeSpan := maxTS.Sub(minTS).Seconds()
	if timeSpan <= 0 {
		timeSpan = 1
	}

	m := behaviorMetrics{symbolCount: len(symbols)}
	m.orderFrequency = float64(total) / timeSpan
	if total > 0 {
		m.cancelRatio = float64(cancels) / float64(total)
	}
	if total > 0 {
		m.buySellRatio = float64(buys) / float64(total)
	}
	if rttCount > 0 {
		m.avgHoldingTime = rttSum / float64(rttCount)
	}
	return m
}

func (a *HFTPatternAnalyzer) identifyPatterns(m behaviorMetrics) []PatternIndicator {
	var out []PatternIndicator

	if m.buySellRatio >= 0.4 && m.buySellRatio <= 0.6 {
		conf := 0.5
		if m.cancelRatio < 0.3 {
			conf = 0.7
		}
		out = append(out, PatternIndicator{PatternMarketMaking, conf, "buy/sell ratio near 1:1, consistent with market-making"})
	}
	if m.buySellRatio > 0.8 || m.buySellRatio < 0.2 {
		out = append(out, PatternIndicator{PatternMomentum, 0.6, "one-sided trading exceeds 80% of flow"})
	}
	if m.orderFrequency > a.Config.HighFreqThreshold && m.avgHoldingTime < a.Config.ShortHoldingMS {
		out = append(out, PatternIndicator{PatternScalping, 0.8, "high order frequency with very short holding time"})
	}
	if m.cancelRatio > a.Config.HighCancelRatio {
		conf := 0.5
		if m.cancelRatio > 0.6 {
			conf = 0.7
		}
		out = append(out, PatternIndicator{PatternLayering, conf, "cancel ratio exceeds the layering threshold"})
	}
	if m.symbolCount >= 3 {
		out = append(out, PatternIndicator{PatternArbitrage, 0.5, "account trades three or more symbols"})
	}
	if len(out) == 0 {
		out = append(out, PatternIndicator{PatternNormal, 0.9, "no HFT pattern signals detected"})
	}
	return out
}

func (a *HFTPatternAnalyzer) assessRisk(m behaviorMetrics, indicators []PatternIndicator) (RiskLevel, []string) {
	var factors []string
	score := 0

	if m.orderFrequency > a.Config.HighFreqThreshold {
		factors = append(factors, "order frequency is excessive")
		score += 2
	}
	if m.cancelRatio > a.Config.HighCancelRatio {
		factors = append(factors, "cancel ratio is excessive")
		score += 2
	}
	for _, ind := range indicators {
		if ind.Pattern == PatternLayering {
			factors = append(factors, "layering pattern detected")
			score += 3
		}
	}

	switch {
	case score >= 5:
		return RiskCritical, factors
	case score >= 3:
		return RiskHigh, factors
	case score >= 1:
		return RiskMedium, factors
	default:
		return RiskLow, factors
	}
}

func recommendationFor(level RiskLevel) string {
	switch level {
	case RiskLow:
		return "trading behavior normal, continue monitoring"
	case RiskMedium:
		return "monitor order frequency and consider reducing cancel ratio"
	case RiskHigh:
		return "reduce trading frequency, review strategy compliance, contact compliance desk"
	case RiskCritical:
		return "halt trading immediately and escalate to compliance for review"
	default:
		return ""
	}
}
