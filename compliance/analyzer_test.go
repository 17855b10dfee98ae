// FILE: compliance/analyzer_test.go
package compliance

import (
	"testing"
	"time"
)

func makeFlows(n int, cancelEvery int, direction kernelSide, rttMS float64, span time.Duration) []OrderFlow {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	flows := make([]OrderFlow, 0, n)
	for i := 0; i < n; i++ {
		et := EventSubmit
		if cancelEvery > 0 && i%cancelEvery == 0 {
			et = EventCancel
		}
		flows = append(flows, OrderFlow{
			Symbol: "AO", EventType: et, Direction: direction,
			Timestamp: start.Add(time.Duration(i) * span / time.Duration(n)),
			RoundTripMS: rttMS,
		})
	}
	return flows
}

func TestAnalyzeAccountInsufficientHistory(t *testing.T) {
	a := NewHFTPatternAnalyzer(DefaultAnalyzerConfig())
	at := time.Now()
	profile := a.AnalyzeAccount("acct1", makeFlows(3, 0, FlowBuy, 0, time.Second), at)
	if profile.PrimaryPattern != PatternUnknown {
		t.Fatalf("expected UNKNOWN for insufficient history, got %s", profile.PrimaryPattern)
	}
}

func TestAnalyzeAccountDetectsScalping(t *testing.T) {
	a := NewHFTPatternAnalyzer(DefaultAnalyzerConfig())
	at := time.Now()
	// 200 orders inside 1 second => high frequency; short round trips.
	flows := makeFlows(200, 0, FlowBuy, 100, time.Second)
	profile := a.AnalyzeAccount("acct1", flows, at)
	found := false
	for _, ind := range profile.Indicators {
		if ind.Pattern == PatternScalping {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a SCALPING indicator, got %+v", profile.Indicators)
	}
}

func TestAnalyzeAccountDetectsLayeringOnHighCancelRatio(t *testing.T) {
	a := NewHFTPatternAnalyzer(DefaultAnalyzerConfig())
	at := time.Now()
	flows := makeFlows(20, 2, FlowBuy, 0, 20*time.Second)
	profile := a.AnalyzeAccount("acct1", flows, at)
	found := false
	for _, ind := range profile.Indicators {
		if ind.Pattern == PatternLayering {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a LAYERING indicator given 50%% cancel ratio, got %+v", profile.Indicators)
	}
}

func TestAnalyzeAccountRiskLevelEscalatesWithMoreIndicators(t *testing.T) {
	a := NewHFTPatternAnalyzer(DefaultAnalyzerConfig())
	at := time.Now()
	calm := makeFlows(20, 0, FlowBuy, 5000, 200*time.Second)
	calmProfile := a.AnalyzeAccount("acct1", calm, at)

	aggressive := makeFlows(300, 2, FlowBuy, 50, time.Second)
	aggressiveProfile := a.AnalyzeAccount("acct1", aggressive, at)

	riskRank := map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2, RiskCritical: 3}
	if riskRank[aggressiveProfile.RiskLevel] <= riskRank[calmProfile.RiskLevel] {
		t.Fatalf("expected aggressive flow to rank riskier than calm flow, got %s vs %s",
			aggressiveProfile.RiskLevel, calmProfile.RiskLevel)
	}
}
