// FILE: cmd/replay/main.go
// Package main – replay CLI: feeds a JSON payload through one deterministic
// orchestrator tick and prints the resulting events.
//
// Usage:
//   go run ./cmd/replay <payload.json>
//
// Exit codes: 0 success; 2 usage error or an unreadable/unparsable payload
// file; 1 invalid payload values (bad now_ts, negative snapshot fields).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chidi150c/futures-kernel/flatten"
	"github.com/chidi150c/futures-kernel/kernel"
	"github.com/chidi150c/futures-kernel/orchestrator"
	"github.com/chidi150c/futures-kernel/replay"
	"github.com/chidi150c/futures-kernel/risk"
)

// payload mirrors the JSON shape the replay fixture files use: plain
// structs rather than the kernel's own types, so the file format stays
// stable even if internal field names change.
type payload struct {
	AccountID string `json:"account_id"`
	NowTS     string `json:"now_ts"`

	Snapshot struct {
		Equity     float64 `json:"equity"`
		MarginUsed float64 `json:"margin_used"`
	} `json:"snap"`

	Positions []struct {
		Symbol   string `json:"symbol"`
		NetQty   int64  `json:"net_qty"`
		TodayQty int64  `json:"today_qty"`
	} `json:"positions"`

	Books map[string]struct {
		BestBid  float64 `json:"best_bid"`
		BestAsk  float64 `json:"best_ask"`
		TickSize float64 `json:"tick_size"`
	} `json:"books"`

	RiskConfig struct {
		DailyLossPct      float64 `json:"daily_loss_pct"`
		PositionLossPct   float64 `json:"position_loss_pct"`
		MarginUsagePct    float64 `json:"margin_usage_pct"`
		ConsecutiveLosses int     `json:"consecutive_losses"`
	} `json:"risk_config"`

	Baseline struct {
		Equity float64 `json:"equity"`
	} `json:"baseline"`

	Fault struct {
		MissingBookSymbols []string `json:"missing_book_symbols"`
		RejectAll          bool     `json:"reject_all"`
	} `json:"fault"`

	Update struct {
		Equity           float64 `json:"equity"`
		MarginUsagePct   float64 `json:"margin_usage_pct"`
		PositionLossPct  float64 `json:"position_loss_pct"`
	} `json:"update"`

	MaxRejections int `json:"max_rejections"`
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: replay <payload.json>")
		return 2
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: read payload: %v\n", err)
		return 2
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		fmt.Fprintf(os.Stderr, "replay: parse payload: %v\n", err)
		return 2
	}

	nowTS := time.Now().UTC()
	if p.NowTS != "" {
		parsed, err := time.Parse(time.RFC3339, p.NowTS)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay: bad now_ts: %v\n", err)
			return 1
		}
		nowTS = parsed
	}

	snap, err := kernel.NewAccountSnapshot(p.Snapshot.Equity, p.Snapshot.MarginUsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	positions := make([]kernel.Position, 0, len(p.Positions))
	for _, pos := range p.Positions {
		positions = append(positions, kernel.Position{Symbol: pos.Symbol, NetQty: pos.NetQty, TodayQty: pos.TodayQty})
	}

	books := map[string]kernel.BookTop{}
	for sym, b := range p.Books {
		books[sym] = kernel.BookTop{BestBid: b.BestBid, BestAsk: b.BestAsk, TickSize: b.TickSize}
	}

	missing := map[string]bool{}
	for _, sym := range p.Fault.MissingBookSymbols {
		missing[sym] = true
	}

	thresholds := risk.TriggerThresholds{
		DailyLossPct: p.RiskConfig.DailyLossPct, PositionLossPct: p.RiskConfig.PositionLossPct,
		MarginUsagePct: p.RiskConfig.MarginUsagePct, ConsecutiveLosses: p.RiskConfig.ConsecutiveLosses,
	}
	if thresholds.DailyLossPct == 0 {
		thresholds = risk.DefaultTriggerThresholds()
	}

	maxRejections := p.MaxRejections
	if maxRejections == 0 {
		maxRejections = 10
	}

	in := replay.Input{
		RiskThresholds: thresholds,
		RecoveryConfig: risk.DefaultRecoveryConfig(),
		BaselineEquity: p.Baseline.Equity,
		AccountID:      p.AccountID,
		Update: orchestrator.AccountUpdate{
			AccountID: p.AccountID, Equity: p.Update.Equity,
			MarginUsagePct: p.Update.MarginUsagePct, PositionLossPct: p.Update.PositionLossPct,
		},
		Snapshot:       snap,
		Positions:      positions,
		Books:          books,
		FlattenPolicy:  flatten.DefaultPolicy(),
		ExecutorConfig: flatten.ExecutorConfig{MaxRejections: maxRejections},
		Fault:          replay.FaultConfig{MissingBookSymbols: missing, RejectAll: p.Fault.RejectAll},
		NowTS:          nowTS,
	}

	res := replay.Run(context.Background(), in)

	fmt.Println("correlation_id:", res.CorrelationID)
	fmt.Println("snapshot_hash:", res.SnapshotHash)
	fmt.Println("risk events:")
	for _, e := range res.RiskEvents {
		fmt.Printf("  %s\n", e.Type)
	}
	fmt.Println("flatten events:")
	for _, e := range res.FlattenEvents {
		fmt.Printf("  %s %s\n", e.Type, e.Symbol)
	}
	fmt.Println("execution records:")
	for _, r := range res.ExecutionRecords {
		fmt.Printf("  %s %s %s qty=%d rejected=%v\n", r.Intent.Symbol, r.Intent.Side, r.Intent.Offset, r.Intent.Qty, r.Rejected)
	}

	return 0
}

func main() {
	os.Exit(run())
}
