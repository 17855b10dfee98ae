// FILE: flatten/plan_test.go
package flatten

import (
	"testing"

	"github.com/chidi150c/futures-kernel/kernel"
)

func TestPlanFlatPositionReturnsEmpty(t *testing.T) {
	book := kernel.BookTop{BestBid: 100, BestAsk: 101}
	intents, err := Plan("AO", book, 0, 0, DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 0 {
		t.Fatalf("expected no intents for flat position, got %d", len(intents))
	}
}

func TestPlanLongPositionSellsCloseTodayFirst(t *testing.T) {
	book := kernel.BookTop{BestBid: 100, BestAsk: 101}
	policy := Policy{Stage2Requotes: 0, Stage3MaxCrossLevels: 0, TickSize: 1}
	intents, err := Plan("AO", book, 5, 2, policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 2 {
		t.Fatalf("expected 2 intents (1 CLOSE_TODAY rung + 1 CLOSE rung), got %d", len(intents))
	}
	if intents[0].Offset != kernel.OffsetCloseToday || intents[0].Qty != 2 {
		t.Fatalf("expected first intent to be CLOSE_TODAY qty 2, got %+v", intents[0])
	}
	if intents[1].Offset != kernel.OffsetClose || intents[1].Qty != 3 {
		t.Fatalf("expected second intent to be CLOSE qty 3, got %+v", intents[1])
	}
	for _, in := range intents {
		if in.Side != kernel.SideSell {
			t.Fatalf("long position must flatten by selling, got %s", in.Side)
		}
	}
}

func TestPlanShortPositionBuys(t *testing.T) {
	book := kernel.BookTop{BestBid: 100, BestAsk: 101}
	policy := Policy{Stage2Requotes: 0, Stage3MaxCrossLevels: 0, TickSize: 1}
	intents, err := Plan("AO", book, -5, 5, policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, in := range intents {
		if in.Side != kernel.SideBuy {
			t.Fatalf("short position must flatten by buying, got %s", in.Side)
		}
	}
}

func TestPlanRejectsCloseTodayExceedingPosition(t *testing.T) {
	book := kernel.BookTop{BestBid: 100, BestAsk: 101}
	_, err := Plan("AO", book, 3, 10, DefaultPolicy())
	if err != ErrCloseTodayExceedsPosition {
		t.Fatalf("expected ErrCloseTodayExceedsPosition, got %v", err)
	}
}

func TestPlanLadderStepsAwayFromBest(t *testing.T) {
	book := kernel.BookTop{BestBid: 100, BestAsk: 101}
	policy := Policy{Stage2Requotes: 2, Stage3MaxCrossLevels: 0, TickSize: 1}
	intents, err := Plan("AO", book, 1, 0, policy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 3 {
		t.Fatalf("expected 3 ladder rungs, got %d", len(intents))
	}
	if intents[0].Price != 100 || intents[1].Price != 99 || intents[2].Price != 98 {
		t.Fatalf("expected descending ladder 100,99,98 for SELL, got %v,%v,%v", intents[0].Price, intents[1].Price, intents[2].Price)
	}
}
