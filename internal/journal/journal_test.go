package journal_test

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/quantfold/lob-oracle/internal/database"
	"github.com/quantfold/lob-oracle/internal/journal"
	"github.com/quantfold/lob-oracle/internal/orderbook"
	"github.com/quantfold/lob-oracle/internal/types"
)

func newTestJournal(t *testing.T) *journal.Service {
	t.Helper()
	// a named in-memory database keeps each test isolated while still
	// sharing one store across the connection pool
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.NewDatabase(dsn)
	if err != nil {
		t.Fatalf("failed to open journal database: %v", err)
	}
	return journal.NewService(db)
}

func scaled(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), types.PriceScale)
}

func TestRecordAndQueryTrades(t *testing.T) {
	j := newTestJournal(t)

	j.RecordTrade(types.TradeEvent{
		Sequence: 1, BuyOrderID: 1, SellOrderID: 2, TakerOrderID: 2,
		AmountIn: scaled(100), AmountOut: scaled(200),
	})
	j.RecordTrade(types.TradeEvent{
		Sequence: 2, BuyOrderID: 1, SellOrderID: 3, TakerOrderID: 3,
		AmountIn: scaled(50), AmountOut: scaled(100),
	})

	trades, err := j.Trades()
	if err != nil {
		t.Fatalf("Trades failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Sequence != 1 || trades[1].Sequence != 2 {
		t.Error("trades should come back in execution order")
	}
	if trades[0].AmountIn != scaled(100).String() {
		t.Errorf("amount_in = %s, want %s", trades[0].AmountIn, scaled(100))
	}
	if trades[0].TradeID == trades[1].TradeID {
		t.Error("trade ids must be unique")
	}

	count, err := j.Count()
	if err != nil || count != 2 {
		t.Fatalf("Count = %d, %v; want 2", count, err)
	}
}

func TestTradesForOrder(t *testing.T) {
	j := newTestJournal(t)

	j.RecordTrade(types.TradeEvent{
		Sequence: 1, BuyOrderID: 10, SellOrderID: 20, TakerOrderID: 20,
		AmountIn: scaled(1), AmountOut: scaled(2),
	})
	j.RecordTrade(types.TradeEvent{
		Sequence: 2, BuyOrderID: 30, SellOrderID: 10, TakerOrderID: 30,
		AmountIn: scaled(3), AmountOut: scaled(4),
	})
	j.RecordTrade(types.TradeEvent{
		Sequence: 3, BuyOrderID: 30, SellOrderID: 40, TakerOrderID: 40,
		AmountIn: scaled(5), AmountOut: scaled(6),
	})

	trades, err := j.TradesForOrder(10)
	if err != nil {
		t.Fatalf("TradesForOrder failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("order 10 took part in 2 trades, got %d", len(trades))
	}
	if trades[0].Sequence != 1 || trades[1].Sequence != 2 {
		t.Error("trades should come back in execution order")
	}
}

func TestJournalAttachedToEngine(t *testing.T) {
	j := newTestJournal(t)
	e := orderbook.NewEngine(orderbook.WithTradeRecorder(j))

	buyID, err := e.PlaceOrder("user1", "TKA", "TKB", scaled(100), scaled(200), types.Limit, types.Buy, 1)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if _, err := e.PlaceOrder("user2", "TKB", "TKA", scaled(100), scaled(200), types.Limit, types.Sell, 2); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	trades, err := j.TradesForOrder(buyID)
	if err != nil {
		t.Fatalf("TradesForOrder failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected the match to be journaled, got %d records", len(trades))
	}
	if trades[0].BuyOrderID != buyID {
		t.Errorf("journaled buy_order_id = %d, want %d", trades[0].BuyOrderID, buyID)
	}
	if trades[0].AmountIn != scaled(100).String() || trades[0].AmountOut != scaled(200).String() {
		t.Errorf("journaled quantities %s/%s unexpected", trades[0].AmountIn, trades[0].AmountOut)
	}
}
