package orderbook

import (
	"math/big"
	"testing"

	"github.com/quantfold/lob-oracle/internal/types"
)

func limitOrder(id uint64, side types.Side, price int64, timestamp uint64) *types.Order {
	return &types.Order{
		ID:              id,
		Side:            side,
		OrderType:       types.Limit,
		Price:           scaled(price),
		Timestamp:       timestamp,
		AmountIn:        scaled(1),
		AmountOut:       scaled(price),
		FilledAmountIn:  new(big.Int),
		FilledAmountOut: new(big.Int),
	}
}

func bookIDs(b *priorityBook) []uint64 {
	ids := make([]uint64, b.len())
	for i := range ids {
		ids[i] = b.at(i).ID
	}
	return ids
}

func TestBidBookRanksByPriceDescending(t *testing.T) {
	b := newPriorityBook(types.Buy)
	b.insert(limitOrder(1, types.Buy, 10, 1))
	b.insert(limitOrder(2, types.Buy, 30, 2))
	b.insert(limitOrder(3, types.Buy, 20, 3))

	got := bookIDs(b)
	want := []uint64{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bid order = %v, want %v", got, want)
		}
	}
}

func TestAskBookRanksByPriceAscending(t *testing.T) {
	b := newPriorityBook(types.Sell)
	b.insert(limitOrder(1, types.Sell, 10, 1))
	b.insert(limitOrder(2, types.Sell, 30, 2))
	b.insert(limitOrder(3, types.Sell, 20, 3))

	got := bookIDs(b)
	want := []uint64{1, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ask order = %v, want %v", got, want)
		}
	}
}

func TestEqualPricesRankByTimestamp(t *testing.T) {
	b := newPriorityBook(types.Sell)
	b.insert(limitOrder(1, types.Sell, 10, 20))
	b.insert(limitOrder(2, types.Sell, 10, 10))
	b.insert(limitOrder(3, types.Sell, 10, 30))

	got := bookIDs(b)
	want := []uint64{2, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break order = %v, want %v", got, want)
		}
	}
}

func TestIdenticalKeysKeepInsertionOrder(t *testing.T) {
	b := newPriorityBook(types.Buy)
	b.insert(limitOrder(1, types.Buy, 10, 5))
	b.insert(limitOrder(2, types.Buy, 10, 5))
	b.insert(limitOrder(3, types.Buy, 10, 5))

	got := bookIDs(b)
	want := []uint64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("insertion order not preserved: %v", got)
		}
	}
}

func TestRemove(t *testing.T) {
	b := newPriorityBook(types.Buy)
	b.insert(limitOrder(1, types.Buy, 10, 1))
	b.insert(limitOrder(2, types.Buy, 20, 2))

	if !b.remove(1) {
		t.Fatal("remove of present order should succeed")
	}
	if b.remove(1) {
		t.Fatal("second remove of same id should report false")
	}
	if b.len() != 1 || b.best().ID != 2 {
		t.Errorf("unexpected book after removal: %v", bookIDs(b))
	}
}

func TestBestOnEmptyBook(t *testing.T) {
	b := newPriorityBook(types.Sell)
	if b.best() != nil {
		t.Error("best of empty book should be nil")
	}
	if len(b.snapshot()) != 0 {
		t.Error("snapshot of empty book should be empty")
	}
}
