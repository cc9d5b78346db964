package types

import (
	"math/big"
	"testing"
)

func TestSideAndOrderTypeValidation(t *testing.T) {
	for _, s := range []Side{Buy, Sell} {
		if !s.Valid() {
			t.Errorf("side %q should be valid", s)
		}
	}
	if Side("SHORT").Valid() || Side("").Valid() {
		t.Error("unknown sides must be invalid")
	}

	for _, ot := range []OrderType{Limit, IOC, FOK} {
		if !ot.Valid() {
			t.Errorf("order type %q should be valid", ot)
		}
	}
	if OrderType("MARKET").Valid() || OrderType("").Valid() {
		t.Error("unknown order types must be invalid")
	}
}

func TestRemaining(t *testing.T) {
	o := &Order{
		AmountIn:        big.NewInt(100),
		AmountOut:       big.NewInt(200),
		FilledAmountIn:  big.NewInt(40),
		FilledAmountOut: big.NewInt(80),
	}

	if o.RemainingIn().Cmp(big.NewInt(60)) != 0 {
		t.Errorf("RemainingIn = %s, want 60", o.RemainingIn())
	}
	if o.RemainingOut().Cmp(big.NewInt(120)) != 0 {
		t.Errorf("RemainingOut = %s, want 120", o.RemainingOut())
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	o := &Order{
		ID:              7,
		Trader:          "alice",
		AmountIn:        big.NewInt(100),
		AmountOut:       big.NewInt(200),
		Price:           big.NewInt(2),
		FilledAmountIn:  big.NewInt(0),
		FilledAmountOut: big.NewInt(0),
	}

	snap := o.Snapshot()
	snap.FilledAmountIn.SetInt64(999)
	snap.Price.SetInt64(0)
	snap.Trader = "mallory"

	if o.FilledAmountIn.Sign() != 0 || o.Price.Cmp(big.NewInt(2)) != 0 || o.Trader != "alice" {
		t.Error("mutating a snapshot leaked into the original order")
	}
}
