package types

import "math/big"

// PriceScale is the fixed-point scaling factor for order prices (10^18).
// An order's price is amount_out * PriceScale / amount_in, truncated.
var PriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Side represents the direction of an order
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Valid reports whether s is one of the two known sides
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// OrderType represents the time-in-force class of an order
type OrderType string

const (
	Limit OrderType = "LIMIT"
	IOC   OrderType = "IOC" // immediate-or-cancel
	FOK   OrderType = "FOK" // fill-or-kill
)

// Valid reports whether t is one of the known order types
func (t OrderType) Valid() bool {
	return t == Limit || t == IOC || t == FOK
}

// Order is the central order record. Identity fields are immutable after
// creation; only the cumulative fill fields and the Filled flag move.
type Order struct {
	ID              uint64    `json:"order_id"`
	Trader          string    `json:"trader"`
	TokenIn         string    `json:"token_in"`
	TokenOut        string    `json:"token_out"`
	AmountIn        *big.Int  `json:"amount_in"`
	AmountOut       *big.Int  `json:"amount_out"`
	Price           *big.Int  `json:"price"`
	Timestamp       uint64    `json:"timestamp"` // caller-supplied arrival ordinal
	OrderType       OrderType `json:"order_type"`
	Side            Side      `json:"side"`
	Filled          bool      `json:"filled"`
	FilledAmountIn  *big.Int  `json:"filled_amount_in"`
	FilledAmountOut *big.Int  `json:"filled_amount_out"`
}

// RemainingIn returns amount_in minus the cumulative input-side fill.
func (o *Order) RemainingIn() *big.Int {
	return new(big.Int).Sub(o.AmountIn, o.FilledAmountIn)
}

// RemainingOut returns amount_out minus the cumulative output-side fill.
func (o *Order) RemainingOut() *big.Int {
	return new(big.Int).Sub(o.AmountOut, o.FilledAmountOut)
}

// Snapshot returns a deep copy of the order. Queries hand these out so
// callers can never mutate engine state through a returned record.
func (o *Order) Snapshot() *Order {
	cp := *o
	cp.AmountIn = new(big.Int).Set(o.AmountIn)
	cp.AmountOut = new(big.Int).Set(o.AmountOut)
	cp.Price = new(big.Int).Set(o.Price)
	cp.FilledAmountIn = new(big.Int).Set(o.FilledAmountIn)
	cp.FilledAmountOut = new(big.Int).Set(o.FilledAmountOut)
	return &cp
}
