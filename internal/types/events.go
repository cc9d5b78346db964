package types

import "math/big"

// TradeEvent describes one executed trade between a resting maker and an
// incoming taker. The engine emits these in execution order; Sequence is a
// per-engine monotonic counter. Events are an observability side channel,
// they are not part of the state the engine is diffed on.
type TradeEvent struct {
	Sequence     uint64   `json:"sequence"`
	BuyOrderID   uint64   `json:"buy_order_id"`
	SellOrderID  uint64   `json:"sell_order_id"`
	TakerOrderID uint64   `json:"taker_order_id"`
	AmountIn     *big.Int `json:"amount_in"`
	AmountOut    *big.Int `json:"amount_out"`
}
