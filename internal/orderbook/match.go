package orderbook

import (
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/quantfold/lob-oracle/internal/types"
)

// match runs the taker against the opposite book until its remaining input
// is exhausted or nothing left crosses. The scan restarts from the book head
// after every executed trade: a trade can change which resting order is now
// best, and re-scanning from the top re-establishes strict price-time
// priority at O(n^2) worst case, which the model accepts in exchange for
// auditable correctness.
func (e *Engine) match(taker *types.Order) {
	opposite := e.sells
	if taker.Side == types.Sell {
		opposite = e.buys
	}

	for taker.RemainingIn().Sign() > 0 {
		traded := false
		for i := 0; i < opposite.len(); i++ {
			maker := opposite.at(i)
			if maker.Filled {
				continue
			}

			buy, sell := taker, maker
			if taker.Side == types.Sell {
				buy, sell = maker, taker
			}
			if buy.Price.Cmp(sell.Price) < 0 {
				continue // prices do not cross
			}

			amountIn, amountOut := tradeSize(
				taker.RemainingIn(), taker.Price,
				maker.RemainingIn(), maker.RemainingOut(), maker.Price,
			)
			if amountIn.Sign() > 0 && amountOut.Sign() > 0 {
				e.executeTrade(buy, sell, taker, amountIn, amountOut)
				traded = true
				break // restart from the head of the book
			}
		}
		if !traded {
			break
		}
	}

	if taker.FilledAmountIn.Cmp(taker.AmountIn) >= 0 {
		taker.Filled = true
	}
}

// tradeSize computes the trade quantities for a maker candidate, in
// taker-side input and maker-side output units.
//
// maxPossibleIn is the input quantity that fully exhausts the maker's
// remaining output at the maker's rate; maxAffordableOut is the output the
// taker's remaining input affords at the taker's rate. The three-way branch
// order is load-bearing: the authoritative contract resolves the ambiguous
// middle cases exactly this way, and the oracle must be bit-identical to it.
//
// Because the maker's price is itself truncated, the division can overshoot
// the maker's remaining input by a few base units, so the maker-exhausting
// quantity is capped there to keep filled_amount_in <= amount_in.
func tradeSize(takerRemIn, takerPrice, makerRemIn, makerRemOut, makerPrice *big.Int) (*big.Int, *big.Int) {
	maxPossibleIn := new(big.Int).Mul(makerRemOut, types.PriceScale)
	maxPossibleIn.Quo(maxPossibleIn, makerPrice)
	if maxPossibleIn.Cmp(makerRemIn) > 0 {
		maxPossibleIn.Set(makerRemIn)
	}

	maxAffordableOut := new(big.Int).Mul(takerRemIn, takerPrice)
	maxAffordableOut.Quo(maxAffordableOut, types.PriceScale)

	switch {
	case maxPossibleIn.Cmp(takerRemIn) <= 0 && makerRemOut.Cmp(maxAffordableOut) <= 0:
		// maker side limits the trade
		return maxPossibleIn, new(big.Int).Set(makerRemOut)
	case maxAffordableOut.Cmp(makerRemOut) <= 0 && takerRemIn.Cmp(maxPossibleIn) <= 0:
		// taker side limits the trade
		return new(big.Int).Set(takerRemIn), maxAffordableOut
	case maxPossibleIn.Cmp(takerRemIn) <= 0:
		return maxPossibleIn, new(big.Int).Set(makerRemOut)
	default:
		return new(big.Int).Set(takerRemIn), maxAffordableOut
	}
}

// executeTrade applies a trade to both participants. Both cumulative fill
// pairs move by the same quantities; any order whose input side is now
// exhausted is marked filled and leaves its book. The trade is sized within
// both orders' remaining capacity, so this step cannot fail.
func (e *Engine) executeTrade(buy, sell, taker *types.Order, amountIn, amountOut *big.Int) {
	buy.FilledAmountIn.Add(buy.FilledAmountIn, amountIn)
	buy.FilledAmountOut.Add(buy.FilledAmountOut, amountOut)
	sell.FilledAmountIn.Add(sell.FilledAmountIn, amountIn)
	sell.FilledAmountOut.Add(sell.FilledAmountOut, amountOut)

	if buy.FilledAmountIn.Cmp(buy.AmountIn) >= 0 {
		buy.Filled = true
		e.buys.remove(buy.ID)
	}
	if sell.FilledAmountIn.Cmp(sell.AmountIn) >= 0 {
		sell.Filled = true
		e.sells.remove(sell.ID)
	}

	e.tradeSeq++
	event := types.TradeEvent{
		Sequence:     e.tradeSeq,
		BuyOrderID:   buy.ID,
		SellOrderID:  sell.ID,
		TakerOrderID: taker.ID,
		AmountIn:     new(big.Int).Set(amountIn),
		AmountOut:    new(big.Int).Set(amountOut),
	}
	if e.recorder != nil {
		e.recorder.RecordTrade(event)
	}

	log.Debug().
		Uint64("sequence", event.Sequence).
		Uint64("buy_order_id", buy.ID).
		Uint64("sell_order_id", sell.ID).
		Uint64("taker_order_id", taker.ID).
		Str("amount_in", amountIn.String()).
		Str("amount_out", amountOut.String()).
		Msg("trade executed")
}

// shadowOrder is a scratch copy of a resting order's remaining capacity,
// used by the strict fill-or-kill dry run.
type shadowOrder struct {
	price  *big.Int
	remIn  *big.Int
	remOut *big.Int
}

// wouldFillCompletely replays the matching loop against scratch copies of
// the opposite book and reports whether the taker's input would be fully
// consumed. No engine state is touched.
func (e *Engine) wouldFillCompletely(taker *types.Order) bool {
	opposite := e.sells
	if taker.Side == types.Sell {
		opposite = e.buys
	}

	makers := make([]*shadowOrder, opposite.len())
	for i := 0; i < opposite.len(); i++ {
		m := opposite.at(i)
		makers[i] = &shadowOrder{
			price:  m.Price,
			remIn:  m.RemainingIn(),
			remOut: m.RemainingOut(),
		}
	}
	takerRemIn := taker.RemainingIn()

	for takerRemIn.Sign() > 0 {
		traded := false
		for _, m := range makers {
			if m.remIn.Sign() <= 0 {
				continue
			}

			buyPrice, sellPrice := taker.Price, m.price
			if taker.Side == types.Sell {
				buyPrice, sellPrice = m.price, taker.Price
			}
			if buyPrice.Cmp(sellPrice) < 0 {
				continue
			}

			amountIn, amountOut := tradeSize(takerRemIn, taker.Price, m.remIn, m.remOut, m.price)
			if amountIn.Sign() > 0 && amountOut.Sign() > 0 {
				m.remIn.Sub(m.remIn, amountIn)
				m.remOut.Sub(m.remOut, amountOut)
				takerRemIn.Sub(takerRemIn, amountIn)
				traded = true
				break
			}
		}
		if !traded {
			break
		}
	}

	return takerRemIn.Sign() <= 0
}
