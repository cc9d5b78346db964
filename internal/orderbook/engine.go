package orderbook

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/quantfold/lob-oracle/internal/types"
)

var (
	// ErrInvalidInput rejects admission before any state is mutated:
	// non-positive amounts, equal tokens, or an unknown side/order type.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized rejects a cancellation by anyone but the order owner.
	ErrUnauthorized = errors.New("unauthorized")
)

// TradeRecorder receives every executed trade as it happens. Implementations
// must not call back into the engine.
type TradeRecorder interface {
	RecordTrade(types.TradeEvent)
}

// Engine is a deterministic limit-order-book matching engine. It owns the
// order registry and the two priority books, and is the reference model an
// authoritative implementation is diffed against: the same operation
// sequence always yields the same registry and book contents.
//
// The engine is fully synchronous and not safe for concurrent use.
type Engine struct {
	nextOrderID uint64
	orders      map[uint64]*types.Order
	buys        *priorityBook
	sells       *priorityBook

	tradeSeq  uint64
	recorder  TradeRecorder
	strictFOK bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithTradeRecorder attaches a recorder that observes every executed trade.
func WithTradeRecorder(r TradeRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithStrictFOK switches FOK orders to conventional all-or-nothing
// semantics: the order trades only if the book can fill it completely,
// otherwise it is discarded without executing anything. The default mode
// reproduces the authoritative contract, which executes partial FOK trades
// and discards only the unfilled remainder.
func WithStrictFOK() Option {
	return func(e *Engine) { e.strictFOK = true }
}

// NewEngine creates an empty engine. Order ids are assigned from 1.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		nextOrderID: 1,
		orders:      make(map[uint64]*types.Order),
		buys:        newPriorityBook(types.Buy),
		sells:       newPriorityBook(types.Sell),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlaceOrder validates and admits a new order, matches it synchronously
// against the opposite book, routes any residual, and returns the assigned
// order id. The id is returned regardless of fill outcome; callers query
// fill state separately.
//
// Validation failures are all-or-nothing: no registry or book state is
// touched when an error is returned.
func (e *Engine) PlaceOrder(
	trader, tokenIn, tokenOut string,
	amountIn, amountOut *big.Int,
	orderType types.OrderType,
	side types.Side,
	timestamp uint64,
) (uint64, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return 0, fmt.Errorf("%w: amount_in must be positive", ErrInvalidInput)
	}
	if amountOut == nil || amountOut.Sign() <= 0 {
		return 0, fmt.Errorf("%w: amount_out must be positive", ErrInvalidInput)
	}
	if tokenIn == tokenOut {
		return 0, fmt.Errorf("%w: token_in and token_out must differ", ErrInvalidInput)
	}
	if !orderType.Valid() {
		return 0, fmt.Errorf("%w: unknown order type %q", ErrInvalidInput, orderType)
	}
	if !side.Valid() {
		return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidInput, side)
	}

	in := new(big.Int).Set(amountIn)
	out := new(big.Int).Set(amountOut)

	// price = amount_out * SCALE / amount_in, truncating fixed-point
	price := new(big.Int).Mul(out, types.PriceScale)
	price.Quo(price, in)
	if price.Sign() == 0 {
		// the ratio truncates below one price tick; such an order could
		// neither rank nor size a trade meaningfully
		return 0, fmt.Errorf("%w: price not representable in fixed point", ErrInvalidInput)
	}

	order := &types.Order{
		ID:              e.nextOrderID,
		Trader:          trader,
		TokenIn:         tokenIn,
		TokenOut:        tokenOut,
		AmountIn:        in,
		AmountOut:       out,
		Price:           price,
		Timestamp:       timestamp,
		OrderType:       orderType,
		Side:            side,
		FilledAmountIn:  new(big.Int),
		FilledAmountOut: new(big.Int),
	}
	e.nextOrderID++
	e.orders[order.ID] = order

	logger := log.With().
		Uint64("order_id", order.ID).
		Str("trader", trader).
		Str("side", string(side)).
		Str("order_type", string(orderType)).
		Logger()
	logger.Debug().
		Str("amount_in", in.String()).
		Str("amount_out", out.String()).
		Str("price", price.String()).
		Msg("order admitted")

	if e.strictFOK && orderType == types.FOK && !e.wouldFillCompletely(order) {
		delete(e.orders, order.ID)
		logger.Debug().Msg("fill-or-kill order discarded without trading")
		return order.ID, nil
	}

	e.match(order)

	switch {
	case order.Filled:
		// fully consumed, nothing rests
	case orderType == types.Limit:
		e.bookFor(side).insert(order)
		logger.Debug().Msg("residual rests in book")
	default:
		// IOC and FOK residuals never rest
		e.discard(order)
		logger.Debug().Msg("unfilled remainder discarded")
	}

	return order.ID, nil
}

// CancelOrder removes an order on behalf of its owner. It returns false
// without mutating anything when the id is unknown or the order is already
// fully filled, and ErrUnauthorized when the requester does not own the
// order.
func (e *Engine) CancelOrder(orderID uint64, requester string) (bool, error) {
	order, ok := e.orders[orderID]
	if !ok {
		return false, nil
	}
	if order.Trader != requester {
		return false, fmt.Errorf("%w: %s does not own order %d", ErrUnauthorized, requester, orderID)
	}
	if order.Filled {
		return false, nil
	}

	e.discard(order)
	log.Debug().
		Uint64("order_id", orderID).
		Str("trader", requester).
		Msg("order cancelled")
	return true, nil
}

// discard removes an unfilled order from its book (if resting) and from the
// registry. A discarded id is subsequently unknown.
func (e *Engine) discard(order *types.Order) {
	if order.OrderType == types.Limit {
		e.bookFor(order.Side).remove(order.ID)
	}
	delete(e.orders, order.ID)
}

func (e *Engine) bookFor(side types.Side) *priorityBook {
	if side == types.Buy {
		return e.buys
	}
	return e.sells
}

// GetOrder returns a snapshot of the order, or false if the id is unknown
// (never assigned, or cancelled).
func (e *Engine) GetOrder(orderID uint64) (*types.Order, bool) {
	order, ok := e.orders[orderID]
	if !ok {
		return nil, false
	}
	return order.Snapshot(), true
}

// BuyOrders returns the resting bid book in priority order: price
// descending, then timestamp ascending.
func (e *Engine) BuyOrders() []*types.Order {
	return e.buys.snapshot()
}

// SellOrders returns the resting ask book in priority order: price
// ascending, then timestamp ascending.
func (e *Engine) SellOrders() []*types.Order {
	return e.sells.snapshot()
}
