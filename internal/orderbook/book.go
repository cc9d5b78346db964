package orderbook

import (
	"sort"

	"github.com/quantfold/lob-oracle/internal/types"
)

// priorityBook holds the resting, not-fully-filled LIMIT orders of one side
// in strict price-time priority. Bids rank by price descending, asks by
// price ascending; equal prices rank by timestamp ascending. Orders with an
// identical (price, timestamp) key keep insertion order.
type priorityBook struct {
	side   types.Side
	orders []*types.Order
}

func newPriorityBook(side types.Side) *priorityBook {
	return &priorityBook{side: side}
}

// ranksBefore reports whether a takes strict priority over o on this side.
func (b *priorityBook) ranksBefore(a, o *types.Order) bool {
	cmp := a.Price.Cmp(o.Price)
	if cmp != 0 {
		if b.side == types.Buy {
			return cmp > 0 // higher bid first
		}
		return cmp < 0 // lower ask first
	}
	return a.Timestamp < o.Timestamp
}

// insert places the order at its priority position, after any existing
// orders with the same ranking key.
func (b *priorityBook) insert(o *types.Order) {
	i := sort.Search(len(b.orders), func(i int) bool {
		return b.ranksBefore(o, b.orders[i])
	})
	b.orders = append(b.orders, nil)
	copy(b.orders[i+1:], b.orders[i:])
	b.orders[i] = o
}

// remove deletes the order with the given id, if present.
func (b *priorityBook) remove(id uint64) bool {
	for i, o := range b.orders {
		if o.ID == id {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return true
		}
	}
	return false
}

func (b *priorityBook) len() int {
	return len(b.orders)
}

// at returns the i-th order in priority order. The matching loop reads the
// live record, not a copy.
func (b *priorityBook) at(i int) *types.Order {
	return b.orders[i]
}

// best returns the highest-priority order, or nil on an empty book.
func (b *priorityBook) best() *types.Order {
	if len(b.orders) == 0 {
		return nil
	}
	return b.orders[0]
}

// snapshot returns deep copies of the resting orders in priority order.
func (b *priorityBook) snapshot() []*types.Order {
	out := make([]*types.Order, len(b.orders))
	for i, o := range b.orders {
		out[i] = o.Snapshot()
	}
	return out
}
