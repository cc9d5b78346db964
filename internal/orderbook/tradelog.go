package orderbook

import "github.com/quantfold/lob-oracle/internal/types"

// TradeLog is a slice-backed TradeRecorder. It lets a differential-testing
// harness assert on individual trades and their execution order, which the
// per-order cumulative fill state alone cannot reveal.
type TradeLog struct {
	events []types.TradeEvent
}

// NewTradeLog returns an empty log.
func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// RecordTrade appends the event to the log.
func (l *TradeLog) RecordTrade(event types.TradeEvent) {
	l.events = append(l.events, event)
}

// Trades returns the recorded events in execution order.
func (l *TradeLog) Trades() []types.TradeEvent {
	out := make([]types.TradeEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded trades.
func (l *TradeLog) Len() int {
	return len(l.events)
}
