// Package journal persists executed trades as an observable side channel.
// The engine only exposes cumulative per-order fill state; the journal keeps
// the individual trades so a test harness can assert on execution order and
// per-trade quantities after the fact. The engine never reads it back.
package journal

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/quantfold/lob-oracle/internal/types"
)

// Service records trade events into the database. It implements the
// engine's TradeRecorder interface.
type Service struct {
	db *Database
}

// NewService creates a new journal service with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// RecordTrade persists one executed trade. Write failures are logged and
// swallowed: the journal is observability, and a storage error must not
// disturb the deterministic engine state being diffed.
func (s *Service) RecordTrade(event types.TradeEvent) {
	record := &TradeRecord{
		TradeID:      uuid.New().String(),
		Sequence:     event.Sequence,
		BuyOrderID:   event.BuyOrderID,
		SellOrderID:  event.SellOrderID,
		TakerOrderID: event.TakerOrderID,
		AmountIn:     event.AmountIn.String(),
		AmountOut:    event.AmountOut.String(),
	}

	if err := s.db.CreateTrade(record); err != nil {
		log.Error().
			Err(err).
			Uint64("sequence", event.Sequence).
			Msg("failed to journal trade")
		return
	}

	log.Debug().
		Str("trade_id", record.TradeID).
		Uint64("sequence", record.Sequence).
		Msg("trade journaled")
}

// Trades returns every journaled trade in execution order.
func (s *Service) Trades() ([]TradeRecord, error) {
	return s.db.GetTrades()
}

// TradesForOrder returns the journaled trades touching the given order.
func (s *Service) TradesForOrder(orderID uint64) ([]TradeRecord, error) {
	return s.db.GetTradesForOrder(orderID)
}

// Count returns the number of journaled trades.
func (s *Service) Count() (int64, error) {
	return s.db.CountTrades()
}
