package journal

import (
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateTrade(trade *TradeRecord) error {
	return d.db.Create(trade).Error
}

// GetTrades returns every recorded trade in execution order.
func (d *Database) GetTrades() ([]TradeRecord, error) {
	var trades []TradeRecord
	if err := d.db.Order("sequence asc").Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// GetTradesForOrder returns the trades an order participated in, on either
// side, in execution order.
func (d *Database) GetTradesForOrder(orderID uint64) ([]TradeRecord, error) {
	var trades []TradeRecord
	err := d.db.
		Where("buy_order_id = ? OR sell_order_id = ?", orderID, orderID).
		Order("sequence asc").
		Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// CountTrades returns the total number of recorded trades.
func (d *Database) CountTrades() (int64, error) {
	var count int64
	if err := d.db.Model(&TradeRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
