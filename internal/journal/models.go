package journal

import (
	"time"

	"gorm.io/gorm"
)

// TradeRecord is one executed trade as persisted by the journal. Amounts are
// stored as decimal strings because they exceed the integer range SQLite can
// hold natively.
type TradeRecord struct {
	gorm.Model   `json:"-"`
	TradeID      string    `gorm:"uniqueIndex" json:"trade_id"`
	Sequence     uint64    `gorm:"index" json:"sequence"`
	BuyOrderID   uint64    `gorm:"index" json:"buy_order_id"`
	SellOrderID  uint64    `gorm:"index" json:"sell_order_id"`
	TakerOrderID uint64    `json:"taker_order_id"`
	AmountIn     string    `json:"amount_in"`
	AmountOut    string    `json:"amount_out"`
	CreatedAt    time.Time `json:"created_at"`
}
