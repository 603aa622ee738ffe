package model

import "time"

// Trade is the immutable record emitted when a position is fully or
// partially closed. Append-only, never updated.
type Trade struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Symbol     string `gorm:"size:32;index;not null" json:"symbol"`
	AssetClass string `gorm:"size:32;not null;default:crypto" json:"asset_class"`
	Side       string `gorm:"size:5;not null" json:"side"` // side of the closed position

	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`

	RealizedPnl    float64 `json:"realized_pnl"`
	RealizedPnlPct float64 `json:"realized_pnl_pct"`
	GrossPnl       float64 `json:"gross_pnl"`
	NetPnl         float64 `json:"net_pnl"`

	TotalCommission float64 `json:"total_commission"`
	TotalSlippage   float64 `json:"total_slippage"`

	EntryOrderID uint `gorm:"index" json:"entry_order_id"`
	ExitOrderID  uint `gorm:"index" json:"exit_order_id"`
	PositionID   uint `gorm:"index" json:"position_id"`

	EntryTime    time.Time     `json:"entry_time"`
	ExitTime     time.Time     `json:"exit_time"`
	HoldDuration time.Duration `json:"hold_duration"`

	CreatedAt time.Time `json:"created_at"`
}

func (Trade) TableName() string {
	return "paper_trades"
}
