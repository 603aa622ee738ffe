package model

import "time"

const (
	PositionSideLong  = "LONG"
	PositionSideShort = "SHORT"
)

// Position is the live exposure on one (symbol, side) key. A symbol may hold
// a LONG and a SHORT row at the same time; they are independent ledger
// entries and are never netted. The row is deleted the moment quantity
// reaches zero.
type Position struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Symbol     string `gorm:"size:32;not null;uniqueIndex:idx_positions_symbol_side" json:"symbol"`
	Side       string `gorm:"size:5;not null;uniqueIndex:idx_positions_symbol_side" json:"side"`
	AssetClass string `gorm:"size:32;not null;default:crypto" json:"asset_class"`

	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"` // quantity-weighted average

	// Fees accumulated by the entry fills still attributable to the open
	// quantity. Reductions realize a proportional share into the Trade.
	EntryCommission float64 `json:"entry_commission"`
	EntrySlippage   float64 `json:"entry_slippage"`

	CurrentPrice     float64 `json:"current_price"`
	UnrealizedPnl    float64 `json:"unrealized_pnl"`
	UnrealizedPnlPct float64 `json:"unrealized_pnl_pct"`
	PositionValue    float64 `json:"position_value"`

	EntryOrderID uint      `gorm:"index" json:"entry_order_id"`
	OpenedAt     time.Time `json:"opened_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Position) TableName() string {
	return "paper_positions"
}
