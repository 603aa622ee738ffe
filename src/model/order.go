package model

import "time"

const (
	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"

	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"

	OrderStatusPending   = "PENDING"
	OrderStatusFilled    = "FILLED"
	OrderStatusCancelled = "CANCELLED"
)

// Order represents a single paper trading instruction. Once filled it is
// immutable except for the execution bookkeeping fields populated at fill
// time (fill price, commission, slippage, total cost, filled_at).
type Order struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ClientRef  string `gorm:"size:64;index" json:"client_ref,omitempty"`
	Symbol     string `gorm:"size:32;index;not null" json:"symbol"`
	AssetClass string `gorm:"size:32;not null;default:crypto" json:"asset_class"`
	OrderType  string `gorm:"size:10;not null" json:"order_type"`
	Side       string `gorm:"size:4;not null" json:"side"`

	Quantity   float64  `json:"quantity"`
	LimitPrice *float64 `json:"limit_price,omitempty"`

	Status       string   `gorm:"size:20;not null;default:PENDING" json:"status"`
	FilledQty    float64  `json:"filled_qty"`
	AvgFillPrice *float64 `json:"avg_fill_price,omitempty"`
	Commission   float64  `json:"commission"`
	Slippage     float64  `json:"slippage"`
	TotalCost    *float64 `json:"total_cost,omitempty"`

	DecisionID *uint `gorm:"index" json:"decision_id,omitempty"`

	FilledAt  *time.Time `json:"filled_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName allows you to control the exact table name for orders.
func (Order) TableName() string {
	return "paper_orders"
}
