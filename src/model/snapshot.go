package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Allocation maps asset class to the position value held in it. Stored as a
// JSON column so the same model works on postgres and sqlite.
type Allocation map[string]float64

func (a Allocation) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *Allocation) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan allocation from %T", value)
	}
}

// PortfolioSnapshot is an immutable point-in-time aggregate of the capital
// ledger and the mark-to-market position book.
type PortfolioSnapshot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TotalValue     float64 `json:"total_value"`
	CashBalance    float64 `json:"cash_balance"`
	PositionsValue float64 `json:"positions_value"`

	TotalPnl    float64 `json:"total_pnl"`
	TotalPnlPct float64 `json:"total_pnl_pct"`
	DailyPnl    float64 `json:"daily_pnl"`
	DailyPnlPct float64 `json:"daily_pnl_pct"`

	NumPositions   int `json:"num_positions"`
	LongPositions  int `json:"long_positions"`
	ShortPositions int `json:"short_positions"`

	AllocationByClass Allocation `gorm:"type:text" json:"allocation_by_class,omitempty"`

	Time time.Time `gorm:"index" json:"time"`
}

func (PortfolioSnapshot) TableName() string {
	return "paper_portfolio_snapshots"
}
