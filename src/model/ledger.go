package model

import "time"

// CapitalLedger is the single row holding the account's free capital and the
// cost parameters the engine fills against. CurrentCapital is mutated only
// through the engine's fill path.
type CapitalLedger struct {
	ID uint `gorm:"primaryKey" json:"id"`

	InitialCapital float64 `json:"initial_capital"`
	CurrentCapital float64 `json:"current_capital"`

	MaxPositionSize float64 `json:"max_position_size"` // fraction of portfolio per position
	CommissionPct   float64 `json:"commission_pct"`
	CommissionMin   float64 `json:"commission_min"`
	SlippagePct     float64 `json:"slippage_pct"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CapitalLedger) TableName() string {
	return "paper_trading_config"
}
