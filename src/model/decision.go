package model

import "time"

const (
	DecisionActionBuy  = "BUY"
	DecisionActionSell = "SELL"
	DecisionActionHold = "HOLD"
)

// TradingDecision is a signal-producer request consumed by the executor
// loop. The engine never writes decisions; it only marks them processed.
type TradingDecision struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Symbol     string `gorm:"size:32;index;not null" json:"symbol"`
	AssetClass string `gorm:"size:32;not null;default:crypto" json:"asset_class"`
	Action     string `gorm:"size:4;not null" json:"action"`

	Confidence float64  `json:"confidence"`
	RiskScore  float64  `json:"risk_score"`
	Price      *float64 `json:"price,omitempty"` // producer's view of the price, informational
	Reasoning  string   `gorm:"size:2048" json:"reasoning,omitempty"`

	Processed bool `gorm:"index;not null;default:false" json:"processed"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TradingDecision) TableName() string {
	return "trading_decisions"
}
