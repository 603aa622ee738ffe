package model

import "time"

// PriceTick is one observed price for a symbol. The store-backed oracle
// serves the most recent row per symbol; the kline fetcher and the websocket
// feed both write here.
type PriceTick struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Symbol string    `gorm:"size:32;not null;uniqueIndex:idx_price_data_symbol_time" json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	Source string    `gorm:"size:32" json:"source,omitempty"`
	Time   time.Time `gorm:"not null;uniqueIndex:idx_price_data_symbol_time" json:"time"`
}

func (PriceTick) TableName() string {
	return "price_data"
}
