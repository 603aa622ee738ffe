package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papertrader/src/database"
	"papertrader/src/model"
)

// PriceRepository handles observed price ticks. Both the kline fetcher and
// the websocket feed write here; the store-backed oracle reads the latest
// row per symbol.
type PriceRepository struct {
	db *gorm.DB
}

// NewPriceRepository creates a new repository instance using the main database.
func NewPriceRepository() *PriceRepository {
	return &PriceRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PriceRepository) WithDB(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Latest returns the most recent tick for a symbol.
// Returns (nil, nil) if the symbol has never been priced.
func (r *PriceRepository) Latest(
	ctx context.Context,
	symbol string,
) (*model.PriceTick, error) {

	var tick model.PriceTick

	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("time DESC").
		First(&tick).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "PriceRepository",
			"op":     "Latest",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch latest price")

		return nil, err
	}

	return &tick, nil
}

// Upsert writes a tick, replacing any existing row for the same
// (symbol, time) key so feeds can be replayed safely.
func (r *PriceRepository) Upsert(
	ctx context.Context,
	tick *model.PriceTick,
) error {

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "time"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "volume", "source"}),
		}).
		Create(tick).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "PriceRepository",
			"op":     "Upsert",
			"symbol": tick.Symbol,
		}).WithError(err).Error("Failed to upsert price tick")

		return err
	}

	return nil
}
