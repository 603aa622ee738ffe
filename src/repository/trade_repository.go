package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

// TradeRepository handles the append-only trade history.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main database.
func NewTradeRepository() *TradeRepository {
	return &TradeRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create appends a trade record. Trades are never updated afterwards.
func (r *TradeRepository) Create(
	ctx context.Context,
	trade *model.Trade,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Create",
		"symbol":  trade.Symbol,
		"side":    trade.Side,
		"qty":     trade.Quantity,
		"net_pnl": trade.NetPnl,
	}).Debug("Recording trade")

	err := r.db.WithContext(ctx).Create(trade).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to record trade")

		return err
	}

	return nil
}

// FindRecent returns the most recent trades, newest first.
func (r *TradeRepository) FindRecent(
	ctx context.Context,
	limit int,
) ([]model.Trade, error) {

	if limit <= 0 {
		limit = 10
	}

	var trades []model.Trade

	err := r.db.WithContext(ctx).
		Order("exit_time DESC, id DESC").
		Limit(limit).
		Find(&trades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "TradeRepository",
			"op":    "FindRecent",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch recent trades")

		return nil, err
	}

	return trades, nil
}
