package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

// PositionRepository handles read/write operations for open positions.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new repository instance using the main database.
func NewPositionRepository() *PositionRepository {
	return &PositionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// FindByKey fetches the position on one (symbol, side) key.
// Returns (nil, nil) if no such position is open.
func (r *PositionRepository) FindByKey(
	ctx context.Context,
	symbol string,
	side string,
) (*model.Position, error) {

	var position model.Position

	err := r.db.WithContext(ctx).
		Where("symbol = ? AND side = ?", symbol, side).
		First(&position).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "PositionRepository",
			"op":     "FindByKey",
			"symbol": symbol,
			"side":   side,
		}).WithError(err).Error("Failed to fetch position")

		return nil, err
	}

	return &position, nil
}

// FindAll returns every open position ordered by symbol.
func (r *PositionRepository) FindAll(
	ctx context.Context,
) ([]model.Position, error) {

	var positions []model.Position

	err := r.db.WithContext(ctx).
		Order("symbol ASC, side ASC").
		Find(&positions).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch open positions")

		return nil, err
	}

	return positions, nil
}

// Save inserts or updates a position row.
func (r *PositionRepository) Save(
	ctx context.Context,
	position *model.Position,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "PositionRepository",
		"op":     "Save",
		"symbol": position.Symbol,
		"side":   position.Side,
		"qty":    position.Quantity,
	}).Debug("Saving position")

	err := r.db.WithContext(ctx).Save(position).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "PositionRepository",
			"op":     "Save",
			"symbol": position.Symbol,
			"side":   position.Side,
		}).WithError(err).Error("Failed to save position")

		return err
	}

	return nil
}

// Delete removes a position row. Positions are hard-deleted the moment their
// quantity reaches zero.
func (r *PositionRepository) Delete(
	ctx context.Context,
	id uint,
) error {

	err := r.db.WithContext(ctx).
		Delete(&model.Position{}, id).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Delete",
			"id":   id,
		}).WithError(err).Error("Failed to delete position")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "PositionRepository",
		"op":   "Delete",
		"id":   id,
	}).Info("Position deleted")

	return nil
}
