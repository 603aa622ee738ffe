package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

// SnapshotRepository handles portfolio snapshot history.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new repository instance using the main database.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *SnapshotRepository) WithDB(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create appends a snapshot. Snapshots are never mutated after creation.
func (r *SnapshotRepository) Create(
	ctx context.Context,
	snap *model.PortfolioSnapshot,
) error {

	err := r.db.WithContext(ctx).Create(snap).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SnapshotRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to save snapshot")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "SnapshotRepository",
		"op":          "Create",
		"total_value": snap.TotalValue,
	}).Info("Portfolio snapshot saved")

	return nil
}

// EarliestSince returns the oldest snapshot taken at or after the given
// time, used as the daily P&L baseline. Returns (nil, nil) when none exists.
func (r *SnapshotRepository) EarliestSince(
	ctx context.Context,
	since time.Time,
) (*model.PortfolioSnapshot, error) {

	var snap model.PortfolioSnapshot

	err := r.db.WithContext(ctx).
		Where("time >= ?", since).
		Order("time ASC").
		First(&snap).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":  "SnapshotRepository",
			"op":    "EarliestSince",
			"since": since,
		}).WithError(err).Error("Failed to fetch snapshot baseline")

		return nil, err
	}

	return &snap, nil
}
