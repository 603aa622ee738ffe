package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

// LedgerRepository handles the single capital ledger row.
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new repository instance using the main database.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *LedgerRepository) WithDB(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Current returns the most recent ledger row.
// Returns (nil, nil) if no ledger has been created yet.
func (r *LedgerRepository) Current(ctx context.Context) (*model.CapitalLedger, error) {
	var ledger model.CapitalLedger

	err := r.db.WithContext(ctx).
		Order("id DESC").
		First(&ledger).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "LedgerRepository",
			"op":   "Current",
		}).WithError(err).Error("Failed to fetch capital ledger")

		return nil, err
	}

	return &ledger, nil
}

// LoadOrCreate returns the existing ledger or inserts the given defaults.
func (r *LedgerRepository) LoadOrCreate(
	ctx context.Context,
	defaults model.CapitalLedger,
) (*model.CapitalLedger, error) {

	ledger, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}
	if ledger != nil {
		return ledger, nil
	}

	if err := r.db.WithContext(ctx).Create(&defaults).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "LedgerRepository",
			"op":   "LoadOrCreate",
		}).WithError(err).Error("Failed to create capital ledger")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":            "LedgerRepository",
		"op":              "LoadOrCreate",
		"initial_capital": defaults.InitialCapital,
	}).Info("Capital ledger created")

	return &defaults, nil
}

// ErrInsufficientCapital reports that a guarded capital update matched no
// row: the ledger no longer holds the required amount.
var ErrInsufficientCapital = errors.New("ledger capital below required amount")

// ApplyCapitalDelta adjusts free capital by delta in a single relative
// UPDATE. When required is positive the statement only matches while
// current_capital is at least required, so concurrent debits from separate
// processes sharing the database cannot spend the same capital twice.
func (r *LedgerRepository) ApplyCapitalDelta(
	ctx context.Context,
	id uint,
	delta float64,
	required float64,
) error {

	query := r.db.WithContext(ctx).
		Model(&model.CapitalLedger{}).
		Where("id = ?", id)
	if required > 0 {
		query = query.Where("current_capital >= ?", required)
	}

	result := query.Update("current_capital", gorm.Expr("current_capital + ?", delta))
	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "LedgerRepository",
			"op":    "ApplyCapitalDelta",
			"id":    id,
			"delta": delta,
		}).WithError(result.Error).Error("Failed to update capital")

		return result.Error
	}

	if required > 0 && result.RowsAffected == 0 {
		logger.WithFields(map[string]interface{}{
			"repo":     "LedgerRepository",
			"op":       "ApplyCapitalDelta",
			"id":       id,
			"required": required,
		}).Warn("Capital guard rejected debit")

		return ErrInsufficientCapital
	}

	logger.WithFields(map[string]interface{}{
		"repo":  "LedgerRepository",
		"op":    "ApplyCapitalDelta",
		"delta": delta,
	}).Debug("Capital updated")

	return nil
}
