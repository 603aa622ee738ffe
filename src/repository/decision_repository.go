package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

// DecisionRepository reads signal-producer decisions for the executor loop.
type DecisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new repository instance using the main database.
func NewDecisionRepository() *DecisionRepository {
	return &DecisionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *DecisionRepository) WithDB(db *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// FindActionable returns unprocessed decisions at or above the confidence
// threshold created after the given time, newest first.
func (r *DecisionRepository) FindActionable(
	ctx context.Context,
	minConfidence float64,
	createdAfter time.Time,
	limit int,
) ([]model.TradingDecision, error) {

	if limit <= 0 {
		limit = 10
	}

	var decisions []model.TradingDecision

	err := r.db.WithContext(ctx).
		Where("processed = ? AND confidence >= ? AND created_at >= ?",
			false, minConfidence, createdAfter).
		Order("created_at DESC").
		Limit(limit).
		Find(&decisions).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":           "DecisionRepository",
			"op":             "FindActionable",
			"min_confidence": minConfidence,
		}).WithError(err).Error("Failed to fetch actionable decisions")

		return nil, err
	}

	return decisions, nil
}

// Create inserts a decision. Used by signal producers and tests; the
// executor loop itself only reads and marks.
func (r *DecisionRepository) Create(
	ctx context.Context,
	decision *model.TradingDecision,
) error {

	err := r.db.WithContext(ctx).Create(decision).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "DecisionRepository",
			"op":     "Create",
			"symbol": decision.Symbol,
		}).WithError(err).Error("Failed to create decision")

		return err
	}

	return nil
}

// MarkProcessed flags a decision so it is never executed twice.
func (r *DecisionRepository) MarkProcessed(
	ctx context.Context,
	id uint,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.TradingDecision{}).
		Where("id = ?", id).
		Update("processed", true).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "DecisionRepository",
			"op":   "MarkProcessed",
			"id":   id,
		}).WithError(err).Error("Failed to mark decision processed")

		return err
	}

	return nil
}
