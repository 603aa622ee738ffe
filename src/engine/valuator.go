package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"papertrader/src/model"
)

// dailyPnlWindow is how far back the valuator looks for the snapshot used
// as the daily P&L baseline.
const dailyPnlWindow = 25 * time.Hour

// UpdatePositions marks every open position to the current oracle price and
// recomputes unrealized P&L. Symbols without a price keep their last mark.
// Calling it twice at an unchanged price yields identical results.
func (e *Engine) UpdatePositions(ctx context.Context) error {
	positions, err := e.store.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	updated := 0
	for i := range positions {
		position := positions[i]

		currentPrice, err := e.oracle.CurrentPrice(ctx, position.Symbol)
		if err != nil {
			continue
		}

		var unrealized float64
		if position.Side == model.PositionSideLong {
			unrealized = (currentPrice - position.EntryPrice) * position.Quantity
		} else {
			unrealized = (position.EntryPrice - currentPrice) * position.Quantity
		}

		position.CurrentPrice = currentPrice
		position.UnrealizedPnl = unrealized
		position.UnrealizedPnlPct = unrealized / (position.EntryPrice * position.Quantity) * 100
		position.PositionValue = position.Quantity * currentPrice

		if err := e.store.SavePosition(ctx, &position); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		updated++
	}

	if updated > 0 {
		e.logger.WithField("positions", updated).Debug("Positions marked to market")
	}

	return nil
}

// OpenPositions returns every open position.
func (e *Engine) OpenPositions(ctx context.Context) ([]model.Position, error) {
	return e.store.OpenPositions(ctx)
}

// PortfolioValue aggregates the capital ledger and the mark-to-market
// position book into a point-in-time snapshot. Pure read: neither the
// position book nor the ledger is touched. Positions whose symbol has no
// current price are valued at their last stored mark.
func (e *Engine) PortfolioValue(ctx context.Context) (*model.PortfolioSnapshot, error) {
	ledger, err := e.store.Ledger(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if ledger == nil {
		return nil, fmt.Errorf("%w: capital ledger unavailable", ErrPersistence)
	}

	positions, err := e.store.OpenPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	snap := &model.PortfolioSnapshot{
		CashBalance:       ledger.CurrentCapital,
		AllocationByClass: model.Allocation{},
		Time:              e.now(),
	}

	for i := range positions {
		position := positions[i]

		markPrice := position.CurrentPrice
		if price, err := e.oracle.CurrentPrice(ctx, position.Symbol); err == nil {
			markPrice = price
		}

		value := position.Quantity * markPrice
		snap.PositionsValue += value
		snap.AllocationByClass[position.AssetClass] += value

		snap.NumPositions++
		if position.Side == model.PositionSideLong {
			snap.LongPositions++
		} else {
			snap.ShortPositions++
		}
	}

	snap.TotalValue = ledger.CurrentCapital + snap.PositionsValue
	snap.TotalPnl = snap.TotalValue - ledger.InitialCapital
	if ledger.InitialCapital > 0 {
		snap.TotalPnlPct = snap.TotalPnl / ledger.InitialCapital * 100
	}

	return snap, nil
}

// SaveSnapshot persists the current portfolio snapshot including daily P&L
// against the earliest snapshot within the prior 25 hours.
func (e *Engine) SaveSnapshot(ctx context.Context) (*model.PortfolioSnapshot, error) {
	snap, err := e.PortfolioValue(ctx)
	if err != nil {
		return nil, err
	}

	baseline, err := e.store.EarliestSnapshotSince(ctx, snap.Time.Add(-dailyPnlWindow))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if baseline != nil && baseline.TotalValue > 0 {
		snap.DailyPnl = snap.TotalValue - baseline.TotalValue
		snap.DailyPnlPct = snap.DailyPnl / baseline.TotalValue * 100
	}

	if err := e.store.CreateSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	e.logger.WithFields(logrus.Fields{
		"total_value": snap.TotalValue,
		"cash":        snap.CashBalance,
		"positions":   snap.NumPositions,
	}).Info("Portfolio snapshot saved")

	return snap, nil
}
