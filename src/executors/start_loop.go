// Package executors drives the trading cycle: it polls signal-producer
// decisions, sizes and places the resulting orders, revalues the position
// book and persists portfolio snapshots.
package executors

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/engine"
	"papertrader/src/model"
	"papertrader/src/pricing"
	"papertrader/src/repository"
	"papertrader/src/risk"
)

// trader is the slice of the execution engine the loop drives.
type trader interface {
	ExecuteOrder(ctx context.Context, req engine.OrderRequest) (*model.Order, error)
	OpenPositions(ctx context.Context) ([]model.Position, error)
	UpdatePositions(ctx context.Context) error
	ProcessPendingOrders(ctx context.Context) (int, error)
	PortfolioValue(ctx context.Context) (*model.PortfolioSnapshot, error)
	SaveSnapshot(ctx context.Context) (*model.PortfolioSnapshot, error)
}

// decisionSource yields actionable decisions and marks them consumed.
type decisionSource interface {
	FindActionable(ctx context.Context, minConfidence float64, createdAfter time.Time, limit int) ([]model.TradingDecision, error)
	MarkProcessed(ctx context.Context, id uint) error
}

// Loop runs the periodic trading cycle.
type Loop struct {
	config    Config
	trader    trader
	decisions decisionSource
	oracle    pricing.Oracle
	sizing    risk.SizingConfig
	now       func() time.Time
}

// NewLoop wires a loop from explicit collaborators.
func NewLoop(config Config, t trader, d decisionSource, oracle pricing.Oracle) *Loop {
	sizing := risk.DefaultSizingConfig()
	if config.MaxPositionFraction > 0 {
		sizing.MaxPositionFraction = decimal.NewFromFloat(config.MaxPositionFraction)
	}

	return &Loop{
		config:    config,
		trader:    t,
		decisions: d,
		oracle:    oracle,
		sizing:    sizing,
		now:       time.Now,
	}
}

// StartLoop builds the loop from env config and the shared repositories and
// runs it until the context is cancelled.
func StartLoop(ctx context.Context, e *engine.Engine, oracle pricing.Oracle) error {
	loop := NewLoop(GetConfig(), e, repository.NewDecisionRepository(), oracle)
	return loop.Start(ctx)
}

// Start ticks the cycle until the context is cancelled. A failed cycle is
// logged and the loop keeps going; only cancellation stops it.
func (l *Loop) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.config.LoopPeriod)
	defer ticker.Stop()

	logger.WithField("period", l.config.LoopPeriod).Info("Trading loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Trading loop stopped")
			return nil

		case <-ticker.C:
			if err := l.RunCycle(ctx); err != nil {
				logger.WithError(err).Error("Trading cycle failed")
			}
		}
	}
}

// RunCycle executes one full pass: fill pending limit orders, mark the book
// to market, act on fresh decisions, then snapshot the portfolio.
func (l *Loop) RunCycle(ctx context.Context) error {
	filled, err := l.trader.ProcessPendingOrders(ctx)
	if err != nil {
		return err
	}
	if filled > 0 {
		logger.WithField("filled", filled).Info("Pending limit orders filled")
	}

	if err := l.trader.UpdatePositions(ctx); err != nil {
		return err
	}

	createdAfter := l.now().Add(-l.config.DecisionMaxAge)
	decisions, err := l.decisions.FindActionable(ctx, l.config.MinConfidence, createdAfter, l.config.DecisionBatchSize)
	if err != nil {
		return err
	}

	for i := range decisions {
		decision := decisions[i]

		if err := l.executeDecision(ctx, decision); err != nil {
			logger.WithFields(logger.Fields{
				"decision_id": decision.ID,
				"symbol":      decision.Symbol,
				"action":      decision.Action,
			}).WithError(err).Warn("Decision not executed")
		}

		// Marked regardless of outcome: a stale signal must never be
		// retried against a moved market.
		if err := l.decisions.MarkProcessed(ctx, decision.ID); err != nil {
			return err
		}
	}

	if _, err := l.trader.SaveSnapshot(ctx); err != nil {
		return err
	}

	return nil
}

func (l *Loop) executeDecision(ctx context.Context, decision model.TradingDecision) error {
	switch decision.Action {
	case model.DecisionActionHold:
		return nil

	case model.DecisionActionBuy:
		return l.executeBuy(ctx, decision)

	case model.DecisionActionSell:
		return l.executeSell(ctx, decision)

	default:
		logger.WithFields(logger.Fields{
			"decision_id": decision.ID,
			"action":      decision.Action,
		}).Warn("Unknown decision action, skipping")
		return nil
	}
}

// executeBuy sizes a market buy from the portfolio value, the decision's
// confidence and its risk score.
func (l *Loop) executeBuy(ctx context.Context, decision model.TradingDecision) error {
	price, err := l.oracle.CurrentPrice(ctx, decision.Symbol)
	if err != nil {
		return err
	}

	snap, err := l.trader.PortfolioValue(ctx)
	if err != nil {
		return err
	}

	quantity := risk.QuantityForDecision(
		decimal.NewFromFloat(snap.TotalValue),
		decimal.NewFromFloat(price),
		decimal.NewFromFloat(decision.Confidence),
		decimal.NewFromFloat(decision.RiskScore),
		l.sizing,
	)
	if quantity.LessThanOrEqual(decimal.Zero) {
		logger.WithFields(logger.Fields{
			"decision_id": decision.ID,
			"symbol":      decision.Symbol,
		}).Warn("Sized to zero, skipping buy")
		return nil
	}

	qty, _ := quantity.Float64()

	order, err := l.trader.ExecuteOrder(ctx, engine.OrderRequest{
		Symbol:     decision.Symbol,
		AssetClass: decision.AssetClass,
		OrderType:  model.OrderTypeMarket,
		Side:       model.OrderSideBuy,
		Quantity:   qty,
		DecisionID: &decision.ID,
	})
	if err != nil {
		return err
	}

	logger.WithFields(logger.Fields{
		"decision_id": decision.ID,
		"order_id":    order.ID,
		"symbol":      order.Symbol,
		"qty":         order.Quantity,
	}).Info("Buy decision executed")

	return nil
}

// executeSell closes the full open long on the decision's symbol. A sell
// signal with no long to close is a no-op.
func (l *Loop) executeSell(ctx context.Context, decision model.TradingDecision) error {
	positions, err := l.trader.OpenPositions(ctx)
	if err != nil {
		return err
	}

	var long *model.Position
	for i := range positions {
		if positions[i].Symbol == decision.Symbol && positions[i].Side == model.PositionSideLong {
			long = &positions[i]
			break
		}
	}

	if long == nil {
		logger.WithFields(logger.Fields{
			"decision_id": decision.ID,
			"symbol":      decision.Symbol,
		}).Warn("Sell decision with no open long, skipping")
		return nil
	}

	order, err := l.trader.ExecuteOrder(ctx, engine.OrderRequest{
		Symbol:     decision.Symbol,
		AssetClass: decision.AssetClass,
		OrderType:  model.OrderTypeMarket,
		Side:       model.OrderSideSell,
		Quantity:   long.Quantity,
		DecisionID: &decision.ID,
	})
	if err != nil {
		if errors.Is(err, engine.ErrNoOpenPosition) {
			return nil
		}
		return err
	}

	logger.WithFields(logger.Fields{
		"decision_id": decision.ID,
		"order_id":    order.ID,
		"symbol":      order.Symbol,
		"qty":         order.Quantity,
	}).Info("Sell decision executed")

	return nil
}
