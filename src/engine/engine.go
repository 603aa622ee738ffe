// Package engine is the paper-trading accounting core: it turns order
// requests into realistically priced fills, maintains the position book and
// the capital ledger, and emits trade records on closes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"papertrader/src/costs"
	"papertrader/src/model"
	"papertrader/src/pricing"
	"papertrader/src/repository"
)

// OrderRequest is a single trade instruction. LimitPrice is required for
// LIMIT orders and ignored for MARKET orders.
type OrderRequest struct {
	Symbol     string
	AssetClass string
	OrderType  string
	Side       string
	Quantity   float64
	LimitPrice *float64
	DecisionID *uint
	ClientRef  string
}

// Engine executes paper orders against the position book and capital ledger.
// Operations on the same symbol are serialized. The capital mutex orders the
// capital check against commit within the process; across processes the
// guarded relative update on the ledger row is the authority.
type Engine struct {
	store  *repository.TradingStore
	oracle pricing.Oracle
	costs  *costs.Model
	logger *logrus.Entry
	now    func() time.Time

	capitalMu sync.Mutex

	symbolsMu sync.Mutex
	symbols   map[string]*sync.Mutex

	ledgerID       uint
	initialCapital float64
}

// New creates an engine. Bootstrap must be called before the first order.
func New(store *repository.TradingStore, oracle pricing.Oracle, costModel *costs.Model, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Engine{
		store:   store,
		oracle:  oracle,
		costs:   costModel,
		logger:  logger,
		now:     time.Now,
		symbols: make(map[string]*sync.Mutex),
	}
}

// Bootstrap loads the capital ledger or creates it from config defaults.
func (e *Engine) Bootstrap(ctx context.Context, cfg Config) error {
	ledger, err := e.store.LoadOrCreateLedger(ctx, model.CapitalLedger{
		InitialCapital:  cfg.InitialCapital,
		CurrentCapital:  cfg.InitialCapital,
		MaxPositionSize: cfg.MaxPositionSize,
		CommissionPct:   cfg.CommissionPct,
		CommissionMin:   cfg.CommissionMin,
		SlippagePct:     cfg.SlippagePct,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	e.ledgerID = ledger.ID
	e.initialCapital = ledger.InitialCapital

	e.logger.WithFields(logrus.Fields{
		"initial_capital": ledger.InitialCapital,
		"current_capital": ledger.CurrentCapital,
	}).Info("Paper trading engine initialized")

	return nil
}

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.symbolsMu.Lock()
	defer e.symbolsMu.Unlock()

	lock, ok := e.symbols[symbol]
	if !ok {
		lock = &sync.Mutex{}
		e.symbols[symbol] = lock
	}
	return lock
}

// ExecuteOrder resolves the current price, applies the cost model, checks
// and mutates capital, mutates the position book and, on closes, emits
// trades. A LIMIT order whose price condition is not met is recorded PENDING
// with no further effect. Everything a fill touches is persisted in one
// transaction.
func (e *Engine) ExecuteOrder(ctx context.Context, req OrderRequest) (*model.Order, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Side != model.OrderSideBuy && req.Side != model.OrderSideSell {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, req.Side)
	}
	if req.OrderType != model.OrderTypeMarket && req.OrderType != model.OrderTypeLimit {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderType, req.OrderType)
	}
	if req.AssetClass == "" {
		req.AssetClass = "crypto"
	}

	lock := e.symbolLock(req.Symbol)
	lock.Lock()
	defer lock.Unlock()

	e.logger.WithFields(logrus.Fields{
		"symbol": req.Symbol,
		"type":   req.OrderType,
		"side":   req.Side,
		"qty":    req.Quantity,
	}).Info("Executing order")

	currentPrice, err := e.oracle.CurrentPrice(ctx, req.Symbol)
	if err != nil {
		if errors.Is(err, pricing.ErrPriceUnavailable) {
			return nil, fmt.Errorf("%s: %w", req.Symbol, ErrPriceUnavailable)
		}
		return nil, err
	}

	order := &model.Order{
		ClientRef:  req.ClientRef,
		Symbol:     req.Symbol,
		AssetClass: req.AssetClass,
		OrderType:  req.OrderType,
		Side:       req.Side,
		Quantity:   req.Quantity,
		LimitPrice: req.LimitPrice,
		Status:     model.OrderStatusPending,
		DecisionID: req.DecisionID,
	}

	executionPrice := currentPrice
	if req.OrderType == model.OrderTypeLimit {
		if req.LimitPrice == nil {
			return nil, ErrLimitPriceRequired
		}

		if !limitExecutable(req.Side, currentPrice, *req.LimitPrice) {
			if err := e.store.CreateOrder(ctx, order); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
			}

			e.logger.WithFields(logrus.Fields{
				"order_id": order.ID,
				"symbol":   order.Symbol,
				"limit":    *req.LimitPrice,
				"current":  currentPrice,
			}).Info("Limit order not executable, recorded pending")

			return order, nil
		}

		executionPrice = *req.LimitPrice
	}

	return e.fill(ctx, order, executionPrice)
}

func limitExecutable(side string, currentPrice, limitPrice float64) bool {
	if side == model.OrderSideBuy {
		return currentPrice <= limitPrice
	}
	return currentPrice >= limitPrice
}

// fill executes an order at the given execution price. The order may be a
// fresh row (ID zero) or an existing PENDING one being completed. The caller
// holds the symbol lock.
func (e *Engine) fill(ctx context.Context, order *model.Order, executionPrice float64) (*model.Order, error) {
	notional := order.Quantity * executionPrice
	slippage := e.costs.Slippage(order.OrderType, order.Quantity, executionPrice)
	commission := e.costs.Commission(notional)

	// Slippage always works against the trader.
	var adjustedPrice, totalCost float64
	if order.Side == model.OrderSideBuy {
		adjustedPrice = executionPrice + slippage/order.Quantity
		totalCost = notional + slippage + commission
	} else {
		adjustedPrice = executionPrice - slippage/order.Quantity
		totalCost = notional - slippage - commission
	}

	// Classify against the position book before touching capital: an order
	// on the opposite side of an open position is a closing fill.
	opposite := model.PositionSideShort
	if order.Side == model.OrderSideSell {
		opposite = model.PositionSideLong
	}

	existing, err := e.store.PositionByKey(ctx, order.Symbol, opposite)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	closing := existing != nil

	e.capitalMu.Lock()
	defer e.capitalMu.Unlock()

	ledger, err := e.store.Ledger(ctx)
	if err != nil || ledger == nil {
		return nil, fmt.Errorf("%w: capital ledger unavailable: %v", ErrPersistence, err)
	}

	// capitalDelta is applied as a relative UPDATE guarded by required, so
	// the check below is a fast path: the database enforces it again at
	// commit against whatever other processes spent in the meantime.
	var capitalDelta, required float64
	switch {
	case order.Side == model.OrderSideBuy && closing:
		// Buy to cover: pay for the buyback; the reserved margin comes back
		// through net equity, never blocked on free capital.
		capitalDelta = -totalCost
	case order.Side == model.OrderSideBuy:
		if totalCost > ledger.CurrentCapital {
			e.logger.WithFields(logrus.Fields{
				"symbol": order.Symbol,
				"need":   totalCost,
				"have":   ledger.CurrentCapital,
			}).Warn("Insufficient capital for BUY")
			return nil, ErrInsufficientCapital
		}
		capitalDelta = -totalCost
		required = totalCost
	case closing: // SELL closing a LONG
		capitalDelta = totalCost
	default: // SELL opening a SHORT: reserve full notional as margin
		if notional > ledger.CurrentCapital {
			e.logger.WithFields(logrus.Fields{
				"symbol": order.Symbol,
				"need":   notional,
				"have":   ledger.CurrentCapital,
			}).Warn("Insufficient capital for SHORT margin")
			return nil, ErrInsufficientCapital
		}
		capitalDelta = -notional
		required = notional
	}

	filledAt := e.now()
	order.Status = model.OrderStatusFilled
	order.FilledQty = order.Quantity
	order.AvgFillPrice = &adjustedPrice
	order.Commission = commission
	order.Slippage = slippage
	order.TotalCost = &totalCost
	order.FilledAt = &filledAt

	err = e.store.Transaction(ctx, func(tx *repository.TradingStore) error {
		if order.ID == 0 {
			if err := tx.CreateOrder(ctx, order); err != nil {
				return err
			}
		} else {
			if err := tx.SaveOrderFill(ctx, order); err != nil {
				return err
			}
		}

		if err := tx.ApplyCapitalDelta(ctx, ledger.ID, capitalDelta, required); err != nil {
			return err
		}

		if closing {
			return e.reduceOrClose(ctx, tx, order, opposite, adjustedPrice)
		}

		side := model.PositionSideLong
		if order.Side == model.OrderSideSell {
			side = model.PositionSideShort
		}
		return e.openOrAdd(ctx, tx, order, side, adjustedPrice)
	})
	if err != nil {
		if errors.Is(err, ErrNoOpenPosition) {
			return nil, err
		}
		if errors.Is(err, repository.ErrInsufficientCapital) {
			return nil, ErrInsufficientCapital
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	e.logger.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"symbol":     order.Symbol,
		"side":       order.Side,
		"qty":        order.Quantity,
		"fill_price": adjustedPrice,
		"commission": commission,
		"slippage":   slippage,
	}).Info("Order filled")

	return order, nil
}

// openOrAdd inserts a position or folds the fill into an existing one with
// quantity-weighted average entry pricing. Entry fees accumulate on the
// position so later reductions can realize their proportional share.
func (e *Engine) openOrAdd(
	ctx context.Context,
	tx *repository.TradingStore,
	order *model.Order,
	side string,
	fillPrice float64,
) error {

	position, err := tx.PositionByKey(ctx, order.Symbol, side)
	if err != nil {
		return err
	}

	if position == nil {
		position = &model.Position{
			Symbol:          order.Symbol,
			Side:            side,
			AssetClass:      order.AssetClass,
			Quantity:        order.Quantity,
			EntryPrice:      fillPrice,
			EntryCommission: order.Commission,
			EntrySlippage:   order.Slippage,
			CurrentPrice:    fillPrice,
			PositionValue:   order.Quantity * fillPrice,
			EntryOrderID:    order.ID,
			OpenedAt:        e.now(),
		}

		if err := tx.SavePosition(ctx, position); err != nil {
			return err
		}

		e.logger.WithFields(logrus.Fields{
			"symbol": position.Symbol,
			"side":   side,
			"qty":    position.Quantity,
			"entry":  fillPrice,
		}).Info("Opened new position")

		return nil
	}

	oldQty := position.Quantity
	newQty := oldQty + order.Quantity

	position.EntryPrice = (oldQty*position.EntryPrice + order.Quantity*fillPrice) / newQty
	position.Quantity = newQty
	position.EntryCommission += order.Commission
	position.EntrySlippage += order.Slippage
	position.CurrentPrice = fillPrice
	position.PositionValue = newQty * fillPrice

	if err := tx.SavePosition(ctx, position); err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"symbol":  position.Symbol,
		"side":    side,
		"old_qty": oldQty,
		"new_qty": newQty,
		"entry":   position.EntryPrice,
	}).Info("Added to existing position")

	return nil
}

// reduceOrClose realizes P&L for the closed quantity and emits a Trade.
// A reduction that consumes the whole position deletes the row; a partial
// reduction realizes its proportional share of entry fees and leaves the
// remainder on the position.
func (e *Engine) reduceOrClose(
	ctx context.Context,
	tx *repository.TradingStore,
	exitOrder *model.Order,
	side string,
	exitPrice float64,
) error {

	position, err := tx.PositionByKey(ctx, exitOrder.Symbol, side)
	if err != nil {
		return err
	}
	if position == nil {
		return fmt.Errorf("%s %s: %w", exitOrder.Symbol, side, ErrNoOpenPosition)
	}

	closedQty := exitOrder.Quantity
	if closedQty > position.Quantity {
		closedQty = position.Quantity
	}
	proportion := closedQty / position.Quantity

	var realized float64
	if side == model.PositionSideLong {
		realized = (exitPrice - position.EntryPrice) * closedQty
	} else {
		realized = (position.EntryPrice - exitPrice) * closedQty
	}
	realizedPct := realized / (position.EntryPrice * closedQty) * 100

	entryCommission := position.EntryCommission * proportion
	entrySlippage := position.EntrySlippage * proportion
	totalCommission := entryCommission + exitOrder.Commission
	totalSlippage := entrySlippage + exitOrder.Slippage

	exitTime := e.now()
	trade := &model.Trade{
		Symbol:          position.Symbol,
		AssetClass:      position.AssetClass,
		Side:            side,
		Quantity:        closedQty,
		EntryPrice:      position.EntryPrice,
		ExitPrice:       exitPrice,
		RealizedPnl:     realized,
		RealizedPnlPct:  realizedPct,
		GrossPnl:        realized,
		NetPnl:          realized - totalCommission - totalSlippage,
		TotalCommission: totalCommission,
		TotalSlippage:   totalSlippage,
		EntryOrderID:    position.EntryOrderID,
		ExitOrderID:     exitOrder.ID,
		PositionID:      position.ID,
		EntryTime:       position.OpenedAt,
		ExitTime:        exitTime,
		HoldDuration:    exitTime.Sub(position.OpenedAt),
	}

	if err := tx.CreateTrade(ctx, trade); err != nil {
		return err
	}

	if closedQty >= position.Quantity {
		if err := tx.DeletePosition(ctx, position.ID); err != nil {
			return err
		}

		e.logger.WithFields(logrus.Fields{
			"symbol":  position.Symbol,
			"side":    side,
			"qty":     closedQty,
			"exit":    exitPrice,
			"net_pnl": trade.NetPnl,
		}).Info("Closed position")

		return nil
	}

	position.Quantity -= closedQty
	position.EntryCommission -= entryCommission
	position.EntrySlippage -= entrySlippage
	position.CurrentPrice = exitPrice
	position.PositionValue = position.Quantity * exitPrice

	if err := tx.SavePosition(ctx, position); err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"symbol":  position.Symbol,
		"side":    side,
		"closed":  closedQty,
		"left":    position.Quantity,
		"net_pnl": trade.NetPnl,
	}).Info("Reduced position")

	return nil
}

// ProcessPendingOrders re-evaluates PENDING limit orders against current
// prices and fills those whose condition now holds. Orders whose symbol has
// no price, or whose fill is rejected, stay pending. Returns the number of
// orders filled.
func (e *Engine) ProcessPendingOrders(ctx context.Context) (int, error) {
	pending, err := e.store.PendingOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	filled := 0
	for i := range pending {
		order := pending[i]
		if order.OrderType != model.OrderTypeLimit || order.LimitPrice == nil {
			continue
		}

		lock := e.symbolLock(order.Symbol)
		lock.Lock()

		currentPrice, err := e.oracle.CurrentPrice(ctx, order.Symbol)
		if err != nil || !limitExecutable(order.Side, currentPrice, *order.LimitPrice) {
			lock.Unlock()
			continue
		}

		if _, err := e.fill(ctx, &order, *order.LimitPrice); err != nil {
			e.logger.WithFields(logrus.Fields{
				"order_id": order.ID,
				"symbol":   order.Symbol,
			}).WithError(err).Warn("Pending order not fillable, leaving pending")
			lock.Unlock()
			continue
		}

		filled++
		lock.Unlock()
	}

	return filled, nil
}

// CancelOrder transitions a PENDING order to CANCELLED.
func (e *Engine) CancelOrder(ctx context.Context, id uint) error {
	order, err := e.store.OrderByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != model.OrderStatusPending {
		return ErrOrderNotPending
	}

	if err := e.store.UpdateOrderStatus(ctx, id, model.OrderStatusCancelled); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return nil
}

// RecentTrades returns the most recent closed trades, newest first.
func (e *Engine) RecentTrades(ctx context.Context, limit int) ([]model.Trade, error) {
	return e.store.RecentTrades(ctx, limit)
}
