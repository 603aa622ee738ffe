package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"papertrader/src/database"
	"papertrader/src/model"
)

// TradingStore is the persistence collaborator the execution engine mutates
// through. Transaction returns a store bound to a single gorm transaction so
// a fill persists its order, capital, position and trade rows together or
// not at all.
type TradingStore struct {
	db        *gorm.DB
	orders    *OrderRepository
	positions *PositionRepository
	trades    *TradeRepository
	snapshots *SnapshotRepository
	ledger    *LedgerRepository
}

// NewTradingStore creates a store backed by the main database.
func NewTradingStore() *TradingStore {
	return NewTradingStoreWithDB(database.MainDB)
}

// NewTradingStoreWithDB creates a store bound to a specific *gorm.DB.
func NewTradingStoreWithDB(db *gorm.DB) *TradingStore {
	return &TradingStore{
		db:        db,
		orders:    (&OrderRepository{}).WithDB(db),
		positions: (&PositionRepository{}).WithDB(db),
		trades:    (&TradeRepository{}).WithDB(db),
		snapshots: (&SnapshotRepository{}).WithDB(db),
		ledger:    (&LedgerRepository{}).WithDB(db),
	}
}

// Transaction runs fn against a tx-bound copy of the store. Any error rolls
// the whole fill back.
func (s *TradingStore) Transaction(
	ctx context.Context,
	fn func(tx *TradingStore) error,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewTradingStoreWithDB(tx))
	})
}

func (s *TradingStore) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.orders.Create(ctx, order)
}

func (s *TradingStore) OrderByID(ctx context.Context, id uint) (*model.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *TradingStore) PendingOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.FindPending(ctx)
}

func (s *TradingStore) UpdateOrderStatus(ctx context.Context, id uint, status string) error {
	return s.orders.UpdateStatus(ctx, id, status)
}

func (s *TradingStore) SaveOrderFill(ctx context.Context, order *model.Order) error {
	return s.orders.SaveFill(ctx, order)
}

func (s *TradingStore) PositionByKey(ctx context.Context, symbol, side string) (*model.Position, error) {
	return s.positions.FindByKey(ctx, symbol, side)
}

func (s *TradingStore) SavePosition(ctx context.Context, position *model.Position) error {
	return s.positions.Save(ctx, position)
}

func (s *TradingStore) DeletePosition(ctx context.Context, id uint) error {
	return s.positions.Delete(ctx, id)
}

func (s *TradingStore) OpenPositions(ctx context.Context) ([]model.Position, error) {
	return s.positions.FindAll(ctx)
}

func (s *TradingStore) CreateTrade(ctx context.Context, trade *model.Trade) error {
	return s.trades.Create(ctx, trade)
}

func (s *TradingStore) RecentTrades(ctx context.Context, limit int) ([]model.Trade, error) {
	return s.trades.FindRecent(ctx, limit)
}

func (s *TradingStore) Ledger(ctx context.Context) (*model.CapitalLedger, error) {
	return s.ledger.Current(ctx)
}

func (s *TradingStore) LoadOrCreateLedger(ctx context.Context, defaults model.CapitalLedger) (*model.CapitalLedger, error) {
	return s.ledger.LoadOrCreate(ctx, defaults)
}

func (s *TradingStore) ApplyCapitalDelta(ctx context.Context, id uint, delta, required float64) error {
	return s.ledger.ApplyCapitalDelta(ctx, id, delta, required)
}

func (s *TradingStore) CreateSnapshot(ctx context.Context, snap *model.PortfolioSnapshot) error {
	return s.snapshots.Create(ctx, snap)
}

func (s *TradingStore) EarliestSnapshotSince(ctx context.Context, since time.Time) (*model.PortfolioSnapshot, error) {
	return s.snapshots.EarliestSince(ctx, since)
}
