package executors

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrader/src/engine"
	"papertrader/src/model"
	"papertrader/src/pricing"
)

type fakeTrader struct {
	positions     []model.Position
	snapshot      model.PortfolioSnapshot
	execErr       error
	orders        []engine.OrderRequest
	snapshotSaves int
}

func (f *fakeTrader) ExecuteOrder(_ context.Context, req engine.OrderRequest) (*model.Order, error) {
	if f.execErr != nil {
		return nil, f.execErr
	}
	f.orders = append(f.orders, req)
	return &model.Order{ID: uint(len(f.orders)), Symbol: req.Symbol, Quantity: req.Quantity}, nil
}

func (f *fakeTrader) OpenPositions(context.Context) ([]model.Position, error) {
	return f.positions, nil
}

func (f *fakeTrader) UpdatePositions(context.Context) error { return nil }

func (f *fakeTrader) ProcessPendingOrders(context.Context) (int, error) { return 0, nil }

func (f *fakeTrader) PortfolioValue(context.Context) (*model.PortfolioSnapshot, error) {
	snap := f.snapshot
	return &snap, nil
}

func (f *fakeTrader) SaveSnapshot(context.Context) (*model.PortfolioSnapshot, error) {
	f.snapshotSaves++
	snap := f.snapshot
	return &snap, nil
}

type fakeDecisions struct {
	pending   []model.TradingDecision
	processed []uint
}

func (f *fakeDecisions) FindActionable(_ context.Context, _ float64, _ time.Time, _ int) ([]model.TradingDecision, error) {
	return f.pending, nil
}

func (f *fakeDecisions) MarkProcessed(_ context.Context, id uint) error {
	f.processed = append(f.processed, id)
	return nil
}

type fakeOracle struct {
	prices map[string]float64
}

func (o *fakeOracle) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	if price, ok := o.prices[symbol]; ok {
		return price, nil
	}
	return 0, pricing.ErrPriceUnavailable
}

func testConfig() Config {
	return Config{
		LoopPeriod:          time.Second,
		MinConfidence:       0.6,
		DecisionMaxAge:      time.Hour,
		DecisionBatchSize:   10,
		MaxPositionFraction: 0.20,
	}
}

func TestRunCycleBuySizedFromPortfolio(t *testing.T) {
	trader := &fakeTrader{snapshot: model.PortfolioSnapshot{TotalValue: 10000}}
	decisions := &fakeDecisions{pending: []model.TradingDecision{
		{ID: 1, Symbol: "BTC/USDT", Action: model.DecisionActionBuy, Confidence: 0.8, RiskScore: 0},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"BTC/USDT": 100}}

	loop := NewLoop(testConfig(), trader, decisions, oracle)
	require.NoError(t, loop.RunCycle(context.Background()))

	require.Len(t, trader.orders, 1)
	order := trader.orders[0]
	assert.Equal(t, model.OrderSideBuy, order.Side)
	assert.Equal(t, model.OrderTypeMarket, order.OrderType)
	// 10000 * 0.20 * 1.0 * 1.0 / 100
	assert.InDelta(t, 20.0, order.Quantity, 1e-9)
	require.NotNil(t, order.DecisionID)
	assert.Equal(t, uint(1), *order.DecisionID)

	assert.Equal(t, []uint{1}, decisions.processed)
	assert.Equal(t, 1, trader.snapshotSaves)
}

func TestRunCycleRiskDiscountsBuySize(t *testing.T) {
	trader := &fakeTrader{snapshot: model.PortfolioSnapshot{TotalValue: 10000}}
	decisions := &fakeDecisions{pending: []model.TradingDecision{
		{ID: 7, Symbol: "BTC/USDT", Action: model.DecisionActionBuy, Confidence: 0.4, RiskScore: 1.0},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"BTC/USDT": 100}}

	loop := NewLoop(testConfig(), trader, decisions, oracle)
	require.NoError(t, loop.RunCycle(context.Background()))

	require.Len(t, trader.orders, 1)
	// half confidence and full risk discount: 20 * 0.5 * 0.5
	if math.Abs(trader.orders[0].Quantity-5.0) > 1e-9 {
		t.Fatalf("sized quantity mismatch. got=%v want=5", trader.orders[0].Quantity)
	}
}

func TestRunCycleHoldIsMarkedButNotTraded(t *testing.T) {
	trader := &fakeTrader{snapshot: model.PortfolioSnapshot{TotalValue: 10000}}
	decisions := &fakeDecisions{pending: []model.TradingDecision{
		{ID: 3, Symbol: "ETH/USDT", Action: model.DecisionActionHold, Confidence: 0.9},
	}}

	loop := NewLoop(testConfig(), trader, decisions, &fakeOracle{})
	require.NoError(t, loop.RunCycle(context.Background()))

	assert.Empty(t, trader.orders)
	assert.Equal(t, []uint{3}, decisions.processed)
}

func TestRunCycleSellClosesFullLong(t *testing.T) {
	trader := &fakeTrader{
		snapshot: model.PortfolioSnapshot{TotalValue: 10000},
		positions: []model.Position{
			{Symbol: "ETH/USDT", Side: model.PositionSideLong, Quantity: 3.5},
			{Symbol: "ETH/USDT", Side: model.PositionSideShort, Quantity: 1},
		},
	}
	decisions := &fakeDecisions{pending: []model.TradingDecision{
		{ID: 4, Symbol: "ETH/USDT", Action: model.DecisionActionSell, Confidence: 0.9},
	}}

	loop := NewLoop(testConfig(), trader, decisions, &fakeOracle{})
	require.NoError(t, loop.RunCycle(context.Background()))

	require.Len(t, trader.orders, 1)
	assert.Equal(t, model.OrderSideSell, trader.orders[0].Side)
	assert.Equal(t, 3.5, trader.orders[0].Quantity)
	assert.Equal(t, []uint{4}, decisions.processed)
}

func TestRunCycleSellWithoutLongIsSkipped(t *testing.T) {
	trader := &fakeTrader{snapshot: model.PortfolioSnapshot{TotalValue: 10000}}
	decisions := &fakeDecisions{pending: []model.TradingDecision{
		{ID: 5, Symbol: "SOL/USDT", Action: model.DecisionActionSell, Confidence: 0.9},
	}}

	loop := NewLoop(testConfig(), trader, decisions, &fakeOracle{})
	require.NoError(t, loop.RunCycle(context.Background()))

	assert.Empty(t, trader.orders)
	assert.Equal(t, []uint{5}, decisions.processed)
}

func TestRunCycleFailedDecisionStillMarked(t *testing.T) {
	trader := &fakeTrader{
		snapshot: model.PortfolioSnapshot{TotalValue: 10000},
		execErr:  assert.AnError,
	}
	decisions := &fakeDecisions{pending: []model.TradingDecision{
		{ID: 6, Symbol: "BTC/USDT", Action: model.DecisionActionBuy, Confidence: 0.8},
	}}
	oracle := &fakeOracle{prices: map[string]float64{"BTC/USDT": 100}}

	loop := NewLoop(testConfig(), trader, decisions, oracle)
	require.NoError(t, loop.RunCycle(context.Background()))

	assert.Empty(t, trader.orders)
	assert.Equal(t, []uint{6}, decisions.processed)
	assert.Equal(t, 1, trader.snapshotSaves)
}
