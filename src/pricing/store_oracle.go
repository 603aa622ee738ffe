package pricing

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/repository"
)

// Compile-time interface check.
var _ Oracle = (*StoreOracle)(nil)

// StoreOracle serves the most recent tick recorded in price_data. This is
// the default oracle: the kline fetcher and the websocket feed both keep
// that table current.
type StoreOracle struct {
	prices *repository.PriceRepository
}

func NewStoreOracle(prices *repository.PriceRepository) *StoreOracle {
	return &StoreOracle{prices: prices}
}

func (o *StoreOracle) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	tick, err := o.prices.Latest(ctx, symbol)
	if err != nil {
		return 0, err
	}

	if tick == nil {
		logger.WithField("symbol", symbol).Warn("No price data found")
		return 0, ErrPriceUnavailable
	}

	return tick.Price, nil
}
