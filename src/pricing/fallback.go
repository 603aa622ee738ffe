package pricing

import (
	"context"
	"errors"
)

// Compile-time interface check.
var _ Oracle = (*FallbackOracle)(nil)

// FallbackOracle asks each oracle in order and serves the first known
// price. It puts a live feed cache in front of the price store so fills use
// the freshest quote while stale symbols still resolve from price_data.
type FallbackOracle struct {
	oracles []Oracle
}

func NewFallbackOracle(oracles ...Oracle) *FallbackOracle {
	return &FallbackOracle{oracles: oracles}
}

func (o *FallbackOracle) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	for _, oracle := range o.oracles {
		price, err := oracle.CurrentPrice(ctx, symbol)
		if err == nil {
			return price, nil
		}
		if !errors.Is(err, ErrPriceUnavailable) {
			return 0, err
		}
	}
	return 0, ErrPriceUnavailable
}
