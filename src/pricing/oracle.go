// Package pricing supplies the current market price per symbol. The
// execution engine only ever consumes a single "current price" value; where
// that value comes from (price_data table, in-memory feed cache, remote
// quote service) is an implementation detail behind the Oracle interface.
package pricing

import (
	"context"
	"errors"
)

// ErrPriceUnavailable means no current price is known for the symbol. An
// order hitting this is rejected with no state change.
var ErrPriceUnavailable = errors.New("price unavailable")

// Oracle returns the latest known price for a symbol.
type Oracle interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}
