package engine

import (
	"errors"

	"papertrader/src/pricing"
)

var (
	// ErrPriceUnavailable rejects an order when the oracle has no current
	// price for the symbol. No state is mutated.
	ErrPriceUnavailable = pricing.ErrPriceUnavailable

	// ErrInsufficientCapital rejects an opening or adding fill whose capital
	// requirement exceeds free capital. No state is mutated.
	ErrInsufficientCapital = errors.New("insufficient capital")

	// ErrNoOpenPosition rejects a closing fill against a (symbol, side) key
	// with no matching position.
	ErrNoOpenPosition = errors.New("no open position")

	// ErrInvalidQuantity rejects a non-positive quantity before any lookup.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidSide and ErrInvalidOrderType reject a request whose side or
	// type is not one of the known constants. Matching is exact, so "buy"
	// never reaches the fill path.
	ErrInvalidSide      = errors.New("order side must be BUY or SELL")
	ErrInvalidOrderType = errors.New("order type must be MARKET or LIMIT")

	// ErrLimitPriceRequired rejects a LIMIT order without a limit price.
	ErrLimitPriceRequired = errors.New("limit price required")

	// ErrOrderNotFound and ErrOrderNotPending guard cancellation.
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPending = errors.New("order is not pending")

	// ErrPersistence marks storage-layer failures. The order they interrupted
	// is rolled back whole; callers retry the entire ExecuteOrder call.
	ErrPersistence = errors.New("persistence failure")
)
