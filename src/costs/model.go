package costs

import (
	"math/rand"
	"time"

	"papertrader/src/model"
)

// Source supplies the jitter randomness for slippage. It is injected so
// tests can pin deterministic fills; production uses a locally seeded
// math/rand instance, never the global source.
type Source interface {
	Float64() float64
}

const (
	marketOrderMultiplier = 2.0
	limitOrderMultiplier  = 0.5

	largeOrderNotional  = 10000.0
	mediumOrderNotional = 5000.0

	largeOrderMultiplier  = 1.5
	mediumOrderMultiplier = 1.2
)

// Model computes commission and slippage for a hypothetical fill. Pure
// except for the injected jitter source.
type Model struct {
	commissionPct float64
	commissionMin float64
	slippagePct   float64
	rng           Source
}

// NewModel builds a cost model. A nil source gets a time-seeded local RNG.
func NewModel(commissionPct, commissionMin, slippagePct float64, rng Source) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Model{
		commissionPct: commissionPct,
		commissionMin: commissionMin,
		slippagePct:   slippagePct,
		rng:           rng,
	}
}

// Commission is max(notional * rate, minimum).
func (m *Model) Commission(notional float64) float64 {
	commission := notional * m.commissionPct
	if commission < m.commissionMin {
		return m.commissionMin
	}
	return commission
}

// Slippage returns the simulated market-impact cost in quote currency for an
// order of the given type and size. Market orders slip more than limit
// orders, larger notionals slip more in discrete bands, and a bounded
// symmetric jitter in [0.5, 1.5) emulates micro-noise. The caller applies
// the result against itself: added to the price for buys, subtracted for
// sells.
func (m *Model) Slippage(orderType string, quantity, price float64) float64 {
	notional := quantity * price

	typeMultiplier := limitOrderMultiplier
	if orderType == model.OrderTypeMarket {
		typeMultiplier = marketOrderMultiplier
	}

	sizeMultiplier := 1.0
	switch {
	case notional > largeOrderNotional:
		sizeMultiplier = largeOrderMultiplier
	case notional > mediumOrderNotional:
		sizeMultiplier = mediumOrderMultiplier
	}

	jitter := 0.5 + m.rng.Float64()

	return notional * m.slippagePct * typeMultiplier * sizeMultiplier * jitter
}
