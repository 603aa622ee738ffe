// Package risk sizes orders from trading decisions. All arithmetic is done
// in decimals so the scaling factors compose without float drift.
package risk

import (
	"github.com/shopspring/decimal"
)

// SizingConfig holds the scaling knobs applied to the portfolio value when
// converting a decision into an order quantity.
type SizingConfig struct {
	// MaxPositionFraction caps a single position at this fraction of the
	// portfolio value.
	MaxPositionFraction decimal.Decimal

	// FullConfidence is the confidence at which the decision earns the full
	// position size. Below it, size scales down linearly.
	FullConfidence decimal.Decimal

	// RiskDiscount is the fraction of the size removed at the maximum risk
	// score of 1.0.
	RiskDiscount decimal.Decimal
}

// DefaultSizingConfig mirrors the engine defaults: 20% cap, full size at
// confidence 0.8, half size at maximum risk.
func DefaultSizingConfig() SizingConfig {
	return SizingConfig{
		MaxPositionFraction: decimal.NewFromFloat(0.20),
		FullConfidence:      decimal.NewFromFloat(0.8),
		RiskDiscount:        decimal.NewFromFloat(0.5),
	}
}

var one = decimal.NewFromInt(1)

// QuantityForDecision converts a decision into an order quantity:
//
//	notional = portfolioValue * maxFraction * confidenceScale * riskScale
//	quantity = notional / price
//
// where confidenceScale = min(confidence/fullConfidence, 1) and
// riskScale = 1 - riskScore*riskDiscount. Confidence and risk score are
// clamped to [0, 1]. Returns zero when the portfolio value or price is not
// positive.
func QuantityForDecision(
	portfolioValue decimal.Decimal,
	price decimal.Decimal,
	confidence decimal.Decimal,
	riskScore decimal.Decimal,
	cfg SizingConfig,
) decimal.Decimal {
	if portfolioValue.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	confidence = clamp01(confidence)
	riskScore = clamp01(riskScore)

	confidenceScale := one
	if cfg.FullConfidence.GreaterThan(decimal.Zero) {
		confidenceScale = confidence.Div(cfg.FullConfidence)
		if confidenceScale.GreaterThan(one) {
			confidenceScale = one
		}
	}

	riskScale := one.Sub(riskScore.Mul(cfg.RiskDiscount))

	notional := portfolioValue.
		Mul(cfg.MaxPositionFraction).
		Mul(confidenceScale).
		Mul(riskScale)

	return notional.Div(price)
}

func clamp01(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if d.GreaterThan(one) {
		return one
	}
	return d
}
