package risk

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuantityForDecision(t *testing.T) {
	cfg := DefaultSizingConfig()

	tests := []struct {
		name       string
		portfolio  string
		price      string
		confidence string
		riskScore  string
		want       string
	}{
		{
			name:       "full confidence, zero risk, full cap",
			portfolio:  "10000",
			price:      "100",
			confidence: "0.8",
			riskScore:  "0",
			want:       "20", // 10000 * 0.20 / 100
		},
		{
			name:       "confidence above threshold does not add size",
			portfolio:  "10000",
			price:      "100",
			confidence: "0.95",
			riskScore:  "0",
			want:       "20",
		},
		{
			name:       "half confidence halves the size",
			portfolio:  "10000",
			price:      "100",
			confidence: "0.4",
			riskScore:  "0",
			want:       "10",
		},
		{
			name:       "maximum risk halves the size",
			portfolio:  "10000",
			price:      "100",
			confidence: "0.8",
			riskScore:  "1",
			want:       "10",
		},
		{
			name:       "confidence and risk compose",
			portfolio:  "10000",
			price:      "100",
			confidence: "0.4",
			riskScore:  "1",
			want:       "5",
		},
		{
			name:       "risk score clamped to one",
			portfolio:  "10000",
			price:      "100",
			confidence: "0.8",
			riskScore:  "3",
			want:       "10",
		},
		{
			name:       "zero portfolio yields zero",
			portfolio:  "0",
			price:      "100",
			confidence: "0.8",
			riskScore:  "0",
			want:       "0",
		},
		{
			name:       "zero price yields zero",
			portfolio:  "10000",
			price:      "0",
			confidence: "0.8",
			riskScore:  "0",
			want:       "0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := QuantityForDecision(
				decimal.RequireFromString(tc.portfolio),
				decimal.RequireFromString(tc.price),
				decimal.RequireFromString(tc.confidence),
				decimal.RequireFromString(tc.riskScore),
				cfg,
			)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("quantity mismatch. got=%s want=%s", got.String(), tc.want)
			}
		})
	}
}

func TestQuantityForDecisionZeroThreshold(t *testing.T) {
	cfg := DefaultSizingConfig()
	cfg.FullConfidence = decimal.Zero

	got := QuantityForDecision(
		decimal.NewFromInt(10000),
		decimal.NewFromInt(100),
		decimal.NewFromFloat(0.5),
		decimal.Zero,
		cfg,
	)
	if !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("zero threshold must mean full confidence scale, got %s", got)
	}
}
