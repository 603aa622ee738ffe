package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/model"
)

type decisionCreator interface {
	Create(ctx context.Context, decision *model.TradingDecision) error
}

// CreateDecisionPayload is the POST /decisions request body used by signal
// producers.
type CreateDecisionPayload struct {
	Symbol     string   `json:"symbol"`
	AssetClass string   `json:"asset_class,omitempty"`
	Action     string   `json:"action"`
	Confidence float64  `json:"confidence"`
	RiskScore  float64  `json:"risk_score"`
	Price      *float64 `json:"price,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
}

// CreateDecisionHandler ingests a trading decision for the executor loop to
// pick up on its next cycle.
func CreateDecisionHandler(creator decisionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CreateDecisionPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create decision payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		payload.Action = strings.ToUpper(strings.TrimSpace(payload.Action))
		if payload.Symbol == "" {
			http.Error(w, "symbol is required", http.StatusBadRequest)
			return
		}
		switch payload.Action {
		case model.DecisionActionBuy, model.DecisionActionSell, model.DecisionActionHold:
		default:
			http.Error(w, "action must be BUY, SELL or HOLD", http.StatusBadRequest)
			return
		}
		if payload.Confidence < 0 || payload.Confidence > 1 {
			http.Error(w, "confidence must be within [0, 1]", http.StatusBadRequest)
			return
		}

		decision := &model.TradingDecision{
			Symbol:     payload.Symbol,
			AssetClass: payload.AssetClass,
			Action:     payload.Action,
			Confidence: payload.Confidence,
			RiskScore:  payload.RiskScore,
			Price:      payload.Price,
			Reasoning:  payload.Reasoning,
		}
		if decision.AssetClass == "" {
			decision.AssetClass = "crypto"
		}

		if err := creator.Create(r.Context(), decision); err != nil {
			logger.WithError(err).Error("failed to create decision")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(decision); err != nil {
			logger.WithError(err).Error("failed to encode decision response")
		}
	}
}
