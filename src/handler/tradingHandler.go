package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/model"
)

type portfolioViewer interface {
	PortfolioValue(ctx context.Context) (*model.PortfolioSnapshot, error)
}

type positionLister interface {
	OpenPositions(ctx context.Context) ([]model.Position, error)
}

type tradeLister interface {
	RecentTrades(ctx context.Context, limit int) ([]model.Trade, error)
}

// PortfolioHandler returns the current portfolio valuation.
func PortfolioHandler(viewer portfolioViewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := viewer.PortfolioValue(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to value portfolio")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, snap)
	}
}

// PositionsHandler lists every open position.
func PositionsHandler(lister positionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := lister.OpenPositions(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list positions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if positions == nil {
			positions = []model.Position{}
		}

		writeJSON(w, positions)
	}
}

// TradesHandler lists recent closed trades, newest first. Supports ?limit=.
func TradesHandler(lister tradeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		trades, err := lister.RecentTrades(r.Context(), limit)
		if err != nil {
			logger.WithError(err).Error("failed to list trades")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if trades == nil {
			trades = []model.Trade{}
		}

		writeJSON(w, trades)
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}
