package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/engine"
	"papertrader/src/model"
)

type orderExecutor interface {
	ExecuteOrder(ctx context.Context, req engine.OrderRequest) (*model.Order, error)
}

type orderCanceller interface {
	CancelOrder(ctx context.Context, id uint) error
}

// CreateOrderPayload is the POST /orders request body.
type CreateOrderPayload struct {
	Symbol     string   `json:"symbol"`
	AssetClass string   `json:"asset_class,omitempty"`
	OrderType  string   `json:"order_type"`
	Side       string   `json:"side"`
	Quantity   float64  `json:"quantity"`
	LimitPrice *float64 `json:"limit_price,omitempty"`
	ClientRef  string   `json:"client_ref,omitempty"`
}

// CreateOrderHandler places an order. Rejections driven by the caller's
// input come back as 4xx with the engine's reason; a price outage is 503.
func CreateOrderHandler(executor orderExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CreateOrderPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create order payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if payload.Symbol == "" || payload.Side == "" || payload.OrderType == "" {
			http.Error(w, "symbol, side and order_type are required", http.StatusBadRequest)
			return
		}

		order, err := executor.ExecuteOrder(r.Context(), engine.OrderRequest{
			Symbol:     payload.Symbol,
			AssetClass: payload.AssetClass,
			OrderType:  payload.OrderType,
			Side:       payload.Side,
			Quantity:   payload.Quantity,
			LimitPrice: payload.LimitPrice,
			ClientRef:  payload.ClientRef,
		})
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrInvalidQuantity),
				errors.Is(err, engine.ErrInvalidSide),
				errors.Is(err, engine.ErrInvalidOrderType),
				errors.Is(err, engine.ErrLimitPriceRequired):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, engine.ErrInsufficientCapital),
				errors.Is(err, engine.ErrNoOpenPosition):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			case errors.Is(err, engine.ErrPriceUnavailable):
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			default:
				logger.WithError(err).Error("failed to execute order")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(order); err != nil {
			logger.WithError(err).Error("failed to encode order response")
		}
	}
}

// CancelOrderHandler cancels a pending order by id.
func CancelOrderHandler(canceller orderCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "id")
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		if err := canceller.CancelOrder(r.Context(), uint(id)); err != nil {
			switch {
			case errors.Is(err, engine.ErrOrderNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, engine.ErrOrderNotPending):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				logger.WithError(err).Error("failed to cancel order")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
