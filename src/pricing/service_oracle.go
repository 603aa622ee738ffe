package pricing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 250 * time.Millisecond
	defaultRetryMaxDelay  = 2 * time.Second
)

// Compile-time interface check.
var _ Oracle = (*ServiceOracle)(nil)

type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Time   string  `json:"time,omitempty"`
}

// ServiceOracle resolves prices from an HTTP quote service
// (GET {base}/quote?symbol=...). Transport errors and 5xx responses are
// retried with backoff; a 404 maps to ErrPriceUnavailable.
type ServiceOracle struct {
	http *resty.Client
}

func NewServiceOracle(baseURL string) *ServiceOracle {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(defaultRetryAttempts).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxDelay).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &ServiceOracle{http: client}
}

func (o *ServiceOracle) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	var quote quoteResponse

	resp, err := o.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&quote).
		Get("/quote")

	if err != nil {
		logger.WithField("symbol", symbol).WithError(err).Error("Quote service request failed")
		return 0, fmt.Errorf("quote service: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return 0, ErrPriceUnavailable
	}

	if resp.IsError() {
		return 0, fmt.Errorf("quote service: unexpected status %d", resp.StatusCode())
	}

	if quote.Price <= 0 {
		return 0, ErrPriceUnavailable
	}

	return quote.Price, nil
}
