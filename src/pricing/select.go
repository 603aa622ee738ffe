package pricing

import (
	"errors"
	"fmt"

	"papertrader/src/repository"
)

// Select returns the oracle named by config. SourceFeed resolves to the
// store oracle: price_data is the durable view the feed keeps current, and
// processes that run the feed in-process layer its cache on top with
// NewFallbackOracle.
func Select(config Config, prices *repository.PriceRepository) (Oracle, error) {
	switch config.Source {
	case "", SourceStore, SourceFeed:
		return NewStoreOracle(prices), nil
	case SourceService:
		if config.QuoteServiceURL == "" {
			return nil, errors.New("QUOTE_SERVICE_URL not set")
		}
		return NewServiceOracle(config.QuoteServiceURL), nil
	default:
		return nil, fmt.Errorf("unknown oracle source %q", config.Source)
	}
}
