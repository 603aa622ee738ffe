// Package trader runs the decision-driven trading loop as a long-lived
// process.
package trader

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"papertrader/src/costs"
	"papertrader/src/database"
	"papertrader/src/engine"
	"papertrader/src/executors"
	"papertrader/src/feed"
	"papertrader/src/pricing"
	"papertrader/src/repository"
)

type Trader struct {
}

func (t *Trader) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	config := engine.GetConfig()
	prices := repository.NewPriceRepository()

	oracleConfig := pricing.GetConfig()
	oracle, err := pricing.Select(oracleConfig, prices)
	if err != nil {
		logrus.WithError(err).Error("Failed to select price oracle")
		return err
	}

	// With the feed source the trader consumes ticks itself: fresh quotes
	// come from the in-process cache, anything stale or unseen falls back
	// to price_data.
	if oracleConfig.Source == pricing.SourceFeed {
		feedConfig := feed.GetConfig()
		if feedConfig.URL == "" {
			return errors.New("FEED_URL not set")
		}

		cache := pricing.NewCacheOracle(feedConfig.QuoteMaxAge)
		go func() {
			if err := feed.NewFeed(feedConfig, prices, cache).Run(ctx); err != nil {
				logrus.WithError(err).Error("Price feed stopped")
			}
		}()
		oracle = pricing.NewFallbackOracle(cache, oracle)
	}

	e := engine.New(
		repository.NewTradingStore(),
		oracle,
		costs.NewModel(config.CommissionPct, config.CommissionMin, config.SlippagePct, nil),
		logrus.WithField("component", "engine"),
	)
	if err := e.Bootstrap(ctx, config); err != nil {
		logrus.WithError(err).Error("Failed to bootstrap trading engine")
		return err
	}

	if err := executors.StartLoop(ctx, e, oracle); err != nil {
		logrus.WithError(err).Error("Failed to start trading loop")
		return err
	}

	return nil
}
