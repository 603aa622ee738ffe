// Package pricefeed runs the websocket tick consumer as a long-lived
// process, keeping price_data current for the other binaries.
package pricefeed

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"papertrader/src/database"
	"papertrader/src/feed"
	"papertrader/src/repository"
)

type PriceFeed struct {
}

func (p *PriceFeed) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	config := feed.GetConfig()
	if config.URL == "" {
		return errors.New("FEED_URL not set")
	}

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	// The standalone feed only persists ticks. The quote cache lives in the
	// process that reads it, the trader running with ORACLE_SOURCE=feed.
	f := feed.NewFeed(config, repository.NewPriceRepository(), nil)

	if err := f.Run(ctx); err != nil {
		logrus.WithError(err).Error("Feed stopped with error")
		return err
	}

	return nil
}
