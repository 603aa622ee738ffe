package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"papertrader/cmd/klines"
	"papertrader/cmd/pricefeed"
	"papertrader/cmd/trader"
	"papertrader/src/database"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Papertrader CMD"
	app.Usage = "The papertrader command line interface"

	app.Commands = []cli.Command{
		traderCMD,
		pricefeedCMD,
		klinesCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	traderCMD = cli.Command{
		Name:        "trader",
		Usage:       "run the trading loop",
		Action:      traderAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the decision-driven trading loop`,
	}
	pricefeedCMD = cli.Command{
		Name:        "pricefeed",
		Usage:       "run the websocket price feed",
		Action:      pricefeedAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Stream live ticks into price_data`,
	}
	klinesCMD = cli.Command{
		Name:        "klines",
		Usage:       "backfill candles",
		Action:      klinesAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Backfill price_data from Binance candles`,
	}
)

func traderAction(_ *cli.Context) error {

	log := logrus.WithField("cmd", "trader")
	log.Info("Starting trader CMD")

	t := &trader.Trader{}
	err := t.Start()
	if err != nil {
		log.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func pricefeedAction(_ *cli.Context) error {

	log := logrus.WithField("cmd", "pricefeed")
	log.Info("Starting pricefeed CMD")

	f := &pricefeed.PriceFeed{}
	err := f.Start()
	if err != nil {
		log.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func klinesAction(_ *cli.Context) error {

	logrus.Info("Starting klines CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	k := &klines.Klines{
		Log: logrus.WithField("cmd", "klines"),
		DB:  database.MainDB,
	}

	err := k.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting klines cmd")
		return err
	}

	return nil
}
