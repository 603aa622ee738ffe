// Package klines backfills the price_data table from Binance candles so the
// store-backed oracle has prices before the live feed catches up.
package klines

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrader/src/model"
	"papertrader/src/repository"
)

const (
	Duration1m = "1m"
	Duration1h = "1h"
)

type Klines struct {
	Log      *logger.Entry
	DB       *gorm.DB
	Config   *Config
	exchange goex.API
}

func (k *Klines) Start() error {
	k.Config = GetConfig()

	k.exchange = k.newBinanceInstance()

	if k.Config.AutoMode {
		if err := k.determineStartPoint(); err != nil {
			return err
		}
	}

	return k.fetchAndSave()
}

func (*Klines) newBinanceInstance() *binance.Binance {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return binance.NewWithConfig(apiConfig)
}

// symbol is the engine-facing pair name, e.g. BTC/USDT.
func (k *Klines) symbol() string {
	return k.Config.Symbol + "/" + k.Config.Quote
}

// fetchAndSave writes each candle close as a price tick. Replays are safe:
// the repository upserts on (symbol, time).
func (k *Klines) fetchAndSave() error {
	series, err := k.fetchKlineSeries()
	if err != nil {
		return err
	}

	prices := repository.NewPriceRepository().WithDB(k.DB)
	ctx := context.Background()

	for i := range series {
		candle := series[i]

		tick := &model.PriceTick{
			Symbol: k.symbol(),
			Price:  candle.Close,
			Volume: candle.Vol,
			Source: "binance",
			Time:   time.Unix(candle.Timestamp, 0).UTC(),
		}

		if err := prices.Upsert(ctx, tick); err != nil {
			k.Log.WithError(err).Error("fetchAndSave, Upsert, ")
			return err
		}

		k.Log.WithFields(logger.Fields{
			"Symbol":    tick.Symbol,
			"Price":     tick.Price,
			"Timestamp": tick.Time,
		}).Info("Price tick inserted or updated in database")
	}

	return nil
}

func (k *Klines) determineStartPoint() error {
	k.Config.StartDt = k.Config.StartDt.Add(-k.parseDuration())
	k.Config.EndDt = time.Now()

	var latestTime *sql.NullTime
	result := k.DB.Model(&model.PriceTick{}).
		Select("MAX(time)").
		Where("symbol = ?", k.symbol()).
		Take(&latestTime)

	k.Log.
		WithField("latestTime", latestTime).
		Info("determineStartPoint")

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			k.Log.
				WithError(result.Error).
				WithField("StartDt", k.Config.StartDt.String()).
				WithField("EndDt", k.Config.EndDt.String()).
				Error("no records found, start from the configured StartDt")
		} else {
			k.Log.
				WithError(result.Error).
				Error("Failed to query latest time")
			return result.Error
		}
	}

	if latestTime != nil && latestTime.Valid {
		// Resume one interval before the last recorded tick so the newest
		// candle gets refreshed.
		k.Config.StartDt = latestTime.Time.Add(-k.parseDuration())
		k.Log.
			WithField("StartDt", k.Config.StartDt.String()).
			WithField("EndDt", k.Config.EndDt.String()).
			Info("determineStartPoint valid date found")
	} else {
		err := errors.New("no existing MAX(time) found")
		k.Log.
			WithError(err).
			WithField("StartDt", k.Config.StartDt.String()).
			WithField("EndDt", k.Config.EndDt.String()).
			Error("determineStartPoint invalid date found")
	}

	return nil
}

func (k *Klines) fetchKlineSeries() ([]goex.Kline, error) {
	targetSymbol := goex.NewCurrencyPair(
		goex.Currency{Symbol: k.Config.Symbol},
		goex.Currency{Symbol: k.Config.Quote},
	)

	const millis = 1000
	klines, err := k.exchange.GetKlineRecords(
		targetSymbol,
		k.parseDurationToGoex(),
		k.Config.Limit,
		goex.OptionalParameter{}.
			Optional("startTime", k.Config.StartDt.Unix()*millis).
			Optional("endTime", k.Config.EndDt.Unix()*millis),
	)
	if err != nil {
		return nil, err
	}

	return klines, nil
}

func (k *Klines) parseDuration() time.Duration {
	var duration time.Duration
	switch k.Config.DurationStr {
	case Duration1m:
		duration = time.Minute
	case Duration1h:
		duration = time.Hour
	default:
		panic("invalid DURATION env var")
	}
	return duration
}

func (k *Klines) parseDurationToGoex() goex.KlinePeriod {
	var duration goex.KlinePeriod
	switch k.Config.DurationStr {
	case Duration1m:
		duration = goex.KLINE_PERIOD_1MIN
	case Duration1h:
		duration = goex.KLINE_PERIOD_1H
	default:
		panic("invalid DURATION env var")
	}
	return duration
}
