package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/costs"
	"papertrader/src/database"
	"papertrader/src/engine"
	"papertrader/src/pricing"
	"papertrader/src/repository"
	"papertrader/src/server"
)

var (
	PORT     = os.Getenv("SERVER_PORT")
	APP_NAME = os.Getenv("APP_NAME")
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	oracle, err := pricing.Select(pricing.GetConfig(), repository.NewPriceRepository())
	if err != nil {
		logger.WithError(err).Fatal("Failed to select price oracle")
	}

	config := engine.GetConfig()
	e := engine.New(
		repository.NewTradingStore(),
		oracle,
		costs.NewModel(config.CommissionPct, config.CommissionMin, config.SlippagePct, nil),
		logger.WithField("component", "engine"),
	)
	if err := e.Bootstrap(context.Background(), config); err != nil {
		logger.WithError(err).Fatal("Failed to bootstrap trading engine")
	}

	port := PORT
	if port == "" {
		port = server.GetConfig().Port
	}

	server.StartServer(port, e)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
