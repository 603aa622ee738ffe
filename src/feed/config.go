package feed

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	URL          string        `envconfig:"FEED_URL"`
	Symbols      []string      `envconfig:"FEED_SYMBOLS" default:"BTC/USDT"`
	ReconnectMin time.Duration `envconfig:"FEED_RECONNECT_MIN" default:"1s"`
	ReconnectMax time.Duration `envconfig:"FEED_RECONNECT_MAX" default:"1m"`
	QuoteMaxAge  time.Duration `envconfig:"FEED_QUOTE_MAX_AGE" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
