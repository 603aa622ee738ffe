package pricing

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Oracle sources selectable through ORACLE_SOURCE.
const (
	SourceStore   = "store"
	SourceService = "service"
	SourceFeed    = "feed"
)

type Config struct {
	Source          string `envconfig:"ORACLE_SOURCE" default:"store"`
	QuoteServiceURL string `envconfig:"QUOTE_SERVICE_URL"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
