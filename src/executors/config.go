package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LoopPeriod          time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
	MinConfidence       float64       `envconfig:"MIN_CONFIDENCE" default:"0.6"`
	DecisionMaxAge      time.Duration `envconfig:"DECISION_MAX_AGE" default:"1h"`
	DecisionBatchSize   int           `envconfig:"DECISION_BATCH_SIZE" default:"10"`
	MaxPositionFraction float64       `envconfig:"MAX_POSITION_SIZE" default:"0.20"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
