package engine

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	InitialCapital  float64 `envconfig:"INITIAL_CAPITAL" default:"10000"`
	CommissionPct   float64 `envconfig:"COMMISSION_PCT" default:"0.001"`
	CommissionMin   float64 `envconfig:"COMMISSION_MIN" default:"1.0"`
	SlippagePct     float64 `envconfig:"SLIPPAGE_PCT" default:"0.0005"`
	MaxPositionSize float64 `envconfig:"MAX_POSITION_SIZE" default:"0.20"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
