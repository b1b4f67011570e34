package config

import (
	"lendfi/core"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LENDFI")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaults(config)
	return nil
}

func defaults(cfg *core.Config) {
	rate := &cfg.InterestRate
	if rate.BaseRate <= 0 {
		rate.BaseRate = 0.02
	}
	if rate.Multiplier <= 0 {
		rate.Multiplier = 0.1
	}
	if rate.JumpMultiplier <= 0 {
		rate.JumpMultiplier = 0.6
	}
	if rate.Kink <= 0 {
		rate.Kink = 0.85
	}
	if rate.CrossAPremium <= 0 {
		rate.CrossAPremium = 0.01
	}
	if rate.CrossBPremium <= 0 {
		rate.CrossBPremium = 0.03
	}
	if rate.IsolatedPremium <= 0 {
		rate.IsolatedPremium = 0.08
	}

	pool := &cfg.Pool
	if pool.ReserveFactor <= 0 {
		pool.ReserveFactor = 0.1
	}
	if pool.InitExchangeRate <= 0 {
		pool.InitExchangeRate = 1
	}
}
