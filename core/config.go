package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config lendfi config
type Config struct {
	App          App          `json:"app"`
	DB           db.Config    `json:"db"`
	Oracle       Oracle       `json:"oracle"`
	InterestRate InterestRate `json:"interest_rate"`
	Pool         PoolConfig   `json:"pool"`
	Admins       []string     `json:"admins"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	BaseAssetID    string `json:"base_asset_id"`
	ShareAssetID   string `json:"share_asset_id"`
	CustodyUserID  string `json:"custody_user_id"`
	TreasuryUserID string `json:"treasury_user_id"`
	Location       string `json:"location"`
}

// Oracle price feed config
type Oracle struct {
	EndPoint string `json:"end_point"`
}

// InterestRate rate model parameters, annualized decimals
type InterestRate struct {
	BaseRate        float64 `json:"base_rate"`
	Multiplier      float64 `json:"multiplier"`
	JumpMultiplier  float64 `json:"jump_multiplier"`
	Kink            float64 `json:"kink"`
	StablePremium   float64 `json:"stable_premium"`
	CrossAPremium   float64 `json:"cross_a_premium"`
	CrossBPremium   float64 `json:"cross_b_premium"`
	IsolatedPremium float64 `json:"isolated_premium"`
}

// PoolConfig liquidity pool parameters
type PoolConfig struct {
	// ReserveFactor share of realized profit minted to the treasury on exchange
	ReserveFactor float64 `json:"reserve_factor"`
	// BaseProfitTarget minimum profit ratio before the supply rate is quoted
	BaseProfitTarget float64 `json:"base_profit_target"`
	InitExchangeRate float64 `json:"init_exchange_rate"`
}
