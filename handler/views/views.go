package views

import (
	"lendfi/core"

	"github.com/shopspring/decimal"
)

// Asset asset view with the latest validated price
type Asset struct {
	core.Asset
	TierName string          `json:"tier_name"`
	Price    decimal.Decimal `json:"price"`
}

// Position position view with derived debt and risk numbers
type Position struct {
	core.Position
	Collaterals      []*core.PositionCollateral `json:"collaterals"`
	DebtWithInterest decimal.Decimal            `json:"debt_with_interest"`
	CollateralValue  decimal.Decimal            `json:"collateral_value"`
	CreditLimit      decimal.Decimal            `json:"credit_limit"`
	LiquidationValue decimal.Decimal            `json:"liquidation_value"`
	HealthFactor     decimal.Decimal            `json:"health_factor"`
	BorrowAPY        decimal.Decimal            `json:"borrow_apy"`
}

// Pool pool view with derived rates
type Pool struct {
	core.Pool
	ExchangeRate    decimal.Decimal            `json:"exchange_rate"`
	UtilizationRate decimal.Decimal            `json:"utilization_rate"`
	SupplyAPY       decimal.Decimal            `json:"supply_apy"`
	BorrowAPY       map[string]decimal.Decimal `json:"borrow_apy"`
}
