package lendfi

import (
	"lendfi/core"

	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear accrual time base
	SecondsPerYear int64 = 31536000
	// MaxPrecision max precision
	MaxPrecision int32 = 16

	one = decimal.New(1, 0)
	two = decimal.NewFromInt(2)
	six = decimal.NewFromInt(6)

	secondsPerYearDecimal = decimal.NewFromInt(SecondsPerYear)
)

// RateParams interest rate model parameters, all rates annualized.
type RateParams struct {
	BaseRate       decimal.Decimal
	Multiplier     decimal.Decimal
	JumpMultiplier decimal.Decimal
	Kink           decimal.Decimal
	TierPremiums   map[core.Tier]decimal.Decimal
}

// UtilizationRate utilization rate
// utilization_rate = pool.total_borrows / pool.total_supplied
func UtilizationRate(borrows, supplied decimal.Decimal) decimal.Decimal {
	if supplied.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	return borrows.Div(supplied).Truncate(MaxPrecision)
}

// UtilizationPremium rate premium for the given utilization, linear in the
// multiplier below the kink, jump multiplier on the excess above it
func UtilizationPremium(utilization, multiplier, jumpMultiplier, kink decimal.Decimal) decimal.Decimal {
	if kink.Equal(decimal.Zero) || utilization.LessThanOrEqual(kink) {
		return utilization.Mul(multiplier).Truncate(MaxPrecision)
	}

	normal := kink.Mul(multiplier)
	excess := utilization.Sub(kink)
	return excess.Mul(jumpMultiplier).Add(normal).Truncate(MaxPrecision)
}

// BorrowRate annualized borrow rate for a position whose highest risk tier
// is tier: base + tier premium + utilization premium. Tier premiums are
// strictly increasing in tier, so the ordering
// STABLE < CROSS_A < CROSS_B < ISOLATED holds at every utilization.
func BorrowRate(tier core.Tier, utilization decimal.Decimal, params RateParams) decimal.Decimal {
	premium := params.TierPremiums[tier]
	return params.BaseRate.
		Add(premium).
		Add(UtilizationPremium(utilization, params.Multiplier, params.JumpMultiplier, params.Kink)).
		Truncate(MaxPrecision)
}

// GetExchangeRate pool share exchange rate
// exchange_rate = (pool.total_cash + pool.total_borrows) / pool.shares
func GetExchangeRate(totalCash, totalBorrows, shares, initExchangeRate decimal.Decimal) decimal.Decimal {
	if shares.Equal(decimal.Zero) {
		return initExchangeRate
	}

	return totalCash.Add(totalBorrows).Div(shares).Truncate(MaxPrecision)
}

// SupplyRate LP facing annualized rate
func SupplyRate(utilization, borrowRate, reserveFactor decimal.Decimal) decimal.Decimal {
	oneMinusReserveFactor := one.Sub(reserveFactor)
	rateToPool := borrowRate.Mul(oneMinusReserveFactor)
	return utilization.Mul(rateToPool).Truncate(MaxPrecision)
}
