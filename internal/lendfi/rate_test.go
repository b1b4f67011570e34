package lendfi

import (
	"testing"

	"lendfi/core"
	"lendfi/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRateParams() RateParams {
	return RateParams{
		BaseRate:       number.Decimal("0.02"),
		Multiplier:     number.Decimal("0.1"),
		JumpMultiplier: number.Decimal("0.6"),
		Kink:           number.Decimal("0.85"),
		TierPremiums: map[core.Tier]decimal.Decimal{
			core.TierStable:   number.Decimal("0"),
			core.TierCrossA:   number.Decimal("0.01"),
			core.TierCrossB:   number.Decimal("0.03"),
			core.TierIsolated: number.Decimal("0.06"),
		},
	}
}

func TestUtilizationRate(t *testing.T) {
	assert.True(t, UtilizationRate(number.Decimal("50"), number.Decimal("200")).Equal(number.Decimal("0.25")))
	assert.True(t, UtilizationRate(number.Decimal("50"), decimal.Zero).IsZero(), "no liquidity means zero utilization")
	assert.True(t, UtilizationRate(decimal.Zero, number.Decimal("200")).IsZero())
}

func TestUtilizationPremiumMonotonic(t *testing.T) {
	params := testRateParams()

	prev := decimal.NewFromInt(-1)
	for u := 0; u <= 100; u++ {
		utilization := decimal.NewFromInt(int64(u)).Div(decimal.NewFromInt(100))
		premium := UtilizationPremium(utilization, params.Multiplier, params.JumpMultiplier, params.Kink)
		require.True(t, premium.GreaterThan(prev), "premium must increase with utilization: u=%d", u)
		prev = premium
	}
}

func TestUtilizationPremiumKink(t *testing.T) {
	params := testRateParams()

	below := UtilizationPremium(number.Decimal("0.85"), params.Multiplier, params.JumpMultiplier, params.Kink)
	assert.True(t, below.Equal(number.Decimal("0.085")), "linear up to the kink")

	above := UtilizationPremium(number.Decimal("0.95"), params.Multiplier, params.JumpMultiplier, params.Kink)
	assert.True(t, above.Equal(number.Decimal("0.145")), "jump slope on the excess: 0.085 + 0.1*0.6")
}

func TestBorrowRateTierOrdering(t *testing.T) {
	params := testRateParams()

	for _, u := range []string{"0", "0.25", "0.5", "0.85", "0.99", "1"} {
		utilization := number.Decimal(u)

		stable := BorrowRate(core.TierStable, utilization, params)
		crossA := BorrowRate(core.TierCrossA, utilization, params)
		crossB := BorrowRate(core.TierCrossB, utilization, params)
		isolated := BorrowRate(core.TierIsolated, utilization, params)

		require.True(t, isolated.GreaterThan(crossB), "u=%s", u)
		require.True(t, crossB.GreaterThan(crossA), "u=%s", u)
		require.True(t, crossA.GreaterThan(stable), "u=%s", u)
	}
}

func TestGetExchangeRate(t *testing.T) {
	init := number.Decimal("1")
	assert.True(t, GetExchangeRate(decimal.Zero, decimal.Zero, decimal.Zero, init).Equal(init), "init rate before any shares")

	rate := GetExchangeRate(number.Decimal("80"), number.Decimal("30"), number.Decimal("100"), init)
	assert.True(t, rate.Equal(number.Decimal("1.1")))
}

func TestSupplyRate(t *testing.T) {
	rate := SupplyRate(number.Decimal("0.5"), number.Decimal("0.08"), number.Decimal("0.1"))
	assert.True(t, rate.Equal(number.Decimal("0.036")))
}
