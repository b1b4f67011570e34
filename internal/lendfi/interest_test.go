package lendfi

import (
	"testing"

	"lendfi/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundDebtBoundaries(t *testing.T) {
	principal := number.Decimal("1000")
	rate := number.Decimal("0.05")

	assert.True(t, CompoundDebt(principal, rate, 0).Equal(principal), "zero elapsed returns the principal")
	assert.True(t, CompoundDebt(decimal.Zero, rate, 3600).IsZero(), "zero principal stays zero")
	assert.True(t, CompoundDebt(principal, decimal.Zero, 3600).Equal(principal), "zero rate accrues nothing")
}

func TestCompoundDebtMonotonic(t *testing.T) {
	principal := number.Decimal("1000")
	rate := number.Decimal("0.05")

	day := int64(86400)
	prev := principal
	for elapsed := day; elapsed <= 30*day; elapsed += day {
		debt := CompoundDebt(principal, rate, elapsed)
		require.True(t, debt.GreaterThan(prev), "debt must grow with elapsed time: %d", elapsed)
		prev = debt
	}
}

func TestCompoundDebtOneYear(t *testing.T) {
	principal := number.Decimal("1000")
	rate := number.Decimal("0.05")

	debt := CompoundDebt(principal, rate, SecondsPerYear)

	// per-second compounding sits between simple interest and the
	// continuous limit e^r
	assert.True(t, debt.GreaterThan(number.Decimal("1050")))
	assert.True(t, debt.LessThan(number.Decimal("1051.28")))
}

func TestCompoundFactorShortWindow(t *testing.T) {
	rate := number.Decimal("0.1")

	hour := CompoundFactor(rate, 3600)
	// 0.1/31536000*3600 = 0.0000114155...
	assert.True(t, hour.GreaterThan(number.Decimal("1.0000114")))
	assert.True(t, hour.LessThan(number.Decimal("1.0000115")))
}
