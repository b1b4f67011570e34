package lendfi

import (
	"lendfi/pkg/number"

	"github.com/shopspring/decimal"
)

// perSecondRatePrecision keeps enough digits of the per-second rate that a
// one second delta still moves the compounded factor
const perSecondRatePrecision = 28

// CompoundFactor growth factor of per-second compounding over elapsed
// seconds, (1 + rate/secondsPerYear)^elapsed, approximated with the
// three-term binomial expansion the way Aave's MathUtils does it:
//
//	1 + n*r + n*(n-1)*r^2/2 + n*(n-1)*(n-2)*r^3/6
func CompoundFactor(annualRate decimal.Decimal, elapsedSeconds int64) decimal.Decimal {
	if elapsedSeconds <= 0 || !annualRate.IsPositive() {
		return one
	}

	rate := annualRate.DivRound(secondsPerYearDecimal, perSecondRatePrecision)
	n := decimal.NewFromInt(elapsedSeconds)

	nm1 := n.Sub(one)
	if nm1.IsNegative() {
		nm1 = decimal.Zero
	}
	nm2 := n.Sub(two)
	if nm2.IsNegative() {
		nm2 = decimal.Zero
	}

	rate2 := rate.Mul(rate)
	rate3 := rate2.Mul(rate)

	term1 := n.Mul(rate)
	term2 := n.Mul(nm1).Mul(rate2).DivRound(two, perSecondRatePrecision)
	term3 := n.Mul(nm1).Mul(nm2).Mul(rate3).DivRound(six, perSecondRatePrecision)

	return one.Add(term1).Add(term2).Add(term3)
}

// CompoundDebt principal grown by the borrow rate over elapsed seconds,
// rounded up at max precision so interest never rounds in the borrower's
// favor. Zero principal or zero elapsed time returns the principal unchanged.
func CompoundDebt(principal, annualRate decimal.Decimal, elapsedSeconds int64) decimal.Decimal {
	if !principal.IsPositive() || elapsedSeconds <= 0 {
		return principal
	}

	return number.Ceil(principal.Mul(CompoundFactor(annualRate, elapsedSeconds)), MaxPrecision)
}
