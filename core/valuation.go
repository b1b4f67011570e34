package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// IValuationService prices a position's collateral and derives its credit
// and liquidation limits. The *For variants value an explicit collateral
// set so callers can price tentative states before committing them.
type IValuationService interface {
	CollateralValue(ctx context.Context, userID string, positionID int64, now time.Time) (decimal.Decimal, error)
	CreditLimit(ctx context.Context, userID string, positionID int64, now time.Time) (decimal.Decimal, error)
	LiquidationValue(ctx context.Context, userID string, positionID int64, now time.Time) (decimal.Decimal, error)
	CollateralValueFor(ctx context.Context, collaterals []*PositionCollateral, now time.Time) (decimal.Decimal, error)
	CreditLimitFor(ctx context.Context, collaterals []*PositionCollateral, now time.Time) (decimal.Decimal, error)
	LiquidationValueFor(ctx context.Context, collaterals []*PositionCollateral, now time.Time) (decimal.Decimal, error)
}
