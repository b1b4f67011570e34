package valuation

import (
	"context"
	"time"

	"lendfi/core"
	"lendfi/internal/lendfi"

	"github.com/fox-one/pkg/logger"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type valuationService struct {
	assets    core.IAssetStore
	positions core.IPositionStore
	oracle    core.IOracleService
}

// New new valuation service
func New(assets core.IAssetStore, positions core.IPositionStore, oracle core.IOracleService) core.IValuationService {
	return &valuationService{
		assets:    assets,
		positions: positions,
		oracle:    oracle,
	}
}

func (s *valuationService) CollateralValue(ctx context.Context, userID string, positionID int64, now time.Time) (decimal.Decimal, error) {
	collaterals, err := s.collaterals(ctx, userID, positionID)
	if err != nil {
		return decimal.Zero, err
	}

	return s.CollateralValueFor(ctx, collaterals, now)
}

func (s *valuationService) CreditLimit(ctx context.Context, userID string, positionID int64, now time.Time) (decimal.Decimal, error) {
	collaterals, err := s.collaterals(ctx, userID, positionID)
	if err != nil {
		return decimal.Zero, err
	}

	return s.CreditLimitFor(ctx, collaterals, now)
}

func (s *valuationService) LiquidationValue(ctx context.Context, userID string, positionID int64, now time.Time) (decimal.Decimal, error) {
	collaterals, err := s.collaterals(ctx, userID, positionID)
	if err != nil {
		return decimal.Zero, err
	}

	return s.LiquidationValueFor(ctx, collaterals, now)
}

func (s *valuationService) CollateralValueFor(ctx context.Context, collaterals []*core.PositionCollateral, now time.Time) (decimal.Decimal, error) {
	return s.sum(ctx, collaterals, now, func(asset *core.Asset) decimal.Decimal {
		return decimal.New(1, 0)
	})
}

func (s *valuationService) CreditLimitFor(ctx context.Context, collaterals []*core.PositionCollateral, now time.Time) (decimal.Decimal, error) {
	return s.sum(ctx, collaterals, now, func(asset *core.Asset) decimal.Decimal {
		return asset.BorrowFactor()
	})
}

func (s *valuationService) LiquidationValueFor(ctx context.Context, collaterals []*core.PositionCollateral, now time.Time) (decimal.Decimal, error) {
	return s.sum(ctx, collaterals, now, func(asset *core.Asset) decimal.Decimal {
		return asset.LiquidationFactor()
	})
}

// sum values every non-zero collateral balance at the validated oracle
// price, weighted by factor. Deactivated assets are still valued, only
// new deposits are blocked elsewhere.
func (s *valuationService) sum(ctx context.Context, collaterals []*core.PositionCollateral, now time.Time, factor func(*core.Asset) decimal.Decimal) (decimal.Decimal, error) {
	log := logger.FromContext(ctx)

	total := decimal.Zero
	for _, collateral := range collaterals {
		if !collateral.Amount.IsPositive() {
			continue
		}

		asset, err := s.assets.Find(ctx, collateral.AssetID)
		if err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return decimal.Zero, core.ErrAssetNotListed
			}

			log.WithError(err).Errorln("assets.Find", collateral.AssetID)
			return decimal.Zero, err
		}

		price, err := s.oracle.Price(ctx, asset, now)
		if err != nil {
			return decimal.Zero, err
		}

		value := collateral.Amount.Mul(price).Mul(factor(asset))
		total = total.Add(value)
	}

	return total.Truncate(lendfi.MaxPrecision), nil
}

func (s *valuationService) collaterals(ctx context.Context, userID string, positionID int64) ([]*core.PositionCollateral, error) {
	if _, err := s.positions.Find(ctx, userID, positionID); err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrInvalidPosition
		}

		return nil, err
	}

	return s.positions.Collaterals(ctx, userID, positionID)
}
