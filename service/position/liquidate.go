package position

import (
	"context"
	"time"

	"lendfi/core"
	"lendfi/internal/lendfi"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// MaxHealthFactor reported for positions with no debt.
var MaxHealthFactor = decimal.NewFromInt(1000000)

// Liquidatable reports whether the position's debt with interest strictly
// exceeds its liquidation value. A position exactly at the boundary is safe.
func (s *Service) Liquidatable(ctx context.Context, userID string, positionID int64) (bool, error) {
	position, err := s.find(ctx, userID, positionID)
	if err != nil {
		return false, err
	}

	if !position.IsActive() {
		return false, nil
	}

	now := time.Now()

	debt, err := s.DebtWithInterest(ctx, position, now)
	if err != nil {
		return false, err
	}

	if !debt.IsPositive() {
		return false, nil
	}

	value, err := s.valuation.LiquidationValue(ctx, userID, positionID, now)
	if err != nil {
		return false, err
	}

	return debt.GreaterThan(value), nil
}

// HealthFactor is liquidation value over debt with interest. Values below
// one mean the position is liquidatable; debt-free positions report
// MaxHealthFactor.
func (s *Service) HealthFactor(ctx context.Context, userID string, positionID int64) (decimal.Decimal, error) {
	position, err := s.find(ctx, userID, positionID)
	if err != nil {
		return decimal.Zero, err
	}

	now := time.Now()

	debt, err := s.DebtWithInterest(ctx, position, now)
	if err != nil {
		return decimal.Zero, err
	}

	if !debt.IsPositive() {
		return MaxHealthFactor, nil
	}

	value, err := s.valuation.LiquidationValue(ctx, userID, positionID, now)
	if err != nil {
		return decimal.Zero, err
	}

	return value.Div(debt).Truncate(lendfi.MaxPrecision), nil
}

// Liquidate lets liquidatorID settle an underwater position: the full debt
// with interest is paid from the liquidator's wallet, every collateral
// balance is seized to the liquidator and the position is closed.
func (s *Service) Liquidate(ctx context.Context, liquidatorID, userID string, positionID int64) error {
	log := logger.FromContext(ctx).WithField("service", "position")

	if s.system.Paused(ctx) {
		return core.ErrPaused
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	position, err := s.findActive(ctx, userID, positionID)
	if err != nil {
		return err
	}

	now := time.Now()

	debt, err := s.DebtWithInterest(ctx, position, now)
	if err != nil {
		return err
	}

	if !debt.IsPositive() {
		return core.ErrSeizeNotAllowed
	}

	value, err := s.valuation.LiquidationValue(ctx, userID, positionID, now)
	if err != nil {
		return err
	}

	if !debt.GreaterThan(value) {
		return core.ErrSeizeNotAllowed
	}

	collaterals, err := s.positions.Collaterals(ctx, userID, positionID)
	if err != nil {
		return err
	}

	pool, err := s.pools.Find(ctx)
	if err != nil {
		return err
	}

	principal := position.DebtAmount
	interest := debt.Sub(principal)

	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.wallets.Transfer(ctx, tx, liquidatorID, s.sysinfo.CustodyUserID, s.sysinfo.BaseAssetID, debt, "liquidate"); err != nil {
			return err
		}

		pool.TotalBorrows = pool.TotalBorrows.Sub(principal)
		pool.TotalCash = pool.TotalCash.Add(debt)
		pool.TotalAccruedInterest = pool.TotalAccruedInterest.Add(interest)
		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		if err := s.releaseIsolationDebt(ctx, tx, position, principal); err != nil {
			return err
		}

		if err := s.returnCollaterals(ctx, tx, liquidatorID, collaterals); err != nil {
			return err
		}

		position.DebtAmount = decimal.Zero
		position.LastInterestAccrual = now
		position.Status = core.PositionStatusClosed
		position.AssetIDs = nil
		return s.positions.Update(ctx, tx, position)
	})
	if err != nil {
		return err
	}

	log.Infof("liquidated %s/%d, debt %s seized by %s", userID, positionID, debt, liquidatorID)
	return nil
}

func (s *Service) find(ctx context.Context, userID string, positionID int64) (*core.Position, error) {
	position, err := s.positions.Find(ctx, userID, positionID)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrInvalidPosition
		}
		return nil, err
	}

	return position, nil
}
