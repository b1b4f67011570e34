package position

import (
	"context"
	"time"

	"lendfi/core"
	"lendfi/internal/lendfi"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Borrow draws amount of the base asset from the pool against the position's
// collateral. Interest accrued since the last debt operation is capitalized
// into the stored principal first, then the new total is checked against the
// credit limit, pool cash and, for isolated positions, the asset's debt cap.
func (s *Service) Borrow(ctx context.Context, userID string, positionID int64, amount decimal.Decimal) error {
	if s.system.Paused(ctx) {
		return core.ErrPaused
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
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
	interest := debt.Sub(position.DebtAmount)

	pool, err := s.pools.Find(ctx)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return core.NewLimitError(core.ErrInsufficientLiquidity, amount, decimal.Zero)
		}
		return err
	}

	if amount.GreaterThan(pool.TotalCash) {
		return core.NewLimitError(core.ErrInsufficientLiquidity, amount, pool.TotalCash)
	}

	newDebt := debt.Add(amount)

	if position.Isolated {
		collaterals, err := s.positions.Collaterals(ctx, userID, positionID)
		if err != nil {
			return err
		}

		supplied := false
		for _, c := range collaterals {
			if c.Amount.IsPositive() {
				supplied = true
				break
			}
		}

		if !supplied {
			return core.ErrNoIsolatedCollateral
		}
	}

	limit, err := s.valuation.CreditLimit(ctx, userID, positionID, now)
	if err != nil {
		return err
	}

	if newDebt.GreaterThan(limit) {
		return core.NewLimitError(core.ErrExceedsCreditLimit, newDebt, limit)
	}

	var isolatedAsset *core.Asset
	if position.Isolated {
		if isolatedAsset, err = s.findAsset(ctx, position.AssetIDs[0]); err != nil {
			return err
		}

		if isolatedAsset.IsolationDebtCap.IsPositive() {
			total := isolatedAsset.TotalIsolationDebt.Add(amount)
			if total.GreaterThan(isolatedAsset.IsolationDebtCap) {
				return core.NewLimitError(core.ErrIsolationDebtCapExceeded, total, isolatedAsset.IsolationDebtCap)
			}
		}
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.wallets.Transfer(ctx, tx, s.sysinfo.CustodyUserID, userID, s.sysinfo.BaseAssetID, amount, "borrow"); err != nil {
			return err
		}

		pool.TotalBorrows = pool.TotalBorrows.Add(interest).Add(amount)
		pool.TotalCash = pool.TotalCash.Sub(amount)
		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		if isolatedAsset != nil {
			isolatedAsset.TotalIsolationDebt = isolatedAsset.TotalIsolationDebt.Add(amount)
			if err := s.assets.Update(ctx, tx, isolatedAsset); err != nil {
				return err
			}
		}

		position.DebtAmount = newDebt
		position.LastInterestAccrual = now
		return s.positions.Update(ctx, tx, position)
	})
}

// Repay pays amount of the base asset toward the position's debt, capped at
// the full debt with interest. Interest is settled before principal, so a
// partial payment first lands in the pool's accrued interest tally and only
// the remainder unwinds principal.
func (s *Service) Repay(ctx context.Context, userID string, positionID int64, amount decimal.Decimal) error {
	if s.system.Paused(ctx) {
		return core.ErrPaused
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
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
		return core.ErrInvalidAmount
	}

	interest := debt.Sub(position.DebtAmount)

	repayAmount := decimal.Min(amount, debt)
	interestPaid := decimal.Min(repayAmount, interest)
	principalPaid := repayAmount.Sub(interestPaid)

	pool, err := s.pools.Find(ctx)
	if err != nil {
		return err
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.wallets.Transfer(ctx, tx, userID, s.sysinfo.CustodyUserID, s.sysinfo.BaseAssetID, repayAmount, "repay"); err != nil {
			return err
		}

		pool.TotalBorrows = pool.TotalBorrows.Add(interest).Sub(repayAmount)
		pool.TotalCash = pool.TotalCash.Add(repayAmount)
		pool.TotalAccruedInterest = pool.TotalAccruedInterest.Add(interestPaid)
		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		if err := s.releaseIsolationDebt(ctx, tx, position, principalPaid); err != nil {
			return err
		}

		position.DebtAmount = debt.Sub(repayAmount)
		position.LastInterestAccrual = now
		return s.positions.Update(ctx, tx, position)
	})
}

// DebtWithInterest is the position's stored principal compounded per second
// at its current borrow rate up to now. The stored principal is stale between
// debt operations; every debt read goes through here.
func (s *Service) DebtWithInterest(ctx context.Context, position *core.Position, now time.Time) (decimal.Decimal, error) {
	if !position.DebtAmount.IsPositive() {
		return position.DebtAmount, nil
	}

	tier, err := s.HighestTier(ctx, position)
	if err != nil {
		return decimal.Zero, err
	}

	rate, err := s.BorrowRate(ctx, tier)
	if err != nil {
		return decimal.Zero, err
	}

	elapsed := int64(now.Sub(position.LastInterestAccrual).Seconds())
	return lendfi.CompoundDebt(position.DebtAmount, rate, elapsed), nil
}

// HighestTier is the riskiest tier across the position's collateral assets.
// A position with no collateral reads as stable, its credit limit is zero
// anyway.
func (s *Service) HighestTier(ctx context.Context, position *core.Position) (core.Tier, error) {
	tier := core.TierStable
	for _, assetID := range position.AssetIDs {
		asset, err := s.findAsset(ctx, assetID)
		if err != nil {
			return tier, err
		}

		if asset.Tier > tier {
			tier = asset.Tier
		}
	}

	return tier, nil
}

// BorrowRate is the annualized borrow rate quoted for a position whose
// highest collateral tier is tier, at the pool's current utilization.
func (s *Service) BorrowRate(ctx context.Context, tier core.Tier) (decimal.Decimal, error) {
	utilization := decimal.Zero

	pool, err := s.pools.Find(ctx)
	if err == nil {
		utilization = lendfi.UtilizationRate(pool.TotalBorrows, pool.TotalSupplied)
	} else if !gorm.IsRecordNotFoundError(err) {
		return decimal.Zero, err
	}

	return lendfi.BorrowRate(tier, utilization, s.params), nil
}
