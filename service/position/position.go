package position

import (
	"context"
	"sync"
	"time"

	"lendfi/core"
	"lendfi/internal/lendfi"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Service implements position lifecycle and debt operations. Storage
// transactions make each operation all-or-nothing; the mutex serializes
// mutations so check-then-write sequences observe a consistent ledger.
type Service struct {
	db        core.Database
	system    core.ISystemService
	assets    core.IAssetStore
	positions core.IPositionStore
	pools     core.IPoolStore
	wallets   core.IWalletService
	valuation core.IValuationService
	params    lendfi.RateParams
	sysinfo   *core.System

	mux sync.Mutex
}

// New new position service
func New(
	database core.Database,
	system core.ISystemService,
	assets core.IAssetStore,
	positions core.IPositionStore,
	pools core.IPoolStore,
	wallets core.IWalletService,
	valuation core.IValuationService,
	params lendfi.RateParams,
	sysinfo *core.System,
) *Service {
	return &Service{
		db:        database,
		system:    system,
		assets:    assets,
		positions: positions,
		pools:     pools,
		wallets:   wallets,
		valuation: valuation,
		params:    params,
		sysinfo:   sysinfo,
	}
}

// Open creates a new active position for userID collateralized by assetID.
// Isolated-tier assets require isolated positions and the other way round.
// Isolated positions are bound to the named asset for life; cross positions
// track whichever assets are actually supplied.
func (s *Service) Open(ctx context.Context, userID, assetID string, isolated bool) (*core.Position, error) {
	log := logger.FromContext(ctx).WithField("service", "position")

	if s.system.Paused(ctx) {
		return nil, core.ErrPaused
	}

	asset, err := s.findListed(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if asset.IsIsolated() && !isolated {
		return nil, core.ErrIsolationModeRequired
	}

	if isolated && !asset.IsIsolated() {
		return nil, core.ErrInvalidAssetForIsolation
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	count, err := s.positions.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	position := &core.Position{
		UserID:              userID,
		PositionID:          count + 1,
		Isolated:            isolated,
		Status:              core.PositionStatusActive,
		DebtAmount:          decimal.Zero,
		LastInterestAccrual: time.Now(),
	}

	// only the isolation binding is fixed at open; cross positions pick up
	// assets as collateral is supplied, so unsupplied assets never weigh on
	// the borrow rate tier
	if isolated {
		position.AssetIDs = pq.StringArray{assetID}
	}

	if err := s.db.Tx(func(tx *db.DB) error {
		return s.positions.Create(ctx, tx, position)
	}); err != nil {
		log.WithError(err).Errorln("positions.Create")
		return nil, err
	}

	return position, nil
}

// Supply moves amount of assetID from the owner's wallet into the position's
// collateral. Deposits count toward the asset's supply cap.
func (s *Service) Supply(ctx context.Context, userID string, positionID int64, assetID string, amount decimal.Decimal) error {
	if s.system.Paused(ctx) {
		return core.ErrPaused
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	asset, err := s.findListed(ctx, assetID)
	if err != nil {
		return err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	position, err := s.findActive(ctx, userID, positionID)
	if err != nil {
		return err
	}

	if position.Isolated {
		if !position.HasAsset(assetID) {
			return core.ErrInvalidAssetForIsolation
		}
	} else if asset.IsIsolated() {
		return core.ErrIsolationModeRequired
	}

	if asset.MaxSupplyThreshold.IsPositive() {
		total := asset.TotalDeposited.Add(amount)
		if total.GreaterThan(asset.MaxSupplyThreshold) {
			return core.NewLimitError(core.ErrSupplyCapExceeded, total, asset.MaxSupplyThreshold)
		}
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.wallets.Transfer(ctx, tx, userID, s.sysinfo.CustodyUserID, assetID, amount, "supply"); err != nil {
			return err
		}

		collateral, notFound, err := s.positions.FindCollateral(ctx, userID, positionID, assetID)
		if err != nil && !notFound {
			return err
		}

		if notFound {
			collateral = &core.PositionCollateral{
				UserID:     userID,
				PositionID: positionID,
				AssetID:    assetID,
				Amount:     amount,
			}
			if err := s.positions.SaveCollateral(ctx, tx, collateral); err != nil {
				return err
			}
		} else {
			collateral.Amount = collateral.Amount.Add(amount)
			if err := s.positions.UpdateCollateral(ctx, tx, collateral); err != nil {
				return err
			}
		}

		asset.TotalDeposited = asset.TotalDeposited.Add(amount)
		if err := s.assets.Update(ctx, tx, asset); err != nil {
			return err
		}

		if !position.HasAsset(assetID) {
			position.AddAsset(assetID)
			if err := s.positions.Update(ctx, tx, position); err != nil {
				return err
			}
		}

		return nil
	})
}

// Withdraw returns amount of assetID to the owner's wallet. When the
// position carries debt the remaining collateral must still cover it at
// the borrow threshold; interest is computed for the check but the stored
// principal is untouched since the debt itself does not change.
func (s *Service) Withdraw(ctx context.Context, userID string, positionID int64, assetID string, amount decimal.Decimal) error {
	if s.system.Paused(ctx) {
		return core.ErrPaused
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	asset, err := s.findAsset(ctx, assetID)
	if err != nil {
		return err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	position, err := s.findActive(ctx, userID, positionID)
	if err != nil {
		return err
	}

	collateral, notFound, err := s.positions.FindCollateral(ctx, userID, positionID, assetID)
	if err != nil && !notFound {
		return err
	}

	if notFound || collateral.Amount.LessThan(amount) {
		return core.ErrInsufficientCollateralBalance
	}

	now := time.Now()

	if position.DebtAmount.IsPositive() {
		debt, err := s.DebtWithInterest(ctx, position, now)
		if err != nil {
			return err
		}

		collaterals, err := s.positions.Collaterals(ctx, userID, positionID)
		if err != nil {
			return err
		}

		limit, err := s.valuation.CreditLimitFor(ctx, remaining(collaterals, assetID, amount), now)
		if err != nil {
			return err
		}

		if debt.GreaterThan(limit) {
			return core.NewLimitError(core.ErrWithdrawalExceedsCreditLimit, debt, limit)
		}
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.wallets.Transfer(ctx, tx, s.sysinfo.CustodyUserID, userID, assetID, amount, "withdraw"); err != nil {
			return err
		}

		collateral.Amount = collateral.Amount.Sub(amount)
		if collateral.Amount.IsPositive() {
			if err := s.positions.UpdateCollateral(ctx, tx, collateral); err != nil {
				return err
			}
		} else {
			if err := s.positions.DeleteCollateral(ctx, tx, collateral); err != nil {
				return err
			}

			// isolated positions keep their asset binding even at zero balance
			if !position.Isolated {
				position.RemoveAsset(assetID)
				if err := s.positions.Update(ctx, tx, position); err != nil {
					return err
				}
			}
		}

		asset.TotalDeposited = asset.TotalDeposited.Sub(amount)
		return s.assets.Update(ctx, tx, asset)
	})
}

// Exit repays the full debt with interest from the owner's wallet, returns
// every collateral balance and closes the position for good.
func (s *Service) Exit(ctx context.Context, userID string, positionID int64) error {
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

	collaterals, err := s.positions.Collaterals(ctx, userID, positionID)
	if err != nil {
		return err
	}

	var pool *core.Pool
	if debt.IsPositive() {
		if pool, err = s.pools.Find(ctx); err != nil {
			return err
		}
	}

	principal := position.DebtAmount
	interest := debt.Sub(principal)

	return s.db.Tx(func(tx *db.DB) error {
		if debt.IsPositive() {
			if err := s.wallets.Transfer(ctx, tx, userID, s.sysinfo.CustodyUserID, s.sysinfo.BaseAssetID, debt, "repay"); err != nil {
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
		}

		if err := s.returnCollaterals(ctx, tx, userID, collaterals); err != nil {
			return err
		}

		position.DebtAmount = decimal.Zero
		position.LastInterestAccrual = now
		position.Status = core.PositionStatusClosed
		position.AssetIDs = nil
		return s.positions.Update(ctx, tx, position)
	})
}

// returnCollaterals hands every balance back to userID and drops the rows.
func (s *Service) returnCollaterals(ctx context.Context, tx *db.DB, userID string, collaterals []*core.PositionCollateral) error {
	for _, c := range collaterals {
		if !c.Amount.IsPositive() {
			continue
		}

		if err := s.wallets.Transfer(ctx, tx, s.sysinfo.CustodyUserID, userID, c.AssetID, c.Amount, "withdraw"); err != nil {
			return err
		}

		if err := s.positions.DeleteCollateral(ctx, tx, c); err != nil {
			return err
		}

		asset, err := s.findAsset(ctx, c.AssetID)
		if err != nil {
			return err
		}

		asset.TotalDeposited = asset.TotalDeposited.Sub(c.Amount)
		if err := s.assets.Update(ctx, tx, asset); err != nil {
			return err
		}
	}

	return nil
}

// releaseIsolationDebt unwinds repaid principal from the isolated asset's
// system-wide debt tally, clamped at zero.
func (s *Service) releaseIsolationDebt(ctx context.Context, tx *db.DB, position *core.Position, principal decimal.Decimal) error {
	if !position.Isolated || !principal.IsPositive() || len(position.AssetIDs) == 0 {
		return nil
	}

	asset, err := s.findAsset(ctx, position.AssetIDs[0])
	if err != nil {
		return err
	}

	asset.TotalIsolationDebt = asset.TotalIsolationDebt.Sub(principal)
	if asset.TotalIsolationDebt.IsNegative() {
		asset.TotalIsolationDebt = decimal.Zero
	}

	return s.assets.Update(ctx, tx, asset)
}

// remaining is collaterals with amount subtracted from assetID's balance.
func remaining(collaterals []*core.PositionCollateral, assetID string, amount decimal.Decimal) []*core.PositionCollateral {
	out := make([]*core.PositionCollateral, 0, len(collaterals))
	for _, c := range collaterals {
		if c.AssetID == assetID {
			c = &core.PositionCollateral{
				UserID:     c.UserID,
				PositionID: c.PositionID,
				AssetID:    c.AssetID,
				Amount:     c.Amount.Sub(amount),
			}
		}
		out = append(out, c)
	}
	return out
}

func (s *Service) findAsset(ctx context.Context, assetID string) (*core.Asset, error) {
	asset, err := s.assets.Find(ctx, assetID)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrAssetNotListed
		}
		return nil, err
	}

	return asset, nil
}

func (s *Service) findListed(ctx context.Context, assetID string) (*core.Asset, error) {
	asset, err := s.findAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if !asset.Active {
		return nil, core.ErrAssetDisabled
	}

	return asset, nil
}

func (s *Service) findActive(ctx context.Context, userID string, positionID int64) (*core.Position, error) {
	position, err := s.positions.Find(ctx, userID, positionID)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrInvalidPosition
		}
		return nil, err
	}

	if !position.IsActive() {
		return nil, core.ErrInactivePosition
	}

	return position, nil
}
