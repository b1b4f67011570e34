package pool

import (
	"context"
	"sync"

	"lendfi/core"
	"lendfi/internal/lendfi"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type poolService struct {
	db      core.Database
	system  core.ISystemService
	pools   core.IPoolStore
	wallets core.IWalletService
	params  lendfi.RateParams
	sysinfo *core.System

	reserveFactor    decimal.Decimal
	baseProfitTarget decimal.Decimal
	initExchangeRate decimal.Decimal

	mux sync.Mutex
}

// New new pool service
func New(
	database core.Database,
	system core.ISystemService,
	pools core.IPoolStore,
	wallets core.IWalletService,
	params lendfi.RateParams,
	sysinfo *core.System,
	cfg core.PoolConfig,
) core.IPoolService {
	return &poolService{
		db:               database,
		system:           system,
		pools:            pools,
		wallets:          wallets,
		params:           params,
		sysinfo:          sysinfo,
		reserveFactor:    decimal.NewFromFloat(cfg.ReserveFactor),
		baseProfitTarget: decimal.NewFromFloat(cfg.BaseProfitTarget),
		initExchangeRate: decimal.NewFromFloat(cfg.InitExchangeRate),
	}
}

// SupplyLiquidity deposits amount of the base asset into the pool and mints
// pool shares at the current exchange rate. Minted shares are truncated so
// a provider never receives more than their deposit is worth.
func (s *poolService) SupplyLiquidity(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("service", "pool")

	if s.system.Paused(ctx) {
		return decimal.Zero, core.ErrPaused
	}

	if !amount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	pool, fresh, err := s.findOrInit(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	rate := lendfi.GetExchangeRate(pool.TotalCash, pool.TotalBorrows, pool.Shares, pool.InitExchangeRate)
	minted := amount.Div(rate).Truncate(lendfi.MaxPrecision)

	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.wallets.Transfer(ctx, tx, userID, s.sysinfo.CustodyUserID, s.sysinfo.BaseAssetID, amount, "supply liquidity"); err != nil {
			return err
		}

		if err := s.wallets.Mint(ctx, tx, userID, s.sysinfo.ShareAssetID, minted, "mint shares"); err != nil {
			return err
		}

		pool.TotalCash = pool.TotalCash.Add(amount)
		pool.TotalSupplied = pool.TotalSupplied.Add(amount)
		pool.Shares = pool.Shares.Add(minted)

		if fresh {
			return s.pools.Save(ctx, tx, pool)
		}
		return s.pools.Update(ctx, tx, pool)
	})
	if err != nil {
		log.WithError(err).Errorln("supply liquidity")
		return decimal.Zero, err
	}

	return minted, nil
}

// Exchange burns the caller's pool shares and pays out the base asset at the
// current exchange rate, capped by pool cash. The profit component above the
// initial exchange rate is taxed by the reserve factor and paid to the
// treasury.
func (s *poolService) Exchange(ctx context.Context, userID string, shares decimal.Decimal) (decimal.Decimal, error) {
	if s.system.Paused(ctx) {
		return decimal.Zero, core.ErrPaused
	}

	if !shares.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	pool, err := s.pools.Find(ctx)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return decimal.Zero, core.NewLimitError(core.ErrInsufficientLiquidity, shares, decimal.Zero)
		}
		return decimal.Zero, err
	}

	rate := lendfi.GetExchangeRate(pool.TotalCash, pool.TotalBorrows, pool.Shares, pool.InitExchangeRate)
	gross := shares.Mul(rate).Truncate(lendfi.MaxPrecision)

	if gross.GreaterThan(pool.TotalCash) {
		return decimal.Zero, core.NewLimitError(core.ErrInsufficientLiquidity, gross, pool.TotalCash)
	}

	fee := decimal.Zero
	if profitRate := rate.Sub(pool.InitExchangeRate); profitRate.IsPositive() {
		profit := shares.Mul(profitRate)
		fee = profit.Mul(s.reserveFactor).Truncate(lendfi.MaxPrecision)
	}
	payout := gross.Sub(fee)

	// the burned shares' slice of deposits; the profit component of gross
	// lives in cash only, so TotalSupplied never drifts below zero
	principal := pool.TotalSupplied
	if shares.LessThan(pool.Shares) {
		principal = pool.TotalSupplied.Mul(shares).Div(pool.Shares).Truncate(lendfi.MaxPrecision)
	}

	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.wallets.Burn(ctx, tx, userID, s.sysinfo.ShareAssetID, shares, "burn shares"); err != nil {
			return err
		}

		if err := s.wallets.Transfer(ctx, tx, s.sysinfo.CustodyUserID, userID, s.sysinfo.BaseAssetID, payout, "exchange"); err != nil {
			return err
		}

		if fee.IsPositive() {
			if err := s.wallets.Transfer(ctx, tx, s.sysinfo.CustodyUserID, s.sysinfo.TreasuryID, s.sysinfo.BaseAssetID, fee, "reserve fee"); err != nil {
				return err
			}
		}

		pool.TotalCash = pool.TotalCash.Sub(gross)
		pool.TotalSupplied = pool.TotalSupplied.Sub(principal)
		pool.Shares = pool.Shares.Sub(shares)
		return s.pools.Update(ctx, tx, pool)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return payout, nil
}

// ExchangeRate is base asset value per pool share.
func (s *poolService) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	pool, err := s.pools.Find(ctx)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return s.initExchangeRate, nil
		}
		return decimal.Zero, err
	}

	return lendfi.GetExchangeRate(pool.TotalCash, pool.TotalBorrows, pool.Shares, pool.InitExchangeRate), nil
}

// SupplyRate is the annualized provider yield at current utilization. Rates
// below the base profit target are quoted as zero.
func (s *poolService) SupplyRate(ctx context.Context) (decimal.Decimal, error) {
	pool, err := s.pools.Find(ctx)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	utilization := lendfi.UtilizationRate(pool.TotalBorrows, pool.TotalSupplied)
	borrowRate := lendfi.BorrowRate(core.TierStable, utilization, s.params)
	rate := lendfi.SupplyRate(utilization, borrowRate, s.reserveFactor)

	if rate.LessThan(s.baseProfitTarget) {
		return decimal.Zero, nil
	}

	return rate, nil
}

// findOrInit returns the pool row, creating an in-memory zero row on first
// use. fresh tells the caller to Save instead of Update.
func (s *poolService) findOrInit(ctx context.Context) (*core.Pool, bool, error) {
	pool, err := s.pools.Find(ctx)
	if err == nil {
		return pool, false, nil
	}

	if !gorm.IsRecordNotFoundError(err) {
		return nil, false, err
	}

	return &core.Pool{
		BaseAssetID:      s.sysinfo.BaseAssetID,
		InitExchangeRate: s.initExchangeRate,
	}, true, nil
}
