package cmd

import (
	"time"

	"lendfi/core"
	"lendfi/internal/lendfi"
	assetservice "lendfi/service/asset"
	oracleservice "lendfi/service/oracle"
	poolservice "lendfi/service/pool"
	positionservice "lendfi/service/position"
	sysservice "lendfi/service/sys"
	valuationservice "lendfi/service/valuation"
	walletservice "lendfi/service/wallet"
	assetstore "lendfi/store/asset"
	poolstore "lendfi/store/pool"
	positionstore "lendfi/store/position"
	pricestore "lendfi/store/price"
	walletstore "lendfi/store/wallet"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/shopspring/decimal"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideSystem() *core.System {
	return &core.System{
		Admins:        cfg.Admins,
		BaseAssetID:   cfg.App.BaseAssetID,
		ShareAssetID:  cfg.App.ShareAssetID,
		CustodyUserID: cfg.App.CustodyUserID,
		TreasuryID:    cfg.App.TreasuryUserID,
		Version:       rootCmd.Version,
	}
}

func provideRateParams() lendfi.RateParams {
	rate := cfg.InterestRate
	return lendfi.RateParams{
		BaseRate:       decimal.NewFromFloat(rate.BaseRate),
		Multiplier:     decimal.NewFromFloat(rate.Multiplier),
		JumpMultiplier: decimal.NewFromFloat(rate.JumpMultiplier),
		Kink:           decimal.NewFromFloat(rate.Kink),
		TierPremiums: map[core.Tier]decimal.Decimal{
			core.TierStable:   decimal.NewFromFloat(rate.StablePremium),
			core.TierCrossA:   decimal.NewFromFloat(rate.CrossAPremium),
			core.TierCrossB:   decimal.NewFromFloat(rate.CrossBPremium),
			core.TierIsolated: decimal.NewFromFloat(rate.IsolatedPremium),
		},
	}
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideAssetStore(db *db.DB) core.IAssetStore {
	return assetstore.New(db)
}

// provideCachedAssetStore serves read-only paths; mutating paths use the
// raw store so deposit tallies are never read stale.
func provideCachedAssetStore(db *db.DB) core.IAssetStore {
	return assetstore.Cache(assetstore.New(db), time.Minute)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return positionstore.New(db)
}

func providePoolStore(db *db.DB) core.IPoolStore {
	return poolstore.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return pricestore.New(db)
}

func provideWalletStore(db *db.DB) core.IWalletStore {
	return walletstore.New(db)
}

// ------------------service------------------------------------

func provideSystemService(db *db.DB) core.ISystemService {
	return sysservice.New(providePropertyStore(db))
}

func provideWalletService(db *db.DB) core.IWalletService {
	return walletservice.New(provideWalletStore(db))
}

func provideOracleService(db *db.DB) core.IOracleService {
	return oracleservice.New(providePriceStore(db))
}

func provideValuationService(db *db.DB) core.IValuationService {
	return valuationservice.New(provideAssetStore(db), providePositionStore(db), provideOracleService(db))
}

func provideAssetService(db *db.DB) core.IAssetService {
	return assetservice.New(db, provideAssetStore(db))
}

func providePoolService(db *db.DB) core.IPoolService {
	return poolservice.New(
		db,
		provideSystemService(db),
		providePoolStore(db),
		provideWalletService(db),
		provideRateParams(),
		provideSystem(),
		cfg.Pool,
	)
}

func providePositionService(db *db.DB) *positionservice.Service {
	return positionservice.New(
		db,
		provideSystemService(db),
		provideAssetStore(db),
		providePositionStore(db),
		providePoolStore(db),
		provideWalletService(db),
		provideValuationService(db),
		provideRateParams(),
		provideSystem(),
	)
}
