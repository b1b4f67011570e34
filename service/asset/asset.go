package asset

import (
	"context"

	"lendfi/core"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type assetService struct {
	db     core.Database
	assets core.IAssetStore
}

// New new asset registry service
func New(database core.Database, assets core.IAssetStore) core.IAssetService {
	return &assetService{db: database, assets: assets}
}

// Upsert validates config and inserts or overwrites the asset record.
func (s *assetService) Upsert(ctx context.Context, asset *core.Asset) error {
	log := logger.FromContext(ctx).WithField("asset", asset.AssetID)

	if !govalidator.IsUUID(asset.AssetID) {
		return core.ErrInvalidAssetConfig
	}

	if asset.BorrowThreshold <= 0 || asset.BorrowThreshold > 10000 ||
		asset.LiquidationThreshold > 10000 ||
		asset.LiquidationThreshold < asset.BorrowThreshold {
		return core.ErrInvalidAssetConfig
	}

	if !asset.Tier.Valid() {
		return core.ErrInvalidAssetConfig
	}

	// isolation debt cap is only meaningful on the isolated tier
	if !asset.IsIsolated() {
		asset.IsolationDebtCap = decimal.Zero
	}

	existing, err := s.assets.Find(ctx, asset.AssetID)
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		log.WithError(err).Errorln("assets.Find")
		return err
	}

	return s.db.Tx(func(tx *db.DB) error {
		if existing == nil || existing.ID == 0 {
			log.Infoln("list new asset")
			return s.assets.Save(ctx, tx, asset)
		}

		asset.ID = existing.ID
		asset.Version = existing.Version
		asset.TotalDeposited = existing.TotalDeposited
		asset.TotalIsolationDebt = existing.TotalIsolationDebt
		return s.assets.Update(ctx, tx, asset)
	})
}

// SetTier changes only the tier. The change is recorded even when the new
// tier equals the old one.
func (s *assetService) SetTier(ctx context.Context, assetID string, tier core.Tier) error {
	if !tier.Valid() {
		return core.ErrInvalidAssetConfig
	}

	asset, err := s.Find(ctx, assetID)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"asset": assetID,
		"from":  asset.Tier.String(),
		"to":    tier.String(),
	}).Infoln("asset tier changed")

	asset.Tier = tier
	if !asset.IsIsolated() {
		asset.IsolationDebtCap = decimal.Zero
	}

	return s.db.Tx(func(tx *db.DB) error {
		return s.assets.Update(ctx, tx, asset)
	})
}

func (s *assetService) SetActive(ctx context.Context, assetID string, active bool) error {
	asset, err := s.Find(ctx, assetID)
	if err != nil {
		return err
	}

	asset.Active = active
	return s.db.Tx(func(tx *db.DB) error {
		return s.assets.Update(ctx, tx, asset)
	})
}

func (s *assetService) Find(ctx context.Context, assetID string) (*core.Asset, error) {
	asset, err := s.assets.Find(ctx, assetID)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrAssetNotListed
		}

		return nil, err
	}

	return asset, nil
}
