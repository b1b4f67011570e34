package asset

import (
	"context"

	"lendfi/core"

	"github.com/fox-one/pkg/store/db"
)

type assetStore struct {
	db *db.DB
}

// New new asset store
func New(db *db.DB) core.IAssetStore {
	return &assetStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Asset{})
		if err := tx.AutoMigrate(core.Asset{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *assetStore) Save(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	return tx.Update().Create(asset).Error
}

func (s *assetStore) Find(ctx context.Context, assetID string) (*core.Asset, error) {
	var asset core.Asset
	if err := s.db.View().Where("asset_id=?", assetID).First(&asset).Error; err != nil {
		return nil, err
	}

	return &asset, nil
}

func (s *assetStore) All(ctx context.Context) ([]*core.Asset, error) {
	var assets []*core.Asset
	if err := s.db.View().Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (s *assetStore) AllAsMap(ctx context.Context) (map[string]*core.Asset, error) {
	assets, e := s.All(ctx)
	if e != nil {
		return nil, e
	}

	maps := make(map[string]*core.Asset)

	for _, a := range assets {
		maps[a.AssetID] = a
	}

	return maps, nil
}

// toUpdateParams writes every mutable column explicitly. A struct update
// would skip zero values, silently dropping Active=false and tier STABLE.
func toUpdateParams(asset *core.Asset) map[string]interface{} {
	return map[string]interface{}{
		"symbol":                asset.Symbol,
		"oracle_feed_id":        asset.OracleFeedID,
		"oracle_decimals":       asset.OracleDecimals,
		"active":                asset.Active,
		"borrow_threshold":      asset.BorrowThreshold,
		"liquidation_threshold": asset.LiquidationThreshold,
		"max_supply_threshold":  asset.MaxSupplyThreshold,
		"tier":                  asset.Tier,
		"isolation_debt_cap":    asset.IsolationDebtCap,
		"total_deposited":       asset.TotalDeposited,
		"total_isolation_debt":  asset.TotalIsolationDebt,
	}
}

func (s *assetStore) Update(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	version := asset.Version
	asset.Version++

	updates := toUpdateParams(asset)
	updates["version"] = asset.Version

	update := tx.Update().Model(core.Asset{}).Where("asset_id=? and version=?", asset.AssetID, version).Updates(updates)
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
