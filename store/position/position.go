package position

import (
	"context"

	"lendfi/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		if err := db.Update().Model(core.PositionCollateral{}).AutoMigrate(core.PositionCollateral{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) Create(ctx context.Context, tx *db.DB, position *core.Position) error {
	return tx.Update().Create(position).Error
}

func (s *positionStore) Find(ctx context.Context, userID string, positionID int64) (*core.Position, error) {
	var position core.Position
	if err := s.db.View().Where("user_id=? and position_id=?", userID, positionID).First(&position).Error; err != nil {
		return nil, err
	}

	return &position, nil
}

func (s *positionStore) FindByUser(ctx context.Context, userID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("user_id=?", userID).Order("position_id").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *positionStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := s.db.View().Model(core.Position{}).Where("user_id=?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *positionStore) All(ctx context.Context) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// toUpdateParams writes the mutable columns explicitly. A struct update
// would skip zero values, leaving asset_ids set after a close.
func toUpdateParams(position *core.Position) map[string]interface{} {
	return map[string]interface{}{
		"status":                position.Status,
		"debt_amount":           position.DebtAmount,
		"last_interest_accrual": position.LastInterestAccrual,
		"asset_ids":             position.AssetIDs,
	}
}

func (s *positionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	version := position.Version
	position.Version++

	updates := toUpdateParams(position)
	updates["version"] = position.Version

	return tx.Update().Model(core.Position{}).
		Where("user_id=? and position_id=? and version=?", position.UserID, position.PositionID, version).
		Updates(updates).Error
}

func (s *positionStore) Collaterals(ctx context.Context, userID string, positionID int64) ([]*core.PositionCollateral, error) {
	var collaterals []*core.PositionCollateral
	if err := s.db.View().Where("user_id=? and position_id=?", userID, positionID).Find(&collaterals).Error; err != nil {
		return nil, err
	}
	return collaterals, nil
}

func (s *positionStore) FindCollateral(ctx context.Context, userID string, positionID int64, assetID string) (*core.PositionCollateral, bool, error) {
	var collateral core.PositionCollateral
	if err := s.db.View().Where("user_id=? and position_id=? and asset_id=?", userID, positionID, assetID).First(&collateral).Error; err != nil {
		return nil, gorm.IsRecordNotFoundError(err), err
	}

	return &collateral, false, nil
}

func (s *positionStore) SaveCollateral(ctx context.Context, tx *db.DB, collateral *core.PositionCollateral) error {
	return tx.Update().Create(collateral).Error
}

func (s *positionStore) UpdateCollateral(ctx context.Context, tx *db.DB, collateral *core.PositionCollateral) error {
	version := collateral.Version
	collateral.Version++
	return tx.Update().Model(core.PositionCollateral{}).
		Where("user_id=? and position_id=? and asset_id=? and version=?", collateral.UserID, collateral.PositionID, collateral.AssetID, version).
		Update(collateral).Error
}

func (s *positionStore) DeleteCollateral(ctx context.Context, tx *db.DB, collateral *core.PositionCollateral) error {
	return tx.Update().
		Where("user_id=? and position_id=? and asset_id=?", collateral.UserID, collateral.PositionID, collateral.AssetID).
		Delete(core.PositionCollateral{}).Error
}
