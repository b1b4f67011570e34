package price

import (
	"context"

	"lendfi/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type priceStore struct {
	db *db.DB
}

// New new price round store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.PriceRound{})
		if err := tx.AutoMigrate(core.PriceRound{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *priceStore) Create(ctx context.Context, tx *db.DB, round *core.PriceRound) error {
	return tx.Update().Create(round).Error
}

func (s *priceStore) Latest(ctx context.Context, feedID string) (*core.PriceRound, bool, error) {
	var round core.PriceRound
	if err := s.db.View().Where("feed_id=?", feedID).Order("round_id desc").First(&round).Error; err != nil {
		return nil, gorm.IsRecordNotFoundError(err), err
	}

	return &round, false, nil
}

func (s *priceStore) Previous(ctx context.Context, feedID string, roundID uint64) (*core.PriceRound, bool, error) {
	var round core.PriceRound
	if err := s.db.View().Where("feed_id=? and round_id<?", feedID, roundID).Order("round_id desc").First(&round).Error; err != nil {
		return nil, gorm.IsRecordNotFoundError(err), err
	}

	return &round, false, nil
}
