package pool

import (
	"context"

	"lendfi/core"

	"github.com/fox-one/pkg/store/db"
)

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.IPoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Pool{})
		if err := tx.AutoMigrate(core.Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *poolStore) Save(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	return tx.Update().Create(pool).Error
}

func (s *poolStore) Find(ctx context.Context) (*core.Pool, error) {
	var pool core.Pool
	if err := s.db.View().First(&pool).Error; err != nil {
		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	version := pool.Version
	pool.Version++
	return tx.Update().Model(core.Pool{}).
		Where("base_asset_id=? and version=?", pool.BaseAssetID, version).
		Update(pool).Error
}
