package asset

import (
	"context"
	"fmt"
	"time"

	"lendfi/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"
)

// Cache wraps store with a read cache for registry lookups. Mutations go
// through and drop the cached record.
func Cache(store core.IAssetStore, exp time.Duration) core.IAssetStore {
	return &cacheAssetStore{
		IAssetStore: store,
		cache:       gcache.New(512).LRU().Expiration(exp).Build(),
		sf:          &singleflight.Group{},
	}
}

type cacheAssetStore struct {
	core.IAssetStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheAssetStore) Find(ctx context.Context, assetID string) (*core.Asset, error) {
	key := s.assetKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		if asset, ok := v.(*core.Asset); ok {
			return asset, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		asset, err := s.IAssetStore.Find(ctx, assetID)
		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(key, asset)
		return asset, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Asset), nil
}

func (s *cacheAssetStore) Save(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	if err := s.IAssetStore.Save(ctx, tx, asset); err != nil {
		return err
	}
	s.cache.Remove(s.assetKey(asset.AssetID))
	return nil
}

func (s *cacheAssetStore) Update(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	if err := s.IAssetStore.Update(ctx, tx, asset); err != nil {
		return err
	}
	s.cache.Remove(s.assetKey(asset.AssetID))
	return nil
}

func (s *cacheAssetStore) assetKey(assetID string) string {
	return fmt.Sprintf("asset:id:%s", assetID)
}
