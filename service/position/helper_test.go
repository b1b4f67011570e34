package position

import (
	"context"
	"fmt"
	"time"

	"lendfi/core"
	"lendfi/internal/lendfi"
	"lendfi/service/valuation"
	"lendfi/service/wallet"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type fakeDB struct{}

func (fakeDB) Tx(fn func(tx *db.DB) error) error { return fn(nil) }

type fakeSystem struct{ paused bool }

func (s *fakeSystem) Paused(ctx context.Context) bool { return s.paused }

func (s *fakeSystem) SetPaused(ctx context.Context, paused bool) error {
	s.paused = paused
	return nil
}

type fakeAssetStore struct{ assets map[string]*core.Asset }

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{assets: make(map[string]*core.Asset)}
}

func (s *fakeAssetStore) Save(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	cp := *asset
	s.assets[asset.AssetID] = &cp
	return nil
}

func (s *fakeAssetStore) Find(ctx context.Context, assetID string) (*core.Asset, error) {
	asset, ok := s.assets[assetID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *asset
	return &cp, nil
}

func (s *fakeAssetStore) All(ctx context.Context) ([]*core.Asset, error) {
	var out []*core.Asset
	for _, a := range s.assets {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeAssetStore) AllAsMap(ctx context.Context) (map[string]*core.Asset, error) {
	out := make(map[string]*core.Asset, len(s.assets))
	for id, a := range s.assets {
		cp := *a
		out[id] = &cp
	}
	return out, nil
}

func (s *fakeAssetStore) Update(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	cp := *asset
	s.assets[asset.AssetID] = &cp
	return nil
}

type fakePositionStore struct {
	positions   map[string]*core.Position
	collaterals map[string]*core.PositionCollateral
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{
		positions:   make(map[string]*core.Position),
		collaterals: make(map[string]*core.PositionCollateral),
	}
}

func positionKey(userID string, positionID int64) string {
	return fmt.Sprintf("%s/%d", userID, positionID)
}

func collateralKey(userID string, positionID int64, assetID string) string {
	return fmt.Sprintf("%s/%d/%s", userID, positionID, assetID)
}

func clonePosition(p *core.Position) *core.Position {
	cp := *p
	cp.AssetIDs = append(pq.StringArray{}, p.AssetIDs...)
	return &cp
}

func (s *fakePositionStore) Create(ctx context.Context, tx *db.DB, position *core.Position) error {
	s.positions[positionKey(position.UserID, position.PositionID)] = clonePosition(position)
	return nil
}

func (s *fakePositionStore) Find(ctx context.Context, userID string, positionID int64) (*core.Position, error) {
	p, ok := s.positions[positionKey(userID, positionID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return clonePosition(p), nil
}

func (s *fakePositionStore) FindByUser(ctx context.Context, userID string) ([]*core.Position, error) {
	var out []*core.Position
	for _, p := range s.positions {
		if p.UserID == userID {
			out = append(out, clonePosition(p))
		}
	}
	return out, nil
}

func (s *fakePositionStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, p := range s.positions {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakePositionStore) All(ctx context.Context) ([]*core.Position, error) {
	var out []*core.Position
	for _, p := range s.positions {
		out = append(out, clonePosition(p))
	}
	return out, nil
}

func (s *fakePositionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	s.positions[positionKey(position.UserID, position.PositionID)] = clonePosition(position)
	return nil
}

func (s *fakePositionStore) Collaterals(ctx context.Context, userID string, positionID int64) ([]*core.PositionCollateral, error) {
	var out []*core.PositionCollateral
	for _, c := range s.collaterals {
		if c.UserID == userID && c.PositionID == positionID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakePositionStore) FindCollateral(ctx context.Context, userID string, positionID int64, assetID string) (*core.PositionCollateral, bool, error) {
	c, ok := s.collaterals[collateralKey(userID, positionID, assetID)]
	if !ok {
		return nil, true, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, false, nil
}

func (s *fakePositionStore) SaveCollateral(ctx context.Context, tx *db.DB, collateral *core.PositionCollateral) error {
	cp := *collateral
	s.collaterals[collateralKey(collateral.UserID, collateral.PositionID, collateral.AssetID)] = &cp
	return nil
}

func (s *fakePositionStore) UpdateCollateral(ctx context.Context, tx *db.DB, collateral *core.PositionCollateral) error {
	cp := *collateral
	s.collaterals[collateralKey(collateral.UserID, collateral.PositionID, collateral.AssetID)] = &cp
	return nil
}

func (s *fakePositionStore) DeleteCollateral(ctx context.Context, tx *db.DB, collateral *core.PositionCollateral) error {
	delete(s.collaterals, collateralKey(collateral.UserID, collateral.PositionID, collateral.AssetID))
	return nil
}

type fakePoolStore struct{ pool *core.Pool }

func (s *fakePoolStore) Save(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	cp := *pool
	s.pool = &cp
	return nil
}

func (s *fakePoolStore) Find(ctx context.Context) (*core.Pool, error) {
	if s.pool == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.pool
	return &cp, nil
}

func (s *fakePoolStore) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	cp := *pool
	s.pool = &cp
	return nil
}

type fakeWalletStore struct {
	balances  map[string]*core.WalletBalance
	transfers []*core.Transfer
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{balances: make(map[string]*core.WalletBalance)}
}

func balanceKey(userID, assetID string) string { return userID + "/" + assetID }

func (s *fakeWalletStore) FindBalance(ctx context.Context, userID, assetID string) (*core.WalletBalance, error) {
	b, ok := s.balances[balanceKey(userID, assetID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeWalletStore) SaveBalance(ctx context.Context, tx *db.DB, balance *core.WalletBalance) error {
	cp := *balance
	s.balances[balanceKey(balance.UserID, balance.AssetID)] = &cp
	return nil
}

func (s *fakeWalletStore) CreateTransfer(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	s.transfers = append(s.transfers, transfer)
	return nil
}

func (s *fakeWalletStore) Top(ctx context.Context, limit int) ([]*core.Transfer, error) {
	if limit > len(s.transfers) {
		limit = len(s.transfers)
	}
	return s.transfers[:limit], nil
}

type fakeOracle struct{ prices map[string]decimal.Decimal }

func newFakeOracle() *fakeOracle {
	return &fakeOracle{prices: make(map[string]decimal.Decimal)}
}

func (s *fakeOracle) Validate(ctx context.Context, round, prev *core.PriceRound, oracleDecimals int32, now time.Time) (decimal.Decimal, error) {
	return round.Price, nil
}

func (s *fakeOracle) Price(ctx context.Context, asset *core.Asset, now time.Time) (decimal.Decimal, error) {
	price, ok := s.prices[asset.OracleFeedID]
	if !ok {
		return decimal.Zero, core.ErrOracleInvalidPrice
	}
	return price, nil
}

type testEnv struct {
	assets      *fakeAssetStore
	positions   *fakePositionStore
	pools       *fakePoolStore
	walletStore *fakeWalletStore
	wallets     core.IWalletService
	oracle      *fakeOracle
	system      *fakeSystem
	sysinfo     *core.System
	svc         *Service
}

func testRateParams() lendfi.RateParams {
	return lendfi.RateParams{
		BaseRate:       decimal.NewFromFloat(0.02),
		Multiplier:     decimal.NewFromFloat(0.1),
		JumpMultiplier: decimal.NewFromFloat(0.6),
		Kink:           decimal.NewFromFloat(0.85),
		TierPremiums: map[core.Tier]decimal.Decimal{
			core.TierStable:   decimal.Zero,
			core.TierCrossA:   decimal.NewFromFloat(0.01),
			core.TierCrossB:   decimal.NewFromFloat(0.03),
			core.TierIsolated: decimal.NewFromFloat(0.08),
		},
	}
}

func newTestEnv() *testEnv {
	env := &testEnv{
		assets:      newFakeAssetStore(),
		positions:   newFakePositionStore(),
		pools:       &fakePoolStore{},
		walletStore: newFakeWalletStore(),
		oracle:      newFakeOracle(),
		system:      &fakeSystem{},
		sysinfo: &core.System{
			BaseAssetID:   "base",
			ShareAssetID:  "share",
			CustodyUserID: "custody",
			TreasuryID:    "treasury",
		},
	}

	env.wallets = wallet.New(env.walletStore)
	valuationSvc := valuation.New(env.assets, env.positions, env.oracle)

	env.svc = New(
		fakeDB{},
		env.system,
		env.assets,
		env.positions,
		env.pools,
		env.wallets,
		valuationSvc,
		testRateParams(),
		env.sysinfo,
	)

	return env
}

func (env *testEnv) listAsset(assetID string, tier core.Tier, borrowBps, liquidationBps int64) *core.Asset {
	asset := &core.Asset{
		AssetID:              assetID,
		Symbol:               assetID,
		OracleFeedID:         "feed-" + assetID,
		Active:               true,
		BorrowThreshold:      borrowBps,
		LiquidationThreshold: liquidationBps,
		Tier:                 tier,
	}
	env.assets.assets[assetID] = asset
	return asset
}

func (env *testEnv) setPrice(assetID string, price float64) {
	env.oracle.prices["feed-"+assetID] = decimal.NewFromFloat(price)
}

func (env *testEnv) fund(userID, assetID string, amount float64) {
	env.walletStore.balances[balanceKey(userID, assetID)] = &core.WalletBalance{
		UserID:  userID,
		AssetID: assetID,
		Balance: decimal.NewFromFloat(amount),
	}
}

func (env *testEnv) balance(userID, assetID string) decimal.Decimal {
	b, ok := env.walletStore.balances[balanceKey(userID, assetID)]
	if !ok {
		return decimal.Zero
	}
	return b.Balance
}

func (env *testEnv) seedPool(cash float64) {
	amount := decimal.NewFromFloat(cash)
	env.pools.pool = &core.Pool{
		BaseAssetID:      "base",
		TotalSupplied:    amount,
		TotalCash:        amount,
		Shares:           amount,
		InitExchangeRate: decimal.New(1, 0),
	}
	env.fund("custody", "base", cash)
}
