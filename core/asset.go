package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Tier is the risk classification of a collateral asset. Higher values
// carry higher borrow premiums and tighter isolation rules.
type Tier int

const (
	// TierStable stable coins and other low volatility assets
	TierStable Tier = iota
	// TierCrossA blue chip cross collateral
	TierCrossA
	// TierCrossB long tail cross collateral
	TierCrossB
	// TierIsolated assets restricted to single-asset positions
	TierIsolated
)

// TierNames tier names indexed by tier value
var TierNames = map[Tier]string{
	TierStable:   "STABLE",
	TierCrossA:   "CROSS_A",
	TierCrossB:   "CROSS_B",
	TierIsolated: "ISOLATED",
}

func (t Tier) String() string {
	if n, ok := TierNames[t]; ok {
		return n
	}
	return "UNKNOWN"
}

// Valid reports whether t is a configured tier value.
func (t Tier) Valid() bool {
	return t >= TierStable && t <= TierIsolated
}

// BpsBase threshold denominator, thresholds are expressed in basis points
var BpsBase = decimal.NewFromInt(10000)

// Asset is a listed collateral asset and its risk configuration.
type Asset struct {
	ID             uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID        string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol         string `sql:"size:20" json:"symbol"`
	OracleFeedID   string `sql:"size:64" json:"oracle_feed_id"`
	OracleDecimals int32  `sql:"default:8" json:"oracle_decimals"`
	Active         bool   `sql:"default:true" json:"active"`
	// BorrowThreshold max borrow value per unit of collateral value, in basis points
	BorrowThreshold int64 `json:"borrow_threshold"`
	// LiquidationThreshold liquidation trigger, in basis points, always >= BorrowThreshold
	LiquidationThreshold int64 `json:"liquidation_threshold"`
	// MaxSupplyThreshold cap on protocol wide deposits of this asset, zero means unbounded
	MaxSupplyThreshold decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"max_supply_threshold"`
	Tier               Tier            `sql:"default:0" json:"tier"`
	// IsolationDebtCap max debt against this asset, isolated tier only, zero means unbounded
	IsolationDebtCap decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"isolation_debt_cap"`
	// TotalDeposited protocol wide deposited amount of this asset
	TotalDeposited decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_deposited"`
	// TotalIsolationDebt outstanding principal borrowed against this asset in isolation mode
	TotalIsolationDebt decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_isolation_debt"`
	Version            int64           `sql:"default:0" json:"version"`
	CreatedAt          time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IsIsolated reports whether the asset may only collateralize isolated positions.
func (a *Asset) IsIsolated() bool {
	return a.Tier == TierIsolated
}

// BorrowFactor borrow threshold as a decimal factor
func (a *Asset) BorrowFactor() decimal.Decimal {
	return decimal.NewFromInt(a.BorrowThreshold).Div(BpsBase)
}

// LiquidationFactor liquidation threshold as a decimal factor
func (a *Asset) LiquidationFactor() decimal.Decimal {
	return decimal.NewFromInt(a.LiquidationThreshold).Div(BpsBase)
}

// IAssetStore asset registry store interface
type IAssetStore interface {
	Save(ctx context.Context, tx *db.DB, asset *Asset) error
	Find(ctx context.Context, assetID string) (*Asset, error)
	All(ctx context.Context) ([]*Asset, error)
	AllAsMap(ctx context.Context) (map[string]*Asset, error)
	Update(ctx context.Context, tx *db.DB, asset *Asset) error
}

// IAssetService asset registry interface
type IAssetService interface {
	Upsert(ctx context.Context, asset *Asset) error
	SetTier(ctx context.Context, assetID string, tier Tier) error
	SetActive(ctx context.Context, assetID string, active bool) error
	Find(ctx context.Context, assetID string) (*Asset, error)
}
