package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PositionStatus position lifecycle status
type PositionStatus int

const (
	// PositionStatusActive position accepts collateral and debt mutations
	PositionStatusActive PositionStatus = iota + 1
	// PositionStatusClosed position exited, rejects all further mutations
	PositionStatusClosed
)

// Position is a per-user borrowing position. Identity is (UserID, PositionID);
// PositionID is a per-owner sequential index and is never reused.
type Position struct {
	ID         uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID     string `sql:"size:36;unique_index:user_position_idx" json:"user_id"`
	PositionID int64  `sql:"unique_index:user_position_idx" json:"position_id"`
	// Isolated fixed at creation, an isolated position holds at most one collateral asset
	Isolated bool           `json:"isolated"`
	Status   PositionStatus `sql:"default:1" json:"status"`
	// DebtAmount stored principal in base asset units, stale between
	// debt-affecting operations; always read through DebtWithInterest
	DebtAmount decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"debt_amount"`
	// LastInterestAccrual timestamp of the last debt-affecting operation
	LastInterestAccrual time.Time `json:"last_interest_accrual"`
	// AssetIDs denormalized set of collateral assets currently held
	AssetIDs  pq.StringArray `sql:"type:varchar(1024)" json:"asset_ids"`
	Version   int64          `sql:"default:0" json:"version"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IsActive reports whether the position accepts mutations.
func (p *Position) IsActive() bool {
	return p.Status == PositionStatusActive
}

// HasAsset reports whether assetID is in the position's collateral set.
func (p *Position) HasAsset(assetID string) bool {
	for _, id := range p.AssetIDs {
		if id == assetID {
			return true
		}
	}
	return false
}

// AddAsset adds assetID to the collateral set if absent.
func (p *Position) AddAsset(assetID string) {
	if !p.HasAsset(assetID) {
		p.AssetIDs = append(p.AssetIDs, assetID)
	}
}

// RemoveAsset removes assetID from the collateral set, swap with last.
func (p *Position) RemoveAsset(assetID string) {
	for i, id := range p.AssetIDs {
		if id == assetID {
			last := len(p.AssetIDs) - 1
			p.AssetIDs[i] = p.AssetIDs[last]
			p.AssetIDs = p.AssetIDs[:last]
			return
		}
	}
}

// PositionCollateral is one collateral balance attributed to a position.
type PositionCollateral struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID     string          `sql:"size:36;unique_index:position_asset_idx" json:"user_id"`
	PositionID int64           `sql:"unique_index:position_asset_idx" json:"position_id"`
	AssetID    string          `sql:"size:36;unique_index:position_asset_idx" json:"asset_id"`
	Amount     decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"amount"`
	Version    int64           `sql:"default:0" json:"version"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPositionStore position ledger store interface
type IPositionStore interface {
	Create(ctx context.Context, tx *db.DB, position *Position) error
	Find(ctx context.Context, userID string, positionID int64) (*Position, error)
	FindByUser(ctx context.Context, userID string) ([]*Position, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	All(ctx context.Context) ([]*Position, error)
	Update(ctx context.Context, tx *db.DB, position *Position) error
	Collaterals(ctx context.Context, userID string, positionID int64) ([]*PositionCollateral, error)
	FindCollateral(ctx context.Context, userID string, positionID int64, assetID string) (*PositionCollateral, bool, error)
	SaveCollateral(ctx context.Context, tx *db.DB, collateral *PositionCollateral) error
	UpdateCollateral(ctx context.Context, tx *db.DB, collateral *PositionCollateral) error
	DeleteCollateral(ctx context.Context, tx *db.DB, collateral *PositionCollateral) error
}

// IPositionService position lifecycle operations
type IPositionService interface {
	Open(ctx context.Context, userID, assetID string, isolated bool) (*Position, error)
	Supply(ctx context.Context, userID string, positionID int64, assetID string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, userID string, positionID int64, assetID string, amount decimal.Decimal) error
	Exit(ctx context.Context, userID string, positionID int64) error
}

// IBorrowService debt operations and liquidation checks
type IBorrowService interface {
	Borrow(ctx context.Context, userID string, positionID int64, amount decimal.Decimal) error
	Repay(ctx context.Context, userID string, positionID int64, amount decimal.Decimal) error
	Liquidate(ctx context.Context, liquidatorID, userID string, positionID int64) error
	DebtWithInterest(ctx context.Context, position *Position, now time.Time) (decimal.Decimal, error)
	HighestTier(ctx context.Context, position *Position) (Tier, error)
	BorrowRate(ctx context.Context, tier Tier) (decimal.Decimal, error)
	Liquidatable(ctx context.Context, userID string, positionID int64) (bool, error)
	HealthFactor(ctx context.Context, userID string, positionID int64) (decimal.Decimal, error)
}
