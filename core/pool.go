package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Pool is the shared base-asset liquidity pool, single row.
type Pool struct {
	ID          uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	BaseAssetID string `sql:"size:36;unique_index:base_asset_idx" json:"base_asset_id"`
	// TotalSupplied liquidity deposited by providers net of exchanges
	TotalSupplied decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_supplied"`
	// TotalCash base asset on hand
	TotalCash decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_cash"`
	// TotalBorrows outstanding principal across all positions
	TotalBorrows decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_borrows"`
	// TotalAccruedInterest cumulative borrower interest collected
	TotalAccruedInterest decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"total_accrued_interest"`
	// Shares pool share tokens outstanding
	Shares decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"shares"`
	// InitExchangeRate exchange rate before any shares exist
	InitExchangeRate decimal.Decimal `sql:"type:decimal(20,8);default:1" json:"init_exchange_rate"`
	Version          int64           `sql:"default:0" json:"version"`
	CreatedAt        time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPoolStore pool store interface
type IPoolStore interface {
	Save(ctx context.Context, tx *db.DB, pool *Pool) error
	Find(ctx context.Context) (*Pool, error)
	Update(ctx context.Context, tx *db.DB, pool *Pool) error
}

// IPoolService liquidity pool accountant
type IPoolService interface {
	SupplyLiquidity(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	Exchange(ctx context.Context, userID string, shares decimal.Decimal) (decimal.Decimal, error)
	ExchangeRate(ctx context.Context) (decimal.Decimal, error)
	SupplyRate(ctx context.Context) (decimal.Decimal, error)
}
