package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// WalletBalance is one (user, asset) token balance in the internal ledger.
type WalletBalance struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:user_asset_idx" json:"user_id"`
	AssetID   string          `sql:"size:36;unique_index:user_asset_idx" json:"asset_id"`
	Balance   decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"balance"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Transfer is a journal entry for one internal token movement.
type Transfer struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID    string          `sql:"size:36;unique_index:trace_idx" json:"trace_id,omitempty"`
	UserID     string          `sql:"size:36" json:"user_id,omitempty"`
	OpponentID string          `sql:"size:36" json:"opponent_id,omitempty"`
	AssetID    string          `sql:"size:36" json:"asset_id,omitempty"`
	Amount     decimal.Decimal `sql:"type:decimal(32,16)" json:"amount,omitempty"`
	Memo       string          `sql:"size:140" json:"memo,omitempty"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

// IWalletStore wallet ledger store interface
type IWalletStore interface {
	FindBalance(ctx context.Context, userID, assetID string) (*WalletBalance, error)
	SaveBalance(ctx context.Context, tx *db.DB, balance *WalletBalance) error
	CreateTransfer(ctx context.Context, tx *db.DB, transfer *Transfer) error
	Top(ctx context.Context, limit int) ([]*Transfer, error)
}

// IWalletService internal token ledger. Transfers run inside the caller's
// transaction so a failed operation rolls the movement back.
type IWalletService interface {
	Balance(ctx context.Context, userID, assetID string) (decimal.Decimal, error)
	Transfer(ctx context.Context, tx *db.DB, fromID, toID, assetID string, amount decimal.Decimal, memo string) error
	Mint(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, memo string) error
	Burn(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, memo string) error
}
