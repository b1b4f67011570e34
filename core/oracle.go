package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// PriceRound is one observed oracle round for a feed. Price is the raw
// feed answer scaled by the asset's oracle decimals.
type PriceRound struct {
	ID              int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	FeedID          string          `sql:"size:64;unique_index:idx_feed_round" json:"feed_id,omitempty"`
	RoundID         uint64          `sql:"unique_index:idx_feed_round" json:"round_id,omitempty"`
	AnsweredInRound uint64          `json:"answered_in_round,omitempty"`
	Price           decimal.Decimal `sql:"type:decimal(32,16)" json:"price,omitempty"`
	// RoundAt the feed's updatedAt timestamp for this round
	RoundAt time.Time `json:"round_at,omitempty"`
	// Content raw feed payload for audit
	Content   types.JSONText `sql:"type:varchar(1024)" json:"content,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

// IPriceStore price round store interface
type IPriceStore interface {
	Create(ctx context.Context, tx *db.DB, round *PriceRound) error
	Latest(ctx context.Context, feedID string) (*PriceRound, bool, error)
	Previous(ctx context.Context, feedID string, roundID uint64) (*PriceRound, bool, error)
}

// IOracleService validates oracle rounds and prices collateral in USD.
type IOracleService interface {
	// Validate checks round against prev and returns the USD price at
	// output precision, or an oracle error
	Validate(ctx context.Context, round, prev *PriceRound, oracleDecimals int32, now time.Time) (decimal.Decimal, error)
	// Price returns the validated current USD price of the asset
	Price(ctx context.Context, asset *Asset, now time.Time) (decimal.Decimal, error)
}
