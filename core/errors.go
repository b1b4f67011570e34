package core

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation requires the manager role
	ErrOperationForbidden ErrorCode = 100001
	// ErrPaused all mutating operations disabled
	ErrPaused ErrorCode = 100002
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100003

	// ErrAssetNotListed asset never configured
	ErrAssetNotListed ErrorCode = 100100
	// ErrAssetDisabled asset accepts no new deposits
	ErrAssetDisabled ErrorCode = 100101
	// ErrInvalidAssetConfig asset config rejected
	ErrInvalidAssetConfig ErrorCode = 100102

	// ErrInvalidPosition position id unknown to the owner
	ErrInvalidPosition ErrorCode = 100200
	// ErrInactivePosition position closed
	ErrInactivePosition ErrorCode = 100201
	// ErrIsolationModeRequired isolated-only asset on a cross position
	ErrIsolationModeRequired ErrorCode = 100202
	// ErrInvalidAssetForIsolation isolated position already bound to another asset
	ErrInvalidAssetForIsolation ErrorCode = 100203
	// ErrNoIsolatedCollateral isolated position has no collateral supplied
	ErrNoIsolatedCollateral ErrorCode = 100204

	// ErrExceedsCreditLimit requested debt above the credit limit
	ErrExceedsCreditLimit ErrorCode = 100300
	// ErrWithdrawalExceedsCreditLimit remaining collateral no longer covers the debt
	ErrWithdrawalExceedsCreditLimit ErrorCode = 100301
	// ErrIsolationDebtCapExceeded isolation debt cap hit
	ErrIsolationDebtCapExceeded ErrorCode = 100302
	// ErrInsufficientLiquidity pool cash below the requested amount
	ErrInsufficientLiquidity ErrorCode = 100303
	// ErrInsufficientCollateralBalance withdrawal above the held balance
	ErrInsufficientCollateralBalance ErrorCode = 100304
	// ErrSupplyCapExceeded deposit above the asset supply cap
	ErrSupplyCapExceeded ErrorCode = 100305

	// ErrInsufficientTokenBalance caller cannot fund the transfer
	ErrInsufficientTokenBalance ErrorCode = 100400

	// ErrOracleInvalidPrice price <= 0
	ErrOracleInvalidPrice ErrorCode = 100500
	// ErrOracleStalePrice answered in an earlier round
	ErrOracleStalePrice ErrorCode = 100501
	// ErrOracleTimeout round older than the staleness bound
	ErrOracleTimeout ErrorCode = 100502
	// ErrOracleInvalidPriceVolatility stale large price move
	ErrOracleInvalidPriceVolatility ErrorCode = 100503

	// ErrSeizeNotAllowed position not liquidatable
	ErrSeizeNotAllowed ErrorCode = 100600
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

// LimitError is a solvency failure carrying the attempted value and the
// computed limit so callers can retry with a corrected amount.
type LimitError struct {
	Code      ErrorCode       `json:"code"`
	Requested decimal.Decimal `json:"requested"`
	Limit     decimal.Decimal `json:"limit"`
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%d: requested %s exceeds limit %s", e.Code, e.Requested, e.Limit)
}

// Is matches the wrapped ErrorCode so errors.Is(err, core.ErrExceedsCreditLimit) works.
func (e *LimitError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// NewLimitError limit error with code
func NewLimitError(code ErrorCode, requested, limit decimal.Decimal) *LimitError {
	return &LimitError{Code: code, Requested: requested, Limit: limit}
}

// TokenBalanceError reports a funds failure with the available balance.
type TokenBalanceError struct {
	AssetID   string          `json:"asset_id"`
	UserID    string          `json:"user_id"`
	Available decimal.Decimal `json:"available"`
}

func (e *TokenBalanceError) Error() string {
	return fmt.Sprintf("%d: insufficient balance of %s for %s, available %s",
		ErrInsufficientTokenBalance, e.AssetID, e.UserID, e.Available)
}

func (e *TokenBalanceError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == ErrInsufficientTokenBalance
}
