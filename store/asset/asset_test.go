package asset

import (
	"testing"

	"lendfi/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Zero-valued columns must reach the database: deactivating an asset and
// downgrading its tier to STABLE both write the type's zero value.
func TestToUpdateParamsKeepsZeroValues(t *testing.T) {
	asset := &core.Asset{
		AssetID:              "9c612618-ca59-4583-af34-be9d9e0ce0dd",
		Symbol:               "BTC",
		OracleFeedID:         "btc-usd",
		OracleDecimals:       8,
		Active:               false,
		BorrowThreshold:      6500,
		LiquidationThreshold: 7500,
		Tier:                 core.TierStable,
		TotalIsolationDebt:   decimal.Zero,
	}

	updates := toUpdateParams(asset)

	require.Equal(t, false, updates["active"])
	require.Equal(t, core.TierStable, updates["tier"])

	for _, column := range []string{
		"symbol",
		"oracle_feed_id",
		"oracle_decimals",
		"active",
		"borrow_threshold",
		"liquidation_threshold",
		"max_supply_threshold",
		"tier",
		"isolation_debt_cap",
		"total_deposited",
		"total_isolation_debt",
	} {
		require.Contains(t, updates, column)
	}
}
