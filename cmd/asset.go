package cmd

import (
	"lendfi/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var addAssetCmd = &cobra.Command{
	Use:     "add-asset",
	Aliases: []string{"aa"},
	Short:   "list or update a collateral asset",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		assetID, _ := cmd.Flags().GetString("asset")
		symbol, _ := cmd.Flags().GetString("symbol")
		feedID, _ := cmd.Flags().GetString("feed")
		oracleDecimals, _ := cmd.Flags().GetInt32("oracle-decimals")
		tier, _ := cmd.Flags().GetInt("tier")
		borrow, _ := cmd.Flags().GetInt64("borrow")
		liquidation, _ := cmd.Flags().GetInt64("liquidation")
		supplyCap, _ := cmd.Flags().GetFloat64("supply-cap")
		debtCap, _ := cmd.Flags().GetFloat64("debt-cap")

		asset := &core.Asset{
			AssetID:              assetID,
			Symbol:               symbol,
			OracleFeedID:         feedID,
			OracleDecimals:       oracleDecimals,
			Active:               true,
			BorrowThreshold:      borrow,
			LiquidationThreshold: liquidation,
			MaxSupplyThreshold:   decimal.NewFromFloat(supplyCap),
			Tier:                 core.Tier(tier),
			IsolationDebtCap:     decimal.NewFromFloat(debtCap),
		}

		if err := provideAssetService(database).Upsert(ctx, asset); err != nil {
			cmd.PrintErrln("upsert asset error:", err)
			return
		}

		cmd.Println("asset", asset.Symbol, "listed as", asset.Tier.String())
	},
}

var setTierCmd = &cobra.Command{
	Use:   "set-tier",
	Short: "move an asset to another risk tier",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		assetID, _ := cmd.Flags().GetString("asset")
		tier, _ := cmd.Flags().GetInt("tier")

		if err := provideAssetService(database).SetTier(ctx, assetID, core.Tier(tier)); err != nil {
			cmd.PrintErrln("set tier error:", err)
			return
		}

		cmd.Println("asset", assetID, "moved to", core.Tier(tier).String())
	},
}

var setActiveCmd = &cobra.Command{
	Use:   "set-active",
	Short: "enable or disable deposits of an asset",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		assetID, _ := cmd.Flags().GetString("asset")
		active, _ := cmd.Flags().GetBool("active")

		if err := provideAssetService(database).SetActive(ctx, assetID, active); err != nil {
			cmd.PrintErrln("set active error:", err)
			return
		}

		cmd.Println("asset", assetID, "active:", active)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "toggle the service pause switch",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		paused, _ := cmd.Flags().GetBool("paused")
		if err := provideSystemService(database).SetPaused(ctx, paused); err != nil {
			cmd.PrintErrln("set paused error:", err)
			return
		}

		cmd.Println("paused:", paused)
	},
}

func init() {
	addAssetCmd.Flags().String("asset", "", "asset id")
	addAssetCmd.Flags().String("symbol", "", "asset symbol")
	addAssetCmd.Flags().String("feed", "", "oracle feed id")
	addAssetCmd.Flags().Int32("oracle-decimals", 8, "oracle answer decimals")
	addAssetCmd.Flags().Int("tier", 0, "risk tier, 0 stable .. 3 isolated")
	addAssetCmd.Flags().Int64("borrow", 0, "borrow threshold in basis points")
	addAssetCmd.Flags().Int64("liquidation", 0, "liquidation threshold in basis points")
	addAssetCmd.Flags().Float64("supply-cap", 0, "max total deposits, 0 unbounded")
	addAssetCmd.Flags().Float64("debt-cap", 0, "isolation debt cap, 0 unbounded")

	setTierCmd.Flags().String("asset", "", "asset id")
	setTierCmd.Flags().Int("tier", 0, "risk tier, 0 stable .. 3 isolated")

	setActiveCmd.Flags().String("asset", "", "asset id")
	setActiveCmd.Flags().Bool("active", true, "accept new deposits")

	pauseCmd.Flags().Bool("paused", true, "disable mutating operations")

	rootCmd.AddCommand(addAssetCmd, setTierCmd, setActiveCmd, pauseCmd)
}
