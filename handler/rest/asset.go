package rest

import (
	"context"
	"net/http"
	"time"

	"lendfi/core"
	"lendfi/handler/param"
	"lendfi/handler/render"
	"lendfi/handler/views"
	"lendfi/internal/lendfi"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func allAssetsHandler(assets core.IAssetStore, oracleSvc core.IOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		all, err := assets.All(ctx)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		now := time.Now()
		assetViews := make([]*views.Asset, 0, len(all))
		for _, asset := range all {
			assetViews = append(assetViews, assetView(ctx, asset, oracleSvc, now))
		}

		render.JSON(w, assetViews)
	}
}

func assetHandler(assetSvc core.IAssetService, oracleSvc core.IOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		asset, err := assetSvc.Find(ctx, chi.URLParam(r, "asset"))
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, assetView(ctx, asset, oracleSvc, time.Now()))
	}
}

// assetView prices the asset if a valid round exists, zero otherwise.
func assetView(ctx context.Context, asset *core.Asset, oracleSvc core.IOracleService, now time.Time) *views.Asset {
	price, err := oracleSvc.Price(ctx, asset, now)
	if err != nil {
		price = decimal.Zero
	}

	return &views.Asset{
		Asset:    *asset,
		TierName: asset.Tier.String(),
		Price:    price,
	}
}

func poolHandler(pools core.IPoolStore, poolSvc core.IPoolService, params lendfi.RateParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pool, err := pools.Find(ctx)
		if err != nil {
			pool = &core.Pool{}
		}

		exchangeRate, err := poolSvc.ExchangeRate(ctx)
		if err != nil {
			exchangeRate = decimal.Zero
		}

		supplyRate, err := poolSvc.SupplyRate(ctx)
		if err != nil {
			supplyRate = decimal.Zero
		}

		utilization := lendfi.UtilizationRate(pool.TotalBorrows, pool.TotalSupplied)

		borrowRates := make(map[string]decimal.Decimal, len(core.TierNames))
		for tier, name := range core.TierNames {
			borrowRates[name] = lendfi.BorrowRate(tier, utilization, params)
		}

		render.JSON(w, &views.Pool{
			Pool:            *pool,
			ExchangeRate:    exchangeRate,
			UtilizationRate: utilization,
			SupplyAPY:       supplyRate,
			BorrowAPY:       borrowRates,
		})
	}
}

func balanceHandler(walletSvc core.IWalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "user")
		assetID := chi.URLParam(r, "asset")

		balance, err := walletSvc.Balance(ctx, userID, assetID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{
			"user_id":  userID,
			"asset_id": assetID,
			"balance":  balance,
		})
	}
}

// transfersHandler lists the most recent ledger movements, newest first.
func transfersHandler(wallets core.IWalletStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Limit int `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		transfers, err := wallets.Top(r.Context(), params.Limit)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, transfers)
	}
}

func supplyLiquidityHandler(poolSvc core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID string          `json:"user_id"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		shares, err := poolSvc.SupplyLiquidity(r.Context(), params.UserID, params.Amount)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"shares": shares})
	}
}

func exchangeHandler(poolSvc core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID string          `json:"user_id"`
			Shares decimal.Decimal `json:"shares"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		amount, err := poolSvc.Exchange(r.Context(), params.UserID, params.Shares)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"amount": amount})
	}
}

func upsertAssetHandler(assetSvc core.IAssetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var asset core.Asset
		if err := param.Binding(r, &asset); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := assetSvc.Upsert(r.Context(), &asset); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, &asset)
	}
}

func setTierHandler(assetSvc core.IAssetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Tier core.Tier `json:"tier"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := assetSvc.SetTier(r.Context(), chi.URLParam(r, "asset"), params.Tier); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"tier": params.Tier.String()})
	}
}

func setActiveHandler(assetSvc core.IAssetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Active bool `json:"active"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := assetSvc.SetActive(r.Context(), chi.URLParam(r, "asset"), params.Active); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"active": params.Active})
	}
}

func pauseHandler(systemSvc core.ISystemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Paused bool `json:"paused"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := systemSvc.SetPaused(r.Context(), params.Paused); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{"paused": params.Paused})
	}
}
