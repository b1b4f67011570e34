package rest

import (
	"errors"
	"net/http"

	"lendfi/core"
	"lendfi/handler/render"
	"lendfi/internal/lendfi"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	system *core.System,
	systemSvc core.ISystemService,
	assets core.IAssetStore,
	assetSvc core.IAssetService,
	positions core.IPositionStore,
	positionSvc core.IPositionService,
	borrowSvc core.IBorrowService,
	pools core.IPoolStore,
	poolSvc core.IPoolService,
	wallets core.IWalletStore,
	walletSvc core.IWalletService,
	valuationSvc core.IValuationService,
	oracleSvc core.IOracleService,
	params lendfi.RateParams,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/assets", allAssetsHandler(assets, oracleSvc))
	router.Get("/assets/{asset}", assetHandler(assetSvc, oracleSvc))
	router.Get("/pool", poolHandler(pools, poolSvc, params))
	router.Get("/wallets/{user}/{asset}", balanceHandler(walletSvc))
	router.Get("/transfers", transfersHandler(wallets))

	router.Get("/positions", positionsHandler(positions))
	router.Get("/positions/{user}/{position}", positionHandler(positions, borrowSvc, valuationSvc))
	router.Post("/positions", openPositionHandler(positionSvc))
	router.Post("/positions/{user}/{position}/supply", supplyHandler(positionSvc))
	router.Post("/positions/{user}/{position}/withdraw", withdrawHandler(positionSvc))
	router.Post("/positions/{user}/{position}/borrow", borrowHandler(borrowSvc))
	router.Post("/positions/{user}/{position}/repay", repayHandler(borrowSvc))
	router.Post("/positions/{user}/{position}/exit", exitHandler(positionSvc))
	router.Post("/positions/{user}/{position}/liquidate", liquidateHandler(borrowSvc))

	router.Post("/pool/supply", supplyLiquidityHandler(poolSvc))
	router.Post("/pool/exchange", exchangeHandler(poolSvc))

	router.Route("/admin", func(r chi.Router) {
		r.Use(admin(system))
		r.Post("/assets", upsertAssetHandler(assetSvc))
		r.Post("/assets/{asset}/tier", setTierHandler(assetSvc))
		r.Post("/assets/{asset}/active", setActiveHandler(assetSvc))
		r.Post("/pause", pauseHandler(systemSvc))
	})

	return router
}

// admin gates a route on the caller id carried in the X-User-Id header.
func admin(system *core.System) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !system.IsAdmin(r.Header.Get("X-User-Id")) {
				render.OperationError(w, core.ErrOperationForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
