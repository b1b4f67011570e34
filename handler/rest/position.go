package rest

import (
	"errors"
	"net/http"
	"time"

	"lendfi/core"
	"lendfi/handler/param"
	"lendfi/handler/render"
	"lendfi/handler/views"

	"github.com/go-chi/chi"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

func positionsHandler(positions core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			User string `json:"user"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		list, err := positions.FindByUser(r.Context(), params.User)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func positionHandler(positions core.IPositionStore, borrowSvc core.IBorrowService, valuationSvc core.IValuationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "user")
		positionID := cast.ToInt64(chi.URLParam(r, "position"))

		position, err := positions.Find(ctx, userID, positionID)
		if err != nil {
			render.OperationError(w, core.ErrInvalidPosition)
			return
		}

		now := time.Now()

		collaterals, err := positions.Collaterals(ctx, userID, positionID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		debt, err := borrowSvc.DebtWithInterest(ctx, position, now)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		healthFactor, err := borrowSvc.HealthFactor(ctx, userID, positionID)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		tier, err := borrowSvc.HighestTier(ctx, position)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		borrowRate, err := borrowSvc.BorrowRate(ctx, tier)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		view := &views.Position{
			Position:         *position,
			Collaterals:      collaterals,
			DebtWithInterest: debt,
			HealthFactor:     healthFactor,
			BorrowAPY:        borrowRate,
		}

		// value quotes fail open to zero so a broken feed still renders
		view.CollateralValue, _ = valuationSvc.CollateralValue(ctx, userID, positionID, now)
		view.CreditLimit, _ = valuationSvc.CreditLimit(ctx, userID, positionID, now)
		view.LiquidationValue, _ = valuationSvc.LiquidationValue(ctx, userID, positionID, now)

		render.JSON(w, view)
	}
}

func openPositionHandler(positionSvc core.IPositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID   string `json:"user_id"`
			AssetID  string `json:"asset_id"`
			Isolated bool   `json:"isolated"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if user, _ := uuid.FromString(params.UserID); user == uuid.Nil {
			render.BadRequest(w, errors.New("invalid user id"))
			return
		}

		position, err := positionSvc.Open(r.Context(), params.UserID, params.AssetID, params.Isolated)
		if err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, position)
	}
}

func supplyHandler(positionSvc core.IPositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			AssetID string          `json:"asset_id"`
			Amount  decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		userID := chi.URLParam(r, "user")
		positionID := cast.ToInt64(chi.URLParam(r, "position"))

		if err := positionSvc.Supply(r.Context(), userID, positionID, params.AssetID, params.Amount); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func withdrawHandler(positionSvc core.IPositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			AssetID string          `json:"asset_id"`
			Amount  decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		userID := chi.URLParam(r, "user")
		positionID := cast.ToInt64(chi.URLParam(r, "position"))

		if err := positionSvc.Withdraw(r.Context(), userID, positionID, params.AssetID, params.Amount); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func borrowHandler(borrowSvc core.IBorrowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		userID := chi.URLParam(r, "user")
		positionID := cast.ToInt64(chi.URLParam(r, "position"))

		if err := borrowSvc.Borrow(r.Context(), userID, positionID, params.Amount); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func repayHandler(borrowSvc core.IBorrowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		userID := chi.URLParam(r, "user")
		positionID := cast.ToInt64(chi.URLParam(r, "position"))

		if err := borrowSvc.Repay(r.Context(), userID, positionID, params.Amount); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func exitHandler(positionSvc core.IPositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user")
		positionID := cast.ToInt64(chi.URLParam(r, "position"))

		if err := positionSvc.Exit(r.Context(), userID, positionID); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func liquidateHandler(borrowSvc core.IBorrowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			LiquidatorID string `json:"liquidator_id"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if liquidator, _ := uuid.FromString(params.LiquidatorID); liquidator == uuid.Nil {
			render.BadRequest(w, errors.New("invalid liquidator id"))
			return
		}

		userID := chi.URLParam(r, "user")
		positionID := cast.ToInt64(chi.URLParam(r, "position"))

		if err := borrowSvc.Liquidate(r.Context(), params.LiquidatorID, userID, positionID); err != nil {
			render.OperationError(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}
