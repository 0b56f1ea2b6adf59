package controllers

import (
	"net/http"
	"strings"

	"github.com/shubhavasar/storefront-backend/api/responses"
	"github.com/shubhavasar/storefront-backend/api/validators"
	"github.com/shubhavasar/storefront-backend/internal/cart"
	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

const cartSessionHeader = "X-Cart-Session"

func cartSessionID(r *http.Request) (string, error) {
	sessionID := strings.TrimSpace(r.Header.Get(cartSessionHeader))
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "X-Cart-Session header is required")
	}
	return sessionID, nil
}

// CartFetch returns the session's cart snapshot.
func CartFetch(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := svc.Get(ctx, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

type cartAddRequest struct {
	Item types.CartLine `json:"item" validate:"required"`
}

// CartAdd puts a line in the cart, merging with an existing variant line.
func CartAdd(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := svc.Add(ctx, sessionID, payload.Item)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

type cartUpdateRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

// CartUpdateQuantity sets the quantity on an existing variant line.
func CartUpdateQuantity(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		variant := types.CartLine{ProductID: payload.ProductID, Color: payload.Color, Size: payload.Size}
		snapshot, err := svc.UpdateQuantity(ctx, sessionID, variant, payload.Qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

type cartRemoveRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// CartRemove deletes a variant line.
func CartRemove(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload cartRemoveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		variant := types.CartLine{ProductID: payload.ProductID, Color: payload.Color, Size: payload.Size}
		snapshot, err := svc.Remove(ctx, sessionID, variant)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartClear drops the whole session cart.
func CartClear(svc *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sessionID, err := cartSessionID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Clear(ctx, sessionID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
