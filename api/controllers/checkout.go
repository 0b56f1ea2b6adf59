package controllers

import (
	"net/http"

	"github.com/shubhavasar/storefront-backend/api/middleware"
	"github.com/shubhavasar/storefront-backend/api/responses"
	"github.com/shubhavasar/storefront-backend/api/validators"
	"github.com/shubhavasar/storefront-backend/internal/checkout"
	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

type checkoutSessionRequest struct {
	Items    []types.CartLine      `json:"items" validate:"required,min=1,dive"`
	Delivery checkout.DeliveryInfo `json:"delivery" validate:"required"`
}

// CreateCheckoutSession prices the submitted cart and opens a hosted payment
// session. The optional bearer token attributes the order to an account.
func CreateCheckoutSession(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateSession(ctx, checkout.Input{
			Lines:       payload.Items,
			Delivery:    payload.Delivery,
			BearerToken: middleware.BearerToken(r),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type checkoutEstimateRequest struct {
	Items      []types.CartLine `json:"items" validate:"required,min=1,dive"`
	PostalCode string           `json:"postal_code"`
}

// CheckoutEstimate prices a cart without opening a payment session, so the
// storefront can show the breakdown before the customer commits.
func CheckoutEstimate(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutEstimateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		breakdown := svc.Estimate(ctx, payload.Items, payload.PostalCode, middleware.BearerToken(r))
		responses.WriteSuccess(w, breakdown)
	}
}
