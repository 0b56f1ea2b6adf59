package controllers

import (
	"net/http"

	"github.com/shubhavasar/storefront-backend/api/responses"
	"github.com/shubhavasar/storefront-backend/api/validators"
	"github.com/shubhavasar/storefront-backend/internal/notify"
	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
)

type homeVisitRequest struct {
	Name          string `json:"name" validate:"required,max=120"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=30"`
	Address       string `json:"address" validate:"required,max=300"`
	PreferredDate string `json:"preferred_date" validate:"required,max=40"`
	Requirements  string `json:"requirements" validate:"omitempty,max=2000"`
}

// HomeVisit books an at-home showing appointment request.
func HomeVisit(svc *notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		var payload homeVisitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		err := svc.SendHomeVisitBooking(ctx, notify.HomeVisitBooking{
			Name:          payload.Name,
			Email:         payload.Email,
			Phone:         payload.Phone,
			Address:       payload.Address,
			PreferredDate: payload.PreferredDate,
			Requirements:  payload.Requirements,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"booked": true})
	}
}
