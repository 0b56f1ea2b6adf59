package controllers

import (
	"net/http"

	"github.com/shubhavasar/storefront-backend/api/responses"
	"github.com/shubhavasar/storefront-backend/api/validators"
	"github.com/shubhavasar/storefront-backend/internal/notify"
	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Message string `json:"message" validate:"required,max=4000"`
}

// Contact relays a contact-form submission to the business inbox.
func Contact(svc *notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		var payload contactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		err := svc.SendContactEnquiry(ctx, notify.ContactEnquiry{
			Name:    payload.Name,
			Email:   payload.Email,
			Phone:   payload.Phone,
			Message: payload.Message,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"sent": true})
	}
}
