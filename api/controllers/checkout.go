package controllers

import (
	"net/http"

	"github.com/angelmondragon/pcforge-backend/api/middleware"
	"github.com/angelmondragon/pcforge-backend/api/responses"
	"github.com/angelmondragon/pcforge-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/pcforge-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
)

func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		var payload checkoutsvc.Request
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Finalize(r.Context(), middleware.SessionIDFromContext(r.Context()), payload.Shipping, payload.Payment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
