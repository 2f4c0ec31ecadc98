package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/moh9765/dispatchly-backend/api/responses"
	"github.com/moh9765/dispatchly-backend/api/validators"
	broadcastsvc "github.com/moh9765/dispatchly-backend/internal/broadcast"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
)

// AdminAssignOrder hands a pending, unassigned order straight to a driver,
// bypassing the broadcast flow.
func AdminAssignOrder(svc broadcastsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "broadcast service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.DirectAssign(r.Context(), orderID, payload.DriverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type assignRequest struct {
	DriverID uuid.UUID `json:"driver_id" validate:"required"`
}
