package controllers

import (
	"net/http"

	"github.com/moh9765/dispatchly-backend/api/responses"
	"github.com/moh9765/dispatchly-backend/api/validators"
	broadcastsvc "github.com/moh9765/dispatchly-backend/internal/broadcast"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
)

// DriverUpdateOrderStatus moves one of the driver's own orders to a new
// delivery status. The update is scoped to the authenticated driver so one
// driver cannot touch another's orders.
func DriverUpdateOrderStatus(svc broadcastsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "broadcast service unavailable"))
			return
		}

		driverID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateDeliveryStatus(r.Context(), orderID, status, &driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}
