package controllers

import (
	"net/http"

	"github.com/moh9765/dispatchly-backend/api/responses"
	"github.com/moh9765/dispatchly-backend/api/validators"
	broadcastsvc "github.com/moh9765/dispatchly-backend/internal/broadcast"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
)

// DriverUpdatePosition records the authenticated driver's current coordinates.
// Broadcast radius filtering reads these on the next fan-out.
func DriverUpdatePosition(svc broadcastsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload positionUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdatePosition(r.Context(), driverID, *payload.Lat, *payload.Lng); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{})
	}
}

type positionUpdateRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}
