package controllers

import (
	"net/http"

	"github.com/moh9765/dispatchly-backend/api/responses"
	broadcastsvc "github.com/moh9765/dispatchly-backend/internal/broadcast"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
)

// BroadcastOrder fans an order out to the active driver pool.
func BroadcastOrder(svc broadcastsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		notified, err := svc.Broadcast(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"drivers_notified": notified})
	}
}

// DriverOffers lists orders still open for the authenticated driver.
func DriverOffers(svc broadcastsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		offers, err := svc.ListOffers(r.Context(), driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(offers))
	}
}

// AcceptOffer lets the authenticated driver claim an order. Exactly one
// concurrent accept wins; the rest see a conflict.
func AcceptOffer(svc broadcastsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		order, err := svc.Accept(r.Context(), orderID, driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// RejectOffer marks the driver's offer rejected; the order stays open for
// everyone else.
func RejectOffer(svc broadcastsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Reject(r.Context(), orderID, driverID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{})
	}
}
