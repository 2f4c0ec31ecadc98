package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moh9765/dispatchly-backend/api/responses"
	"github.com/moh9765/dispatchly-backend/api/validators"
	checkoutsvc "github.com/moh9765/dispatchly-backend/internal/checkout"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
	"github.com/moh9765/dispatchly-backend/pkg/types"
)

// Checkout handles submission of a customer's order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]checkoutsvc.ItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, checkoutsvc.ItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.Execute(r.Context(), checkoutsvc.CheckoutInput{
			CustomerID:      customerID,
			Items:           items,
			DeliveryAddress: payload.DeliveryAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID:       result.OrderID,
			TotalAmount:   result.TotalAmount,
			PointsAwarded: result.PointsAwarded,
			Broadcasted:   result.Broadcasted,
		})
	}
}

type checkoutRequest struct {
	Items           []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress types.DeliveryAddress `json:"delivery_address"`
}

type checkoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type checkoutResponse struct {
	OrderID       uuid.UUID       `json:"order_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PointsAwarded int             `json:"points_awarded"`
	Broadcasted   bool            `json:"broadcasted"`
}
