package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moh9765/dispatchly-backend/api/responses"
	internalorders "github.com/moh9765/dispatchly-backend/internal/orders"
	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
	"github.com/moh9765/dispatchly-backend/pkg/types"
)

type orderResponse struct {
	OrderID         uuid.UUID             `json:"order_id"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	DriverID        *uuid.UUID            `json:"driver_id,omitempty"`
	Status          string                `json:"status"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	DeliveryAddress types.DeliveryAddress `json:"delivery_address"`
	Items           []orderItemResponse   `json:"items"`
}

type orderItemResponse struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return orderResponse{
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		DriverID:        order.DriverID,
		Status:          order.Status.String(),
		TotalAmount:     order.TotalAmount,
		DeliveryAddress: order.DeliveryAddress,
		Items:           items,
	}
}

func newOrderListResponse(orders []models.Order) map[string]any {
	list := make([]orderResponse, 0, len(orders))
	for i := range orders {
		list = append(list, newOrderResponse(&orders[i]))
	}
	return map[string]any{"orders": list}
}

// CustomerOrders returns the authenticated customer's order history.
func CustomerOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListForCustomer(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(orders))
	}
}

// CustomerOrderDetail returns one of the authenticated customer's orders.
func CustomerOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForCustomer(r.Context(), orderID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// DriverOrders returns orders currently assigned to the authenticated driver.
func DriverOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		driverID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListForDriver(r.Context(), driverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(orders))
	}
}
