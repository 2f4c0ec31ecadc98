package enums

import "fmt"

// OrderStatus tracks the delivery lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusBroadcasted OrderStatus = "broadcasted"
	OrderStatusInTransit   OrderStatus = "in_transit"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCancelled   OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusBroadcasted,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// deliveryUpdateStatuses is the whitelist accepted by driver status updates.
var deliveryUpdateStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// deliverySources maps each driver-settable status to the statuses an order
// may leave from. Terminal states have no outgoing transitions, so an order
// can reach delivered at most once.
var deliverySources = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPending},
	OrderStatusInTransit: {OrderStatusInTransit},
	OrderStatusDelivered: {OrderStatusInTransit},
	OrderStatusCancelled: {OrderStatusInTransit},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the order lifecycle.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}

// AllowedForDeliveryUpdate reports whether drivers may set this status directly.
func (o OrderStatus) AllowedForDeliveryUpdate() bool {
	for _, candidate := range deliveryUpdateStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// DeliverySources returns the statuses an order may transition from when a
// delivery update targets this status.
func (o OrderStatus) DeliverySources() []OrderStatus {
	return deliverySources[o]
}

// CanBecome reports whether a delivery update may move an order from this
// status to target.
func (o OrderStatus) CanBecome(target OrderStatus) bool {
	for _, source := range deliverySources[target] {
		if source == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
