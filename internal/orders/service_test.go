package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
)

type stubOrdersRepo struct {
	order *models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	if s.order != nil && s.order.CustomerID == customerID {
		return []models.Order{*s.order}, nil
	}
	return nil, nil
}

func (s *stubOrdersRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error) {
	if s.order != nil && s.order.DriverID != nil && *s.order.DriverID == driverID {
		return []models.Order{*s.order}, nil
	}
	return nil, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, from []enums.OrderStatus, driverID *uuid.UUID) (int64, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) MarkBroadcasted(ctx context.Context, orderID uuid.UUID) (int64, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ClaimForDriver(ctx context.Context, orderID, driverID uuid.UUID) (int64, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) AssignPending(ctx context.Context, orderID, driverID uuid.UUID) (int64, error) {
	panic("not implemented")
}

func TestGetForCustomer(t *testing.T) {
	customerID := uuid.New()
	order := &models.Order{ID: uuid.New(), CustomerID: customerID, Status: enums.OrderStatusPending}
	svc, err := NewService(&stubOrdersRepo{order: order})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	found, err := svc.GetForCustomer(context.Background(), order.ID, customerID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("unexpected order %s", found.ID)
	}
}

func TestGetForCustomerHidesOtherOrders(t *testing.T) {
	order := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), Status: enums.OrderStatusPending}
	svc, _ := NewService(&stubOrdersRepo{order: order})

	// another customer gets the same answer as a missing order
	_, err := svc.GetForCustomer(context.Background(), order.ID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND got %v", err)
	}

	_, err = svc.GetForCustomer(context.Background(), uuid.New(), order.CustomerID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND got %v", err)
	}
}
