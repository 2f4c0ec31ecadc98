package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
)

// Service exposes read paths over the order store. Writes flow through the
// checkout orchestrator and the assignment resolver.
type Service interface {
	GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error)
}

type service struct {
	repo Repository
}

// NewService builds an orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		// Do not leak existence of other customers' orders.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *service) ListForDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	return s.repo.ListByDriver(ctx, driverID)
}
