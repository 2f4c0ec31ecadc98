package broadcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/internal/orders"
	"github.com/moh9765/dispatchly-backend/internal/users"
	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/geo"
	"github.com/moh9765/dispatchly-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type driverEarningsCreditor interface {
	CreditDriverEarnings(ctx context.Context, tx *gorm.DB, orderID, driverID uuid.UUID, orderTotal decimal.Decimal) (decimal.Decimal, error)
}

// Service is the assignment resolver: it moves orders through
// pending → broadcasted → in_transit → delivered/cancelled and guarantees
// at most one driver wins each order.
type Service interface {
	Broadcast(ctx context.Context, orderID uuid.UUID) (int, error)
	ListOffers(ctx context.Context, driverID uuid.UUID) ([]models.Order, error)
	Accept(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error)
	Reject(ctx context.Context, orderID, driverID uuid.UUID) error
	DirectAssign(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error)
	UpdateDeliveryStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, driverID *uuid.UUID) (*models.Order, error)
	UpdatePosition(ctx context.Context, driverID uuid.UUID, lat, lng float64) error
}

// ServiceParams groups dependencies for the assignment resolver.
type ServiceParams struct {
	Tx         txRunner
	Repo       Repository
	OrdersRepo orders.Repository
	UsersRepo  users.Repository
	Wallet     driverEarningsCreditor
	Metrics    *metrics.DispatchMetrics
	// SearchRadiusKM limits broadcasts to drivers near the delivery address
	// when it carries coordinates. Zero disables the filter.
	SearchRadiusKM float64
}

type service struct {
	tx         txRunner
	repo       Repository
	ordersRepo orders.Repository
	usersRepo  users.Repository
	wallet     driverEarningsCreditor
	metrics    *metrics.DispatchMetrics
	radiusKM   float64
}

// NewService builds the assignment resolver.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("broadcast repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.UsersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	return &service{
		tx:         params.Tx,
		repo:       params.Repo,
		ordersRepo: params.OrdersRepo,
		usersRepo:  params.UsersRepo,
		wallet:     params.Wallet,
		metrics:    params.Metrics,
		radiusKM:   params.SearchRadiusKM,
	}, nil
}

// Broadcast fans an unassigned order out to every active driver and returns
// how many were notified. Zero active drivers is a degenerate success: the
// order stays broadcasted until someone accepts or an admin assigns it.
func (s *service) Broadcast(ctx context.Context, orderID uuid.UUID) (int, error) {
	if orderID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return 0, err
	}
	if order.DriverID != nil {
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "order already assigned")
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusBroadcasted {
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %q cannot be broadcast", order.Status))
	}

	drivers, err := s.usersRepo.ListActiveDrivers(ctx)
	if err != nil {
		return 0, err
	}
	drivers = s.filterByRadius(order, drivers)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		rows, err := ordersRepo.MarkBroadcasted(ctx, orderID)
		if err != nil {
			return err
		}
		if rows == 0 {
			// a driver claimed the order between the precondition read
			// and this write
			return pkgerrors.New(pkgerrors.CodeConflict, "order no longer available for broadcast")
		}
		for _, driver := range drivers {
			if err := repo.Upsert(ctx, orderID, driver.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncBroadcast()
	s.metrics.AddOffersCreated(len(drivers))
	return len(drivers), nil
}

// ListOffers returns the orders still open for this driver to accept.
func (s *service) ListOffers(ctx context.Context, driverID uuid.UUID) ([]models.Order, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	return s.repo.ListPendingForDriver(ctx, driverID)
}

// Accept resolves the assignment race. The winner is decided by a single
// conditional update on the order row; every losing caller gets a conflict.
func (s *service) Accept(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil || driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and driver id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		record, err := repo.Get(ctx, orderID, driverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no offer for this driver")
			}
			return err
		}
		if record.Status != enums.BroadcastStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer already resolved")
		}

		rows, err := ordersRepo.ClaimForDriver(ctx, orderID, driverID)
		if err != nil {
			return err
		}
		if rows == 0 {
			s.metrics.IncAcceptConflict()
			return pkgerrors.New(pkgerrors.CodeConflict, "order no longer available")
		}

		if _, err := repo.MarkStatus(ctx, orderID, driverID, enums.BroadcastStatusAccepted); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAccept()
	return s.ordersRepo.FindByID(ctx, orderID)
}

// Reject marks this driver's offer rejected. The order itself is untouched and
// stays available to every other driver.
func (s *service) Reject(ctx context.Context, orderID, driverID uuid.UUID) error {
	if orderID == uuid.Nil || driverID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and driver id required")
	}
	rows, err := s.repo.MarkStatus(ctx, orderID, driverID, enums.BroadcastStatusRejected)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no offer for this driver")
	}
	return nil
}

// DirectAssign is the admin path around the broadcast flow: hand a pending,
// unassigned order straight to a driver.
func (s *service) DirectAssign(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil || driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and driver id required")
	}

	driver, err := s.usersRepo.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, err
	}
	if driver.Role != enums.UserRoleDriver {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user is not a driver")
	}

	rows, err := s.ordersRepo.AssignPending(ctx, orderID, driverID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := s.ordersRepo.FindByID(ctx, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is not pending and unassigned")
	}
	return s.ordersRepo.FindByID(ctx, orderID)
}

// UpdateDeliveryStatus moves an order to a whitelisted status, optionally
// scoped to the assigned driver. Delivered and cancelled are only reachable
// from in_transit and are terminal, which bounds the wallet credit to exactly
// one per order: the flip to delivered happens in a single conditional update
// and the credit lands in the same transaction.
func (s *service) UpdateDeliveryStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, driverID *uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.AllowedForDeliveryUpdate() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("status %q not allowed", status))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}

		rows, err := ordersRepo.UpdateStatus(ctx, orderID, status, status.DeliverySources(), driverID)
		if err != nil {
			return err
		}
		if rows == 0 {
			if !order.Status.CanBecome(status) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("order in status %q cannot move to %q", order.Status, status))
			}
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for this driver")
		}

		if status == enums.OrderStatusDelivered && order.DriverID != nil {
			if _, err := s.wallet.CreditDriverEarnings(ctx, tx, orderID, *order.DriverID, order.TotalAmount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ordersRepo.FindByID(ctx, orderID)
}

// UpdatePosition records a driver's last known coordinates so the radius
// filter can consider them on the next broadcast.
func (s *service) UpdatePosition(ctx context.Context, driverID uuid.UUID, lat, lng float64) error {
	if driverID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}
	return s.usersRepo.UpdatePosition(ctx, driverID, lat, lng)
}

func (s *service) filterByRadius(order *models.Order, drivers []models.User) []models.User {
	if s.radiusKM <= 0 || !order.DeliveryAddress.HasCoordinates() {
		return drivers
	}
	lat, lng := *order.DeliveryAddress.Lat, *order.DeliveryAddress.Lng
	nearby := make([]models.User, 0, len(drivers))
	for _, driver := range drivers {
		if driver.Lat == nil || driver.Lng == nil {
			continue
		}
		if geo.IsWithinRadiusKM(lat, lng, *driver.Lat, *driver.Lng, s.radiusKM) {
			nearby = append(nearby, driver)
		}
	}
	return nearby
}
