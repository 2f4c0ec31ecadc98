package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/internal/orders"
	"github.com/moh9765/dispatchly-backend/internal/products"
	"github.com/moh9765/dispatchly-backend/internal/rewards"
	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
	pkgerrors "github.com/moh9765/dispatchly-backend/pkg/errors"
	"github.com/moh9765/dispatchly-backend/pkg/logger"
	"github.com/moh9765/dispatchly-backend/pkg/types"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrdersRepo struct {
	created *models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.Order, error) {
	panic("not implemented")
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

type stubProductsRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository {
	return s
}

func (s *stubProductsRepo) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var found []models.Product
	for _, id := range ids {
		if product, ok := s.products[id]; ok && product.IsActive {
			found = append(found, *product)
		}
	}
	return found, nil
}

type stubAccruer struct {
	points     []rewards.PointsInput
	totalSpent decimal.Decimal
	addErr     error
}

func (s *stubAccruer) AddPoints(ctx context.Context, input rewards.PointsInput) (*models.RewardAccount, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.points = append(s.points, input)
	return &models.RewardAccount{UserID: input.UserID, Points: input.Points}, nil
}

func (s *stubAccruer) UpdateTotalSpent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	s.totalSpent = s.totalSpent.Add(amount)
	return nil
}

type stubBroadcaster struct {
	orderIDs []uuid.UUID
	err      error
}

func (s *stubBroadcaster) Broadcast(ctx context.Context, orderID uuid.UUID) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.orderIDs = append(s.orderIDs, orderID)
	return 1, nil
}

func validAddress() types.DeliveryAddress {
	return types.DeliveryAddress{
		Street: "123 Test Ave",
		City:   "Norman",
		State:  "OK",
		Zip:    "73072",
	}
}

func newTestCheckout(t *testing.T, ordersRepo *stubOrdersRepo, productsRepo *stubProductsRepo, accruer *stubAccruer, broadcaster *stubBroadcaster) Service {
	t.Helper()
	svc, err := NewService(stubTxRunner{}, ordersRepo, productsRepo, accruer, broadcaster, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestExecuteRecomputesTotal(t *testing.T) {
	productA := &models.Product{ID: uuid.New(), Name: "burrito", Price: decimal.NewFromFloat(5.00), IsActive: true}
	productB := &models.Product{ID: uuid.New(), Name: "soda", Price: decimal.NewFromFloat(3.00), IsActive: true}
	ordersRepo := &stubOrdersRepo{}
	productsRepo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{
		productA.ID: productA,
		productB.ID: productB,
	}}
	accruer := &stubAccruer{}
	broadcaster := &stubBroadcaster{}
	svc := newTestCheckout(t, ordersRepo, productsRepo, accruer, broadcaster)

	customerID := uuid.New()
	result, err := svc.Execute(context.Background(), CheckoutInput{
		CustomerID: customerID,
		Items: []ItemInput{
			{ProductID: productA.ID, Quantity: 2},
			{ProductID: productB.ID, Quantity: 1},
		},
		DeliveryAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !result.TotalAmount.Equal(decimal.NewFromFloat(13.00)) {
		t.Fatalf("expected server-computed total 13.00 got %s", result.TotalAmount)
	}
	if result.PointsAwarded != 13 {
		t.Fatalf("expected 13 points got %d", result.PointsAwarded)
	}
	if !result.Broadcasted {
		t.Fatal("expected broadcast to run")
	}

	order := ordersRepo.created
	if order == nil {
		t.Fatal("order was not created")
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("new orders start pending got %s", order.Status)
	}
	if order.CustomerID != customerID {
		t.Fatalf("unexpected customer %s", order.CustomerID)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(order.Items))
	}
	if !order.Items[0].Price.Equal(productA.Price) {
		t.Fatalf("item must snapshot catalog price got %s", order.Items[0].Price)
	}
	if len(accruer.points) != 1 || accruer.points[0].Type != enums.RewardTransactionEarned {
		t.Fatalf("expected one earned points accrual got %+v", accruer.points)
	}
	if !strings.Contains(accruer.points[0].Description, order.ID.String()) {
		t.Fatalf("accrual description must reference the order got %q", accruer.points[0].Description)
	}
	if !accruer.totalSpent.Equal(order.TotalAmount) {
		t.Fatalf("total spent must track the order total got %s", accruer.totalSpent)
	}
	if len(broadcaster.orderIDs) != 1 || broadcaster.orderIDs[0] != order.ID {
		t.Fatalf("expected broadcast for the new order got %v", broadcaster.orderIDs)
	}
}

func TestExecutePointsRounding(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "wrap", Price: decimal.NewFromFloat(12.50), IsActive: true}
	ordersRepo := &stubOrdersRepo{}
	productsRepo := &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc := newTestCheckout(t, ordersRepo, productsRepo, &stubAccruer{}, &stubBroadcaster{})

	result, err := svc.Execute(context.Background(), CheckoutInput{
		CustomerID:      uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		DeliveryAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.PointsAwarded != 13 {
		t.Fatalf("12.50 rounds to 13 points got %d", result.PointsAwarded)
	}
}

func TestExecuteUnknownProduct(t *testing.T) {
	ordersRepo := &stubOrdersRepo{}
	svc := newTestCheckout(t, ordersRepo, &stubProductsRepo{products: map[uuid.UUID]*models.Product{}}, &stubAccruer{}, &stubBroadcaster{})

	_, err := svc.Execute(context.Background(), CheckoutInput{
		CustomerID:      uuid.New(),
		Items:           []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
		DeliveryAddress: validAddress(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND got %v", err)
	}
	if ordersRepo.created != nil {
		t.Fatal("failed checkout must not create an order")
	}
}

func TestExecuteInactiveProduct(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "retired", Price: decimal.NewFromFloat(4.00), IsActive: false}
	svc := newTestCheckout(t, &stubOrdersRepo{}, &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}, &stubAccruer{}, &stubBroadcaster{})

	_, err := svc.Execute(context.Background(), CheckoutInput{
		CustomerID:      uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		DeliveryAddress: validAddress(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND got %v", err)
	}
}

func TestExecuteValidatesInput(t *testing.T) {
	svc := newTestCheckout(t, &stubOrdersRepo{}, &stubProductsRepo{}, &stubAccruer{}, &stubBroadcaster{})
	ctx := context.Background()

	_, err := svc.Execute(ctx, CheckoutInput{CustomerID: uuid.New(), DeliveryAddress: validAddress()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for empty items got %v", err)
	}

	_, err = svc.Execute(ctx, CheckoutInput{
		CustomerID:      uuid.New(),
		Items:           []ItemInput{{ProductID: uuid.New(), Quantity: 0}},
		DeliveryAddress: validAddress(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for zero quantity got %v", err)
	}

	_, err = svc.Execute(ctx, CheckoutInput{
		CustomerID: uuid.New(),
		Items:      []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
		DeliveryAddress: types.DeliveryAddress{
			Street: "123 Test Ave",
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION for incomplete address got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map got %T", typed.Details())
	}
	missing, ok := details["missing_fields"].([]string)
	if !ok || len(missing) != 3 {
		t.Fatalf("expected city, state, zip missing got %v", details["missing_fields"])
	}
}

func TestExecuteRewardsFailureSwallowed(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "bowl", Price: decimal.NewFromFloat(9.00), IsActive: true}
	ordersRepo := &stubOrdersRepo{}
	accruer := &stubAccruer{addErr: errors.New("rewards store down")}
	broadcaster := &stubBroadcaster{}
	svc := newTestCheckout(t, ordersRepo, &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}, accruer, broadcaster)

	result, err := svc.Execute(context.Background(), CheckoutInput{
		CustomerID:      uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		DeliveryAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("reward failures must not fail checkout, got %v", err)
	}
	if result.PointsAwarded != 0 {
		t.Fatalf("expected 0 points after accrual failure got %d", result.PointsAwarded)
	}
	if ordersRepo.created == nil {
		t.Fatal("order must still be created")
	}
	if !result.Broadcasted {
		t.Fatal("broadcast must still run after accrual failure")
	}
}

func TestExecuteBroadcastFailureSwallowed(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "salad", Price: decimal.NewFromFloat(7.00), IsActive: true}
	ordersRepo := &stubOrdersRepo{}
	broadcaster := &stubBroadcaster{err: errors.New("dispatch down")}
	svc := newTestCheckout(t, ordersRepo, &stubProductsRepo{products: map[uuid.UUID]*models.Product{product.ID: product}}, &stubAccruer{}, broadcaster)

	result, err := svc.Execute(context.Background(), CheckoutInput{
		CustomerID:      uuid.New(),
		Items:           []ItemInput{{ProductID: product.ID, Quantity: 1}},
		DeliveryAddress: validAddress(),
	})
	if err != nil {
		t.Fatalf("broadcast failures must not fail checkout, got %v", err)
	}
	if result.Broadcasted {
		t.Fatal("expected broadcasted=false after failure")
	}
	if result.PointsAwarded != 7 {
		t.Fatalf("points must still accrue got %d", result.PointsAwarded)
	}
}
